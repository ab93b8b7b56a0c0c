package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/taskflow/taskflow/internal/models"
)

// ExportVersion is the format version stamped on export payloads.
const ExportVersion = "1.0"

// ExportPayload is the interchange shape for import and export.
type ExportPayload struct {
	Version string         `json:"version"`
	Tasks   []*models.Task `json:"tasks"`
}

// Export builds the interchange payload for the given snapshot.
func Export(list []*models.Task) ExportPayload {
	if list == nil {
		list = []*models.Task{}
	}
	return ExportPayload{Version: ExportVersion, Tasks: list}
}

// ParseImport validates and decodes an import payload. The payload must be
// an object carrying a tasks array of task-like records; anything else is
// ErrImportFormat and leaves nothing to apply. Records inside the array are
// decoded with the same tolerant defaults as the stored blob.
func ParseImport(data []byte, now time.Time) ([]*models.Task, error) {
	var envelope struct {
		Version string          `json:"version"`
		Tasks   json.RawMessage `json:"tasks"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFormat, err)
	}
	if len(envelope.Tasks) == 0 || string(envelope.Tasks) == "null" {
		return nil, ErrImportFormat
	}

	list, err := decodeTasks(envelope.Tasks, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFormat, err)
	}
	return list, nil
}
