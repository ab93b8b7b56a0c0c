// Package commands implements the taskctl subcommands. Every command talks
// straight to the store the server uses, so they must point at the same
// REDIS_URL.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/taskflow/taskflow/internal/config"
	"github.com/taskflow/taskflow/internal/store"
	"github.com/taskflow/taskflow/internal/tasks"
)

// openStore connects to the configured Redis store.
func openStore() (*store.RedisStore, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	st, err := store.NewRedisStore(cfg.RedisURL, cfg.StorePrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return st, nil
}

// openRepo connects to the store and loads the task list.
func openRepo(ctx context.Context) (*tasks.Repository, *store.RedisStore, error) {
	st, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	repo := tasks.NewRepository(st, zap.NewNop())
	if err := repo.Load(ctx); err != nil {
		_ = st.Close()
		return nil, nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	return repo, st, nil
}

// writeOutput renders v as json or yaml.
func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer func() {
			_ = enc.Close()
		}()
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q (want json or yaml)", format)
	}
}
