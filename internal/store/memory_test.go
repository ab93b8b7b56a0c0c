package store

import (
	"context"
	"testing"
)

func TestMemoryStore_GetSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryStore()

	_, found, err := s.Get(ctx, KeyTodos)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Error("empty store reported a value")
	}

	if err := s.Set(ctx, KeyTodos, []byte(`[]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	val, found, err := s.Get(ctx, KeyTodos)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !found || string(val) != `[]` {
		t.Errorf("got %q found=%v", val, found)
	}

	// Mutating the returned slice must not corrupt the stored value.
	val[0] = 'x'
	again, _, _ := s.Get(ctx, KeyTodos)
	if string(again) != `[]` {
		t.Errorf("stored value aliased by caller mutation: %q", again)
	}
}
