package store

import (
	"context"
	"errors"
	"testing"

	"github.com/reviewquest/progression/pkg/progression"
)

func TestMemoryStore_ConflictSemantics(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	snap := progression.NewSnapshot()
	if _, err := s.Write(ctx, "user-1", 0, snap); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if _, err := s.Write(ctx, "user-1", 0, snap); !errors.Is(err, progression.ErrConflict) {
		t.Errorf("Expected ErrConflict on create race, got %v", err)
	}
	if _, err := s.Write(ctx, "user-1", 5, snap); !errors.Is(err, progression.ErrConflict) {
		t.Errorf("Expected ErrConflict on stale version, got %v", err)
	}
	if _, err := s.Write(ctx, "user-1", 1, snap); err != nil {
		t.Errorf("Write() at current version error = %v", err)
	}
}

func TestMemoryStore_LoadIsolation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	snap := progression.NewSnapshot()
	snap.Score = 10
	if _, err := s.Write(ctx, "user-1", 0, snap); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	loaded, _, err := s.Load(ctx, "user-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	loaded.Score = 999

	again, _, err := s.Load(ctx, "user-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if again.Score != 10 {
		t.Errorf("Mutating a loaded snapshot leaked into the store: score = %d", again.Score)
	}
}

func TestMemoryStore_LoadNotFound(t *testing.T) {
	s := NewMemoryStore()

	_, _, err := s.Load(context.Background(), "nobody")
	if !errors.Is(err, progression.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
