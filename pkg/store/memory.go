package store

import (
	"context"
	"sync"

	"github.com/reviewquest/progression/pkg/progression"
)

// MemoryStore is an in-process SnapshotStore with the same versioned
// compare-and-swap semantics as the Redis store. Intended for tests and
// local development without a Redis instance.
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string]memoryDoc
}

type memoryDoc struct {
	version  int64
	snapshot *progression.Snapshot
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]memoryDoc)}
}

// Load returns a deep copy so callers cannot mutate stored state in place.
func (m *MemoryStore) Load(ctx context.Context, userID string) (*progression.Snapshot, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[userID]
	if !ok {
		return nil, 0, progression.ErrNotFound
	}
	return doc.snapshot.Clone(), doc.version, nil
}

// Write applies the compare-and-swap: the stored version must still equal
// expectedVersion or progression.ErrConflict is returned.
func (m *MemoryStore) Write(ctx context.Context, userID string, expectedVersion int64, snap *progression.Snapshot) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[userID]
	if !ok {
		if expectedVersion != 0 {
			return 0, progression.ErrConflict
		}
	} else if doc.version != expectedVersion {
		return 0, progression.ErrConflict
	}

	newVersion := expectedVersion + 1
	m.docs[userID] = memoryDoc{version: newVersion, snapshot: snap.Clone()}
	return newVersion, nil
}

// Ping always succeeds; MemoryStore has no external dependency.
func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}
