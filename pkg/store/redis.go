// Package store provides persistence for progression snapshots. The Redis
// implementation is the production store; MemoryStore backs tests and local
// development. Both provide the versioned compare-and-swap writes the award
// engine relies on for lost-update safety.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/reviewquest/progression/pkg/progression"
)

const (
	// keyPrefix namespaces all progression documents in Redis.
	keyPrefix = "reviewquest:progression:"
)

// document is the stored envelope: the snapshot plus a version counter used
// as the compare-and-swap precondition.
type document struct {
	Version  int64                 `json:"version"`
	Snapshot *progression.Snapshot `json:"snapshot"`
}

// RedisStore implements progression.SnapshotStore on Redis.
type RedisStore struct {
	client *redis.Client
	cfg    RedisStoreConfig
}

// RedisStoreConfig tunes the Redis store.
type RedisStoreConfig struct {
	// TTL expires idle documents. Zero (the default) keeps them forever;
	// progression state is never deleted by this subsystem.
	TTL time.Duration
}

// NewRedisStore creates a Redis-backed snapshot store.
func NewRedisStore(client *redis.Client, cfg RedisStoreConfig) *RedisStore {
	return &RedisStore{client: client, cfg: cfg}
}

func makeKey(userID string) string {
	return keyPrefix + userID
}

// Load retrieves the snapshot and version for a user.
// Returns progression.ErrNotFound if no document exists.
func (r *RedisStore) Load(ctx context.Context, userID string) (*progression.Snapshot, int64, error) {
	key := makeKey(userID)

	data, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, 0, progression.ErrNotFound
	}
	if err != nil {
		logrus.Errorf("failed to get progression for user %s: %v", userID, err)
		return nil, 0, fmt.Errorf("failed to get progression: %w", err)
	}

	var doc document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		logrus.Errorf("failed to unmarshal progression for user %s: %v", userID, err)
		return nil, 0, fmt.Errorf("failed to unmarshal progression: %w", err)
	}
	if doc.Snapshot == nil {
		// Pre-versioning documents stored the snapshot bare. Reparse so an
		// old deployment's data survives the envelope migration.
		snap := &progression.Snapshot{}
		if err := json.Unmarshal([]byte(data), snap); err != nil {
			return nil, 0, fmt.Errorf("failed to unmarshal progression: %w", err)
		}
		logrus.Warnf("progression document for user %s has no version envelope, treating as version 0", userID)
		return snap, 0, nil
	}

	return doc.Snapshot, doc.Version, nil
}

// Write persists the snapshot under optimistic concurrency: it succeeds
// only if the stored version still equals expectedVersion (0 meaning the
// document must not exist yet). Uses WATCH/MULTI so the version check and
// the write commit atomically; a concurrent writer aborts the transaction
// and surfaces progression.ErrConflict.
func (r *RedisStore) Write(ctx context.Context, userID string, expectedVersion int64, snap *progression.Snapshot) (int64, error) {
	key := makeKey(userID)
	newVersion := expectedVersion + 1

	txn := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Result()
		switch {
		case err == redis.Nil:
			if expectedVersion != 0 {
				return progression.ErrConflict
			}
		case err != nil:
			return fmt.Errorf("failed to read current version: %w", err)
		default:
			var doc document
			if err := json.Unmarshal([]byte(current), &doc); err != nil {
				return fmt.Errorf("failed to unmarshal current document: %w", err)
			}
			if doc.Version != expectedVersion {
				return progression.ErrConflict
			}
		}

		data, err := json.Marshal(document{Version: newVersion, Snapshot: snap})
		if err != nil {
			return fmt.Errorf("failed to marshal progression: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.cfg.TTL)
			return nil
		})
		return err
	}

	err := r.client.Watch(ctx, txn, key)
	if errors.Is(err, redis.TxFailedErr) {
		// The watched key changed between read and commit.
		return 0, progression.ErrConflict
	}
	if err != nil {
		if errors.Is(err, progression.ErrConflict) {
			return 0, progression.ErrConflict
		}
		logrus.Errorf("failed to write progression for user %s: %v", userID, err)
		return 0, fmt.Errorf("failed to write progression: %w", err)
	}

	logrus.Debugf("wrote progression for user %s at version %d", userID, newVersion)
	return newVersion, nil
}

// Ping verifies the Redis connection, for health checks.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
