package storage

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when a key has never been written
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore abstracts the local persistent store backing the fallback
// receipt list. Implementations: file (production default), Redis
// (long-lived agent deployments), in-memory (tests).
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
