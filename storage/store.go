// Package storage is the persistence bridge: a key-value blob store with
// get/set/string-serialize semantics, plus the credential and game-state
// stores layered on top of it. Two implementations are provided: a local file
// store for the default single-device setup and a Redis store for hosts that
// already run one.
package storage

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned when a key has never been set (or was deleted).
var ErrKeyNotFound = errors.New("key not found in store")

// KeyValueStore is the durable local storage collaborator.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
