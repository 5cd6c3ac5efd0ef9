// Package kv defines the scoped key-value storage the catalog and cart persist into.
//
// A Storage holds opaque byte blobs under string keys. Writes replace the
// previous value as a whole; there is no partial update.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when a key has never been written or was deleted.
var ErrNotFound = errors.New("kv: key not found")

// ErrClosed is returned by operations on a closed storage.
var ErrClosed = errors.New("kv: storage closed")

// Storage is a durable key-value medium.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Scoped prefixes every key with namespace so several storefronts can share
// one medium without seeing each other's data.
func Scoped(s Storage, namespace string) Storage {
	if namespace == "" {
		return s
	}
	return &scoped{Storage: s, prefix: namespace + ":"}
}

type scoped struct {
	Storage
	prefix string
}

func (s *scoped) Get(ctx context.Context, key string) ([]byte, error) {
	return s.Storage.Get(ctx, s.prefix+key)
}

func (s *scoped) Set(ctx context.Context, key string, value []byte) error {
	return s.Storage.Set(ctx, s.prefix+key, value)
}

func (s *scoped) Delete(ctx context.Context, key string) error {
	return s.Storage.Delete(ctx, s.prefix+key)
}
