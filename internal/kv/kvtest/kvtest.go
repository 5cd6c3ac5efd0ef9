// Package kvtest holds a conformance suite for kv.Storage backends and a
// fault-injecting wrapper used by store tests.
package kvtest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageturn/storefront/internal/kv"
)

// Run exercises the kv.Storage contract against storages built by open.
func Run(t *testing.T, open func(t *testing.T) kv.Storage) {
	t.Helper()

	t.Run("get missing", func(t *testing.T) {
		s := open(t)
		_, err := s.Get(context.Background(), "missing")
		assert.ErrorIs(t, err, kv.ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "catalog", []byte(`{"books":[]}`)))

		v, err := s.Get(ctx, "catalog")
		require.NoError(t, err)
		assert.JSONEq(t, `{"books":[]}`, string(v))
	})

	t.Run("set replaces", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "k", []byte("first-and-longer")))
		require.NoError(t, s.Set(ctx, "k", []byte("second")))

		v, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "second", string(v))
	})

	t.Run("delete", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "k", []byte("v")))
		require.NoError(t, s.Delete(ctx, "k"))

		_, err := s.Get(ctx, "k")
		assert.ErrorIs(t, err, kv.ErrNotFound)

		assert.NoError(t, s.Delete(ctx, "never-set"))
	})

	t.Run("cancelled context", func(t *testing.T) {
		s := open(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, s.Set(ctx, "k", []byte("v")), context.Canceled)
	})
}

// ErrInjected is the default error returned by Faulty when failing.
var ErrInjected = errors.New("kvtest: injected failure")

// Faulty wraps a Storage and fails reads or writes on demand. It stands in
// for a full or disabled storage medium.
type Faulty struct {
	kv.Storage

	mu       sync.Mutex
	failSet  error
	failGet  error
	setCalls int
}

// NewFaulty wraps s.
func NewFaulty(s kv.Storage) *Faulty {
	return &Faulty{Storage: s}
}

// FailWrites makes every Set return err (ErrInjected when err is nil) until
// Heal is called.
func (f *Faulty) FailWrites(err error) {
	if err == nil {
		err = ErrInjected
	}
	f.mu.Lock()
	f.failSet = err
	f.mu.Unlock()
}

// FailReads makes every Get return err (ErrInjected when err is nil).
func (f *Faulty) FailReads(err error) {
	if err == nil {
		err = ErrInjected
	}
	f.mu.Lock()
	f.failGet = err
	f.mu.Unlock()
}

// Heal clears injected failures.
func (f *Faulty) Heal() {
	f.mu.Lock()
	f.failSet, f.failGet = nil, nil
	f.mu.Unlock()
}

// SetCalls reports how many Set calls reached the wrapper.
func (f *Faulty) SetCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.setCalls
}

// Get implements kv.Storage.
func (f *Faulty) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	err := f.failGet
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.Storage.Get(ctx, key)
}

// Set implements kv.Storage.
func (f *Faulty) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	f.setCalls++
	err := f.failSet
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Storage.Set(ctx, key, value)
}
