package providers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/pageturn/storefront/internal/config"
	"github.com/pageturn/storefront/internal/kv"
	"github.com/pageturn/storefront/internal/kv/badger"
	"github.com/pageturn/storefront/internal/kv/sqlite"
	"github.com/pageturn/storefront/internal/logger"
)

// StorageHandle is the namespaced storage every store writes through, plus
// the backend it must close.
type StorageHandle struct {
	kv.Storage
	backend io.Closer
}

// Shutdown implements do.Shutdownable.
func (h *StorageHandle) Shutdown() error {
	return h.backend.Close()
}

// ProvideStorage opens the configured key-value backend.
func ProvideStorage(i do.Injector) (*StorageHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	var backend kv.Storage
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		backend = kv.NewMemory()

	case config.BackendBadger:
		dir := filepath.Join(cfg.Storage.Path, "badger")
		db, err := badger.Open(badger.Options{Path: dir, Logger: log.Logger})
		if err != nil {
			return nil, fmt.Errorf("open badger storage: %w", err)
		}
		backend = db

	case config.BackendSQLite:
		if err := os.MkdirAll(cfg.Storage.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
		dbPath := filepath.Join(cfg.Storage.Path, "storefront.db")
		db, err := sqlite.Open(dbPath, log.Logger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		backend = db

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	log.Info("Storage initialized",
		"backend", cfg.Storage.Backend,
		"path", cfg.Storage.Path,
		"namespace", cfg.Storage.Namespace,
	)

	return &StorageHandle{
		Storage: kv.Scoped(backend, cfg.Storage.Namespace),
		backend: backend,
	}, nil
}
