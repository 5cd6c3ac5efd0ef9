package providers

import (
	"context"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/pageturn/storefront/internal/catalog"
	"github.com/pageturn/storefront/internal/logger"
	"github.com/pageturn/storefront/internal/notify"
	"github.com/pageturn/storefront/internal/search"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the storefront search index, filled and
// following catalog changes.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)
	store := do.MustInvoke[*catalog.Store](i)
	notifier := do.MustInvoke[*notify.Notifier](i)

	index, err := search.New(store, search.Options{Logger: do.MustInvoke[*slog.Logger](i)})
	if err != nil {
		return nil, err
	}

	// The index stops following changes on Shutdown, not on this context.
	if err := index.Start(context.Background(), notifier); err != nil {
		_ = index.Close()
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{Index: index}, nil
}
