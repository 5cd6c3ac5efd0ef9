package di

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageturn/storefront/internal/cart"
	"github.com/pageturn/storefront/internal/catalog"
	"github.com/pageturn/storefront/internal/config"
	"github.com/pageturn/storefront/internal/di/providers"
	"github.com/pageturn/storefront/internal/domain"
	"github.com/pageturn/storefront/internal/logger"
	"github.com/pageturn/storefront/internal/search"
	"github.com/pageturn/storefront/internal/service"
)

func testConfig(backend, path string) *config.Config {
	return &config.Config{
		App:     config.AppConfig{Environment: "development"},
		Logger:  config.LoggerConfig{Level: "error"},
		Storage: config.StorageConfig{Backend: backend, Path: path, Namespace: "test"},
		Catalog: config.CatalogConfig{Key: "catalog", CategoryPolicy: config.CategoriesSeed},
		Cart:    config.CartConfig{Key: "cart"},
	}
}

func TestContainer_MemoryBackend(t *testing.T) {
	injector := NewContainer(testConfig(config.BackendMemory, ""), io.Discard)
	t.Cleanup(func() { injector.Shutdown() })

	require.NoError(t, Bootstrap(injector))
	ctx := context.Background()

	store := do.MustInvoke[*catalog.Store](injector)
	books, err := store.ActiveBooks(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, books)

	// One cart per container.
	assert.Same(t, do.MustInvoke[*cart.Cart](injector), do.MustInvoke[*cart.Cart](injector))

	handle := do.MustInvoke[*providers.SearchIndexHandle](injector)
	res, err := handle.Search(ctx, search.Query{Text: "dune"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Hits)
	assert.Equal(t, "bk001", res.Hits[0].ID)
}

func TestContainer_SharesOneSlogLogger(t *testing.T) {
	injector := NewContainer(testConfig(config.BackendMemory, ""), io.Discard)
	t.Cleanup(func() { injector.Shutdown() })

	require.NoError(t, Bootstrap(injector))

	log := do.MustInvoke[*logger.Logger](injector)
	assert.Same(t, log.Logger, do.MustInvoke[*slog.Logger](injector))
}

func TestContainer_CheckoutFlow(t *testing.T) {
	injector := NewContainer(testConfig(config.BackendMemory, ""), io.Discard)
	t.Cleanup(func() { injector.Shutdown() })
	require.NoError(t, Bootstrap(injector))
	ctx := context.Background()

	store := do.MustInvoke[*catalog.Store](injector)
	c := do.MustInvoke[*cart.Cart](injector)
	checkout := do.MustInvoke[*service.CheckoutService](injector)
	index := do.MustInvoke[*providers.SearchIndexHandle](injector)

	book, err := store.Book(ctx, "bk005")
	require.NoError(t, err)
	require.NoError(t, c.AddItem(ctx, *book))

	_, err = checkout.Checkout(ctx, service.CheckoutRequest{Customer: "Ada", Address: "1 Main St"})
	require.NoError(t, err)

	after, err := store.Book(ctx, "bk005")
	require.NoError(t, err)
	assert.Equal(t, book.Stock-1, after.Stock)

	// Deactivating through the store reaches the index via the notifier.
	inactive := false
	_, err = store.PatchBook(ctx, "bk005", domain.BookPatch{IsActive: &inactive})
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		res, err := index.Search(ctx, search.Query{Text: "spqr"})
		return err == nil && len(res.Hits) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestContainer_DiskBackendsPersist(t *testing.T) {
	for _, backend := range []string{config.BackendBadger, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			dir := t.TempDir()
			ctx := context.Background()

			first := NewContainer(testConfig(backend, dir), io.Discard)
			require.NoError(t, Bootstrap(first))
			require.NoError(t, do.MustInvoke[*catalog.Store](first).DeleteBook(ctx, "bk003"))
			book, err := do.MustInvoke[*catalog.Store](first).Book(ctx, "bk001")
			require.NoError(t, err)
			require.NoError(t, do.MustInvoke[*cart.Cart](first).AddItem(ctx, *book))
			first.Shutdown()

			second := NewContainer(testConfig(backend, dir), io.Discard)
			t.Cleanup(func() { second.Shutdown() })
			require.NoError(t, Bootstrap(second))

			_, err = do.MustInvoke[*catalog.Store](second).Book(ctx, "bk003")
			assert.Error(t, err)
			assert.Equal(t, 1, do.MustInvoke[*cart.Cart](second).Len())
		})
	}
}

func TestBootstrap_BadBackend(t *testing.T) {
	injector := NewContainer(testConfig("redis", ""), io.Discard)
	t.Cleanup(func() { injector.Shutdown() })

	assert.Error(t, Bootstrap(injector))
}
