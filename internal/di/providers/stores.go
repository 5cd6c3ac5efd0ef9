package providers

import (
	"context"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/pageturn/storefront/internal/cart"
	"github.com/pageturn/storefront/internal/catalog"
	"github.com/pageturn/storefront/internal/config"
	"github.com/pageturn/storefront/internal/logger"
	"github.com/pageturn/storefront/internal/notify"
)

// ProvideNotifier provides the catalog change notifier.
func ProvideNotifier(i do.Injector) (*notify.Notifier, error) {
	return notify.New(do.MustInvoke[*slog.Logger](i)), nil
}

// ProvideCatalog provides the catalog store and makes sure a snapshot exists.
func ProvideCatalog(i do.Injector) (*catalog.Store, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storage := do.MustInvoke[*StorageHandle](i)
	notifier := do.MustInvoke[*notify.Notifier](i)

	store := catalog.New(storage, notifier, catalog.Options{
		Key:            cfg.Catalog.Key,
		CategoryPolicy: catalog.CategoryPolicy(cfg.Catalog.CategoryPolicy),
		Logger:         do.MustInvoke[*slog.Logger](i),
	})

	// First load seeds an empty medium.
	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()
	snap, err := store.Load(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to load catalog", "key", cfg.Catalog.Key)
		return nil, err
	}

	log.Info("Catalog ready",
		"key", cfg.Catalog.Key,
		"books", len(snap.Books),
		"categories", len(snap.Categories),
		"orders", len(snap.Orders),
	)

	return store, nil
}

// ProvideCart provides the session cart. There is one per container.
func ProvideCart(i do.Injector) (*cart.Cart, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storage := do.MustInvoke[*StorageHandle](i)

	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()
	c := cart.Open(ctx, storage, cart.Options{Key: cfg.Cart.Key, Logger: do.MustInvoke[*slog.Logger](i)})

	log.WithField("key", cfg.Cart.Key).Info("Cart ready", "lines", c.Len())

	return c, nil
}
