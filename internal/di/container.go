// Package di provides dependency injection configuration for the storefront data layer.
package di

import (
	"io"

	"github.com/samber/do/v2"

	"github.com/pageturn/storefront/internal/cart"
	"github.com/pageturn/storefront/internal/catalog"
	"github.com/pageturn/storefront/internal/config"
	"github.com/pageturn/storefront/internal/di/providers"
	"github.com/pageturn/storefront/internal/logger"
	"github.com/pageturn/storefront/internal/notify"
	"github.com/pageturn/storefront/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
// Logs go to logOutput, or stdout when it is nil.
func NewContainer(cfg *config.Config, logOutput io.Writer) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, providers.LogOutput{Writer: logOutput})
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStorage)

	// Stores
	do.Provide(injector, providers.ProvideNotifier)
	do.Provide(injector, providers.ProvideCatalog)
	do.Provide(injector, providers.ProvideCart)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)

	// Business services
	do.Provide(injector, providers.ProvideCheckoutService)

	return injector
}

// Bootstrap initializes the core services so that configuration and storage
// errors surface at startup. The search index is left to its first use.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StorageHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*notify.Notifier](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*catalog.Store](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*cart.Cart](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.CheckoutService](injector); err != nil {
		return err
	}
	return nil
}
