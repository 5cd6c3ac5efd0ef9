package providers

import (
	"github.com/samber/do/v2"

	"github.com/pageturn/storefront/internal/cart"
	"github.com/pageturn/storefront/internal/catalog"
	"github.com/pageturn/storefront/internal/logger"
	"github.com/pageturn/storefront/internal/service"
)

// ProvideCheckoutService provides the checkout service.
func ProvideCheckoutService(i do.Injector) (*service.CheckoutService, error) {
	store := do.MustInvoke[*catalog.Store](i)
	c := do.MustInvoke[*cart.Cart](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCheckoutService(store, c, log), nil
}
