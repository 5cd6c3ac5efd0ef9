// Package service orchestrates the storefront operations that span the
// catalog store and the cart.
package service

import (
	"context"
	"log/slog"

	"github.com/pageturn/storefront/internal/cart"
	"github.com/pageturn/storefront/internal/domain"
	domainerrors "github.com/pageturn/storefront/internal/errors"
	"github.com/pageturn/storefront/internal/logger"
)

// OrderPlacer records an order and takes its items out of stock.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, draft domain.OrderDraft) (*domain.Order, error)
}

// CheckoutRequest carries the buyer details collected at checkout.
type CheckoutRequest struct {
	Customer string `json:"customer"`
	Address  string `json:"address"`
}

// CheckoutService turns the session cart into an order.
type CheckoutService struct {
	orders OrderPlacer
	cart   *cart.Cart
	logger *logger.Logger
}

// NewCheckoutService creates a new checkout service. A nil logger discards output.
func NewCheckoutService(orders OrderPlacer, c *cart.Cart, log *logger.Logger) *CheckoutService {
	if log == nil {
		log = logger.Discard()
	}
	return &CheckoutService{
		orders: orders,
		cart:   c,
		logger: log,
	}
}

// Checkout places an order for everything in the cart and takes the ordered
// copies out of it.
//
// The order is priced from the cart lines, so buyers pay what the cart showed
// them even if the catalog price changed since. If the order is placed but the
// cart cannot be cleared, the order is returned together with the error.
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (*domain.Order, error) {
	lines := s.cart.Lines()
	if len(lines) == 0 {
		return nil, domainerrors.Validation("cart is empty")
	}

	// 1. Place the order and decrement stock in one catalog write.
	order, err := s.orders.PlaceOrder(ctx, domain.OrderDraft{
		Customer: req.Customer,
		Address:  req.Address,
		Items:    lines,
	})
	if err != nil {
		return nil, err
	}

	// 2. Remove what was ordered. Items added meanwhile stay in the cart.
	if err := s.cart.RemoveOrdered(ctx, lines); err != nil {
		s.logger.WithError(err).Error("order placed but cart not cleared",
			slog.String("order_id", order.ID))
		return order, err
	}

	s.logger.Info("checkout complete",
		slog.String("order_id", order.ID),
		slog.String("total", order.Total.String()))
	return order, nil
}
