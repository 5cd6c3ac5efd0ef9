package catalog

import (
	"context"
	"log/slog"

	"github.com/pageturn/storefront/internal/domain"
	domainerrors "github.com/pageturn/storefront/internal/errors"
	"github.com/pageturn/storefront/internal/id"
)

// AddOrder records draft as a new pending order at the head of the order list.
// Stock is left untouched; see PlaceOrder.
func (s *Store) AddOrder(ctx context.Context, draft domain.OrderDraft) (*domain.Order, error) {
	order, err := s.newOrder(draft)
	if err != nil {
		return nil, err
	}

	_, err = s.Update(ctx, func(snap *domain.Snapshot) error {
		snap.Orders = append([]domain.Order{order.Clone()}, snap.Orders...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order added", slog.String("order_id", order.ID), slog.String("total", order.Total.String()))
	return order, nil
}

// PlaceOrder records draft and takes the ordered quantities out of stock in a
// single write. If any book is gone or short on stock nothing is written.
func (s *Store) PlaceOrder(ctx context.Context, draft domain.OrderDraft) (*domain.Order, error) {
	order, err := s.newOrder(draft)
	if err != nil {
		return nil, err
	}

	_, err = s.Update(ctx, func(snap *domain.Snapshot) error {
		for _, item := range order.Items {
			idx := snap.BookIndex(item.ID)
			if idx < 0 {
				return domainerrors.NotFoundf("book %s is no longer in the catalog", item.ID)
			}
			book := &snap.Books[idx]
			if book.Stock < item.Quantity {
				return domainerrors.Conflictf("only %d of %q left, %d requested",
					book.Stock, book.Title, item.Quantity)
			}
			book.Stock -= item.Quantity
		}
		snap.Orders = append([]domain.Order{order.Clone()}, snap.Orders...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order placed",
		slog.String("order_id", order.ID),
		slog.Int("lines", len(order.Items)),
		slog.String("total", order.Total.String()))
	return order, nil
}

// UpdateOrderStatus sets the status of the order with orderID. Any valid
// status may follow any other; the admin decides.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	if !status.Valid() {
		return domainerrors.Validationf("unknown order status %q", status)
	}
	_, err := s.Update(ctx, func(snap *domain.Snapshot) error {
		idx := snap.OrderIndex(orderID)
		if idx < 0 {
			return domainerrors.NotFoundf("order %s not found", orderID)
		}
		snap.Orders[idx].Status = status
		return nil
	})
	return err
}

func (s *Store) newOrder(draft domain.OrderDraft) (*domain.Order, error) {
	if err := s.validator.Validate(draft); err != nil {
		return nil, err
	}

	now := s.now()
	orderID, err := id.Order(now)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate order id")
	}

	items := domain.CloneLines(draft.Items)
	return &domain.Order{
		ID:       orderID,
		Customer: draft.Customer,
		Address:  draft.Address,
		Items:    items,
		Total:    domain.LinesTotal(items),
		Status:   domain.OrderPending,
		Date:     now,
	}, nil
}
