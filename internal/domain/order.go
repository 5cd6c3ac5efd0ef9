package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the administrative state of an order.
type OrderStatus string

// Order statuses. Orders start pending; only administrative action changes them.
const (
	OrderPending   OrderStatus = "pending"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	default:
		return false
	}
}

// Order is a submitted checkout as seen by the admin views.
type Order struct {
	ID       string          `json:"id"`
	Customer string          `json:"customer"`
	Address  string          `json:"address"`
	Items    []CartLine      `json:"items"`
	Total    decimal.Decimal `json:"total"`
	Status   OrderStatus     `json:"status"`
	Date     time.Time       `json:"date"`
}

// OrderDraft is the caller-supplied part of an order. The store assigns id,
// status and date, and derives the total from the items.
type OrderDraft struct {
	Customer string     `json:"customer" validate:"required"`
	Address  string     `json:"address" validate:"required"`
	Items    []CartLine `json:"items" validate:"required,min=1,dive"`
}

// Clone deep-copies the order.
func (o Order) Clone() Order {
	o.Items = CloneLines(o.Items)
	return o
}
