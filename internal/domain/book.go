// Package domain contains the catalog, cart and order value types shared by the data layer.
package domain

import "github.com/shopspring/decimal"

// Prices persist as JSON numbers.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Book is a catalog record. It is owned by the catalog store; every other
// component works on copies.
type Book struct {
	ID            string              `json:"id" validate:"required"`
	Title         string              `json:"title" validate:"required"`
	Author        string              `json:"author"`
	Category      string              `json:"category"`
	Price         decimal.Decimal     `json:"price" validate:"gt=0"`
	DiscountPrice decimal.NullDecimal `json:"discountPrice"`
	Stock         int                 `json:"stock" validate:"gte=0"`
	ImageRef      string              `json:"image"`
	Description   string              `json:"description"`
	IsActive      bool                `json:"isActive"`
}

// HasDiscount reports whether a discount price is set.
func (b Book) HasDiscount() bool {
	return b.DiscountPrice.Valid
}

// UnitPrice is the price a buyer pays for one copy.
func (b Book) UnitPrice() decimal.Decimal {
	if b.DiscountPrice.Valid {
		return b.DiscountPrice.Decimal
	}
	return b.Price
}

// BookPatch overwrites the non-nil fields of a book. ClearDiscount removes
// the discount and takes precedence over DiscountPrice.
type BookPatch struct {
	Title         *string
	Author        *string
	Category      *string
	Price         *decimal.Decimal
	DiscountPrice *decimal.Decimal
	ClearDiscount bool
	Stock         *int
	ImageRef      *string
	Description   *string
	IsActive      *bool
}

// Apply returns b with the patch applied. The id is never touched.
func (p BookPatch) Apply(b Book) Book {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.Category != nil {
		b.Category = *p.Category
	}
	if p.Price != nil {
		b.Price = *p.Price
	}
	switch {
	case p.ClearDiscount:
		b.DiscountPrice = decimal.NullDecimal{}
	case p.DiscountPrice != nil:
		b.DiscountPrice = decimal.NewNullDecimal(*p.DiscountPrice)
	}
	if p.Stock != nil {
		b.Stock = *p.Stock
	}
	if p.ImageRef != nil {
		b.ImageRef = *p.ImageRef
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.IsActive != nil {
		b.IsActive = *p.IsActive
	}
	return b
}

// Category groups books on the storefront.
type Category struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}
