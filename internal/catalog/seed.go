package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/pageturn/storefront/internal/domain"
)

// bookSeed is the compact form of a default catalog entry.
type bookSeed struct {
	id, title, author, category string
	price, discount             int64 // discount 0 means none
	stock                       int
	active                      bool
	description                 string
}

// DefaultCategories is the compiled-in category list.
var DefaultCategories = []domain.Category{
	{ID: "cat-fiction", Name: "Fiction"},
	{ID: "cat-scifi", Name: "Science Fiction"},
	{ID: "cat-mystery", Name: "Mystery & Thriller"},
	{ID: "cat-history", Name: "History"},
	{ID: "cat-children", Name: "Children"},
}

var defaultBooks = []bookSeed{
	{"bk001", "Dune", "Frank Herbert", "cat-scifi", 65, 55, 120, true,
		"A desert planet, a noble house and the spice that holds an empire together."},
	{"bk002", "One Hundred Years of Solitude", "Gabriel García Márquez", "cat-fiction", 70, 60, 45, true,
		"Seven generations of the Buendía family in the town of Macondo."},
	{"bk003", "The Hound of the Baskervilles", "Arthur Conan Doyle", "cat-mystery", 40, 0, 80, true,
		"Sherlock Holmes investigates a legendary hound on Dartmoor."},
	{"bk004", "The Left Hand of Darkness", "Ursula K. Le Guin", "cat-scifi", 58, 0, 32, true,
		"An envoy on a planet whose people have no fixed sex."},
	{"bk005", "SPQR", "Mary Beard", "cat-history", 85, 72, 18, true,
		"A history of ancient Rome from its founding myths to 212 AD."},
	{"bk006", "The Little Prince", "Antoine de Saint-Exupéry", "cat-children", 35, 0, 150, true,
		"A pilot stranded in the desert meets a prince from a tiny asteroid."},
	{"bk007", "Gone Girl", "Gillian Flynn", "cat-mystery", 52, 45, 0, true,
		"A marriage unravels after a wife disappears on her anniversary."},
	{"bk008", "The Silk Roads", "Peter Frankopan", "cat-history", 90, 0, 12, false,
		"World history retold from the trade routes between East and West."},
}

// DefaultSnapshot returns a fresh copy of the compiled-in catalog with no orders.
func DefaultSnapshot() *domain.Snapshot {
	snap := &domain.Snapshot{
		Books:      make([]domain.Book, 0, len(defaultBooks)),
		Categories: make([]domain.Category, len(DefaultCategories)),
		Orders:     []domain.Order{},

		RetiredBookIDs: []string{},
	}
	copy(snap.Categories, DefaultCategories)

	for _, s := range defaultBooks {
		b := domain.Book{
			ID:          s.id,
			Title:       s.title,
			Author:      s.author,
			Category:    s.category,
			Price:       decimal.NewFromInt(s.price),
			Stock:       s.stock,
			ImageRef:    "/images/books/" + s.id + ".jpg",
			Description: s.description,
			IsActive:    s.active,
		}
		if s.discount > 0 {
			b.DiscountPrice = decimal.NewNullDecimal(decimal.NewFromInt(s.discount))
		}
		snap.Books = append(snap.Books, b)
	}
	return snap
}
