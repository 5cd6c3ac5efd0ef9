// Package search keeps a full-text index over the active storefront books.
// The index is a derived read model: it is rebuilt from the catalog store
// whenever the store signals a change and is never written to directly.
package search

import (
	"github.com/pageturn/storefront/internal/domain"
)

// BookDocument is the indexed form of a book. Text fields are folded before
// indexing; display fields keep their original spelling.
type BookDocument struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
	Category    string `json:"category"`

	DisplayTitle  string `json:"display_title"`
	DisplayAuthor string `json:"display_author"`
}

// NewBookDocument builds the index document for b.
func NewBookDocument(b domain.Book) *BookDocument {
	return &BookDocument{
		ID:            b.ID,
		Title:         Fold(b.Title),
		Author:        Fold(b.Author),
		Description:   Fold(b.Description),
		Category:      b.Category,
		DisplayTitle:  b.Title,
		DisplayAuthor: b.Author,
	}
}

// ToMap converts the document to a map whose keys match the index mapping.
func (d *BookDocument) ToMap() map[string]any {
	return map[string]any{
		"id":             d.ID,
		"title":          d.Title,
		"author":         d.Author,
		"description":    d.Description,
		"category":       d.Category,
		"display_title":  d.DisplayTitle,
		"display_author": d.DisplayAuthor,
	}
}
