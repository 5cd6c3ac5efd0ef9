package domain

import "slices"

// Snapshot is the full persisted catalog state. Every save replaces the
// previous snapshot as a whole.
type Snapshot struct {
	Books      []Book     `json:"books"`
	Categories []Category `json:"categories"`
	Orders     []Order    `json:"orders"`
	// RetiredBookIDs lists the ids of deleted books. They are never handed
	// out again.
	RetiredBookIDs []string `json:"retiredBookIds"`
}

// Clone deep-copies the snapshot so callers can mutate the copy freely.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Books:      make([]Book, len(s.Books)),
		Categories: make([]Category, len(s.Categories)),
		Orders:     make([]Order, len(s.Orders)),

		RetiredBookIDs: make([]string, len(s.RetiredBookIDs)),
	}
	copy(out.Books, s.Books)
	copy(out.RetiredBookIDs, s.RetiredBookIDs)
	copy(out.Categories, s.Categories)
	for i, o := range s.Orders {
		out.Orders[i] = o.Clone()
	}
	return out
}

// Normalize replaces nil slices with empty ones so the JSON form always
// carries arrays.
func (s *Snapshot) Normalize() {
	if s.Books == nil {
		s.Books = []Book{}
	}
	if s.Categories == nil {
		s.Categories = []Category{}
	}
	if s.Orders == nil {
		s.Orders = []Order{}
	}
	if s.RetiredBookIDs == nil {
		s.RetiredBookIDs = []string{}
	}
}

// BookIDRetired reports whether id belonged to a deleted book.
func (s *Snapshot) BookIDRetired(id string) bool {
	return slices.Contains(s.RetiredBookIDs, id)
}

// RetireBookID records id as used for good.
func (s *Snapshot) RetireBookID(id string) {
	if !s.BookIDRetired(id) {
		s.RetiredBookIDs = append(s.RetiredBookIDs, id)
	}
}

// BookIndex returns the position of the book with id, or -1.
func (s *Snapshot) BookIndex(id string) int {
	for i := range s.Books {
		if s.Books[i].ID == id {
			return i
		}
	}
	return -1
}

// OrderIndex returns the position of the order with id, or -1.
func (s *Snapshot) OrderIndex(id string) int {
	for i := range s.Orders {
		if s.Orders[i].ID == id {
			return i
		}
	}
	return -1
}
