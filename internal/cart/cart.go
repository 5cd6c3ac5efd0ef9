// Package cart holds the session shopping cart. Lines are copies of catalog
// books taken at add time, so later price edits never reach a cart.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/pageturn/storefront/internal/domain"
	domainerrors "github.com/pageturn/storefront/internal/errors"
	"github.com/pageturn/storefront/internal/kv"
	"github.com/pageturn/storefront/internal/logger"
)

// DefaultKey is the storage key of the persisted line list.
const DefaultKey = "cart"

// Options configures a Cart.
type Options struct {
	Key    string
	Logger *slog.Logger
}

// Cart is the aggregate. One instance is shared by everything in a session.
type Cart struct {
	storage kv.Storage
	key     string
	logger  *slog.Logger

	mu    sync.RWMutex
	lines []domain.CartLine
}

// Open reads the persisted cart once. A missing, unreadable or corrupted
// blob yields an empty cart; Open never fails.
func Open(ctx context.Context, storage kv.Storage, opts Options) *Cart {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	c := &Cart{
		storage: storage,
		key:     opts.Key,
		logger:  logger.OrDiscard(opts.Logger),
		lines:   []domain.CartLine{},
	}

	data, err := storage.Get(ctx, c.key)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		return c
	case err != nil:
		c.logger.Warn("cart unreadable, starting empty",
			slog.String("key", c.key),
			slog.String("error", err.Error()))
		return c
	}

	lines, dropped, err := decodeLines(data)
	if err != nil {
		c.logger.Warn("cart corrupted, starting empty",
			slog.String("key", c.key),
			slog.Int("bytes", len(data)),
			slog.String("error", err.Error()))
		return c
	}
	if dropped > 0 {
		c.logger.Warn("cart lines dropped on restore",
			slog.String("key", c.key),
			slog.Int("dropped", dropped))
	}
	c.lines = lines
	c.logger.Debug("cart restored", slog.String("key", c.key), slog.Int("lines", len(lines)))
	return c
}

// decodeLines parses a persisted line list. Lines the cart could never have
// written are dropped individually.
func decodeLines(data []byte) (lines []domain.CartLine, dropped int, err error) {
	var raw []domain.CartLine
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, err
	}
	lines = make([]domain.CartLine, 0, len(raw))
	for _, l := range raw {
		if l.ID == "" || l.Quantity < 1 || indexOf(lines, l.ID) >= 0 {
			dropped++
			continue
		}
		lines = append(lines, l)
	}
	return lines, dropped, nil
}

// AddItem appends a copy of book with quantity 1, or increments the line
// that already holds book.ID.
func (c *Cart) AddItem(ctx context.Context, book domain.Book) error {
	if book.ID == "" {
		return domainerrors.Validation("book id is required")
	}
	return c.mutate(ctx, func(lines []domain.CartLine) ([]domain.CartLine, error) {
		if i := indexOf(lines, book.ID); i >= 0 {
			lines[i].Quantity++
			return lines, nil
		}
		return append(lines, domain.NewCartLine(book)), nil
	})
}

// RemoveItem drops the line for bookID.
func (c *Cart) RemoveItem(ctx context.Context, bookID string) error {
	return c.mutate(ctx, func(lines []domain.CartLine) ([]domain.CartLine, error) {
		i := indexOf(lines, bookID)
		if i < 0 {
			return nil, domainerrors.NotFoundf("book %s is not in the cart", bookID)
		}
		return append(lines[:i], lines[i+1:]...), nil
	})
}

// UpdateQuantity sets the quantity of the line for bookID. Quantities below
// one are rejected and leave the line as it was.
func (c *Cart) UpdateQuantity(ctx context.Context, bookID string, quantity int) error {
	if quantity < 1 {
		return domainerrors.Validationf("quantity must be at least 1, got %d", quantity)
	}
	return c.mutate(ctx, func(lines []domain.CartLine) ([]domain.CartLine, error) {
		i := indexOf(lines, bookID)
		if i < 0 {
			return nil, domainerrors.NotFoundf("book %s is not in the cart", bookID)
		}
		lines[i].Quantity = quantity
		return lines, nil
	})
}

// RemoveOrdered takes the quantities in ordered out of the cart. Lines that
// reach zero are removed; copies added after ordered was read stay.
func (c *Cart) RemoveOrdered(ctx context.Context, ordered []domain.CartLine) error {
	return c.mutate(ctx, func(lines []domain.CartLine) ([]domain.CartLine, error) {
		for _, o := range ordered {
			if i := indexOf(lines, o.ID); i >= 0 {
				lines[i].Quantity -= o.Quantity
			}
		}
		kept := lines[:0]
		for _, l := range lines {
			if l.Quantity >= 1 {
				kept = append(kept, l)
			}
		}
		return kept, nil
	})
}

// Clear empties the cart.
func (c *Cart) Clear(ctx context.Context) error {
	return c.mutate(ctx, func([]domain.CartLine) ([]domain.CartLine, error) {
		return []domain.CartLine{}, nil
	})
}

// mutate applies fn to a copy of the lines and persists the result. The
// in-memory lines change only once the write succeeded.
func (c *Cart) mutate(ctx context.Context, fn func([]domain.CartLine) ([]domain.CartLine, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fn(domain.CloneLines(c.lines))
	if err != nil {
		return err
	}
	data, err := json.Marshal(next)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "encode cart")
	}
	if err := c.storage.Set(ctx, c.key, data); err != nil {
		c.logger.Error("persist cart", slog.String("key", c.key), slog.String("error", err.Error()))
		return domainerrors.Storage(err, "persist cart")
	}
	c.lines = next
	return nil
}

// Total is Σ unit price × quantity, computed on every call.
func (c *Cart) Total() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return domain.LinesTotal(c.lines)
}

// ItemCount is the number of copies across all lines.
func (c *Cart) ItemCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []domain.CartLine {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return domain.CloneLines(c.lines)
}

// Line returns the line for bookID.
func (c *Cart) Line(bookID string) (domain.CartLine, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := indexOf(c.lines, bookID); i >= 0 {
		return c.lines[i], true
	}
	return domain.CartLine{}, false
}

// Len is the number of distinct books in the cart.
func (c *Cart) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lines)
}

func indexOf(lines []domain.CartLine, bookID string) int {
	for i := range lines {
		if lines[i].ID == bookID {
			return i
		}
	}
	return -1
}
