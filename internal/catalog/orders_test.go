package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageturn/storefront/internal/domain"
	domainerrors "github.com/pageturn/storefront/internal/errors"
)

func draftFor(t *testing.T, env *testEnv, quantities map[string]int) domain.OrderDraft {
	t.Helper()

	draft := domain.OrderDraft{Customer: "Ada Lovelace", Address: "12 St James's Square"}
	for _, bookID := range []string{"bk001", "bk002", "bk003", "bk007"} {
		qty, ok := quantities[bookID]
		if !ok {
			continue
		}
		book, err := env.store.Book(context.Background(), bookID)
		require.NoError(t, err)
		line := domain.NewCartLine(*book)
		line.Quantity = qty
		draft.Items = append(draft.Items, line)
	}
	return draft
}

func TestAddOrder(t *testing.T) {
	env := setupTestStore(t)
	ctx := context.Background()

	first, err := env.store.AddOrder(ctx, draftFor(t, env, map[string]int{"bk001": 2, "bk003": 1}))
	require.NoError(t, err)

	assert.Regexp(t, `^ord-\d+-[0-9A-Z]{6}$`, first.ID)
	assert.Equal(t, domain.OrderPending, first.Status)
	assert.True(t, fixedNow.Equal(first.Date))
	// 2 × 55 (discounted) + 1 × 40
	assert.True(t, decimal.NewFromInt(150).Equal(first.Total), first.Total.String())

	second, err := env.store.AddOrder(ctx, draftFor(t, env, map[string]int{"bk002": 1}))
	require.NoError(t, err)

	snap, err := env.store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Orders, 2)
	assert.Equal(t, second.ID, snap.Orders[0].ID, "newest order first")
	assert.Equal(t, first.ID, snap.Orders[1].ID)
	assert.True(t, fixedNow.Equal(snap.Orders[1].Date))

	// AddOrder records only; stock is unchanged.
	book, err := env.store.Book(ctx, "bk001")
	require.NoError(t, err)
	assert.Equal(t, 120, book.Stock)
}

func TestAddOrder_InvalidDraft(t *testing.T) {
	env := setupTestStore(t)

	_, err := env.store.AddOrder(context.Background(), domain.OrderDraft{Customer: "Ada"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestPlaceOrder_DecrementsStock(t *testing.T) {
	env := setupTestStore(t)
	ctx := context.Background()

	var signals int
	env.notifier.Subscribe(func() { signals++ })

	order, err := env.store.PlaceOrder(ctx, draftFor(t, env, map[string]int{"bk001": 1, "bk002": 3}))
	require.NoError(t, err)
	assert.Equal(t, 1, signals, "one write, one signal")

	snap, err := env.store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 119, snap.Books[snap.BookIndex("bk001")].Stock)
	assert.Equal(t, 42, snap.Books[snap.BookIndex("bk002")].Stock)
	assert.Equal(t, order.ID, snap.Orders[0].ID)
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	env := setupTestStore(t)
	ctx := context.Background()

	_, err := env.store.PlaceOrder(ctx, draftFor(t, env, map[string]int{"bk001": 1, "bk007": 1}))
	assert.ErrorIs(t, err, domainerrors.ErrConflict)

	snap, err := env.store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 120, snap.Books[snap.BookIndex("bk001")].Stock, "nothing written")
	assert.Empty(t, snap.Orders)
}

func TestPlaceOrder_BookRemoved(t *testing.T) {
	env := setupTestStore(t)
	ctx := context.Background()

	draft := draftFor(t, env, map[string]int{"bk003": 1})
	require.NoError(t, env.store.DeleteBook(ctx, "bk003"))

	_, err := env.store.PlaceOrder(ctx, draft)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestUpdateOrderStatus(t *testing.T) {
	env := setupTestStore(t)
	ctx := context.Background()

	order, err := env.store.AddOrder(ctx, draftFor(t, env, map[string]int{"bk001": 1}))
	require.NoError(t, err)

	require.NoError(t, env.store.UpdateOrderStatus(ctx, order.ID, domain.OrderShipped))
	// Any valid status may follow any other.
	require.NoError(t, env.store.UpdateOrderStatus(ctx, order.ID, domain.OrderPending))

	snap, err := env.store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPending, snap.Orders[0].Status)

	err = env.store.UpdateOrderStatus(ctx, order.ID, domain.OrderStatus("lost"))
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	err = env.store.UpdateOrderStatus(ctx, "ord-missing", domain.OrderDelivered)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
