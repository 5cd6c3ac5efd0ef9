package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageturn/storefront/internal/cart"
	"github.com/pageturn/storefront/internal/catalog"
	"github.com/pageturn/storefront/internal/domain"
	domainerrors "github.com/pageturn/storefront/internal/errors"
	"github.com/pageturn/storefront/internal/kv"
	"github.com/pageturn/storefront/internal/kv/kvtest"
	"github.com/pageturn/storefront/internal/notify"
)

type checkoutEnv struct {
	service *CheckoutService
	catalog *catalog.Store
	cart    *cart.Cart
	storage *kvtest.Faulty
}

// setupCheckoutTest wires a checkout service over shared in-memory storage.
func setupCheckoutTest(t *testing.T) *checkoutEnv {
	t.Helper()

	storage := kvtest.NewFaulty(kv.NewMemory())
	store := catalog.New(storage, notify.New(nil), catalog.Options{})
	c := cart.Open(context.Background(), storage, cart.Options{})

	return &checkoutEnv{
		service: NewCheckoutService(store, c, nil),
		catalog: store,
		cart:    c,
		storage: storage,
	}
}

func addToCart(t *testing.T, env *checkoutEnv, bookID string, times int) {
	t.Helper()
	book, err := env.catalog.Book(context.Background(), bookID)
	require.NoError(t, err)
	for range times {
		require.NoError(t, env.cart.AddItem(context.Background(), *book))
	}
}

func TestCheckout_PurchaseDecrementsStock(t *testing.T) {
	env := setupCheckoutTest(t)
	ctx := context.Background()
	addToCart(t, env, "bk001", 1)

	order, err := env.service.Checkout(ctx, CheckoutRequest{Customer: "Ada", Address: "1 Main St"})
	require.NoError(t, err)
	assert.Equal(t, "55", order.Total.String())
	require.Len(t, order.Items, 1)
	assert.Equal(t, 1, order.Items[0].Quantity)

	book, err := env.catalog.Book(ctx, "bk001")
	require.NoError(t, err)
	assert.Equal(t, 119, book.Stock)
	assert.Equal(t, "Dune", book.Title)

	assert.Zero(t, env.cart.Len())

	snap, err := env.catalog.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Orders, 1)
	assert.Equal(t, order.ID, snap.Orders[0].ID)
}

func TestCheckout_EmptyCart(t *testing.T) {
	env := setupCheckoutTest(t)

	_, err := env.service.Checkout(context.Background(), CheckoutRequest{Customer: "Ada", Address: "1 Main St"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestCheckout_MissingBuyerDetails(t *testing.T) {
	env := setupCheckoutTest(t)
	addToCart(t, env, "bk003", 1)

	_, err := env.service.Checkout(context.Background(), CheckoutRequest{})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
	assert.Equal(t, 1, env.cart.Len(), "cart kept for a retry")
}

func TestCheckout_OutOfStockKeepsCart(t *testing.T) {
	env := setupCheckoutTest(t)
	ctx := context.Background()
	addToCart(t, env, "bk007", 1)

	_, err := env.service.Checkout(ctx, CheckoutRequest{Customer: "Ada", Address: "1 Main St"})
	assert.ErrorIs(t, err, domainerrors.ErrConflict)
	assert.Equal(t, 1, env.cart.Len())

	snap, err := env.catalog.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Orders)
}

func TestCheckout_PricesFromCart(t *testing.T) {
	env := setupCheckoutTest(t)
	ctx := context.Background()
	addToCart(t, env, "bk003", 2)

	price := decimal.NewFromInt(99)
	_, err := env.catalog.PatchBook(ctx, "bk003", domain.BookPatch{Price: &price})
	require.NoError(t, err)

	order, err := env.service.Checkout(ctx, CheckoutRequest{Customer: "Ada", Address: "1 Main St"})
	require.NoError(t, err)
	assert.Equal(t, "80", order.Total.String())
}

func TestCheckout_StorageFailure(t *testing.T) {
	env := setupCheckoutTest(t)
	ctx := context.Background()
	addToCart(t, env, "bk001", 1)

	env.storage.FailWrites(nil)
	_, err := env.service.Checkout(ctx, CheckoutRequest{Customer: "Ada", Address: "1 Main St"})
	assert.ErrorIs(t, err, domainerrors.ErrStorage)
	assert.Equal(t, 1, env.cart.Len())
}

// placerFunc adapts a function to OrderPlacer.
type placerFunc func(ctx context.Context, draft domain.OrderDraft) (*domain.Order, error)

func (f placerFunc) PlaceOrder(ctx context.Context, draft domain.OrderDraft) (*domain.Order, error) {
	return f(ctx, draft)
}

func TestCheckout_KeepsItemsAddedDuringPlacement(t *testing.T) {
	env := setupCheckoutTest(t)
	ctx := context.Background()
	addToCart(t, env, "bk001", 2)

	late, err := env.catalog.Book(ctx, "bk003")
	require.NoError(t, err)
	dune, err := env.catalog.Book(ctx, "bk001")
	require.NoError(t, err)

	placer := placerFunc(func(ctx context.Context, draft domain.OrderDraft) (*domain.Order, error) {
		// Another writer touches the cart while the order is being placed.
		require.NoError(t, env.cart.AddItem(ctx, *late))
		require.NoError(t, env.cart.AddItem(ctx, *dune))
		return env.catalog.PlaceOrder(ctx, draft)
	})
	svc := NewCheckoutService(placer, env.cart, nil)

	order, err := svc.Checkout(ctx, CheckoutRequest{Customer: "Ada", Address: "1 Main St"})
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)

	assert.Equal(t, 2, env.cart.Len())
	line, ok := env.cart.Line("bk003")
	require.True(t, ok)
	assert.Equal(t, 1, line.Quantity)
	line, ok = env.cart.Line("bk001")
	require.True(t, ok)
	assert.Equal(t, 1, line.Quantity, "only the ordered copies leave the cart")
}
