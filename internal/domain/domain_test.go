package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBook(id string, price int64, discount *int64) Book {
	b := Book{
		ID:       id,
		Title:    "Book " + id,
		Author:   "Author",
		Category: "cat-fiction",
		Price:    decimal.NewFromInt(price),
		Stock:    10,
		IsActive: true,
	}
	if discount != nil {
		b.DiscountPrice = decimal.NewNullDecimal(decimal.NewFromInt(*discount))
	}
	return b
}

func ptr[T any](v T) *T { return &v }

func TestBook_UnitPrice(t *testing.T) {
	assert.True(t, decimal.NewFromInt(55).Equal(testBook("a", 55, nil).UnitPrice()))
	assert.True(t, decimal.NewFromInt(60).Equal(testBook("b", 70, ptr[int64](60)).UnitPrice()))
	assert.False(t, testBook("a", 55, nil).HasDiscount())
}

func TestBookPatch_Apply(t *testing.T) {
	orig := testBook("bk001", 65, ptr[int64](55))

	patched := BookPatch{Stock: ptr(119)}.Apply(orig)
	assert.Equal(t, 119, patched.Stock)
	patched.Stock = orig.Stock
	assert.Equal(t, orig, patched, "only stock may change")

	cleared := BookPatch{ClearDiscount: true, DiscountPrice: ptr(decimal.NewFromInt(1))}.Apply(orig)
	assert.False(t, cleared.HasDiscount())

	discounted := BookPatch{DiscountPrice: ptr(decimal.NewFromInt(50))}.Apply(orig)
	assert.True(t, decimal.NewFromInt(50).Equal(discounted.UnitPrice()))
}

func TestCartLine_JSONFlattensBook(t *testing.T) {
	line := CartLine{Book: testBook("bk001", 65, ptr[int64](55)), Quantity: 2}

	data, err := json.Marshal(line)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "bk001", raw["id"])
	assert.InDelta(t, 2, raw["quantity"], 0)

	var back CartLine
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, line.ID, back.ID)
	assert.True(t, line.Price.Equal(back.Price))
	assert.True(t, back.DiscountPrice.Valid)
	assert.Equal(t, 2, back.Quantity)
}

func TestLinesTotal(t *testing.T) {
	lines := []CartLine{
		{Book: testBook("a", 55, nil), Quantity: 2},
		{Book: testBook("b", 70, ptr[int64](60)), Quantity: 1},
	}
	assert.True(t, decimal.NewFromInt(170).Equal(LinesTotal(lines)))
	assert.True(t, decimal.Zero.Equal(LinesTotal(nil)))
}

func TestOrderStatus_Valid(t *testing.T) {
	for _, s := range []OrderStatus{OrderPending, OrderShipped, OrderDelivered, OrderCancelled} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, OrderStatus("lost").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestSnapshot_CloneIsDeep(t *testing.T) {
	snap := &Snapshot{
		Books:      []Book{testBook("a", 10, nil)},
		Categories: []Category{{ID: "c", Name: "C"}},
		Orders: []Order{{
			ID:     "o1",
			Items:  []CartLine{NewCartLine(testBook("a", 10, nil))},
			Status: OrderPending,
			Date:   time.Now(),
		}},
	}

	clone := snap.Clone()
	clone.Books[0].Stock = 0
	clone.Orders[0].Items[0].Quantity = 5
	clone.Categories[0].Name = "changed"

	assert.Equal(t, 10, snap.Books[0].Stock)
	assert.Equal(t, 1, snap.Orders[0].Items[0].Quantity)
	assert.Equal(t, "C", snap.Categories[0].Name)
}

func TestSnapshot_NormalizeAndIndex(t *testing.T) {
	var snap Snapshot
	snap.Normalize()

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.JSONEq(t, `{"books":[],"categories":[],"orders":[],"retiredBookIds":[]}`, string(data))

	snap.Books = append(snap.Books, testBook("x", 1, nil))
	assert.Equal(t, 0, snap.BookIndex("x"))
	assert.Equal(t, -1, snap.BookIndex("y"))
	assert.Equal(t, -1, snap.OrderIndex("o"))
}

func TestSnapshot_RetireBookID(t *testing.T) {
	var snap Snapshot
	assert.False(t, snap.BookIDRetired("bk001"))

	snap.RetireBookID("bk001")
	snap.RetireBookID("bk001")
	assert.True(t, snap.BookIDRetired("bk001"))
	assert.Equal(t, []string{"bk001"}, snap.RetiredBookIDs)

	clone := snap.Clone()
	clone.RetireBookID("bk002")
	assert.False(t, snap.BookIDRetired("bk002"))
}

func TestBook_PricesMarshalAsNumbers(t *testing.T) {
	discount := int64(55)
	data, err := json.Marshal(testBook("bk001", 65, &discount))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"price":65`)
	assert.Contains(t, string(data), `"discountPrice":55`)

	var back Book
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, decimal.NewFromInt(65).Equal(back.Price))

	// Blobs written with quoted prices still load.
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","price":"12.5"}`), &back))
	assert.True(t, decimal.RequireFromString("12.5").Equal(back.Price))

	data, err = json.Marshal(testBook("bk002", 40, nil))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"discountPrice":null`)
}
