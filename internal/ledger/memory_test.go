package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grocerease/grocerease-backend/internal/apperrors"
	"github.com/grocerease/grocerease-backend/internal/models"
)

func seedLedger(t *testing.T) *MemoryLedger {
	t.Helper()
	l := NewMemoryLedger()
	ctx := context.Background()

	require.NoError(t, l.PutShop(ctx, &models.Shop{ID: "shop1", Name: "Shop One", OwnerID: "owner1"}))
	require.NoError(t, l.PutItem(ctx, &models.Item{ID: "a", ShopID: "shop1", Name: "Apple", Price: 10, Stock: 5}))
	require.NoError(t, l.PutItem(ctx, &models.Item{ID: "b", ShopID: "shop1", Name: "Bread", Price: 5, Stock: 1}))
	return l
}

func TestReadItems_AbsentIDsMissing(t *testing.T) {
	l := seedLedger(t)

	snapshot, err := l.ReadItems(context.Background(), []string{"a", "ghost"})
	require.NoError(t, err)

	assert.Len(t, snapshot, 1)
	assert.Contains(t, snapshot, "a")
	assert.NotContains(t, snapshot, "ghost")
}

func TestReadItems_ReturnsCopies(t *testing.T) {
	l := seedLedger(t)
	ctx := context.Background()

	snapshot, err := l.ReadItems(ctx, []string{"a"})
	require.NoError(t, err)
	snapshot["a"].Stock = 999

	fresh, err := l.ReadItems(ctx, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, 5, fresh["a"].Stock)
}

func TestCommit_AppliesWritesAndOrderTogether(t *testing.T) {
	l := seedLedger(t)
	ctx := context.Background()

	order := &models.Order{
		ID:         "order1",
		CustomerID: "cust1",
		ShopID:     "shop1",
		Items:      []models.CartEntry{{ItemID: "a", ShopID: "shop1", Name: "Apple", Price: 10, Quantity: 2}},
		Total:      20,
		CreatedAt:  time.Now(),
	}

	err := l.Commit(ctx, []StockWrite{{ItemID: "a", Expected: 5, New: 3}}, order)
	require.NoError(t, err)

	snapshot, err := l.ReadItems(ctx, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, 3, snapshot["a"].Stock)

	orders, err := l.ShopOrders(ctx, "shop1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "order1", orders[0].ID)
	assert.Equal(t, 20.0, orders[0].Total)
}

func TestCommit_StaleExpectedAbortsWholeBatch(t *testing.T) {
	l := seedLedger(t)
	ctx := context.Background()

	writes := []StockWrite{
		{ItemID: "a", Expected: 5, New: 3},
		{ItemID: "b", Expected: 7, New: 6}, // stale: actual stock is 1
	}
	err := l.Commit(ctx, writes, &models.Order{ID: "order1", ShopID: "shop1", CreatedAt: time.Now()})
	assert.ErrorIs(t, err, apperrors.ErrStockConflict)

	// Nothing was applied, including the valid first write.
	snapshot, err := l.ReadItems(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 5, snapshot["a"].Stock)
	assert.Equal(t, 1, snapshot["b"].Stock)

	orders, err := l.ShopOrders(ctx, "shop1")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCommit_VanishedItemConflicts(t *testing.T) {
	l := seedLedger(t)
	ctx := context.Background()
	require.NoError(t, l.DeleteItem(ctx, "a"))

	err := l.Commit(ctx, []StockWrite{{ItemID: "a", Expected: 5, New: 3}},
		&models.Order{ID: "order1", ShopID: "shop1", CreatedAt: time.Now()})
	assert.ErrorIs(t, err, apperrors.ErrStockConflict)
}

func TestShopOrders_NewestFirst(t *testing.T) {
	l := seedLedger(t)
	ctx := context.Background()

	base := time.Now()
	for i, id := range []string{"old", "mid", "new"} {
		err := l.Commit(ctx, nil, &models.Order{
			ID:        id,
			ShopID:    "shop1",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	orders, err := l.ShopOrders(ctx, "shop1")
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "new", orders[0].ID)
	assert.Equal(t, "mid", orders[1].ID)
	assert.Equal(t, "old", orders[2].ID)
}

func TestDeleteItem_NotFound(t *testing.T) {
	l := seedLedger(t)
	err := l.DeleteItem(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
