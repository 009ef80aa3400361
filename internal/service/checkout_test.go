package service

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/grocerease/grocerease-backend/internal/apperrors"
	"github.com/grocerease/grocerease-backend/internal/events"
	"github.com/grocerease/grocerease-backend/internal/ledger"
	"github.com/grocerease/grocerease-backend/internal/metrics"
	"github.com/grocerease/grocerease-backend/internal/models"
)

type fixture struct {
	ledger    *ledger.MemoryLedger
	publisher *events.MockPublisher
	service   *OrderCommitService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	l := ledger.NewMemoryLedger()
	ctx := context.Background()
	require.NoError(t, l.PutShop(ctx, &models.Shop{ID: "shop1", Name: "Shop One", OwnerID: "owner1"}))
	require.NoError(t, l.PutItem(ctx, &models.Item{ID: "a", ShopID: "shop1", Name: "A", Price: 10, Stock: 5}))
	require.NoError(t, l.PutItem(ctx, &models.Item{ID: "b", ShopID: "shop1", Name: "B", Price: 5, Stock: 1}))

	publisher := events.NewMockPublisher()
	svc := NewOrderCommitService(l, publisher, metrics.NewCheckout(prometheus.NewRegistry()), zap.NewNop())

	return &fixture{ledger: l, publisher: publisher, service: svc}
}

func entry(itemID, name string, price float64, qty int) models.CartEntry {
	return models.CartEntry{ItemID: itemID, ShopID: "shop1", Name: name, Price: price, Quantity: qty}
}

func stockOf(t *testing.T, l *ledger.MemoryLedger, id string) int {
	t.Helper()
	snapshot, err := l.ReadItems(context.Background(), []string{id})
	require.NoError(t, err)
	require.Contains(t, snapshot, id)
	return snapshot[id].Stock
}

func TestPlaceOrder_DecrementsStockAndRecordsOrder(t *testing.T) {
	f := newFixture(t)

	cart := []models.CartEntry{
		entry("a", "A", 10, 2),
		entry("b", "B", 5, 1),
	}

	order, err := f.service.PlaceOrder(context.Background(), cart, "shop1", "cust1")
	require.NoError(t, err)

	assert.Equal(t, 25.0, order.Total)
	assert.Equal(t, "cust1", order.CustomerID)
	assert.Equal(t, "shop1", order.ShopID)
	assert.Len(t, order.Items, 2)
	assert.False(t, order.CreatedAt.IsZero())

	assert.Equal(t, 3, stockOf(t, f.ledger, "a"))
	assert.Equal(t, 0, stockOf(t, f.ledger, "b"))

	orders, err := f.ledger.ShopOrders(context.Background(), "shop1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)
}

func TestPlaceOrder_PublishesOrderPlacedEvent(t *testing.T) {
	f := newFixture(t)

	order, err := f.service.PlaceOrder(context.Background(),
		[]models.CartEntry{entry("a", "A", 10, 1)}, "shop1", "cust1")
	require.NoError(t, err)

	require.Len(t, f.publisher.Events, 1)
	assert.Equal(t, events.EventTypeOrderPlaced, f.publisher.Events[0].Type)
	assert.Equal(t, order.ID, f.publisher.Events[0].OrderID)
}

func TestPlaceOrder_InsufficientStockLeavesLedgerUntouched(t *testing.T) {
	f := newFixture(t)

	cart := []models.CartEntry{
		entry("a", "A", 10, 2),
		entry("b", "B", 5, 4), // only 1 in stock
	}

	_, err := f.service.PlaceOrder(context.Background(), cart, "shop1", "cust1")

	var insufficient *apperrors.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "B", insufficient.ItemName)
	assert.Equal(t, 1, insufficient.Available)

	// No partial write: item A keeps its full stock.
	assert.Equal(t, 5, stockOf(t, f.ledger, "a"))
	assert.Equal(t, 1, stockOf(t, f.ledger, "b"))

	orders, err2 := f.ledger.ShopOrders(context.Background(), "shop1")
	require.NoError(t, err2)
	assert.Empty(t, orders)
	assert.Empty(t, f.publisher.Events)
}

func TestPlaceOrder_VanishedItemFailsWholeOrder(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ledger.DeleteItem(context.Background(), "b"))

	cart := []models.CartEntry{
		entry("a", "A", 10, 1),
		entry("b", "B", 5, 1),
	}

	_, err := f.service.PlaceOrder(context.Background(), cart, "shop1", "cust1")

	var vanished *apperrors.ItemVanishedError
	require.ErrorAs(t, err, &vanished)
	assert.Equal(t, "B", vanished.ItemName)
	assert.Equal(t, 5, stockOf(t, f.ledger, "a"))
}

func TestPlaceOrder_ValidatesInCartOrder(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ledger.DeleteItem(context.Background(), "b"))

	// Both entries fail, but the first failure in cart order wins.
	cart := []models.CartEntry{
		entry("a", "A", 10, 100),
		entry("b", "B", 5, 1),
	}

	_, err := f.service.PlaceOrder(context.Background(), cart, "shop1", "cust1")

	var insufficient *apperrors.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "A", insufficient.ItemName)
}

func TestPlaceOrder_EmptyCartRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.PlaceOrder(context.Background(), nil, "shop1", "cust1")

	var validation *apperrors.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestPlaceOrder_MixedShopCartRejected(t *testing.T) {
	f := newFixture(t)

	cart := []models.CartEntry{
		entry("a", "A", 10, 1),
		{ItemID: "z", ShopID: "shop2", Name: "Z", Price: 1, Quantity: 1},
	}

	_, err := f.service.PlaceOrder(context.Background(), cart, "shop1", "cust1")

	var validation *apperrors.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestPlaceOrder_ExactStockSellsOut(t *testing.T) {
	f := newFixture(t)

	order, err := f.service.PlaceOrder(context.Background(),
		[]models.CartEntry{entry("a", "A", 10, 5)}, "shop1", "cust1")
	require.NoError(t, err)

	assert.Equal(t, 50.0, order.Total)
	assert.Equal(t, 0, stockOf(t, f.ledger, "a"))
}

// Two checkouts race for the same item with stock 5: quantities 3 and 4.
// The conditional commit makes the loser re-read and fail validation, so
// exactly one order is accepted and stock never goes negative.
func TestPlaceOrder_ConcurrentCommitsAcceptExactlyOne(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	quantities := []int{3, 4}
	errs := make([]error, len(quantities))

	var wg sync.WaitGroup
	for i, qty := range quantities {
		wg.Add(1)
		go func(i, qty int) {
			defer wg.Done()
			_, errs[i] = f.service.PlaceOrder(ctx,
				[]models.CartEntry{entry("a", "A", 10, qty)}, "shop1", "cust1")
		}(i, qty)
	}
	wg.Wait()

	var accepted, rejected int
	for _, err := range errs {
		if err == nil {
			accepted++
		} else {
			rejected++
			var insufficient *apperrors.InsufficientStockError
			assert.ErrorAs(t, err, &insufficient)
		}
	}

	assert.Equal(t, 1, accepted)
	assert.Equal(t, 1, rejected)

	remaining := stockOf(t, f.ledger, "a")
	assert.True(t, remaining == 1 || remaining == 2, "stock is %d", remaining)

	orders, err := f.ledger.ShopOrders(ctx, "shop1")
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestValidateCart(t *testing.T) {
	tests := []struct {
		name        string
		entries     []models.CartEntry
		shopID      string
		shouldError bool
	}{
		{
			name:    "valid cart",
			entries: []models.CartEntry{entry("a", "A", 10, 1)},
			shopID:  "shop1",
		},
		{
			name:        "empty cart",
			entries:     []models.CartEntry{},
			shopID:      "shop1",
			shouldError: true,
		},
		{
			name:        "missing shop id",
			entries:     []models.CartEntry{entry("a", "A", 10, 1)},
			shopID:      "",
			shouldError: true,
		},
		{
			name:        "zero quantity",
			entries:     []models.CartEntry{entry("a", "A", 10, 0)},
			shopID:      "shop1",
			shouldError: true,
		},
		{
			name:        "negative price",
			entries:     []models.CartEntry{entry("a", "A", -1, 1)},
			shopID:      "shop1",
			shouldError: true,
		},
		{
			name: "foreign shop entry",
			entries: []models.CartEntry{
				{ItemID: "z", ShopID: "shop2", Name: "Z", Price: 1, Quantity: 1},
			},
			shopID:      "shop1",
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCart(tt.entries, tt.shopID)
			if tt.shouldError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
