package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/grocerease/grocerease-backend/internal/config"
	"github.com/grocerease/grocerease-backend/internal/ledger"
)

func TestRun_PopulatesCatalog(t *testing.T) {
	l := ledger.NewMemoryLedger()
	cfg := config.SeedConfig{Shops: 3, ItemsPerShop: 10, CenterLat: 28.6, CenterLng: 77.2}

	shops, items, err := New(l, cfg, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, shops)
	assert.Equal(t, 30, items)

	ctx := context.Background()
	stored, err := l.Shops(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 3)

	for _, shop := range stored {
		assert.InDelta(t, 28.6, shop.Latitude, 0.1)
		assert.InDelta(t, 77.2, shop.Longitude, 0.1)
		assert.NotEmpty(t, shop.OwnerID)

		shopItems, err := l.ShopItems(ctx, shop.ID)
		require.NoError(t, err)
		require.Len(t, shopItems, 10)
		for _, item := range shopItems {
			assert.Equal(t, shop.ID, item.ShopID)
			assert.GreaterOrEqual(t, item.Price, 2.0)
			assert.LessOrEqual(t, item.Price, 22.0)
			assert.GreaterOrEqual(t, item.Stock, 10)
			assert.LessOrEqual(t, item.Stock, 59)
		}
	}
}

func TestRun_MoreItemsThanPoolRepeatsNames(t *testing.T) {
	l := ledger.NewMemoryLedger()
	cfg := config.SeedConfig{Shops: 1, ItemsPerShop: len(masterItemPool) + 5}

	_, items, err := New(l, cfg, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(masterItemPool)+5, items)
}
