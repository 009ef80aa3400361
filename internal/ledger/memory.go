package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/grocerease/grocerease-backend/internal/apperrors"
	"github.com/grocerease/grocerease-backend/internal/models"
)

// MemoryLedger is a mutex-guarded in-memory Ledger with the same commit
// semantics as the Postgres implementation. It backs tests and local
// development without a database.
type MemoryLedger struct {
	mu     sync.RWMutex
	shops  map[string]*models.Shop
	items  map[string]*models.Item
	orders map[string][]*models.Order // shopID -> append order
}

var _ Ledger = (*MemoryLedger)(nil)

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		shops:  make(map[string]*models.Shop),
		items:  make(map[string]*models.Item),
		orders: make(map[string][]*models.Order),
	}
}

func (l *MemoryLedger) ReadItems(ctx context.Context, ids []string) (map[string]*models.Item, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]*models.Item, len(ids))
	for _, id := range ids {
		if item, ok := l.items[id]; ok {
			copied := *item
			result[id] = &copied
		}
	}
	return result, nil
}

func (l *MemoryLedger) Commit(ctx context.Context, writes []StockWrite, order *models.Order) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// First pass validates every conditional write so nothing is applied on
	// conflict.
	for _, w := range writes {
		item, ok := l.items[w.ItemID]
		if !ok || item.Stock != w.Expected {
			return apperrors.ErrStockConflict
		}
	}

	for _, w := range writes {
		l.items[w.ItemID].Stock = w.New
	}

	copied := *order
	copied.Items = append([]models.CartEntry(nil), order.Items...)
	l.orders[order.ShopID] = append(l.orders[order.ShopID], &copied)
	return nil
}

func (l *MemoryLedger) Shops(ctx context.Context) ([]*models.Shop, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	shops := make([]*models.Shop, 0, len(l.shops))
	for _, s := range l.shops {
		copied := *s
		shops = append(shops, &copied)
	}
	sort.Slice(shops, func(i, j int) bool { return shops[i].ID < shops[j].ID })
	return shops, nil
}

func (l *MemoryLedger) ShopItems(ctx context.Context, shopID string) ([]*models.Item, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var items []*models.Item
	for _, item := range l.items {
		if item.ShopID == shopID {
			copied := *item
			items = append(items, &copied)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (l *MemoryLedger) ShopOrders(ctx context.Context, shopID string) ([]*models.Order, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	orders := make([]*models.Order, 0, len(l.orders[shopID]))
	for _, o := range l.orders[shopID] {
		copied := *o
		orders = append(orders, &copied)
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (l *MemoryLedger) PutShop(ctx context.Context, shop *models.Shop) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	copied := *shop
	l.shops[shop.ID] = &copied
	return nil
}

func (l *MemoryLedger) PutItem(ctx context.Context, item *models.Item) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	copied := *item
	l.items[item.ID] = &copied
	return nil
}

func (l *MemoryLedger) DeleteItem(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.items[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(l.items, id)
	return nil
}
