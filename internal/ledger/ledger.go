// Package ledger is the accessor over the keyed store holding items, shops
// and order records. Reads are best-effort snapshots with no isolation
// guarantee; Commit is the single all-or-nothing write path for stock.
package ledger

import (
	"context"

	"github.com/grocerease/grocerease-backend/internal/models"
)

// StockWrite is one conditional stock update inside a commit. Expected is the
// stock value observed at snapshot time; the commit aborts with
// apperrors.ErrStockConflict if the stored value differs when the write runs.
type StockWrite struct {
	ItemID   string
	Expected int
	New      int
}

// Ledger is the store contract the commit engine and catalog handlers run
// against. Stock is never decremented through any other path than Commit.
type Ledger interface {
	// ReadItems returns a snapshot of the requested items. Absent ids are
	// simply missing from the result map, not an error.
	ReadItems(ctx context.Context, ids []string) (map[string]*models.Item, error)

	// Commit applies every stock write and appends the order record together
	// or applies none of them. A stale Expected value aborts the whole batch
	// with apperrors.ErrStockConflict; store failures are wrapped in
	// apperrors.CommitError.
	Commit(ctx context.Context, writes []StockWrite, order *models.Order) error

	Shops(ctx context.Context) ([]*models.Shop, error)
	ShopItems(ctx context.Context, shopID string) ([]*models.Item, error)
	ShopOrders(ctx context.Context, shopID string) ([]*models.Order, error)

	// Owner-facing catalog edits.
	PutShop(ctx context.Context, shop *models.Shop) error
	PutItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id string) error
}
