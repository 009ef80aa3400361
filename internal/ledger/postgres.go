package ledger

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/grocerease/grocerease-backend/internal/apperrors"
	"github.com/grocerease/grocerease-backend/internal/models"
)

// PostgresLedger implements Ledger on PostgreSQL. A commit is one
// transaction: per-item compare-and-swap stock updates plus the order
// insert, so a concurrent checkout that moved any counter rolls the whole
// batch back.
type PostgresLedger struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ Ledger = (*PostgresLedger)(nil)

// NewPostgresLedger creates a ledger backed by the given database handle.
func NewPostgresLedger(db *sql.DB, logger *zap.Logger) *PostgresLedger {
	return &PostgresLedger{
		db:     db,
		logger: logger.Named("ledger"),
	}
}

// ReadItems fetches current item records for the given ids. Ids not present
// in the store are absent from the result.
func (l *PostgresLedger) ReadItems(ctx context.Context, ids []string) (map[string]*models.Item, error) {
	if len(ids) == 0 {
		return map[string]*models.Item{}, nil
	}

	rows, err := l.db.QueryContext(ctx,
		`SELECT id, shop_id, name, price, stock, image FROM items WHERE id = ANY($1)`,
		pq.Array(ids),
	)
	if err != nil {
		l.logger.Error("Failed to read items", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]*models.Item, len(ids))
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(&item.ID, &item.ShopID, &item.Name, &item.Price, &item.Stock, &item.Image); err != nil {
			return nil, err
		}
		result[item.ID] = &item
	}
	return result, rows.Err()
}

// Commit applies the stock writes and the order record in one transaction.
func (l *PostgresLedger) Commit(ctx context.Context, writes []StockWrite, order *models.Order) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return &apperrors.CommitError{Err: err}
	}
	defer tx.Rollback()

	for _, w := range writes {
		res, err := tx.ExecContext(ctx,
			`UPDATE items SET stock = $1 WHERE id = $2 AND stock = $3`,
			w.New, w.ItemID, w.Expected,
		)
		if err != nil {
			return &apperrors.CommitError{Err: err}
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return &apperrors.CommitError{Err: err}
		}
		if affected == 0 {
			// Stock moved (or the item vanished) since the snapshot read.
			l.logger.Warn("Conditional stock write missed",
				zap.String("item_id", w.ItemID),
				zap.Int("expected", w.Expected),
			)
			return apperrors.ErrStockConflict
		}
	}

	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return &apperrors.CommitError{Err: err}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (id, customer_id, shop_id, items, total, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		order.ID, order.CustomerID, order.ShopID, itemsJSON, order.Total, order.CreatedAt,
	)
	if err != nil {
		return &apperrors.CommitError{Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &apperrors.CommitError{Err: err}
	}

	l.logger.Info("Order committed",
		zap.String("order_id", order.ID),
		zap.String("shop_id", order.ShopID),
		zap.Float64("total", order.Total),
		zap.Int("stock_writes", len(writes)),
	)
	return nil
}

func (l *PostgresLedger) Shops(ctx context.Context) ([]*models.Shop, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, name, owner_id, lat, lng, image FROM shops ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shops []*models.Shop
	for rows.Next() {
		var s models.Shop
		if err := rows.Scan(&s.ID, &s.Name, &s.OwnerID, &s.Latitude, &s.Longitude, &s.Image); err != nil {
			return nil, err
		}
		shops = append(shops, &s)
	}
	return shops, rows.Err()
}

func (l *PostgresLedger) ShopItems(ctx context.Context, shopID string) ([]*models.Item, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, shop_id, name, price, stock, image FROM items WHERE shop_id = $1 ORDER BY id`,
		shopID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(&item.ID, &item.ShopID, &item.Name, &item.Price, &item.Stock, &item.Image); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

// ShopOrders lists a shop's order records newest first, for the owner view.
func (l *PostgresLedger) ShopOrders(ctx context.Context, shopID string) ([]*models.Order, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, customer_id, shop_id, items, total, created_at
		 FROM orders WHERE shop_id = $1 ORDER BY created_at DESC`,
		shopID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		var order models.Order
		var itemsJSON []byte
		if err := rows.Scan(&order.ID, &order.CustomerID, &order.ShopID, &itemsJSON, &order.Total, &order.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
			return nil, err
		}
		orders = append(orders, &order)
	}
	return orders, rows.Err()
}

func (l *PostgresLedger) PutShop(ctx context.Context, shop *models.Shop) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO shops (id, name, owner_id, lat, lng, image)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE
		 SET name = EXCLUDED.name, owner_id = EXCLUDED.owner_id,
		     lat = EXCLUDED.lat, lng = EXCLUDED.lng, image = EXCLUDED.image`,
		shop.ID, shop.Name, shop.OwnerID, shop.Latitude, shop.Longitude, shop.Image,
	)
	return err
}

func (l *PostgresLedger) PutItem(ctx context.Context, item *models.Item) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO items (id, shop_id, name, price, stock, image)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE
		 SET name = EXCLUDED.name, price = EXCLUDED.price,
		     stock = EXCLUDED.stock, image = EXCLUDED.image`,
		item.ID, item.ShopID, item.Name, item.Price, item.Stock, item.Image,
	)
	return err
}

func (l *PostgresLedger) DeleteItem(ctx context.Context, id string) error {
	res, err := l.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
