// Package service contains the order-commit engine: it turns a validated
// cart into one conditional, atomic ledger write.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/grocerease/grocerease-backend/internal/apperrors"
	"github.com/grocerease/grocerease-backend/internal/events"
	"github.com/grocerease/grocerease-backend/internal/ledger"
	"github.com/grocerease/grocerease-backend/internal/metrics"
	"github.com/grocerease/grocerease-backend/internal/models"
)

// maxCommitAttempts bounds conflict retries. Each retry re-reads stock, so a
// loser of a race fails validation with the real availability instead of
// spinning.
const maxCommitAttempts = 3

// OrderCommitService orchestrates snapshot read, validation and the atomic
// commit. It is safe for concurrent use; the ledger's conditional commit is
// the only serialization point.
type OrderCommitService struct {
	ledger    ledger.Ledger
	publisher events.Publisher
	metrics   *metrics.Checkout
	logger    *zap.Logger
	now       func() time.Time
}

func NewOrderCommitService(
	l ledger.Ledger,
	publisher events.Publisher,
	m *metrics.Checkout,
	logger *zap.Logger,
) *OrderCommitService {
	return &OrderCommitService{
		ledger:    l,
		publisher: publisher,
		metrics:   m,
		logger:    logger.Named("order-commit"),
		now:       time.Now,
	}
}

// PlaceOrder commits the cart as one order, decrementing stock for every
// entry atomically. On success the caller is responsible for clearing the
// cart. Failures come back as typed errors from the apperrors taxonomy;
// nothing partial is ever written.
func (s *OrderCommitService) PlaceOrder(ctx context.Context, entries []models.CartEntry, shopID, customerID string) (*models.Order, error) {
	start := s.now()

	if err := ValidateCart(entries, shopID); err != nil {
		s.metrics.Rejected.WithLabelValues("invalid_cart").Inc()
		return nil, err
	}

	s.logger.Info("Placing order",
		zap.String("shop_id", shopID),
		zap.String("customer_id", customerID),
		zap.Int("entry_count", len(entries)),
	)

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ItemID
	}

	var lastErr error
	for attempt := 0; attempt < maxCommitAttempts; attempt++ {
		if attempt > 0 {
			s.metrics.ConflictRetries.Inc()
		}

		order, err := s.tryCommit(ctx, ids, entries, shopID, customerID)
		if err == nil {
			s.metrics.Accepted.Inc()
			s.metrics.Duration.Observe(s.now().Sub(start).Seconds())
			s.publishPlaced(order)
			return order, nil
		}
		if errors.Is(err, apperrors.ErrStockConflict) {
			// Another checkout moved a counter between our read and write.
			// Take a fresh snapshot and re-validate.
			lastErr = err
			continue
		}
		s.recordRejection(err)
		return nil, err
	}

	s.metrics.Rejected.WithLabelValues("conflict").Inc()
	s.logger.Warn("Order abandoned after repeated stock conflicts",
		zap.String("shop_id", shopID),
		zap.Int("attempts", maxCommitAttempts),
	)
	return nil, lastErr
}

// tryCommit runs one snapshot-validate-commit cycle.
func (s *OrderCommitService) tryCommit(ctx context.Context, ids []string, entries []models.CartEntry, shopID, customerID string) (*models.Order, error) {
	snapshot, err := s.ledger.ReadItems(ctx, ids)
	if err != nil {
		return nil, &apperrors.CommitError{Err: err}
	}

	// Validate in cart order, short-circuiting on the first failure.
	writes := make([]ledger.StockWrite, 0, len(entries))
	for _, entry := range entries {
		item, ok := snapshot[entry.ItemID]
		if !ok {
			return nil, &apperrors.ItemVanishedError{ItemName: entry.Name}
		}
		if item.Stock < entry.Quantity {
			return nil, &apperrors.InsufficientStockError{
				ItemName:  entry.Name,
				Available: item.Stock,
			}
		}
		writes = append(writes, ledger.StockWrite{
			ItemID:   entry.ItemID,
			Expected: item.Stock,
			New:      item.Stock - entry.Quantity,
		})
	}

	order := &models.Order{
		ID:         "order_" + uuid.NewString(),
		CustomerID: customerID,
		ShopID:     shopID,
		Items:      append([]models.CartEntry(nil), entries...),
		Total:      models.CartTotal(entries),
		CreatedAt:  s.now(),
	}

	if err := s.ledger.Commit(ctx, writes, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderCommitService) publishPlaced(order *models.Order) {
	// Best-effort: the order is already durable, a broker outage must not
	// fail it.
	if err := s.publisher.PublishOrderPlaced(context.Background(), order); err != nil {
		s.logger.Error("Failed to publish order placed event",
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
	}
}

func (s *OrderCommitService) recordRejection(err error) {
	var vanished *apperrors.ItemVanishedError
	var insufficient *apperrors.InsufficientStockError
	switch {
	case errors.As(err, &vanished):
		s.metrics.Rejected.WithLabelValues("item_vanished").Inc()
	case errors.As(err, &insufficient):
		s.metrics.Rejected.WithLabelValues("insufficient_stock").Inc()
	default:
		s.metrics.Rejected.WithLabelValues("commit_failure").Inc()
	}
}
