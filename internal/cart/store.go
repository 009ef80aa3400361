// Package cart holds the customer's pending selections, scoped to one shop
// at a time, over a named per-session key-value slot. Availability is not
// enforced here; stock is checked only at commit time.
package cart

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/grocerease/grocerease-backend/internal/models"
)

// ErrShopMismatch is returned by Add when the cart already holds items from a
// different shop and the caller did not confirm replacing it.
var ErrShopMismatch = errors.New("cart holds items from a different shop")

// Slot is the persisted key-value cell backing one session's cart.
type Slot interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// Store reads and mutates session carts.
type Store struct {
	slot   Slot
	logger *zap.Logger
}

func NewStore(slot Slot, logger *zap.Logger) *Store {
	return &Store{
		slot:   slot,
		logger: logger.Named("cart"),
	}
}

// Get returns the cart for the session, empty if none is stored.
func (s *Store) Get(ctx context.Context, sessionID string) ([]models.CartEntry, error) {
	data, ok, err := s.slot.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.CartEntry{}, nil
	}

	var entries []models.CartEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		// A corrupt slot is treated as empty rather than wedging the session.
		s.logger.Warn("Dropping unreadable cart slot",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return []models.CartEntry{}, nil
	}
	return entries, nil
}

// Add puts one item into the cart. An existing entry for the same item has
// its quantity incremented; otherwise a new entry is appended, preserving
// insertion order. If the cart holds items from another shop the whole cart
// is replaced by a single-entry cart for the new item, but only when the
// caller passed replace=true after confirming with the customer.
func (s *Store) Add(ctx context.Context, sessionID string, item *models.Item, quantity int, replace bool) ([]models.CartEntry, error) {
	if quantity < 1 {
		quantity = 1
	}

	entries, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if len(entries) > 0 && entries[0].ShopID != item.ShopID {
		if !replace {
			return nil, ErrShopMismatch
		}
		s.logger.Info("Replacing cart with different shop",
			zap.String("session_id", sessionID),
			zap.String("old_shop", entries[0].ShopID),
			zap.String("new_shop", item.ShopID),
		)
		entries = entries[:0]
	}

	found := false
	for i := range entries {
		if entries[i].ItemID == item.ID {
			entries[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		entries = append(entries, models.CartEntry{
			ItemID:   item.ID,
			ShopID:   item.ShopID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: quantity,
		})
	}

	if err := s.save(ctx, sessionID, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Remove drops the entry for itemID. An emptied cart loses its shop context
// entirely (the slot is deleted).
func (s *Store) Remove(ctx context.Context, sessionID, itemID string) ([]models.CartEntry, error) {
	entries, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	kept := entries[:0]
	for _, e := range entries {
		if e.ItemID != itemID {
			kept = append(kept, e)
		}
	}

	if len(kept) == 0 {
		if err := s.slot.Delete(ctx, sessionID); err != nil {
			return nil, err
		}
		return []models.CartEntry{}, nil
	}

	if err := s.save(ctx, sessionID, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

// Clear empties the cart unconditionally. Called after a successful commit.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	return s.slot.Delete(ctx, sessionID)
}

func (s *Store) save(ctx context.Context, sessionID string, entries []models.CartEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return s.slot.Set(ctx, sessionID, data)
}
