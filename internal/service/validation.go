package service

import (
	"github.com/grocerease/grocerease-backend/internal/apperrors"
	"github.com/grocerease/grocerease-backend/internal/models"
)

// ValidateCart checks the structural invariants of a cart before any ledger
// I/O: non-empty, positive quantities, and every entry scoped to the shop
// being checked out.
func ValidateCart(entries []models.CartEntry, shopID string) error {
	if shopID == "" {
		return apperrors.NewValidationError("shop_id", "shop ID is required")
	}

	if len(entries) == 0 {
		return apperrors.NewValidationError("cart", "cart is empty")
	}

	for _, entry := range entries {
		if entry.ItemID == "" {
			return apperrors.NewValidationError("cart", "item ID is required for every entry")
		}
		if entry.Quantity < 1 {
			return apperrors.NewValidationError("cart", "quantity must be at least 1")
		}
		if entry.Price < 0 {
			return apperrors.NewValidationError("cart", "price cannot be negative")
		}
		if entry.ShopID != shopID {
			return apperrors.NewValidationError("cart", "all cart entries must belong to the same shop")
		}
	}

	return nil
}
