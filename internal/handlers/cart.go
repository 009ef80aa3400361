package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grocerease/grocerease-backend/internal/apperrors"
	"github.com/grocerease/grocerease-backend/internal/cart"
	"github.com/grocerease/grocerease-backend/internal/models"
)

// GetCart handles GET /api/v1/cart.
func (h *Handlers) GetCart(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	entries, err := h.carts.Get(c.Request.Context(), sessionID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": entries,
		"total": models.CartTotal(entries),
	})
}

// AddCartItem handles POST /api/v1/cart/items. When the cart already holds
// another shop's items and replace_cart was not set, the response is 409
// with requires_confirmation so the UI can ask before retrying with the
// flag set.
func (h *Handlers) AddCartItem(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req struct {
		ItemID      string `json:"item_id" binding:"required"`
		Quantity    int    `json:"quantity"`
		ReplaceCart bool   `json:"replace_cart"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		handleError(c, apperrors.NewValidationError("quantity", "quantity must be positive"))
		return
	}

	ctx := c.Request.Context()
	snapshot, err := h.ledger.ReadItems(ctx, []string{req.ItemID})
	if err != nil {
		handleError(c, err)
		return
	}
	item, found := snapshot[req.ItemID]
	if !found {
		handleError(c, apperrors.ErrNotFound)
		return
	}

	entries, err := h.carts.Add(ctx, sessionID, item, req.Quantity, req.ReplaceCart)
	if errors.Is(err, cart.ErrShopMismatch) {
		c.JSON(http.StatusConflict, gin.H{
			"error":                 "adding items from a different shop will clear your cart",
			"requires_confirmation": true,
		})
		return
	}
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": entries,
		"total": models.CartTotal(entries),
	})
}

// RemoveCartItem handles DELETE /api/v1/cart/items/:id.
func (h *Handlers) RemoveCartItem(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	entries, err := h.carts.Remove(c.Request.Context(), sessionID, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": entries,
		"total": models.CartTotal(entries),
	})
}

// ClearCart handles DELETE /api/v1/cart.
func (h *Handlers) ClearCart(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	if err := h.carts.Clear(c.Request.Context(), sessionID); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
