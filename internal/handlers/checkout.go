package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/grocerease/grocerease-backend/internal/apperrors"
	"github.com/grocerease/grocerease-backend/internal/geo"
)

type checkoutRequest struct {
	CustomerID string   `json:"customer_id"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
}

// Checkout handles POST /api/v1/checkout: it commits the session's cart as
// one order and clears the cart on success. The response always carries
// accepted and message; delivery distance and ETA are attached when the
// customer shared a location.
func (h *Handlers) Checkout(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.CustomerID == "" {
		req.CustomerID = "guest"
	}

	ctx := c.Request.Context()
	entries, err := h.carts.Get(ctx, sessionID)
	if err != nil {
		handleError(c, err)
		return
	}
	if len(entries) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"accepted": false,
			"message":  "your cart is empty",
		})
		return
	}
	shopID := entries[0].ShopID

	order, err := h.checkout.PlaceOrder(ctx, entries, shopID, req.CustomerID)
	if err != nil {
		h.respondRejected(c, err)
		return
	}

	// The commit succeeded; the cart slot is cleared here, by the caller.
	if err := h.carts.Clear(ctx, sessionID); err != nil {
		h.logger.Error("Failed to clear cart after commit",
			zap.String("session_id", sessionID),
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
	}

	resp := gin.H{
		"accepted": true,
		"message":  "Order placed successfully!",
		"order":    order,
	}
	if req.Lat != nil && req.Lng != nil {
		if d, eta, ok := h.deliveryEstimate(c, shopID, *req.Lat, *req.Lng); ok {
			resp["distance_km"] = d
			resp["eta_minutes"] = eta
		}
	}

	c.JSON(http.StatusOK, resp)
}

// respondRejected maps the checkout taxonomy onto an accepted/message
// payload so the UI never has to parse error strings.
func (h *Handlers) respondRejected(c *gin.Context, err error) {
	var vanished *apperrors.ItemVanishedError
	var insufficient *apperrors.InsufficientStockError
	var validation *apperrors.ValidationError

	switch {
	case errors.As(err, &vanished), errors.As(err, &insufficient):
		c.JSON(http.StatusConflict, gin.H{
			"accepted": false,
			"message":  err.Error(),
		})
	case errors.Is(err, apperrors.ErrStockConflict):
		c.JSON(http.StatusConflict, gin.H{
			"accepted": false,
			"message":  "items in your cart are in high demand, please try again",
		})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{
			"accepted": false,
			"message":  validation.Message,
		})
	default:
		h.logger.Error("Checkout failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"accepted": false,
			"message":  err.Error(),
		})
	}
}

// deliveryEstimate annotates the confirmation with distance and ETA to the
// target shop. Missing shop coordinates just drop the badge.
func (h *Handlers) deliveryEstimate(c *gin.Context, shopID string, lat, lng float64) (float64, float64, bool) {
	shops, err := h.ledger.Shops(c.Request.Context())
	if err != nil {
		h.logger.Warn("Skipping delivery estimate", zap.Error(err))
		return 0, 0, false
	}
	for _, shop := range shops {
		if shop.ID == shopID {
			d := geo.DistanceKm(lat, lng, shop.Latitude, shop.Longitude)
			return d, geo.ETAMinutes(d, h.config.Delivery.AverageSpeedKmh), true
		}
	}
	return 0, 0, false
}
