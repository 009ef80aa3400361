package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/grocerease/grocerease-backend/internal/apperrors"
	"github.com/grocerease/grocerease-backend/internal/geo"
	"github.com/grocerease/grocerease-backend/internal/models"
)

// ListShops handles GET /api/v1/shops. With lat and lng query parameters the
// shops come back sorted nearest first with a distance badge; without them
// the catalog order is preserved and no distance is attached.
func (h *Handlers) ListShops(c *gin.Context) {
	shops, err := h.ledger.Shops(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list shops", zap.Error(err))
		handleError(c, err)
		return
	}

	ref := parsePoint(c)
	ranked := geo.RankShops(shops, ref)

	c.JSON(http.StatusOK, gin.H{
		"shops": ranked,
		"count": len(ranked),
	})
}

// ListShopItems handles GET /api/v1/shops/:id/items.
func (h *Handlers) ListShopItems(c *gin.Context) {
	shopID := c.Param("id")

	items, err := h.ledger.ShopItems(c.Request.Context(), shopID)
	if err != nil {
		handleError(c, err)
		return
	}
	if items == nil {
		items = []*models.Item{}
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

// ListShopOrders handles GET /api/v1/shops/:id/orders for the owner
// dashboard, newest order first.
func (h *Handlers) ListShopOrders(c *gin.Context) {
	shopID := c.Param("id")

	orders, err := h.ledger.ShopOrders(c.Request.Context(), shopID)
	if err != nil {
		handleError(c, err)
		return
	}
	if orders == nil {
		orders = []*models.Order{}
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// UpsertItem handles PUT /api/v1/shops/:id/items/:item_id (owner edits).
func (h *Handlers) UpsertItem(c *gin.Context) {
	var req struct {
		Name  string  `json:"name" binding:"required"`
		Price float64 `json:"price"`
		Stock int     `json:"stock"`
		Image string  `json:"image"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Price < 0 {
		handleError(c, apperrors.NewValidationError("price", "price cannot be negative"))
		return
	}
	if req.Stock < 0 {
		handleError(c, apperrors.NewValidationError("stock", "stock cannot be negative"))
		return
	}

	item := &models.Item{
		ID:     c.Param("item_id"),
		ShopID: c.Param("id"),
		Name:   req.Name,
		Price:  req.Price,
		Stock:  req.Stock,
		Image:  req.Image,
	}
	if err := h.ledger.PutItem(c.Request.Context(), item); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// DeleteItem handles DELETE /api/v1/items/:id.
func (h *Handlers) DeleteItem(c *gin.Context) {
	if err := h.ledger.DeleteItem(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SeedCatalog handles POST /admin/seed.
func (h *Handlers) SeedCatalog(c *gin.Context) {
	shops, items, err := h.seeder.Run(c.Request.Context())
	if err != nil {
		h.logger.Error("Seeding failed", zap.Error(err))
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"shops": shops,
		"items": items,
	})
}

func parsePoint(c *gin.Context) *geo.Point {
	latStr := c.Query("lat")
	lngStr := c.Query("lng")
	if latStr == "" || lngStr == "" {
		return nil
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return nil
	}
	return &geo.Point{Lat: lat, Lng: lng}
}
