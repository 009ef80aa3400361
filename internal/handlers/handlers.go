package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/grocerease/grocerease-backend/internal/apperrors"
	"github.com/grocerease/grocerease-backend/internal/cart"
	"github.com/grocerease/grocerease-backend/internal/config"
	"github.com/grocerease/grocerease-backend/internal/ledger"
	"github.com/grocerease/grocerease-backend/internal/seed"
	"github.com/grocerease/grocerease-backend/internal/service"
)

const sessionHeader = "X-Session-ID"

// Handlers holds all HTTP handlers for the storefront service.
type Handlers struct {
	ledger   ledger.Ledger
	carts    *cart.Store
	checkout *service.OrderCommitService
	seeder   *seed.Seeder
	config   *config.Config
	logger   *zap.Logger
}

func New(
	l ledger.Ledger,
	carts *cart.Store,
	checkout *service.OrderCommitService,
	seeder *seed.Seeder,
	cfg *config.Config,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		ledger:   l,
		carts:    carts,
		checkout: checkout,
		seeder:   seeder,
		config:   cfg,
		logger:   logger.Named("handlers"),
	}
}

// sessionID pulls the per-customer session from the request, failing the
// request when absent. Cart slots are scoped by it.
func (h *Handlers) sessionID(c *gin.Context) (string, bool) {
	id := c.GetHeader(sessionHeader)
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": sessionHeader + " header is required"})
		return "", false
	}
	return id, true
}

func handleError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	var validationErr *apperrors.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Message,
			"field": validationErr.Field,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
