package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/feedshop/internal/confirm"
	"github.com/jafarshop/feedshop/internal/domain"
	"github.com/jafarshop/feedshop/internal/service"
	apperrors "github.com/jafarshop/feedshop/pkg/errors"
)

// OrderListResponse wraps the orders of a session
type OrderListResponse struct {
	Orders []*domain.Order `json:"orders"`
}

// HandleCheckout handles POST /v1/session/checkout. The request stays open
// until the user answers the confirmation.
func HandleCheckout(orders OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := requireSession(c)
		if !ok {
			return
		}

		var req service.CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		order, err := orders.Checkout(c.Request.Context(), sess, req)
		if err != nil {
			writeOrderError(c, err, logger)
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

// HandleListOrders handles GET /v1/session/orders
func HandleListOrders(orders OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := requireSession(c)
		if !ok {
			return
		}

		list, err := orders.ListOrders(c.Request.Context(), sess.ID)
		if err != nil {
			writeOrderError(c, err, logger)
			return
		}
		if list == nil {
			list = []*domain.Order{}
		}
		c.JSON(http.StatusOK, OrderListResponse{Orders: list})
	}
}

// HandleGetOrder handles GET /v1/session/orders/:id
func HandleGetOrder(orders OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := requireSession(c)
		if !ok {
			return
		}
		orderID, ok := parseUUIDParam(c, "id", "order")
		if !ok {
			return
		}

		order, err := orders.GetOrder(c.Request.Context(), sess.ID, orderID)
		if err != nil {
			writeOrderError(c, err, logger)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// HandleCancelOrder handles POST /v1/session/orders/:id/cancel
func HandleCancelOrder(orders OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := requireSession(c)
		if !ok {
			return
		}
		orderID, ok := parseUUIDParam(c, "id", "order")
		if !ok {
			return
		}

		order, err := orders.CancelOrder(c.Request.Context(), sess.ID, orderID)
		if err != nil {
			writeOrderError(c, err, logger)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func writeOrderError(c *gin.Context, err error, logger *zap.Logger) {
	switch {
	case errors.Is(err, confirm.ErrPending):
		c.JSON(http.StatusConflict, gin.H{"error": "another confirmation is pending"})
	case errors.Is(err, service.ErrCheckoutDeclined):
		c.JSON(http.StatusConflict, gin.H{"error": "checkout declined"})
	case errors.Is(err, service.ErrCartChanged):
		c.JSON(http.StatusConflict, gin.H{"error": "cart changed during checkout"})
	case errors.Is(err, service.ErrNothingToCheckout):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "nothing to check out"})
	case errors.Is(err, service.ErrInvalidSource):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	case apperrors.IsInvalidStateTransition(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled):
		logger.Info("Client went away while waiting", zap.String("path", c.Request.URL.Path))
		c.Status(http.StatusRequestTimeout)
	default:
		logger.Error("Order operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
