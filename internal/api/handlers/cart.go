package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/feedshop/internal/confirm"
	"github.com/jafarshop/feedshop/internal/service"
	apperrors "github.com/jafarshop/feedshop/pkg/errors"
)

// UpdateItemRequest sets the quantity of a cart line. Zero removes it.
type UpdateItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity" binding:"min=0"`
}

// HandleGetCart handles GET /v1/session/cart
func HandleGetCart() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := requireSession(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, sess.Cart.Snapshot())
	}
}

// HandleAddCartItem handles POST /v1/session/cart/items
func HandleAddCartItem(carts CartService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := requireSession(c)
		if !ok {
			return
		}

		var req service.AddItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		snap, err := carts.AddItem(c.Request.Context(), sess, req)
		if err != nil {
			writeCartError(c, err, logger)
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

// HandleUpdateCartItem handles PATCH /v1/session/cart/items
func HandleUpdateCartItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := requireSession(c)
		if !ok {
			return
		}

		var req UpdateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		sess.Cart.SetQuantity(req.ProductID, req.VariantID, req.Quantity)
		c.JSON(http.StatusOK, sess.Cart.Snapshot())
	}
}

// HandleRemoveCartItem handles DELETE /v1/session/cart/items?product_id=&variant_id=
func HandleRemoveCartItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := requireSession(c)
		if !ok {
			return
		}

		productID := c.Query("product_id")
		if productID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "product_id is required"})
			return
		}

		sess.Cart.Remove(productID, c.Query("variant_id"))
		c.JSON(http.StatusOK, sess.Cart.Snapshot())
	}
}

// HandleClearCart handles DELETE /v1/session/cart. The request stays open
// until the user answers the confirmation.
func HandleClearCart(carts CartService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := requireSession(c)
		if !ok {
			return
		}

		cleared, err := carts.ClearCart(c.Request.Context(), sess)
		if err != nil {
			writeCartError(c, err, logger)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"cleared": cleared,
			"cart":    sess.Cart.Snapshot(),
		})
	}
}

// HandleSetBuyNow handles PUT /v1/session/buy-now
func HandleSetBuyNow(carts CartService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := requireSession(c)
		if !ok {
			return
		}

		var req service.AddItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		snap, err := carts.SetBuyNow(c.Request.Context(), sess, req)
		if err != nil {
			writeCartError(c, err, logger)
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

// HandleClearBuyNow handles DELETE /v1/session/buy-now
func HandleClearBuyNow() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := requireSession(c)
		if !ok {
			return
		}

		sess.Cart.ClearBuyNow()
		c.JSON(http.StatusOK, sess.Cart.Snapshot())
	}
}

// HandleCartEvents handles GET /v1/session/cart/events. It streams the
// current snapshot and then every change as server-sent events.
func HandleCartEvents() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := requireSession(c)
		if !ok {
			return
		}

		updates, cancel := sess.Cart.Subscribe()
		defer cancel()

		c.Header("Cache-Control", "no-cache")
		c.Header("X-Accel-Buffering", "no")

		first := true
		c.Stream(func(w io.Writer) bool {
			if first {
				first = false
				c.SSEvent("cart", sess.Cart.Snapshot())
				return true
			}

			select {
			case <-c.Request.Context().Done():
				return false
			case snap, open := <-updates:
				if !open {
					return false
				}
				c.SSEvent("cart", snap)
				return true
			}
		})
	}
}

func writeCartError(c *gin.Context, err error, logger *zap.Logger) {
	switch {
	case errors.Is(err, confirm.ErrPending):
		c.JSON(http.StatusConflict, gin.H{"error": "another confirmation is pending"})
	case apperrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnknownVariant):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrCatalogUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "product catalog unavailable"})
	case errors.Is(err, context.Canceled):
		logger.Info("Client went away while waiting", zap.String("path", c.Request.URL.Path))
		c.Status(http.StatusRequestTimeout)
	default:
		logger.Error("Cart operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
