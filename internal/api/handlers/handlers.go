package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jafarshop/feedshop/internal/api/middleware"
	"github.com/jafarshop/feedshop/internal/cart"
	"github.com/jafarshop/feedshop/internal/catalog"
	"github.com/jafarshop/feedshop/internal/domain"
	"github.com/jafarshop/feedshop/internal/service"
	"github.com/jafarshop/feedshop/internal/session"
)

// Catalog reads normalized feed and shop data from the upstream APIs
type Catalog interface {
	FetchProducts(ctx context.Context, q catalog.ProductQuery) catalog.Result[[]domain.Product]
	FetchProduct(ctx context.Context, id string) catalog.Result[*domain.Product]
	FetchPosts(ctx context.Context, q catalog.PostQuery) catalog.Result[[]domain.Post]
	FetchPost(ctx context.Context, id string) catalog.Result[*domain.Post]
	IncrementPostView(ctx context.Context, id string) catalog.Result[int]
	FetchShop(ctx context.Context, id string) catalog.Result[*domain.Shop]
	FetchUser(ctx context.Context, id string) catalog.Result[*domain.User]
}

// CartService prices catalog products into a session cart
type CartService interface {
	AddItem(ctx context.Context, sess *session.Session, req service.AddItemRequest) (cart.Snapshot, error)
	SetBuyNow(ctx context.Context, sess *session.Session, req service.AddItemRequest) (cart.Snapshot, error)
	ClearCart(ctx context.Context, sess *session.Session) (bool, error)
}

// OrderService places and manages the orders of a session
type OrderService interface {
	Checkout(ctx context.Context, sess *session.Session, req service.CheckoutRequest) (*domain.Order, error)
	GetOrder(ctx context.Context, sessionID, orderID uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context, sessionID uuid.UUID) ([]*domain.Order, error)
	CancelOrder(ctx context.Context, sessionID, orderID uuid.UUID) (*domain.Order, error)
}

// requireSession fetches the authenticated session or writes a 401
func requireSession(c *gin.Context) (*session.Session, bool) {
	sess, ok := middleware.GetSessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	return sess, true
}

// writeList renders a collection result. An empty collection is still a 200.
func writeList[T any](c *gin.Context, res catalog.Result[[]T]) {
	data := res.Value
	if data == nil {
		data = []T{}
	}
	status := http.StatusOK
	if res.IsFailed() {
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"status": res.Status, "data": data})
}

// writeItem renders a single-item result
func writeItem[T any](c *gin.Context, res catalog.Result[*T]) {
	switch {
	case res.IsFound():
		c.JSON(http.StatusOK, gin.H{"status": res.Status, "data": res.Value})
	case res.IsEmpty():
		c.JSON(http.StatusNotFound, gin.H{"status": res.Status, "data": nil})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"status": res.Status, "data": nil})
	}
}

// queryInt parses an optional non-negative integer query parameter
func queryInt(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key})
		return 0, false
	}
	return n, true
}

func parseUUIDParam(c *gin.Context, name, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + what + " ID"})
		return uuid.Nil, false
	}
	return id, true
}
