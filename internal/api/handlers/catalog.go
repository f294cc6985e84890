package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/feedshop/internal/catalog"
)

// HandleListProducts handles GET /v1/products
func HandleListProducts(products Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, ok := queryInt(c, "page")
		if !ok {
			return
		}
		limit, ok := queryInt(c, "limit")
		if !ok {
			return
		}

		writeList(c, products.FetchProducts(c.Request.Context(), catalog.ProductQuery{
			ShopID: c.Query("shop_id"),
			Search: c.Query("q"),
			Page:   page,
			Limit:  limit,
		}))
	}
}

// HandleGetProduct handles GET /v1/products/:id
func HandleGetProduct(products Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		writeItem(c, products.FetchProduct(c.Request.Context(), c.Param("id")))
	}
}

// HandleListPosts handles GET /v1/posts
func HandleListPosts(posts Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, ok := queryInt(c, "page")
		if !ok {
			return
		}
		limit, ok := queryInt(c, "limit")
		if !ok {
			return
		}

		writeList(c, posts.FetchPosts(c.Request.Context(), catalog.PostQuery{
			AuthorID: c.Query("user_id"),
			ShopID:   c.Query("shop_id"),
			Page:     page,
			Limit:    limit,
		}))
	}
}

// HandleGetPost handles GET /v1/posts/:id. Opening a post counts as a view;
// a failed view increment does not fail the request.
func HandleGetPost(posts Catalog, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		res := posts.FetchPost(c.Request.Context(), id)
		if !res.IsFound() {
			writeItem(c, res)
			return
		}

		views := posts.IncrementPostView(c.Request.Context(), id)
		if views.IsFound() {
			res.Value.Views = views.Value
		} else if views.IsFailed() {
			logger.Warn("Failed to count post view", zap.String("post_id", id), zap.Error(views.Err))
		}

		writeItem(c, res)
	}
}

// HandleGetShop handles GET /v1/shops/:id
func HandleGetShop(shops Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		writeItem(c, shops.FetchShop(c.Request.Context(), c.Param("id")))
	}
}

// HandleListShopProducts handles GET /v1/shops/:id/products
func HandleListShopProducts(products Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, ok := queryInt(c, "page")
		if !ok {
			return
		}
		limit, ok := queryInt(c, "limit")
		if !ok {
			return
		}

		writeList(c, products.FetchProducts(c.Request.Context(), catalog.ProductQuery{
			ShopID: c.Param("id"),
			Search: c.Query("q"),
			Page:   page,
			Limit:  limit,
		}))
	}
}

// HandleGetUser handles GET /v1/users/:id
func HandleGetUser(users Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		writeItem(c, users.FetchUser(c.Request.Context(), c.Param("id")))
	}
}
