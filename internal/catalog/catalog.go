package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/jafarshop/feedshop/internal/domain"
)

// ProductQuery filters the product list. Zero values are omitted.
type ProductQuery struct {
	ShopID string
	Search string
	Page   int
	Limit  int
}

func (q ProductQuery) values() url.Values {
	v := url.Values{}
	if q.ShopID != "" {
		v.Set("shop_id", q.ShopID)
	}
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	setPaging(v, q.Page, q.Limit)
	return v
}

// PostQuery filters the post feed. Zero values are omitted.
type PostQuery struct {
	AuthorID string
	ShopID   string
	Page     int
	Limit    int
}

func (q PostQuery) values() url.Values {
	v := url.Values{}
	if q.AuthorID != "" {
		v.Set("user_id", q.AuthorID)
	}
	if q.ShopID != "" {
		v.Set("shop_id", q.ShopID)
	}
	setPaging(v, q.Page, q.Limit)
	return v
}

func setPaging(v url.Values, page, limit int) {
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
}

// FetchProducts lists products
func (c *Client) FetchProducts(ctx context.Context, q ProductQuery) Result[[]domain.Product] {
	rawURL, err := c.endpoint(resourceProducts, q.values(), "products")
	if err != nil {
		return Failed[[]domain.Product](err)
	}
	return fetchList(ctx, c, resourceProducts, rawURL, c.norm.product)
}

// FetchProduct loads one product
func (c *Client) FetchProduct(ctx context.Context, id string) Result[*domain.Product] {
	rawURL, err := c.endpoint(resourceProducts, nil, "products", url.PathEscape(id))
	if err != nil {
		return Failed[*domain.Product](err)
	}
	return fetchOne(ctx, c, resourceProducts, rawURL, c.norm.product, func(r remoteProduct) bool { return r.ID != "" })
}

// FetchPosts lists feed posts
func (c *Client) FetchPosts(ctx context.Context, q PostQuery) Result[[]domain.Post] {
	rawURL, err := c.endpoint(resourcePosts, q.values(), "posts")
	if err != nil {
		return Failed[[]domain.Post](err)
	}
	return fetchList(ctx, c, resourcePosts, rawURL, c.norm.post)
}

// FetchPost loads one post
func (c *Client) FetchPost(ctx context.Context, id string) Result[*domain.Post] {
	rawURL, err := c.endpoint(resourcePosts, nil, "posts", url.PathEscape(id))
	if err != nil {
		return Failed[*domain.Post](err)
	}
	return fetchOne(ctx, c, resourcePosts, rawURL, c.norm.post, func(r remotePost) bool { return r.ID != "" })
}

// IncrementPostView registers one view of a post and returns the new count
// when the upstream reports it. Views are never coalesced.
func (c *Client) IncrementPostView(ctx context.Context, id string) Result[int] {
	rawURL, err := c.endpoint(resourcePosts, nil, "posts", url.PathEscape(id), "view")
	if err != nil {
		return Failed[int](err)
	}

	data, err := c.payload(ctx, resourcePosts, rawURL, false)
	if err != nil {
		c.logFailure(resourcePosts, rawURL, err)
		return Failed[int](err)
	}
	if data == nil {
		return Empty[int]()
	}

	var n number
	if err := json.Unmarshal(data, &n); err == nil && n.Valid {
		return Found(intOf(n))
	}
	var views remoteViews
	if err := json.Unmarshal(data, &views); err != nil {
		err = fmt.Errorf("failed to decode view count: %w", err)
		c.logFailure(resourcePosts, rawURL, err)
		return Failed[int](err)
	}
	if !views.Views.Valid && !views.ViewCount.Valid {
		return Empty[int]()
	}
	return Found(intOf(views.Views, views.ViewCount))
}

// FetchShop loads one shop
func (c *Client) FetchShop(ctx context.Context, id string) Result[*domain.Shop] {
	rawURL, err := c.endpoint(resourceShops, nil, "shops", url.PathEscape(id))
	if err != nil {
		return Failed[*domain.Shop](err)
	}
	return fetchOne(ctx, c, resourceShops, rawURL, c.norm.shop, func(r remoteShop) bool { return r.ID != "" })
}

// FetchUser loads one user profile
func (c *Client) FetchUser(ctx context.Context, id string) Result[*domain.User] {
	rawURL, err := c.endpoint(resourceUsers, nil, "users", url.PathEscape(id))
	if err != nil {
		return Failed[*domain.User](err)
	}
	return fetchOne(ctx, c, resourceUsers, rawURL, c.norm.user, func(r remoteUser) bool { return r.ID != "" })
}
