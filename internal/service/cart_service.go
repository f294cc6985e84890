package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jafarshop/feedshop/internal/cart"
	"github.com/jafarshop/feedshop/internal/catalog"
	"github.com/jafarshop/feedshop/internal/confirm"
	"github.com/jafarshop/feedshop/internal/domain"
	"github.com/jafarshop/feedshop/internal/session"
	apperrors "github.com/jafarshop/feedshop/pkg/errors"
)

var (
	// ErrCatalogUnavailable is returned when the product API could not be read
	ErrCatalogUnavailable = errors.New("product catalog unavailable")
	// ErrUnknownVariant is returned when the product has no such variant
	ErrUnknownVariant = errors.New("unknown product variant")
)

// ProductFetcher loads one normalized product
type ProductFetcher interface {
	FetchProduct(ctx context.Context, id string) catalog.Result[*domain.Product]
}

// AddItemRequest identifies the product line to add
type AddItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity" binding:"omitempty,min=1"`
}

type cartService struct {
	products ProductFetcher
	logger   *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(products ProductFetcher, logger *zap.Logger) *cartService {
	return &cartService{
		products: products,
		logger:   logger,
	}
}

// AddItem prices the product from the catalog and merges it into the cart
func (s *cartService) AddItem(ctx context.Context, sess *session.Session, req AddItemRequest) (cart.Snapshot, error) {
	item, err := s.itemFor(ctx, req)
	if err != nil {
		return cart.Snapshot{}, err
	}

	sess.Cart.Add(item, quantityOrOne(req.Quantity))
	return sess.Cart.Snapshot(), nil
}

// SetBuyNow prices the product and puts it in the buy-now slot
func (s *cartService) SetBuyNow(ctx context.Context, sess *session.Session, req AddItemRequest) (cart.Snapshot, error) {
	item, err := s.itemFor(ctx, req)
	if err != nil {
		return cart.Snapshot{}, err
	}

	item.Quantity = quantityOrOne(req.Quantity)
	sess.Cart.SetBuyNow(item)
	return sess.Cart.Snapshot(), nil
}

// ClearCart asks the user to confirm and empties the cart if they do.
// It reports whether the cart was cleared.
func (s *cartService) ClearCart(ctx context.Context, sess *session.Session) (bool, error) {
	if sess.Cart.Count() == 0 {
		return true, nil
	}

	ok, err := sess.Confirm.Confirm(ctx, confirm.Prompt{
		Title:       "Clear cart?",
		Description: fmt.Sprintf("All %d items will be removed from your cart.", sess.Cart.Count()),
	})
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	sess.Cart.Clear()
	s.logger.Info("Cart cleared", zap.String("session_id", sess.ID.String()))
	return true, nil
}

func (s *cartService) itemFor(ctx context.Context, req AddItemRequest) (domain.CartItem, error) {
	res := s.products.FetchProduct(ctx, req.ProductID)
	switch {
	case res.IsFailed():
		return domain.CartItem{}, fmt.Errorf("%w: %v", ErrCatalogUnavailable, res.Err)
	case res.IsEmpty():
		return domain.CartItem{}, apperrors.NewNotFound("product", req.ProductID)
	}

	p := res.Value
	item := domain.CartItem{
		ProductID: p.ID,
		VariantID: req.VariantID,
		Name:      p.Name,
		Price:     p.Price,
		SalePrice: p.SalePrice,
		ImageURL:  p.ImageURL,
		ShopID:    p.ShopID,
	}

	if req.VariantID != "" {
		variant, ok := findVariant(p.Variants, req.VariantID)
		if !ok {
			return domain.CartItem{}, fmt.Errorf("%w: %s", ErrUnknownVariant, req.VariantID)
		}
		item.Variant = &variant
	}

	return item, nil
}

func findVariant(variants []domain.Variant, id string) (domain.Variant, bool) {
	for _, v := range variants {
		if v.ID == id {
			return v, true
		}
	}
	return domain.Variant{}, false
}

func quantityOrOne(q int) int {
	if q < 1 {
		return 1
	}
	return q
}
