package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jafarshop/feedshop/internal/cart"
	"github.com/jafarshop/feedshop/internal/confirm"
	"github.com/jafarshop/feedshop/internal/domain"
	"github.com/jafarshop/feedshop/internal/repository"
	"github.com/jafarshop/feedshop/internal/session"
	apperrors "github.com/jafarshop/feedshop/pkg/errors"
)

var (
	// ErrNothingToCheckout is returned when the chosen source is empty
	ErrNothingToCheckout = errors.New("nothing to check out")
	// ErrCheckoutDeclined is returned when the user cancels the confirmation
	ErrCheckoutDeclined = errors.New("checkout declined")
	// ErrCartChanged is returned when the cart changed while the user was deciding
	ErrCartChanged = errors.New("cart changed during checkout")
	// ErrInvalidSource is returned for an unknown checkout source
	ErrInvalidSource = errors.New("invalid checkout source")
)

// CheckoutRequest selects what to check out
type CheckoutRequest struct {
	Source domain.CheckoutSource `json:"source" binding:"required"`
	UserID string                `json:"user_id"`
}

type checkoutService struct {
	repos     *repository.Repositories
	currency  string
	precision int32
	logger    *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(repos *repository.Repositories, currency string, precision int32, logger *zap.Logger) *checkoutService {
	return &checkoutService{
		repos:     repos,
		currency:  currency,
		precision: precision,
		logger:    logger,
	}
}

// Checkout turns the cart or the buy-now slot into a pending order once the
// user confirms, then clears the source it came from
func (s *checkoutService) Checkout(ctx context.Context, sess *session.Session, req CheckoutRequest) (*domain.Order, error) {
	if !req.Source.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSource, req.Source)
	}

	snap := sess.Cart.Snapshot()
	var lines []domain.CartItem
	switch req.Source {
	case domain.CheckoutSourceCart:
		lines = snap.Items
	case domain.CheckoutSourceBuyNow:
		if snap.BuyNow != nil {
			lines = []domain.CartItem{*snap.BuyNow}
		}
	}
	if len(lines) == 0 {
		return nil, ErrNothingToCheckout
	}

	order := &domain.Order{
		ID:        uuid.New(),
		SessionID: sess.ID,
		UserID:    req.UserID,
		Source:    req.Source,
		Status:    domain.OrderStatusPending,
		Currency:  s.currency,
		Total:     decimal.Zero,
	}
	units := 0
	for _, line := range lines {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice(),
			Quantity:  line.Quantity,
			ShopID:    line.ShopID,
		})
		order.Total = order.Total.Add(line.LineTotal())
		units += line.Quantity
	}

	ok, err := sess.Confirm.Confirm(ctx, confirm.Prompt{
		Title: "Place order?",
		Description: fmt.Sprintf("%d item(s), total %s %s",
			units, order.Total.StringFixed(s.precision), s.currency),
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCheckoutDeclined
	}

	// fails if the source changed after snap was taken
	if !claim(sess, req.Source, snap) {
		return nil, ErrCartChanged
	}

	if err := s.repos.Order.Create(ctx, order); err != nil {
		restore(sess, req.Source, lines)
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("session_id", sess.ID.String()),
		zap.String("source", string(order.Source)),
		zap.String("total", order.Total.String()),
	)

	return order, nil
}

func claim(sess *session.Session, source domain.CheckoutSource, snap cart.Snapshot) bool {
	if source == domain.CheckoutSourceBuyNow {
		return sess.Cart.ClearBuyNowIfVersion(snap.BuyNowVersion)
	}
	return sess.Cart.ClearIfVersion(snap.ItemsVersion)
}

// restore puts claimed lines back after a failed save
func restore(sess *session.Session, source domain.CheckoutSource, lines []domain.CartItem) {
	if source == domain.CheckoutSourceBuyNow {
		sess.Cart.SetBuyNowIfEmpty(lines[0])
		return
	}
	for _, line := range lines {
		sess.Cart.Add(line, line.Quantity)
	}
}

// GetOrder returns an order owned by the session
func (s *checkoutService) GetOrder(ctx context.Context, sessionID, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.SessionID != sessionID {
		return nil, apperrors.NewNotFound("order", orderID.String())
	}
	return order, nil
}

// ListOrders returns the orders of the session, newest first
func (s *checkoutService) ListOrders(ctx context.Context, sessionID uuid.UUID) ([]*domain.Order, error) {
	return s.repos.Order.ListBySession(ctx, sessionID)
}

// CancelOrder moves an order to CANCELLED
func (s *checkoutService) CancelOrder(ctx context.Context, sessionID, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.GetOrder(ctx, sessionID, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(domain.OrderStatusCancelled) {
		return nil, apperrors.NewInvalidStateTransition(string(order.Status), string(domain.OrderStatusCancelled))
	}

	if err := s.repos.Order.UpdateStatus(ctx, orderID, domain.OrderStatusCancelled); err != nil {
		return nil, err
	}
	order.Status = domain.OrderStatusCancelled

	s.logger.Info("Order cancelled", zap.String("order_id", orderID.String()))
	return order, nil
}
