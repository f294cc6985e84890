package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jafarshop/feedshop/internal/confirm"
	"github.com/jafarshop/feedshop/internal/domain"
	"github.com/jafarshop/feedshop/internal/repository"
	apperrors "github.com/jafarshop/feedshop/pkg/errors"
)

func newCheckout(repo *mockOrderRepository) *checkoutService {
	return NewCheckoutService(&repository.Repositories{Order: repo}, "USD", 2, zap.NewNop())
}

func cartLine(id string, price int64) domain.CartItem {
	return domain.CartItem{ProductID: id, Name: "p" + id, Price: decimal.NewFromInt(price), ShopID: "s1"}
}

func TestCheckout_CartSource(t *testing.T) {
	repo := newMockOrderRepository()
	svc := newCheckout(repo)
	sess := newSession(t)
	sess.Cart.Add(cartLine("5", 10), 3)
	sess.Cart.Add(cartLine("6", 1), 1)
	sess.Cart.SetBuyNow(cartLine("9", 100))

	prompt := answerNext(t, sess, true)
	order, err := svc.Checkout(context.Background(), sess, CheckoutRequest{Source: domain.CheckoutSourceCart, UserID: "u-1"})
	require.NoError(t, err)

	assert.Equal(t, "4 item(s), total 31.00 USD", <-prompt)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, sess.ID, order.SessionID)
	assert.Equal(t, "u-1", order.UserID)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(31)))
	require.Len(t, order.Items, 2)
	assert.Equal(t, 3, order.Items[0].Quantity)

	stored, err := repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, stored.Total.Equal(order.Total))

	assert.Empty(t, sess.Cart.Items())
	assert.NotNil(t, sess.Cart.BuyNow(), "buy-now slot is not touched by a cart checkout")
}

func TestCheckout_BuyNowSource(t *testing.T) {
	repo := newMockOrderRepository()
	svc := newCheckout(repo)
	sess := newSession(t)
	sess.Cart.Add(cartLine("5", 10), 1)
	bn := cartLine("9", 100)
	bn.SalePrice = decimal.NewNullDecimal(decimal.NewFromInt(80))
	bn.Quantity = 2
	sess.Cart.SetBuyNow(bn)

	answerNext(t, sess, true)
	order, err := svc.Checkout(context.Background(), sess, CheckoutRequest{Source: domain.CheckoutSourceBuyNow})
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].UnitPrice.Equal(decimal.NewFromInt(80)))
	assert.True(t, order.Total.Equal(decimal.NewFromInt(160)))
	assert.Nil(t, sess.Cart.BuyNow())
	assert.Len(t, sess.Cart.Items(), 1, "cart is not touched by a buy-now checkout")
}

func TestCheckout_Declined(t *testing.T) {
	repo := newMockOrderRepository()
	svc := newCheckout(repo)
	sess := newSession(t)
	sess.Cart.Add(cartLine("5", 10), 1)

	answerNext(t, sess, false)
	_, err := svc.Checkout(context.Background(), sess, CheckoutRequest{Source: domain.CheckoutSourceCart})
	assert.ErrorIs(t, err, ErrCheckoutDeclined)
	assert.Len(t, sess.Cart.Items(), 1)
	assert.Empty(t, repo.orders)
}

func TestCheckout_NothingToCheckout(t *testing.T) {
	svc := newCheckout(newMockOrderRepository())
	sess := newSession(t)

	_, err := svc.Checkout(context.Background(), sess, CheckoutRequest{Source: domain.CheckoutSourceCart})
	assert.ErrorIs(t, err, ErrNothingToCheckout)

	_, err = svc.Checkout(context.Background(), sess, CheckoutRequest{Source: domain.CheckoutSourceBuyNow})
	assert.ErrorIs(t, err, ErrNothingToCheckout)

	_, err = svc.Checkout(context.Background(), sess, CheckoutRequest{Source: "wishlist"})
	assert.ErrorIs(t, err, ErrInvalidSource)
}

func TestCheckout_ConfirmationAlreadyPending(t *testing.T) {
	svc := newCheckout(newMockOrderRepository())
	sess := newSession(t)
	sess.Cart.Add(cartLine("5", 10), 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _, _ = sess.Confirm.Confirm(ctx, confirm.Prompt{Title: "other"}) }()
	require.Eventually(t, func() bool {
		_, open := sess.Confirm.Pending()
		return open
	}, time.Second, time.Millisecond)

	_, err := svc.Checkout(context.Background(), sess, CheckoutRequest{Source: domain.CheckoutSourceCart})
	assert.ErrorIs(t, err, confirm.ErrPending)
}

func TestCheckout_CartChangedWhileConfirming(t *testing.T) {
	repo := newMockOrderRepository()
	svc := newCheckout(repo)
	sess := newSession(t)
	sess.Cart.Add(cartLine("5", 10), 1)

	go func() {
		for {
			if req, ok := sess.Confirm.Pending(); ok {
				sess.Cart.Add(cartLine("6", 1), 1)
				_ = sess.Confirm.Answer(req.ID, true)
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()

	_, err := svc.Checkout(context.Background(), sess, CheckoutRequest{Source: domain.CheckoutSourceCart})
	assert.ErrorIs(t, err, ErrCartChanged)
	assert.Empty(t, repo.orders)
	assert.Len(t, sess.Cart.Items(), 2)
}

func TestCheckout_RepositoryFailureKeepsCart(t *testing.T) {
	repo := newMockOrderRepository()
	repo.err = errors.New("db down")
	svc := newCheckout(repo)
	sess := newSession(t)
	sess.Cart.Add(cartLine("5", 10), 1)

	answerNext(t, sess, true)
	_, err := svc.Checkout(context.Background(), sess, CheckoutRequest{Source: domain.CheckoutSourceCart})
	assert.Error(t, err)
	assert.Len(t, sess.Cart.Items(), 1)
}

func TestGetAndCancelOrder(t *testing.T) {
	repo := newMockOrderRepository()
	svc := newCheckout(repo)
	sess := newSession(t)
	sess.Cart.Add(cartLine("5", 10), 1)

	answerNext(t, sess, true)
	order, err := svc.Checkout(context.Background(), sess, CheckoutRequest{Source: domain.CheckoutSourceCart})
	require.NoError(t, err)

	got, err := svc.GetOrder(context.Background(), sess.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = svc.GetOrder(context.Background(), uuid.New(), order.ID)
	assert.True(t, apperrors.IsNotFound(err), "orders of other sessions are hidden")

	list, err := svc.ListOrders(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	cancelled, err := svc.CancelOrder(context.Background(), sess.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)

	_, err = svc.CancelOrder(context.Background(), sess.ID, order.ID)
	assert.True(t, apperrors.IsInvalidStateTransition(err))
}

func TestCheckout_BuyNowIgnoresCartEditsWhileConfirming(t *testing.T) {
	repo := newMockOrderRepository()
	svc := newCheckout(repo)
	sess := newSession(t)
	sess.Cart.SetBuyNow(cartLine("9", 100))

	go func() {
		for {
			if req, ok := sess.Confirm.Pending(); ok {
				sess.Cart.Add(cartLine("5", 10), 1)
				_ = sess.Confirm.Answer(req.ID, true)
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()

	order, err := svc.Checkout(context.Background(), sess, CheckoutRequest{Source: domain.CheckoutSourceBuyNow})
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "9", order.Items[0].ProductID)
	assert.Nil(t, sess.Cart.BuyNow())
	assert.Len(t, sess.Cart.Items(), 1, "the line added during the prompt stays in the cart")
}

func TestCheckout_BuyNowReplacedWhileConfirming(t *testing.T) {
	repo := newMockOrderRepository()
	svc := newCheckout(repo)
	sess := newSession(t)
	sess.Cart.SetBuyNow(cartLine("9", 100))

	go func() {
		for {
			if req, ok := sess.Confirm.Pending(); ok {
				sess.Cart.SetBuyNow(cartLine("8", 50))
				_ = sess.Confirm.Answer(req.ID, true)
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()

	_, err := svc.Checkout(context.Background(), sess, CheckoutRequest{Source: domain.CheckoutSourceBuyNow})
	assert.ErrorIs(t, err, ErrCartChanged)
	assert.Empty(t, repo.orders)
	require.NotNil(t, sess.Cart.BuyNow())
	assert.Equal(t, "8", sess.Cart.BuyNow().ProductID)
}

func TestCheckout_RepositoryFailureRestoresBuyNow(t *testing.T) {
	repo := newMockOrderRepository()
	repo.err = errors.New("db down")
	svc := newCheckout(repo)
	sess := newSession(t)
	sess.Cart.SetBuyNow(cartLine("9", 100))

	answerNext(t, sess, true)
	_, err := svc.Checkout(context.Background(), sess, CheckoutRequest{Source: domain.CheckoutSourceBuyNow})
	assert.Error(t, err)
	require.NotNil(t, sess.Cart.BuyNow())
	assert.Equal(t, "9", sess.Cart.BuyNow().ProductID)
}
