package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jafarshop/feedshop/internal/domain"
	"github.com/jafarshop/feedshop/pkg/errors"
)

const (
	insertOrderSQL = `INSERT INTO orders (id, session_id, user_id, source, status, currency, total, created_at, updated_at)`
	insertItemSQL  = `INSERT INTO order_items (id, order_id, product_id, variant_id, name, unit_price, quantity, shop_id)`
	selectOrderSQL = `SELECT id, session_id, user_id, source, status, currency, total, created_at, updated_at`
	selectItemsSQL = `SELECT id, order_id, product_id, variant_id, name, unit_price, quantity, shop_id`
)

var (
	orderColumns = []string{"id", "session_id", "user_id", "source", "status", "currency", "total", "created_at", "updated_at"}
	itemColumns  = []string{"id", "order_id", "product_id", "variant_id", "name", "unit_price", "quantity", "shop_id"}
)

func newMockRepo(t *testing.T) (*orderRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewOrderRepository(db, zap.NewNop()), mock
}

func sampleOrder() *domain.Order {
	return &domain.Order{
		SessionID: uuid.New(),
		UserID:    "u-1",
		Source:    domain.CheckoutSourceCart,
		Status:    domain.OrderStatusPending,
		Currency:  "USD",
		Total:     decimal.NewFromInt(30),
		Items: []domain.OrderItem{
			{ProductID: "5", Name: "Lamp", UnitPrice: decimal.NewFromInt(10), Quantity: 3, ShopID: "2"},
		},
	}
}

func TestCreate_InsertsOrderAndItemsInTransaction(t *testing.T) {
	repo, mock := newMockRepo(t)
	order := sampleOrder()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(insertOrderSQL)).
		WithArgs(sqlmock.AnyArg(), order.SessionID, "u-1", "cart", "PENDING", "USD", decimal.NewFromInt(30), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertItemSQL)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "5", "", "Lamp", decimal.NewFromInt(10), 3, "2").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), order))

	assert.NotEqual(t, uuid.Nil, order.ID)
	assert.False(t, order.CreatedAt.IsZero())
	assert.Equal(t, order.ID, order.Items[0].OrderID)
	assert.NotEqual(t, uuid.Nil, order.Items[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_RollsBackOnItemFailure(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(insertOrderSQL)).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertItemSQL)).WillReturnError(fmt.Errorf("constraint violation"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), sampleOrder())
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()
	sessionID := uuid.New()
	created := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(selectOrderSQL)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(orderColumns).
			AddRow(id.String(), sessionID.String(), "u-1", "buy_now", "PENDING", "USD", "99.50", created, created))
	mock.ExpectQuery(regexp.QuoteMeta(selectItemsSQL)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(itemColumns).
			AddRow(uuid.NewString(), id.String(), "7", "red", "Chair", "99.50", 1, "3"))

	order, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, id, order.ID)
	assert.Equal(t, sessionID, order.SessionID)
	assert.Equal(t, domain.CheckoutSourceBuyNow, order.Source)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("99.5")))
	require.Len(t, order.Items, 1)
	assert.Equal(t, "red", order.Items[0].VariantID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(selectOrderSQL)).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), id)
	assert.True(t, errors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListBySession(t *testing.T) {
	repo, mock := newMockRepo(t)
	sessionID := uuid.New()
	first, second := uuid.New(), uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(selectOrderSQL)).
		WithArgs(sessionID).
		WillReturnRows(sqlmock.NewRows(orderColumns).
			AddRow(first.String(), sessionID.String(), "", "cart", "PENDING", "USD", "10", now, now).
			AddRow(second.String(), sessionID.String(), "", "cart", "CANCELLED", "USD", "20", now, now))
	mock.ExpectQuery(regexp.QuoteMeta(selectItemsSQL)).
		WithArgs(first).
		WillReturnRows(sqlmock.NewRows(itemColumns))
	mock.ExpectQuery(regexp.QuoteMeta(selectItemsSQL)).
		WithArgs(second).
		WillReturnRows(sqlmock.NewRows(itemColumns).
			AddRow(uuid.NewString(), second.String(), "1", "", "Pen", "20", 1, ""))

	orders, err := repo.ListBySession(context.Background(), sessionID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Empty(t, orders[0].Items)
	assert.Len(t, orders[1].Items, 1)
	assert.Equal(t, domain.OrderStatusCancelled, orders[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE orders`)).
		WithArgs(id, "CANCELLED", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateStatus(context.Background(), id, domain.OrderStatusCancelled))

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE orders`)).
		WithArgs(id, "CANCELLED", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.UpdateStatus(context.Background(), id, domain.OrderStatusCancelled)
	assert.True(t, errors.IsNotFound(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}
