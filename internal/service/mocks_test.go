package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jafarshop/feedshop/internal/catalog"
	"github.com/jafarshop/feedshop/internal/domain"
	"github.com/jafarshop/feedshop/internal/session"
	apperrors "github.com/jafarshop/feedshop/pkg/errors"
)

type mockOrderRepository struct {
	m      sync.RWMutex
	orders map[uuid.UUID]*domain.Order
	err    error
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{orders: make(map[uuid.UUID]*domain.Order)}
}

func (m *mockOrderRepository) Create(_ context.Context, order *domain.Order) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	stored := *order
	m.orders[order.ID] = &stored
	return nil
}

func (m *mockOrderRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	order, ok := m.orders[id]
	if !ok {
		return nil, apperrors.NewNotFound("order", id.String())
	}
	copied := *order
	return &copied, nil
}

func (m *mockOrderRepository) ListBySession(_ context.Context, sessionID uuid.UUID) ([]*domain.Order, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	var out []*domain.Order
	for _, o := range m.orders {
		if o.SessionID == sessionID {
			copied := *o
			out = append(out, &copied)
		}
	}
	return out, m.err
}

func (m *mockOrderRepository) UpdateStatus(_ context.Context, id uuid.UUID, status domain.OrderStatus) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	order, ok := m.orders[id]
	if !ok {
		return apperrors.NewNotFound("order", id.String())
	}
	order.Status = status
	return nil
}

type mockProducts struct {
	results map[string]catalog.Result[*domain.Product]
}

func (m mockProducts) FetchProduct(_ context.Context, id string) catalog.Result[*domain.Product] {
	if r, ok := m.results[id]; ok {
		return r
	}
	return catalog.Empty[*domain.Product]()
}

func newSession(t *testing.T) *session.Session {
	t.Helper()
	reg := session.NewRegistry(time.Hour, bcrypt.MinCost, zap.NewNop())
	sess, _, err := reg.Create()
	require.NoError(t, err)
	return sess
}

// answerNext resolves the next confirmation opened on sess
func answerNext(t *testing.T, sess *session.Session, confirmed bool) <-chan string {
	t.Helper()
	prompt := make(chan string, 1)
	go func() {
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			if req, ok := sess.Confirm.Pending(); ok {
				prompt <- req.Prompt.Description
				_ = sess.Confirm.Answer(req.ID, confirmed)
				return
			}
			time.Sleep(time.Millisecond)
		}
		close(prompt)
	}()
	return prompt
}
