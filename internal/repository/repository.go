package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/jafarshop/feedshop/internal/domain"
)

// OrderRepository persists checkout orders
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error
}

// Repositories groups the repositories used by services and handlers
type Repositories struct {
	Order OrderRepository
}
