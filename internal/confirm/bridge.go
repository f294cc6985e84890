package confirm

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/jafarshop/feedshop/pkg/errors"
)

// ErrPending is returned by Confirm while another request is unanswered
var ErrPending = errors.New("a confirmation is already pending")

// Prompt is the text shown in the confirmation modal
type Prompt struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Request is the currently open confirmation
type Request struct {
	ID        uuid.UUID `json:"id"`
	Prompt    Prompt    `json:"prompt"`
	CreatedAt time.Time `json:"created_at"`
}

type slot struct {
	req   Request
	reply chan bool
}

// Bridge is a single-slot mailbox between code that needs a yes/no answer and
// the modal that collects it
type Bridge struct {
	mu      sync.Mutex
	pending *slot
	logger  *zap.Logger
}

// NewBridge creates a bridge with no pending request
func NewBridge(logger *zap.Logger) *Bridge {
	return &Bridge{logger: logger}
}

// Confirm opens the modal and blocks until the request is answered or ctx
// ends. It returns true only when the user confirmed.
func (b *Bridge) Confirm(ctx context.Context, prompt Prompt) (bool, error) {
	b.mu.Lock()
	if b.pending != nil {
		b.mu.Unlock()
		return false, ErrPending
	}
	s := &slot{
		req: Request{
			ID:        uuid.New(),
			Prompt:    prompt,
			CreatedAt: time.Now().UTC(),
		},
		reply: make(chan bool, 1),
	}
	b.pending = s
	b.mu.Unlock()

	b.logger.Info("Confirmation requested",
		zap.String("confirm_id", s.req.ID.String()),
		zap.String("title", prompt.Title),
	)

	select {
	case ok := <-s.reply:
		return ok, nil
	case <-ctx.Done():
		b.mu.Lock()
		answered := b.pending != s
		if !answered {
			b.pending = nil
		}
		b.mu.Unlock()

		// Answer already claimed the slot; its reply is on the way
		if answered {
			return <-s.reply, nil
		}

		b.logger.Info("Confirmation abandoned",
			zap.String("confirm_id", s.req.ID.String()),
			zap.Error(ctx.Err()),
		)
		return false, ctx.Err()
	}
}

// Pending returns the open request, if any
func (b *Bridge) Pending() (Request, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending == nil {
		return Request{}, false
	}
	return b.pending.req, true
}

// Answer resolves the open request. Each request can be answered once.
func (b *Bridge) Answer(id uuid.UUID, confirmed bool) error {
	b.mu.Lock()
	s := b.pending
	if s == nil || s.req.ID != id {
		b.mu.Unlock()
		return apperrors.NewNotFound("confirmation", id.String())
	}
	b.pending = nil
	b.mu.Unlock()

	s.reply <- confirmed

	b.logger.Info("Confirmation answered",
		zap.String("confirm_id", id.String()),
		zap.Bool("confirmed", confirmed),
	)
	return nil
}

// Dismiss closes the modal without confirming
func (b *Bridge) Dismiss(id uuid.UUID) error {
	return b.Answer(id, false)
}
