package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jafarshop/feedshop/internal/domain"
	"github.com/jafarshop/feedshop/pkg/errors"
)

func newRegistry(ttl time.Duration) (*Registry, *time.Time) {
	clock := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(ttl, bcrypt.MinCost, zap.NewNop())
	r.now = func() time.Time { return clock }
	return r, &clock
}

func TestCreateAndAuthenticate(t *testing.T) {
	r, _ := newRegistry(time.Hour)

	s, token, err := r.Create()
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.NotNil(t, s.Cart)
	assert.NotNil(t, s.Confirm)
	assert.NotEqual(t, []byte(token), s.tokenHash)

	got, err := r.Authenticate(s.ID, token)
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = r.Authenticate(s.ID, "wrong")
	assert.True(t, errors.IsUnauthorized(err))

	_, err = r.Authenticate(uuid.New(), token)
	assert.True(t, errors.IsUnauthorized(err))
}

func TestSessionsAreIsolated(t *testing.T) {
	r, _ := newRegistry(time.Hour)
	a, _, err := r.Create()
	require.NoError(t, err)
	b, _, err := r.Create()
	require.NoError(t, err)

	a.Cart.Add(domain.CartItem{ProductID: "1"}, 1)

	assert.Len(t, a.Cart.Items(), 1)
	assert.Empty(t, b.Cart.Items())
	assert.NotSame(t, a.Confirm, b.Confirm)
}

func TestAuthenticate_ExpiredSession(t *testing.T) {
	r, clock := newRegistry(time.Hour)
	s, token, err := r.Create()
	require.NoError(t, err)

	*clock = clock.Add(30 * time.Minute)
	_, err = r.Authenticate(s.ID, token)
	require.NoError(t, err, "activity refreshes the idle timer")

	*clock = clock.Add(61 * time.Minute)
	_, err = r.Authenticate(s.ID, token)
	assert.True(t, errors.IsUnauthorized(err))
	assert.Equal(t, 0, r.Len())
}

func TestSweep(t *testing.T) {
	r, clock := newRegistry(time.Hour)
	old, oldToken, err := r.Create()
	require.NoError(t, err)

	*clock = clock.Add(50 * time.Minute)
	fresh, freshToken, err := r.Create()
	require.NoError(t, err)

	removed := r.Sweep(clock.Add(20 * time.Minute))
	assert.Equal(t, 1, removed)

	assert.Equal(t, 1, r.Len())

	// still inside the old session's TTL, so only the sweep can explain the rejection
	_, err = r.Authenticate(old.ID, oldToken)
	assert.True(t, errors.IsUnauthorized(err))
	_, err = r.Authenticate(fresh.ID, freshToken)
	assert.NoError(t, err)
}

func TestDelete(t *testing.T) {
	r, _ := newRegistry(0)
	s, token, err := r.Create()
	require.NoError(t, err)

	r.Delete(s.ID)

	_, err = r.Authenticate(s.ID, token)
	assert.True(t, errors.IsUnauthorized(err))

	_, _, err = r.Create()
	require.NoError(t, err)
	assert.Equal(t, 0, r.Sweep(time.Now().Add(1000*time.Hour)), "ttl of zero never expires")
	assert.Equal(t, 1, r.Len())
}
