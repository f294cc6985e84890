package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypedErrors_Wrapped(t *testing.T) {
	nf := fmt.Errorf("load order: %w", NewNotFound("order", "42"))
	assert.True(t, IsNotFound(nf))
	assert.False(t, IsUnauthorized(nf))
	assert.Equal(t, "load order: order not found: 42", nf.Error())

	tr := fmt.Errorf("cancel: %w", NewInvalidStateTransition("CANCELLED", "CANCELLED"))
	assert.True(t, IsInvalidStateTransition(tr))
	assert.False(t, IsNotFound(tr))

	assert.Equal(t, "unauthorized", NewUnauthorized("").Error())
	assert.Equal(t, "unauthorized: bad token", NewUnauthorized("bad token").Error())
	assert.True(t, IsUnauthorized(NewUnauthorized("x")))
}
