package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicErrorClassifies(t *testing.T) {
	err := fmt.Errorf("failed to checkout: %w", Public(ErrValidation, "Cart is empty"))

	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrConflict)

	var pe *PublicError
	assert.True(t, errors.As(err, &pe))
	assert.Equal(t, "Cart is empty", pe.Msg)
}
