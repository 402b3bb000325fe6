package httperr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusinessErrorThroughWrapping(t *testing.T) {
	err := fmt.Errorf("booking: %w", ErrBusinessDetail("payment_failed", "invalid customer"))

	assert.True(t, IsBusiness(err, "payment_failed"))
	assert.False(t, IsBusiness(err, "slot_unavailable"))
	assert.Equal(t, "payment_failed", CodeOf(err))
	assert.Equal(t, "invalid customer", DetailOf(err))
	assert.Equal(t, "booking: payment_failed: invalid customer", err.Error())
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, "", CodeOf(fmt.Errorf("boom")))
	assert.Equal(t, "", DetailOf(nil))
}
