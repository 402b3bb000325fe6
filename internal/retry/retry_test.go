package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/companion-booking/internal/httperr"
)

func TestLinearBackOff(t *testing.T) {
	b := &Linear{Delay: 10 * time.Millisecond}

	assert.Equal(t, 10*time.Millisecond, b.NextBackOff())
	assert.Equal(t, 20*time.Millisecond, b.NextBackOff())
	assert.Equal(t, 30*time.Millisecond, b.NextBackOff())

	b.Reset()
	assert.Equal(t, 10*time.Millisecond, b.NextBackOff())
}

func TestDo_RetriesTransientErrors(t *testing.T) {
	calls := 0
	v, err := Do(context.Background(), Policy{Attempts: 3, Delay: time.Millisecond}, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("connection reset")
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 3, calls)
}

func TestDo_GivesUpAfterAttempts(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), Policy{Attempts: 2, Delay: time.Millisecond}, func() (int, error) {
		calls++
		return 0, errors.New("connection reset")
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestDo_PermanentErrorsAreNotRetried(t *testing.T) {
	cases := []error{
		gorm.ErrRecordNotFound,
		httperr.ErrBusiness("service_not_found"),
	}

	for _, want := range cases {
		calls := 0
		_, err := Do(context.Background(), Policy{Attempts: 5, Delay: time.Millisecond}, func() (string, error) {
			calls++
			return "", want
		})

		assert.ErrorIs(t, err, want)
		assert.Equal(t, 1, calls)
	}
}
