package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jira-dashboard/internal/logging"
)

func TestRetry(t *testing.T) {
	t.Run("succeeds first try", func(t *testing.T) {
		calls := 0
		err := Retry(logging.NewNop(), 3, 0, func() error {
			calls++
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := Retry(logging.NewNop(), 3, time.Millisecond, func() error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("exhausts attempts and wraps the last error", func(t *testing.T) {
		sentinel := errors.New("still down")
		calls := 0
		err := Retry(logging.NewNop(), 3, 0, func() error {
			calls++
			return sentinel
		})

		assert.Equal(t, 3, calls)
		assert.ErrorIs(t, err, sentinel)
	})

	t.Run("permanent error aborts immediately and unwraps", func(t *testing.T) {
		sentinel := errors.New("gone")
		calls := 0
		err := Retry(logging.NewNop(), 5, 0, func() error {
			calls++
			return Permanent(sentinel)
		})

		assert.Equal(t, 1, calls)
		assert.Equal(t, sentinel, err)
	})
}
