package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixed_SucceedsOnLastAttempt(t *testing.T) {
	calls := 0
	v, err := Fixed(context.Background(), 5, time.Millisecond, func(context.Context) (string, error) {
		calls++
		if calls < 5 {
			return "", errors.New("not yet")
		}
		return "done", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "done", v)
	assert.Equal(t, 5, calls)
}

func TestFixed_Exhausted(t *testing.T) {
	cause := errors.New("still failing")
	calls := 0
	_, err := Fixed(context.Background(), 3, time.Millisecond, func(context.Context) (int, error) {
		calls++
		return 0, cause
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 3, calls)
}

func TestFixed_ContextCancelledBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Fixed(ctx, 100, 50*time.Millisecond, func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, errors.New("fail")
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestFixed_FirstAttemptImmediate(t *testing.T) {
	start := time.Now()
	_, err := Fixed(context.Background(), 1, time.Second, func(context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}
