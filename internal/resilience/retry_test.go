package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		JitterFraction: 0,
	}
}

func TestDo_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastRetry(3), func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesTransientErrors(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastRetry(3), func(context.Context) error {
		calls++
		if calls < 3 {
			return NewTransientError(eris.New("http 503"), 503)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnPermanentError(t *testing.T) {
	calls := 0
	permanent := eris.New("bad request")
	err := Do(context.Background(), fastRetry(3), func(context.Context) error {
		calls++
		return permanent
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastRetry(3), func(context.Context) error {
		calls++
		return NewTransientError(eris.New("http 429"), 429)
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ContextCancellationStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, fastRetry(5), func(context.Context) error {
		calls++
		cancel()
		return NewTransientError(eris.New("http 503"), 503)
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoVal_ReturnsValue(t *testing.T) {
	calls := 0
	val, err := DoVal(context.Background(), fastRetry(3), func(context.Context) (string, error) {
		calls++
		if calls < 2 {
			return "", NewTransientError(eris.New("http 502"), 502)
		}
		return "94536", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "94536", val)
	assert.Equal(t, 2, calls)
}

func TestDo_HonorsRetryAfterHint(t *testing.T) {
	cfg := fastRetry(2)
	cfg.InitialBackoff = time.Millisecond

	hint := 50 * time.Millisecond
	te := NewTransientError(eris.New("http 429"), 429)
	te.RetryAfter = hint

	calls := 0
	start := time.Now()
	err := Do(context.Background(), cfg, func(context.Context) error {
		calls++
		if calls == 1 {
			return te
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.GreaterOrEqual(t, time.Since(start), hint, "hint must override the 1ms backoff")
}

func TestDo_RetryAfterHintCappedByMaxBackoff(t *testing.T) {
	cfg := fastRetry(2)
	cfg.MaxBackoff = 10 * time.Millisecond

	te := NewTransientError(eris.New("http 429"), 429)
	te.RetryAfter = time.Hour

	start := time.Now()
	_ = Do(context.Background(), cfg, func(context.Context) error {
		return te
	})
	assert.Less(t, time.Since(start), time.Second)
}

func TestDo_OnRetryCallback(t *testing.T) {
	cfg := fastRetry(3)
	var attempts []int
	cfg.OnRetry = func(attempt int, err error) {
		attempts = append(attempts, attempt)
	}

	_ = Do(context.Background(), cfg, func(context.Context) error {
		return NewTransientError(eris.New("http 503"), 503)
	})
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestDo_CustomShouldRetry(t *testing.T) {
	cfg := fastRetry(3)
	cfg.ShouldRetry = func(error) bool { return true }

	calls := 0
	_ = Do(context.Background(), cfg, func(context.Context) error {
		calls++
		return eris.New("normally permanent")
	})
	assert.Equal(t, 3, calls)
}
