package resilience

import (
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestIsTransient_TransientError(t *testing.T) {
	err := NewTransientError(eris.New("http 503"), 503)
	assert.True(t, IsTransient(err))
}

func TestIsTransient_WrappedTransientError(t *testing.T) {
	inner := NewTransientError(eris.New("http 429"), 429)
	wrapped := eris.Wrap(inner, "geocode: nominatim reverse")
	assert.True(t, IsTransient(wrapped))
}

func TestIsTransient_PlainError(t *testing.T) {
	assert.False(t, IsTransient(eris.New("invalid argument")))
}

func TestIsTransient_Nil(t *testing.T) {
	assert.False(t, IsTransient(nil))
}

func TestIsTransient_NetworkPatterns(t *testing.T) {
	assert.True(t, IsTransient(eris.New("read tcp: connection reset by peer")))
	assert.True(t, IsTransient(eris.New("dial tcp: i/o timeout")))
	assert.False(t, IsTransient(eris.New("no such file")))
}

func TestRetryAfterHint(t *testing.T) {
	te := NewTransientError(eris.New("http 429"), 429)
	te.RetryAfter = 2 * time.Second

	hint, ok := RetryAfterHint(eris.Wrap(te, "outer"))
	assert.True(t, ok)
	assert.Equal(t, 2*time.Second, hint)
}

func TestRetryAfterHint_NoHint(t *testing.T) {
	_, ok := RetryAfterHint(NewTransientError(eris.New("http 500"), 500))
	assert.False(t, ok)

	_, ok = RetryAfterHint(eris.New("plain"))
	assert.False(t, ok)
}
