package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	s := NewCircuitBreakerService(3, quietLogger())
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		_, err := s.Execute("odds", func() (interface{}, error) { return nil, boom })
		assert.ErrorIs(t, err, boom)
	}

	// Breaker is now open: calls fail fast without invoking fn.
	called := false
	_, err := s.Execute("odds", func() (interface{}, error) {
		called = true
		return nil, nil
	})
	assert.Error(t, err)
	assert.False(t, called)

	assert.Equal(t, "open", s.State()["odds"])
	assert.Error(t, s.Healthy())
}

func TestCircuitBreakersAreIndependent(t *testing.T) {
	s := NewCircuitBreakerService(1, quietLogger())

	_, err := s.Execute("odds", func() (interface{}, error) { return nil, errors.New("down") })
	assert.Error(t, err)

	out, err := s.Execute("weather", func() (interface{}, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, out)
	assert.NoError(t, func() error {
		if s.State()["weather"] != "closed" {
			return errors.New("weather breaker should stay closed")
		}
		return nil
	}())
}

func TestCircuitBreakerPassesResults(t *testing.T) {
	s := NewCircuitBreakerService(5, quietLogger())
	out, err := s.Execute("roster", func() (interface{}, error) { return "players", nil })
	require.NoError(t, err)
	assert.Equal(t, "players", out)
	assert.NoError(t, s.Healthy())
}
