package utils

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode(4)
	require.NoError(t, err)

	// 4 random bytes hex-encode to 8 uppercase characters
	assert.Len(t, code, 8)
	for _, c := range code {
		assert.True(t, (c >= '0' && c <= '9') || (c >= 'A' && c <= 'F'), "unexpected character %q", c)
	}
}

func TestGenerateCode_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		code, err := GenerateCode(4)
		require.NoError(t, err)
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
}

func TestGenerateOTP(t *testing.T) {
	otp, err := GenerateOTP(6)
	require.NoError(t, err)

	assert.Len(t, otp, 6)
	for _, c := range otp {
		assert.True(t, c >= '0' && c <= '9', "unexpected character %q", c)
	}
}

func TestCircuitBreaker_Execute_Success(t *testing.T) {
	cb := NewCircuitBreaker("test")

	result, err := cb.Execute(context.Background(), func() (interface{}, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
}

func TestCircuitBreaker_Execute_PropagatesError(t *testing.T) {
	cb := NewCircuitBreaker("test")
	boom := errors.New("boom")

	_, err := cb.Execute(context.Background(), func() (interface{}, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestCircuitBreaker_CustomSettings(t *testing.T) {
	cb := NewCircuitBreakerWithSettings("test", BreakerSettings{
		MaxRequests:  5,
		FailureRatio: 0.5,
	})
	boom := errors.New("boom")

	for i := 0; i < 5; i++ {
		cb.Execute(context.Background(), func() (interface{}, error) {
			return nil, boom
		})
	}

	_, err := cb.Execute(context.Background(), func() (interface{}, error) {
		return "ok", nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open")
}

func TestCircuitBreaker_OpensAfterRepeatedFailures(t *testing.T) {
	cb := NewCircuitBreaker("test")
	boom := errors.New("boom")

	// drive the failure ratio over the trip threshold
	for i := 0; i < 100; i++ {
		cb.Execute(context.Background(), func() (interface{}, error) {
			return nil, boom
		})
	}

	_, err := cb.Execute(context.Background(), func() (interface{}, error) {
		return "ok", nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open")
}
