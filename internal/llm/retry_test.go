package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/huimingz/commit-composer/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// statusError is an error carrying an HTTP status code
type statusError struct {
	Code    int
	Message string
}

func (e *statusError) Error() string {
	return e.Message
}

func (e *statusError) StatusCode() int {
	return e.Code
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeNonRetryable},
		{"network dial", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, ErrorTypeRetryable},
		{"dns", &net.DNSError{Err: "no such host"}, ErrorTypeRetryable},
		{"deadline exceeded", context.DeadlineExceeded, ErrorTypeRetryable},
		{"canceled", context.Canceled, ErrorTypeNonRetryable},
		{"wrapped canceled", fmt.Errorf("generate: %w", context.Canceled), ErrorTypeNonRetryable},
		{"429", &statusError{Code: http.StatusTooManyRequests, Message: "slow down"}, ErrorTypeRetryable},
		{"500", &statusError{Code: http.StatusInternalServerError, Message: "oops"}, ErrorTypeRetryable},
		{"503", &statusError{Code: http.StatusServiceUnavailable, Message: "down"}, ErrorTypeRetryable},
		{"400", &statusError{Code: http.StatusBadRequest, Message: "bad"}, ErrorTypeNonRetryable},
		{"401", &statusError{Code: http.StatusUnauthorized, Message: "who"}, ErrorTypeNonRetryable},
		{"404", &statusError{Code: http.StatusNotFound, Message: "where"}, ErrorTypeNonRetryable},
		{"200", &statusError{Code: http.StatusOK, Message: "ok"}, ErrorTypeUnknown},
		{"wrapped status", fmt.Errorf("call: %w", &statusError{Code: 502, Message: "gw"}), ErrorTypeRetryable},
		{"context length", errors.New("maximum context length is 128000"), ErrorTypeNonRetryable},
		{"token limit", errors.New("token limit exceeded"), ErrorTypeNonRetryable},
		{"invalid key", errors.New("Error 400, Message: API key not valid"), ErrorTypeNonRetryable},
		{"resource exhausted", errors.New("Error 429, Status: RESOURCE_EXHAUSTED"), ErrorTypeRetryable},
		{"timeout text", errors.New("read: i/o timeout"), ErrorTypeRetryable},
		{"unknown", errors.New("some unknown error"), ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestErrorType_String(t *testing.T) {
	assert.Equal(t, "Retryable", ErrorTypeRetryable.String())
	assert.Equal(t, "NonRetryable", ErrorTypeNonRetryable.String())
	assert.Equal(t, "Unknown", ErrorTypeUnknown.String())
	assert.Equal(t, "Unknown", ErrorType(999).String())
}

func TestCalculateBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		base    float64
		max     float64
		want    time.Duration
	}{
		{0, 1.0, 8.0, time.Second},
		{1, 1.0, 8.0, time.Second},
		{2, 1.0, 8.0, 2 * time.Second},
		{3, 1.0, 8.0, 4 * time.Second},
		{10, 1.0, 8.0, 8 * time.Second},
		{2, 2.0, 16.0, 4 * time.Second},
		{1, 0.5, 8.0, 500 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt=%d base=%v", tt.attempt, tt.base), func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateBackoff(tt.attempt, tt.base, tt.max))
		})
	}
}

func TestRetryConfig(t *testing.T) {
	t.Run("defaults follow the config package", func(t *testing.T) {
		cfg := DefaultRetryConfig()
		assert.True(t, cfg.Enabled)
		assert.Equal(t, 2, cfg.MaxAttempts)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("from config", func(t *testing.T) {
		cfg := FromConfig(&config.RetryConfig{Enabled: false, MaxAttempts: 4, BackoffBase: 0.5, BackoffMax: 2})
		assert.Equal(t, RetryConfig{Enabled: false, MaxAttempts: 4, BackoffBase: 0.5, BackoffMax: 2}, cfg)
		assert.Equal(t, DefaultRetryConfig(), FromConfig(nil))
	})

	t.Run("validate", func(t *testing.T) {
		for _, cfg := range []RetryConfig{
			{MaxAttempts: -1, BackoffBase: 1, BackoffMax: 8},
			{MaxAttempts: 3, BackoffBase: -1, BackoffMax: 8},
			{MaxAttempts: 3, BackoffBase: 10, BackoffMax: 5},
		} {
			assert.Error(t, cfg.Validate(), "%+v", cfg)
		}
	})
}

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{Enabled: true, MaxAttempts: attempts, BackoffBase: 0.001, BackoffMax: 0.01}
}

func TestWithRetryResult(t *testing.T) {
	unavailable := &statusError{Code: http.StatusServiceUnavailable, Message: "service unavailable"}

	t.Run("success on first call", func(t *testing.T) {
		calls := 0
		got, err := WithRetryResult(context.Background(), fastRetry(3), func() (string, error) {
			calls++
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", got)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries transient errors", func(t *testing.T) {
		calls := 0
		got, err := WithRetryResult(context.Background(), fastRetry(3), func() (int, error) {
			calls++
			if calls < 3 {
				return 0, unavailable
			}
			return 42, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 42, got)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops after max attempts", func(t *testing.T) {
		calls := 0
		_, err := WithRetryResult(context.Background(), fastRetry(2), func() (int, error) {
			calls++
			return 0, unavailable
		})
		assert.ErrorIs(t, err, unavailable)
		assert.Equal(t, 3, calls)
	})

	t.Run("permanent errors are not retried", func(t *testing.T) {
		calls := 0
		_, err := WithRetryResult(context.Background(), fastRetry(3), func() (int, error) {
			calls++
			return 0, &statusError{Code: http.StatusBadRequest, Message: "bad request"}
		})
		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("disabled runs once", func(t *testing.T) {
		cfg := fastRetry(3)
		cfg.Enabled = false
		calls := 0
		_, err := WithRetryResult(context.Background(), cfg, func() (int, error) {
			calls++
			return 0, unavailable
		})
		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := WithRetryResult(ctx, fastRetry(3), func() (int, error) {
			return 0, unavailable
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestWithRetry(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), fastRetry(1), func() error {
		calls++
		if calls == 1 {
			return context.DeadlineExceeded
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}
