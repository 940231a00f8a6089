package llm

import (
	"context"
	"errors"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/huimingz/commit-composer/internal/config"
	"github.com/huimingz/commit-composer/internal/log"
)

// ErrorType represents the classification of an error for retry purposes
type ErrorType int

const (
	// ErrorTypeRetryable indicates the error is transient and can be retried
	ErrorTypeRetryable ErrorType = iota
	// ErrorTypeNonRetryable indicates the error is permanent and should not be retried
	ErrorTypeNonRetryable
	// ErrorTypeUnknown indicates the error type is unknown and is not retried
	ErrorTypeUnknown
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrorTypeRetryable:
		return "Retryable"
	case ErrorTypeNonRetryable:
		return "NonRetryable"
	default:
		return "Unknown"
	}
}

// HTTPStatusError is implemented by errors that carry an HTTP status code
type HTTPStatusError interface {
	error
	HTTPStatusCode() int
}

// statusCoder matches errors exposing StatusCode(), as several SDK error types do
type statusCoder interface {
	error
	StatusCode() int
}

var (
	nonRetryableKeywords = []string{
		"context length",
		"context_length",
		"maximum context",
		"token limit",
		"tokens exceeded",
		"api key not valid",
		"permission denied",
	}
	retryableKeywords = []string{
		"timeout",
		"rate limit",
		"resource exhausted",
		"resource_exhausted",
		"unavailable",
		"overloaded",
	}
)

// ClassifyError determines if an error is retryable based on its type and content
func ClassifyError(err error) ErrorType {
	if err == nil {
		return ErrorTypeNonRetryable
	}

	// Cancellation comes from the user
	if errors.Is(err, context.Canceled) {
		return ErrorTypeNonRetryable
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTypeRetryable
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrorTypeRetryable
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ErrorTypeRetryable
	}

	var statusErr HTTPStatusError
	if errors.As(err, &statusErr) {
		return classifyHTTPStatus(statusErr.HTTPStatusCode())
	}
	var coder statusCoder
	if errors.As(err, &coder) {
		return classifyHTTPStatus(coder.StatusCode())
	}

	msg := strings.ToLower(err.Error())
	for _, keyword := range nonRetryableKeywords {
		if strings.Contains(msg, keyword) {
			return ErrorTypeNonRetryable
		}
	}
	for _, keyword := range retryableKeywords {
		if strings.Contains(msg, keyword) {
			return ErrorTypeRetryable
		}
	}

	return ErrorTypeUnknown
}

func classifyHTTPStatus(statusCode int) ErrorType {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return ErrorTypeRetryable
	case statusCode >= 500:
		return ErrorTypeRetryable
	case statusCode >= 400:
		return ErrorTypeNonRetryable
	default:
		return ErrorTypeUnknown
	}
}

// CalculateBackoff returns min(base * 2^(attempt-1), max) seconds
func CalculateBackoff(attempt int, base, max float64) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	backoff := math.Min(base*math.Pow(2, float64(attempt-1)), max)
	return time.Duration(backoff * float64(time.Second))
}

// RetryConfig holds configuration for retry behavior
type RetryConfig struct {
	Enabled     bool    // Whether retry is enabled
	MaxAttempts int     // Retries after the first attempt
	BackoffBase float64 // Base backoff duration in seconds
	BackoffMax  float64 // Maximum backoff duration in seconds
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() RetryConfig {
	return FromConfig(config.DefaultRetryConfig())
}

// FromConfig converts the file configuration section into a RetryConfig.
// A nil section yields the defaults.
func FromConfig(cfg *config.RetryConfig) RetryConfig {
	if cfg == nil {
		cfg = config.DefaultRetryConfig()
	}
	return RetryConfig{
		Enabled:     cfg.Enabled,
		MaxAttempts: cfg.MaxAttempts,
		BackoffBase: cfg.BackoffBase,
		BackoffMax:  cfg.BackoffMax,
	}
}

// Validate validates the retry configuration
func (c *RetryConfig) Validate() error {
	if c.MaxAttempts < 0 {
		return errors.New("max_attempts must be non-negative")
	}
	if c.BackoffBase < 0 {
		return errors.New("backoff_base must be non-negative")
	}
	if c.BackoffMax < c.BackoffBase {
		return errors.New("backoff_max must be greater than or equal to backoff_base")
	}
	return nil
}

// WithRetry executes fn, retrying transient failures
func WithRetry(ctx context.Context, cfg RetryConfig, fn func() error) error {
	_, err := WithRetryResult(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// WithRetryResult executes fn, retrying transient failures, and returns its result.
// Only errors classified as retryable are retried; the last error is returned
// once cfg.MaxAttempts retries are used up.
func WithRetryResult[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	if !cfg.Enabled || cfg.MaxAttempts <= 0 {
		return fn()
	}

	var zero T
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}

		if ClassifyError(err) != ErrorTypeRetryable || attempt > cfg.MaxAttempts {
			return zero, err
		}

		backoff := CalculateBackoff(attempt, cfg.BackoffBase, cfg.BackoffMax)
		log.Debug("Attempt %d failed (%v), retrying in %v", attempt, err, backoff)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}
