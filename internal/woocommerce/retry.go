package woocommerce

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"time"
)

// RetryConfig defines retry behavior for calls against the store API.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
	Jitter         float64
	RetryableCodes []int
}

// DefaultRetryConfig retries transient failures a bounded number of times.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
		BackoffFactor:  2.0,
		Jitter:         0.1,
		RetryableCodes: []int{
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout,
		},
	}
}

// Retrier executes HTTP operations with exponential backoff.
type Retrier struct {
	config *RetryConfig
}

func NewRetrier(config *RetryConfig) *Retrier {
	if config == nil {
		config = DefaultRetryConfig()
	}
	return &Retrier{config: config}
}

// ShouldRetry reports whether a response warrants another attempt. Network
// errors (status 0) always do.
func (r *Retrier) ShouldRetry(statusCode int, err error) bool {
	if err != nil && statusCode == 0 {
		return true
	}
	for _, code := range r.config.RetryableCodes {
		if statusCode == code {
			return true
		}
	}
	return false
}

// CalculateBackoff returns the wait before the given zero-based attempt's
// retry. A Retry-After hint from the server takes precedence.
func (r *Retrier) CalculateBackoff(attempt int, retryAfter time.Duration) time.Duration {
	if retryAfter > 0 {
		return retryAfter
	}

	backoff := float64(r.config.InitialBackoff) * math.Pow(r.config.BackoffFactor, float64(attempt))
	if r.config.Jitter > 0 {
		backoff += backoff * r.config.Jitter * (rand.Float64()*2 - 1)
	}
	if backoff > float64(r.config.MaxBackoff) {
		backoff = float64(r.config.MaxBackoff)
	}
	return time.Duration(backoff)
}

// ParseRetryAfter extracts the Retry-After duration from a response, in
// either seconds or HTTP-date form.
func ParseRetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(retryAfter); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(retryAfter); err == nil {
		return time.Until(t)
	}
	return 0
}

// RetryableFunc reports the outcome of one attempt as an HTTP status code.
type RetryableFunc func(ctx context.Context) (statusCode int, err error)

// Do runs fn until it succeeds, fails non-retryably, or exhausts attempts.
func (r *Retrier) Do(ctx context.Context, operation string, fn RetryableFunc) error {
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		statusCode, err := fn(ctx)
		lastErr = err

		if err == nil && statusCode >= 200 && statusCode < 300 {
			return nil
		}
		if !r.ShouldRetry(statusCode, err) {
			return err
		}
		if attempt >= r.config.MaxRetries {
			return fmt.Errorf("max retries exceeded for %s: %w", operation, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.CalculateBackoff(attempt, 0)):
		}
	}
	return lastErr
}

// RetryableResponseFunc performs one HTTP attempt.
type RetryableResponseFunc func(ctx context.Context) (*http.Response, error)

// DoHTTP runs an HTTP operation with retry, returning the last response. The
// caller owns the response body.
func (r *Retrier) DoHTTP(ctx context.Context, operation string, fn RetryableResponseFunc) (*http.Response, error) {
	var lastResp *http.Response
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		resp, err := fn(ctx)
		lastResp, lastErr = resp, err

		var retryAfter time.Duration
		if err != nil {
			if !r.ShouldRetry(0, err) {
				return resp, err
			}
		} else {
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return resp, nil
			}
			retryAfter = ParseRetryAfter(resp)
			if !r.ShouldRetry(resp.StatusCode, nil) {
				return resp, nil
			}
		}

		if attempt >= r.config.MaxRetries {
			if lastErr != nil {
				return lastResp, fmt.Errorf("max retries exceeded for %s: %w", operation, lastErr)
			}
			return lastResp, nil
		}

		// a retried response body will never be read
		if resp != nil {
			resp.Body.Close()
		}

		select {
		case <-ctx.Done():
			return lastResp, ctx.Err()
		case <-time.After(r.CalculateBackoff(attempt, retryAfter)):
		}
	}
	return lastResp, lastErr
}
