package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	defaultRetryBaseDelay = time.Second
	defaultRetryMaxDelay  = 10 * time.Second
)

// retryPolicy bounds how often and how long a completion is retried.
type retryPolicy struct {
	attempts  int
	baseDelay time.Duration
	maxDelay  time.Duration
	sleep     func(time.Duration)
}

func defaultRetryPolicy(attempts int) retryPolicy {
	return retryPolicy{
		attempts:  attempts,
		baseDelay: defaultRetryBaseDelay,
		maxDelay:  defaultRetryMaxDelay,
	}
}

func (p retryPolicy) maxAttempts() int {
	if p.attempts < 1 {
		return 1
	}
	return p.attempts
}

func (p retryPolicy) ceiling() time.Duration {
	if p.maxDelay <= 0 {
		return defaultRetryMaxDelay
	}
	return p.maxDelay
}

// next returns the wait before the attempt after attempt (1-based), or false
// when err is final or the attempts are spent. Retry-After takes precedence
// over exponential backoff; both are capped by the ceiling.
func (p retryPolicy) next(err error, attempt int) (time.Duration, bool) {
	if attempt >= p.maxAttempts() || !retryable(err) {
		return 0, false
	}
	limit := p.ceiling()
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) && statusErr.RetryAfter > 0 {
		return min(statusErr.RetryAfter, limit), true
	}
	delay := max(p.baseDelay, 0)
	for i := 1; i < attempt && delay > 0 && delay < limit; i++ {
		delay *= 2
	}
	return min(delay, limit), true
}

// retryable reports whether err is transient: empty content, request
// timeouts, rate limiting, server errors, and network timeouts.
func retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var empty *emptyContentError
	if errors.As(err, &empty) {
		return true
	}
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		code := statusErr.StatusCode
		return code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (p retryPolicy) wait(ctx context.Context, delay time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if delay <= 0 {
		return nil
	}
	if p.sleep != nil {
		p.sleep(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// parseRetryAfter accepts delta-seconds or an HTTP date. Unparseable or
// past values yield zero.
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(max(seconds, 0)) * time.Second
	}
	if when, err := http.ParseTime(value); err == nil && when.After(now) {
		return when.Sub(now)
	}
	return 0
}
