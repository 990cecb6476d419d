package lumina

import (
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy configures transport-level retries. Retrying is strictly a
// transport concern: the client's executors never retry on their own, and
// only idempotent GET requests are ever re-sent. Creates and deletes go
// out exactly once regardless of policy.
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// retryTransport wraps a RoundTripper with exponential backoff for GET
// requests that fail at the network level or with a 5xx status.
type retryTransport struct {
	base   http.RoundTripper
	policy RetryPolicy
}

func newRetryTransport(base http.RoundTripper, policy RetryPolicy) *retryTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if policy.InitialInterval <= 0 {
		policy.InitialInterval = 100 * time.Millisecond
	}
	if policy.MaxInterval <= 0 {
		policy.MaxInterval = 2 * time.Second
	}
	return &retryTransport{base: base, policy: policy}
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.base.RoundTrip(req)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = t.policy.InitialInterval
	bo.MaxInterval = t.policy.MaxInterval

	var resp *http.Response
	operation := func() error {
		r, err := t.base.RoundTrip(req)
		if err != nil {
			return err
		}
		if r.StatusCode >= http.StatusInternalServerError {
			_ = r.Body.Close()
			return fmt.Errorf("server returned %d", r.StatusCode)
		}
		resp = r
		return nil
	}

	err := backoff.Retry(operation,
		backoff.WithContext(backoff.WithMaxRetries(bo, t.policy.MaxRetries), req.Context()))
	if err != nil {
		return nil, err
	}
	return resp, nil
}
