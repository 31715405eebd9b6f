// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshintel/citemaster/pkg/types"
)

// testPolicy keeps delays tiny so tests finish quickly.
func testPolicy(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, BaseDelay: time.Millisecond, Multiplier: 2.0}
}

func TestDo_ImmediateSuccess(t *testing.T) {
	calls := 0
	err := testPolicy(5).Do(context.Background(), nil, "search", func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_TransientThenSuccess(t *testing.T) {
	calls := 0
	err := testPolicy(3).Do(context.Background(), nil, "search", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return &types.APIError{API: "CrossRef", StatusCode: http.StatusBadGateway}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_TerminalErrorNotRetried(t *testing.T) {
	calls := 0
	bad := &types.APIError{API: "CrossRef", StatusCode: http.StatusBadRequest}
	err := testPolicy(5).Do(context.Background(), nil, "search", func(ctx context.Context) error {
		calls++
		return bad
	})
	assert.Equal(t, 1, calls)

	var ae *types.APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusBadRequest, ae.StatusCode)
	assert.NotContains(t, err.Error(), "attempts")
}

func TestDo_ExhaustionTagsAttemptCount(t *testing.T) {
	calls := 0
	err := testPolicy(3).Do(context.Background(), nil, "search", func(ctx context.Context) error {
		calls++
		return &types.APIError{API: "CrossRef", StatusCode: http.StatusInternalServerError}
	})
	assert.Equal(t, 3, calls)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API error after 3 attempts")
}

func TestDo_UntypedErrorIsTransient(t *testing.T) {
	calls := 0
	err := testPolicy(2).Do(context.Background(), nil, "fetch", func(ctx context.Context) error {
		calls++
		return errors.New("connection reset")
	})
	assert.Equal(t, 2, calls)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API error after 2 attempts")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestDo_ContextCancelledDuringWait(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 5, BaseDelay: 500 * time.Millisecond, Multiplier: 2.0}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := p.Do(ctx, nil, "search", func(ctx context.Context) error {
		return &types.APIError{API: "CrossRef", StatusCode: http.StatusServiceUnavailable}
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDo_RateLimitHonorsRetryAfter(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond, Multiplier: 2.0}

	calls := 0
	start := time.Now()
	err := p.Do(context.Background(), nil, "search", func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return &types.RateLimitError{API: "CrossRef", RetryAfter: 30 * time.Millisecond}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"validation", &types.ValidationError{Field: "title", Reason: "empty"}, false},
		{"not found", &types.NotFoundError{Kind: "doi", Key: "Some Title"}, false},
		{"format", &types.FormatError{Style: "harvard"}, false},
		{"client error", &types.APIError{API: "CrossRef", StatusCode: 404}, false},
		{"server error", &types.APIError{API: "CrossRef", StatusCode: 503}, true},
		{"network error", &types.APIError{API: "CrossRef", StatusCode: 0}, true},
		{"rate limit", &types.RateLimitError{API: "CrossRef"}, true},
		{"untyped", errors.New("boom"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Retryable(tt.err))
		})
	}
}

func TestPolicyFromConfig_Defaults(t *testing.T) {
	p := PolicyFromConfig(types.RetryConfig{})
	assert.Equal(t, 3, p.MaxAttempts)
	assert.Equal(t, time.Second, p.BaseDelay)
	assert.Equal(t, 2.0, p.Multiplier)
}

func TestCheckStatus(t *testing.T) {
	serve := func(status int, retryAfter string) *http.Response {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if retryAfter != "" {
				w.Header().Set("Retry-After", retryAfter)
			}
			w.WriteHeader(status)
		}))
		defer ts.Close()

		resp, err := http.Get(ts.URL)
		require.NoError(t, err)
		resp.Body.Close()
		return resp
	}

	assert.NoError(t, CheckStatus(serve(http.StatusOK, ""), "CrossRef"))

	var rl *types.RateLimitError
	err := CheckStatus(serve(http.StatusTooManyRequests, "7"), "CrossRef")
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 7*time.Second, rl.RetryAfter)

	var ae *types.APIError
	err = CheckStatus(serve(http.StatusBadGateway, ""), "doi.org")
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusBadGateway, ae.StatusCode)
	assert.True(t, ae.Temporary())
}

func TestNewLimiter_DisabledWhenNonPositive(t *testing.T) {
	l := NewLimiter(0)
	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
}
