// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Use tiny delays so tests finish quickly.
	RetryBaseDelay = 1 * time.Millisecond
	MaxRetryAfter = 1 * time.Millisecond
}

func statusServer(t *testing.T, calls *int32, status func(n int32) int) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := atomic.AddInt32(calls, 1)
		w.WriteHeader(status(n))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestDoWithRetry(t *testing.T) {
	tests := []struct {
		name       string
		status     func(n int32) int
		maxRetries int
		wantStatus int
		wantCalls  int32
	}{
		{
			name:       "immediate success",
			status:     func(int32) int { return http.StatusOK },
			maxRetries: 5,
			wantStatus: http.StatusOK,
			wantCalls:  1,
		},
		{
			name: "retries 429 then succeeds",
			status: func(n int32) int {
				if n <= 2 {
					return http.StatusTooManyRequests
				}
				return http.StatusOK
			},
			maxRetries: 5,
			wantStatus: http.StatusOK,
			wantCalls:  3,
		},
		{
			name: "retries 503 while model loads",
			status: func(n int32) int {
				if n == 1 {
					return http.StatusServiceUnavailable
				}
				return http.StatusOK
			},
			maxRetries: 5,
			wantStatus: http.StatusOK,
			wantCalls:  2,
		},
		{
			name:       "exhausts retries",
			status:     func(int32) int { return http.StatusTooManyRequests },
			maxRetries: 3,
			wantStatus: http.StatusTooManyRequests,
			wantCalls:  4,
		},
		{
			name:       "default max retries",
			status:     func(int32) int { return http.StatusTooManyRequests },
			wantStatus: http.StatusTooManyRequests,
			wantCalls:  3,
		},
		{
			name:       "non-retryable error passes through",
			status:     func(int32) int { return http.StatusInternalServerError },
			maxRetries: 5,
			wantStatus: http.StatusInternalServerError,
			wantCalls:  1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			ts := statusServer(t, &calls, tt.status)

			req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
			require.NoError(t, err)

			resp, err := DoWithRetry(context.Background(), ts.Client(), req, tt.maxRetries)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))
		})
	}
}

func TestDoWithRetry_ReplaysBody(t *testing.T) {
	var bodies []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))
		if len(bodies) == 1 {
			w.Header().Set("Retry-After", "20")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	req, err := http.NewRequest(http.MethodPost, ts.URL, strings.NewReader(`{"inputs":"x"}`))
	require.NoError(t, err)

	resp, err := DoWithRetry(context.Background(), ts.Client(), req, 2)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{`{"inputs":"x"}`, `{"inputs":"x"}`}, bodies)
}

func TestDoWithRetry_ContextCancelled(t *testing.T) {
	var calls int32
	ts := statusServer(t, &calls, func(int32) int { return http.StatusTooManyRequests })

	// Use a longer base delay so the context cancels during the wait.
	old := RetryBaseDelay
	RetryBaseDelay = 500 * time.Millisecond
	defer func() { RetryBaseDelay = old }()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	_, err = DoWithRetry(ctx, ts.Client(), req, 5)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRetryDelay(t *testing.T) {
	oldBase, oldMax := RetryBaseDelay, MaxRetryAfter
	RetryBaseDelay, MaxRetryAfter = time.Second, 30*time.Second
	defer func() { RetryBaseDelay, MaxRetryAfter = oldBase, oldMax }()

	resp := func(h string) *http.Response {
		r := &http.Response{Header: http.Header{}}
		if h != "" {
			r.Header.Set("Retry-After", h)
		}
		return r
	}
	assert.Equal(t, time.Second, retryDelay(resp(""), 0))
	assert.Equal(t, 4*time.Second, retryDelay(resp(""), 2))
	assert.Equal(t, 7*time.Second, retryDelay(resp("7"), 0))
	assert.Equal(t, 30*time.Second, retryDelay(resp("600"), 0))
	assert.Equal(t, 2*time.Second, retryDelay(resp("Wed, 21 Oct 2015 07:28:00 GMT"), 1))
}
