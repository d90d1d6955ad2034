package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "plain", err: errors.New("boom"), want: false},
		{name: "connection refused", err: fmt.Errorf("dial: %w", syscall.ECONNREFUSED), want: true},
		{name: "dns", err: &net.DNSError{Err: "no such host", Name: "payments"}, want: true},
		{name: "op error", err: &net.OpError{Op: "read", Err: errors.New("reset")}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableError(tt.err))
		})
	}
}

func TestIsNotDeliveredError(t *testing.T) {
	assert.True(t, isNotDeliveredError(fmt.Errorf("dial: %w", syscall.ECONNREFUSED)))
	assert.False(t, isNotDeliveredError(&net.OpError{Op: "read", Err: errors.New("reset")}))
	assert.False(t, isNotDeliveredError(nil))
}

func TestNewSetsBaseURL(t *testing.T) {
	var hits atomic.Int32

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/ping", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := New(WithBaseURL(ts.URL), WithTimeout(time.Second))

	resp, err := client.R().SetContext(context.Background()).Get("/ping")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, int32(1), hits.Load())
}

func TestNewUsesFixedRetryBackoff(t *testing.T) {
	client := New(WithRetryCount(5))

	assert.Equal(t, 5, client.RetryCount)
	assert.Equal(t, retryWaitTime, client.RetryWaitTime)
	assert.Equal(t, retryMaxWaitTime, client.RetryMaxWaitTime)
}
