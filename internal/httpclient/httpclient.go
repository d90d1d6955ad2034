package httpclient

import (
	"errors"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
)

// Backoff between retries is fixed; only the number of attempts can be changed.
const (
	retryWaitTime      = 1 * time.Second
	retryMaxWaitTime   = 10 * time.Second
	retryAfterInterval = 2
)

type Config struct {
	baseURL    string
	timeout    time.Duration
	retryCount int
}

type Option func(c *Config)

func WithBaseURL(baseURL string) Option {
	return func(c *Config) {
		c.baseURL = baseURL
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.timeout = timeout
	}
}

func WithRetryCount(count int) Option {
	return func(c *Config) {
		c.retryCount = count
	}
}

func New(opts ...Option) *resty.Client {
	cfg := &Config{
		baseURL:    "",
		timeout:    10 * time.Second,
		retryCount: 3,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	client := resty.New().
		SetBaseURL(cfg.baseURL).
		SetTimeout(cfg.timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(cfg.retryCount).       // Number of retry attempts
		SetRetryWaitTime(retryWaitTime).     // Initial wait time between retries
		SetRetryMaxWaitTime(retryMaxWaitTime).
		SetRetryAfter(retryAfterWithInterval(retryAfterInterval)).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			// A credit or an order must never be submitted twice,
			// so non-idempotent requests are only retried when they never left the host.
			if resp != nil && resp.Request != nil && !isIdempotent(resp.Request.Method) {
				return isNotDeliveredError(err)
			}

			return isRetryableError(err)
		})

	return client
}

// retryAfterWithInterval returns duration intervals between retries.
func retryAfterWithInterval(retryWaitInterval int) resty.RetryAfterFunc {
	return func(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
		return time.Duration((resp.Request.Attempt*retryWaitInterval - 1)) * time.Second, nil
	}
}

func isIdempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

// isNotDeliveredError checks if the request failed before reaching the remote side.
func isNotDeliveredError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	var dnsErr *net.DNSError

	return errors.As(err, &dnsErr)
}

// isRetryableError checks if the error is a retryable error.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if isNotDeliveredError(err) {
		// Connection refused or DNS error
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			// Connection timeout error
			return true
		}
	}

	var addrErr *net.AddrError
	if errors.As(err, &addrErr) {
		// Address error
		return true
	}

	// Operational error
	var opErr *net.OpError

	return errors.As(err, &opErr)
}
