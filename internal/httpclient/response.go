package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

var (
	ErrTransport         = errors.New("transport error")
	ErrNotFound          = errors.New("resource not found")
	ErrUnexpectedStatus  = errors.New("unexpected response status")
	ErrMalformedResponse = errors.New("malformed response")
)

// Check converts a failed round trip or a non-2xx response into an error.
func Check(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}

	if resp.IsSuccess() {
		return nil
	}

	if resp.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("%w: %s %s", ErrNotFound, resp.Request.Method, resp.Request.URL)
	}

	return fmt.Errorf("%w: %d %s %s", ErrUnexpectedStatus, resp.StatusCode(), resp.Request.Method, resp.Request.URL)
}

// Decode unmarshals a JSON response body into v.
func Decode(resp *resty.Response, v any) error {
	if err := json.Unmarshal(resp.Body(), v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	return nil
}
