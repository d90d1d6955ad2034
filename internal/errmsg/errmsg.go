package errmsg

import (
	"errors"
	"net/http"
)

type HTTPError struct {
	Code    int
	Message error
}

func NewHTTPError(code int, message error) HTTPError {
	return HTTPError{Code: code, Message: message}
}

func (e *HTTPError) Error() string {
	return e.Message.Error()
}

var (
	ErrRequestPayloadEmpty = NewHTTPError(
		http.StatusBadRequest,
		errors.New("request payload is empty"),
	)

	ErrRequestPayloadInvalid = NewHTTPError(
		http.StatusBadRequest,
		errors.New("request payload is invalid"),
	)
)

var (
	ErrTopUpAmountInvalid = NewHTTPError(
		http.StatusBadRequest,
		errors.New("top-up amount must be a positive number"),
	)

	ErrAccountNotReady = NewHTTPError(
		http.StatusConflict,
		errors.New("account is not ready yet"),
	)
)

var (
	ErrOrderInFlight = NewHTTPError(
		http.StatusConflict,
		errors.New("previous order is still awaiting settlement"),
	)

	ErrDashboardClosed = NewHTTPError(
		http.StatusServiceUnavailable,
		errors.New("dashboard is shutting down"),
	)
)

// NewUpstreamError reports a failed call to the account or order service.
func NewUpstreamError(err error) HTTPError {
	return NewHTTPError(http.StatusBadGateway, err)
}
