package catalog

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/aluiziolira/go-product-details/parser"
)

// ErrTimeout indicates the catalog did not answer within the request timeout.
type ErrTimeout struct {
	Err error
}

func (e ErrTimeout) Error() string {
	return fmt.Errorf("timeout: %w", e.Err).Error()
}

func (e ErrTimeout) Unwrap() error {
	return e.Err
}

// ErrCanceled indicates the caller gave up on the request.
type ErrCanceled struct {
	Err error
}

func (e ErrCanceled) Error() string {
	return fmt.Errorf("canceled: %w", e.Err).Error()
}

func (e ErrCanceled) Unwrap() error {
	return e.Err
}

// ErrConnection indicates a network connectivity failure.
type ErrConnection struct {
	Err error
}

func (e ErrConnection) Error() string {
	return fmt.Errorf("connection: %w", e.Err).Error()
}

func (e ErrConnection) Unwrap() error {
	return e.Err
}

// ErrUnauthorized indicates the catalog rejected the bearer token (HTTP 401 or 403).
type ErrUnauthorized struct {
	Err error
}

func (e ErrUnauthorized) Error() string {
	return fmt.Errorf("unauthorized: %w", e.Err).Error()
}

func (e ErrUnauthorized) Unwrap() error {
	return e.Err
}

// ErrNotFound indicates the product does not exist (HTTP 404).
type ErrNotFound struct {
	Err error
}

func (e ErrNotFound) Error() string {
	return fmt.Errorf("not_found: %w", e.Err).Error()
}

func (e ErrNotFound) Unwrap() error {
	return e.Err
}

// ErrRateLimited indicates the catalog rate-limited the request.
type ErrRateLimited struct {
	Err error
}

func (e ErrRateLimited) Error() string {
	return fmt.Errorf("rate_limited: %w", e.Err).Error()
}

func (e ErrRateLimited) Unwrap() error {
	return e.Err
}

// ErrUnexpectedStatus covers every other non-2xx response.
type ErrUnexpectedStatus struct {
	StatusCode int
	Err        error
}

func (e ErrUnexpectedStatus) Error() string {
	return fmt.Errorf("unexpected_status %d: %w", e.StatusCode, e.Err).Error()
}

func (e ErrUnexpectedStatus) Unwrap() error {
	return e.Err
}

// Reason labels, shared by failure views and metrics.
const (
	ReasonNotFound         = "not_found"
	ReasonTimeout          = "timeout"
	ReasonCanceled         = "canceled"
	ReasonConnection       = "connection"
	ReasonUnauthorized     = "unauthorized"
	ReasonRateLimited      = "rate_limited"
	ReasonUnexpectedStatus = "unexpected_status"
	ReasonMalformedPayload = "malformed_payload"
	ReasonOther            = "other"
)

// Reason returns the label for a classified fetch error.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var notFound ErrNotFound
	if errors.As(err, &notFound) {
		return ReasonNotFound
	}
	var timeout ErrTimeout
	if errors.As(err, &timeout) {
		return ReasonTimeout
	}
	var canceled ErrCanceled
	if errors.As(err, &canceled) {
		return ReasonCanceled
	}
	var conn ErrConnection
	if errors.As(err, &conn) {
		return ReasonConnection
	}
	var unauthorized ErrUnauthorized
	if errors.As(err, &unauthorized) {
		return ReasonUnauthorized
	}
	var rateLimited ErrRateLimited
	if errors.As(err, &rateLimited) {
		return ReasonRateLimited
	}
	var unexpected ErrUnexpectedStatus
	if errors.As(err, &unexpected) {
		return ReasonUnexpectedStatus
	}
	var malformed *parser.MalformedPayloadError
	if errors.As(err, &malformed) {
		return ReasonMalformedPayload
	}
	return ReasonOther
}

// classifyError maps a transport error and/or status code onto the typed
// errors above. A 2xx status with no error yields nil.
func classifyError(err error, statusCode int) error {
	if err == nil && statusCode >= 200 && statusCode < 300 {
		return nil
	}

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout{Err: err}
		}
		if errors.Is(err, context.Canceled) {
			return ErrCanceled{Err: err}
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return ErrTimeout{Err: err}
		}
		var opErr *net.OpError
		if errors.As(err, &opErr) {
			return ErrConnection{Err: err}
		}
	}

	if statusCode != 0 {
		wrapped := fmt.Errorf("http status %d", statusCode)
		switch statusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ErrUnauthorized{Err: wrapped}
		case http.StatusNotFound:
			return ErrNotFound{Err: wrapped}
		case http.StatusTooManyRequests:
			return ErrRateLimited{Err: wrapped}
		}
		return ErrUnexpectedStatus{StatusCode: statusCode, Err: wrapped}
	}

	if err == nil {
		return ErrConnection{Err: errors.New("no response")}
	}
	return ErrConnection{Err: err}
}
