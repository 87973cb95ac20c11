package colorbook

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies protocol-level failures.
type ErrorKind int

const (
	KindInvalidResponse ErrorKind = iota + 1
	KindServerError
	KindInvalidURL
	KindCancelled
	KindDecodeFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidResponse:
		return "invalid_response"
	case KindServerError:
		return "server_error"
	case KindInvalidURL:
		return "invalid_url"
	case KindCancelled:
		return "cancelled"
	case KindDecodeFailure:
		return "decode_failure"
	default:
		return "unknown"
	}
}

// ServiceError is returned for every non-transport failure of an API call.
type ServiceError struct {
	Kind       ErrorKind
	StatusCode int // set for KindServerError
	Err        error
}

// ErrImageTooLarge is returned by FetchBytes when a body exceeds the download limit.
var ErrImageTooLarge = errors.New("image too large")

// Sentinels for errors.Is. ErrServerError matches any status code.
var (
	ErrInvalidResponse = &ServiceError{Kind: KindInvalidResponse}
	ErrServerError     = &ServiceError{Kind: KindServerError}
	ErrInvalidURL      = &ServiceError{Kind: KindInvalidURL}
	ErrCancelled       = &ServiceError{Kind: KindCancelled}
	ErrDecodeFailure   = &ServiceError{Kind: KindDecodeFailure}
)

func (e *ServiceError) Error() string {
	switch e.Kind {
	case KindInvalidResponse:
		return "Invalid response from server"
	case KindServerError:
		return fmt.Sprintf("Server error: %d", e.StatusCode)
	case KindInvalidURL:
		return "Invalid server URL"
	case KindCancelled:
		return "Request cancelled"
	case KindDecodeFailure:
		return "Image could not be decoded"
	default:
		if e.Err != nil {
			return e.Err.Error()
		}
		return "unknown service error"
	}
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Is matches another ServiceError of the same kind. A target with a zero
// StatusCode matches any status.
func (e *ServiceError) Is(target error) bool {
	t, ok := target.(*ServiceError)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.StatusCode == 0 || t.StatusCode == e.StatusCode
}

// ServerError builds a KindServerError for the given HTTP status.
func ServerError(status int) *ServiceError {
	return &ServiceError{Kind: KindServerError, StatusCode: status}
}

// IsCancelled reports whether err represents a cancelled call.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}

// StatusCode extracts the HTTP status from a server error, or 0.
func StatusCode(err error) int {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.Kind == KindServerError {
		return svcErr.StatusCode
	}
	return 0
}

func cancelled(err error) *ServiceError {
	return &ServiceError{Kind: KindCancelled, Err: err}
}

func invalidResponse(err error) *ServiceError {
	return &ServiceError{Kind: KindInvalidResponse, Err: err}
}

func invalidURL(err error) *ServiceError {
	return &ServiceError{Kind: KindInvalidURL, Err: err}
}
