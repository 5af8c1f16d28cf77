// Package box provides an HTTP client for the Box file-storage API:
// ticket authorization, folders, file upload/download/versioning and deletion.
package box

import (
	"errors"
	"fmt"
	"net/http"
)

// Precondition errors. These are returned before any network I/O.
// Use errors.Is(err, box.ErrValidation) to check.
var (
	ErrValidation     = errors.New("box: invalid argument")
	ErrTypeMismatch   = errors.New("box: wrong argument type")
	ErrFileNotFound   = errors.New("box: local file does not exist")
	ErrNotAuthorized  = errors.New("box: session is not authorized")
	ErrAuthorization  = errors.New("box: authorization failed")
	ErrNotImplemented = errors.New("box: not implemented")
)

// Sentinel errors for HTTP status code classification.
var (
	ErrBadRequest         = errors.New("box: bad request")
	ErrUnauthorized       = errors.New("box: unauthorized")
	ErrForbidden          = errors.New("box: forbidden")
	ErrNotFound           = errors.New("box: not found")
	ErrConflict           = errors.New("box: conflict")
	ErrPreconditionFailed = errors.New("box: precondition failed")
	ErrThrottled          = errors.New("box: throttled")
	ErrServerError        = errors.New("box: server error")
	ErrUnexpectedStatus   = errors.New("box: unexpected status")
)

// APIError wraps a sentinel error with HTTP status code, request ID,
// and the API error message body for debugging.
type APIError struct {
	StatusCode int
	RequestID  string
	Message    string
	Err        error // sentinel, for errors.Is()
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("box: HTTP %d (request-id: %s): %s", e.StatusCode, e.RequestID, e.Message)
	}

	return fmt.Sprintf("box: HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyStatus maps a non-2xx HTTP status code to a sentinel error.
func classifyStatus(code int) error {
	switch code {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusPreconditionFailed:
		return ErrPreconditionFailed
	case http.StatusTooManyRequests:
		return ErrThrottled
	default:
		if code >= http.StatusInternalServerError {
			return ErrServerError
		}

		return ErrUnexpectedStatus
	}
}

// notImplemented builds the error returned by endpoints this client does not cover.
func notImplemented(op string) error {
	return fmt.Errorf("%w: %s", ErrNotImplemented, op)
}
