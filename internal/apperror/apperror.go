// Package apperror defines the failure kinds of the intake pipeline. Every
// stage returns one of these; the API error handler turns them into the JSON
// error envelope.
package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	pkgerrors "github.com/pkg/errors"
)

const (
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeAPIKeyInvalid    = "API_KEY_INVALID"
	CodeRateLimited      = "RATE_LIMITED"
	CodeNotFound         = "NOT_FOUND"
	CodeAgentNotFound    = "AGENT_NOT_FOUND"
	CodeUnsupportedMedia = "UNSUPPORTED_MEDIA_TYPE"
	CodeInternal         = "INTERNAL_ERROR"
)

const defaultInternalMessage = "Internal Server Error"

// Error is an HTTP-aware failure. Details is only set for validation errors
// and is always safe to show to the caller.
type Error struct {
	Status  int
	Message string
	Code    string
	Details map[string][]string

	cause error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// HTTPStatus implements StatusCarrier.
func (e *Error) HTTPStatus() int {
	return e.Status
}

// Stack renders the cause with the stack captured when e was created.
func (e *Error) Stack() string {
	if e.cause == nil {
		return ""
	}
	return fmt.Sprintf("%+v", e.cause)
}

// IsValidation reports whether e describes a caller-correctable payload.
func (e *Error) IsValidation() bool {
	return e.Code == CodeValidationFailed
}

// StatusCarrier is implemented by errors that already know their HTTP status.
type StatusCarrier interface {
	HTTPStatus() int
}

func newError(status int, message, code string, cause error) *Error {
	if cause == nil {
		cause = pkgerrors.New(message)
	} else {
		cause = pkgerrors.WithStack(cause)
	}
	return &Error{Status: status, Message: message, Code: code, cause: cause}
}

func Validation(details map[string][]string) *Error {
	e := newError(http.StatusBadRequest, "Invalid request body", CodeValidationFailed, nil)
	e.Details = details
	return e
}

func Unauthorized() *Error {
	return newError(http.StatusUnauthorized, "Unauthorized request", CodeAPIKeyInvalid, nil)
}

func RateLimited() *Error {
	return newError(http.StatusTooManyRequests, "Too many requests, please try again later.", CodeRateLimited, nil)
}

func NotFound(message string) *Error {
	if message == "" {
		message = http.StatusText(http.StatusNotFound)
	}
	return newError(http.StatusNotFound, message, CodeNotFound, nil)
}

func AgentNotFound(name string) *Error {
	return newError(http.StatusNotFound, "Agent not found: "+name, CodeAgentNotFound, nil)
}

// UnsupportedMedia rejects bodies the gateway will not decode: anything that
// is not JSON, or that arrives with a content encoding.
func UnsupportedMedia(message string) *Error {
	return newError(http.StatusUnsupportedMediaType, message, CodeUnsupportedMedia, nil)
}

// Internal wraps an unexpected failure, keeping its message.
func Internal(err error) *Error {
	message := defaultInternalMessage
	if err != nil && err.Error() != "" {
		message = err.Error()
	}
	return newError(http.StatusInternalServerError, message, CodeInternal, err)
}

// WithStatus wraps err under an explicit status, keeping its message.
func WithStatus(status int, err error) *Error {
	message := http.StatusText(status)
	if err != nil && err.Error() != "" {
		message = err.Error()
	}
	code := ""
	if status >= http.StatusInternalServerError {
		code = CodeInternal
	}
	return newError(status, message, code, err)
}

// StatusOf returns the HTTP status carried by err, if any.
func StatusOf(err error) (int, bool) {
	var carrier StatusCarrier
	if errors.As(err, &carrier) && carrier.HTTPStatus() > 0 {
		return carrier.HTTPStatus(), true
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, true
	}
	return 0, false
}

// FromError normalises any error into an *Error. Errors without a status
// become 500s.
func FromError(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := ""
		if fe.Code == http.StatusNotFound {
			code = CodeNotFound
		}
		message := fe.Message
		if message == "" {
			message = http.StatusText(fe.Code)
		}
		return newError(fe.Code, message, code, err)
	}
	if status, ok := StatusOf(err); ok {
		return WithStatus(status, err)
	}
	return Internal(err)
}
