package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

type upstreamError struct{ status int }

func (e upstreamError) Error() string   { return "upstream said no" }
func (e upstreamError) HTTPStatus() int { return e.status }

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *Error
		status int
		code   string
		msg    string
	}{
		{name: "validation", err: Validation(map[string][]string{"input": {"is required"}}), status: 400, code: CodeValidationFailed, msg: "Invalid request body"},
		{name: "unauthorized", err: Unauthorized(), status: 401, code: CodeAPIKeyInvalid, msg: "Unauthorized request"},
		{name: "rate limited", err: RateLimited(), status: 429, code: CodeRateLimited, msg: "Too many requests, please try again later."},
		{name: "not found", err: NotFound(""), status: 404, code: CodeNotFound, msg: "Not Found"},
		{name: "agent not found", err: AgentNotFound("financialAgent"), status: 404, code: CodeAgentNotFound, msg: "Agent not found: financialAgent"},
		{name: "unsupported media", err: UnsupportedMedia("Content-Type must be application/json"), status: 415, code: CodeUnsupportedMedia, msg: "Content-Type must be application/json"},
		{name: "internal", err: Internal(errors.New("boom")), status: 500, code: CodeInternal, msg: "boom"},
		{name: "internal without message", err: Internal(nil), status: 500, code: CodeInternal, msg: "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.msg, tt.err.Error())
			assert.NotEmpty(t, tt.err.Stack())
		})
	}
}

func TestFromError(t *testing.T) {
	original := Unauthorized()
	assert.Same(t, original, FromError(fmt.Errorf("wrapped: %w", original)))

	fe := FromError(fiber.ErrRequestEntityTooLarge)
	assert.Equal(t, http.StatusRequestEntityTooLarge, fe.Status)
	assert.Equal(t, "Request Entity Too Large", fe.Message)

	nf := FromError(fiber.NewError(http.StatusNotFound, "Cannot GET /nope"))
	assert.Equal(t, CodeNotFound, nf.Code)

	up := FromError(upstreamError{status: http.StatusBadGateway})
	assert.Equal(t, http.StatusBadGateway, up.Status)
	assert.Equal(t, "upstream said no", up.Message)

	plain := FromError(errors.New("disk on fire"))
	assert.Equal(t, http.StatusInternalServerError, plain.Status)
	assert.Equal(t, "disk on fire", plain.Message)
	assert.True(t, errors.Is(plain, plain.Unwrap()))
}

func TestStatusOf(t *testing.T) {
	status, ok := StatusOf(RateLimited())
	assert.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, status)

	status, ok = StatusOf(fmt.Errorf("ctx: %w", fiber.ErrBadGateway))
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, status)

	_, ok = StatusOf(errors.New("no status here"))
	assert.False(t, ok)
}
