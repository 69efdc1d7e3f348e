package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain", err: stderrors.New("disk full"), want: "disk full"},
		{name: "tool stderr verbatim", err: ErrToolFailed("clip.mp4: Invalid data found\n", nil), want: "clip.mp4: Invalid data found\n"},
		{name: "wrapped", err: fmt.Errorf("stage: %w", ErrNotFound("a.png", nil)), want: "not found: a.png"},
		{name: "internal", err: ErrInternal(context.Canceled), want: "context canceled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestMediaErrorUnwrap(t *testing.T) {
	err := ErrDecode("a.png", io.ErrUnexpectedEOF)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.True(t, HasCode(err, CodeDecode))
	assert.False(t, HasCode(err, CodeEncode))
	assert.Equal(t, "decode_error: could not read a.png (unexpected EOF)", err.Error())
	assert.Equal(t, "invalid_input: bad", ErrInvalidInput("bad").Error())
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{name: "not found", err: ErrNotFound("job 1", nil), wantCode: 404, wantBody: `{"error":"not_found","message":"not found: job 1"}`},
		{name: "invalid", err: ErrInvalidInput("bad"), wantCode: 400, wantBody: `{"error":"invalid_input","message":"bad"}`},
		{name: "unsupported", err: ErrUnsupported("nope"), wantCode: 400, wantBody: `{"error":"unsupported","message":"nope"}`},
		{name: "tool", err: ErrToolFailed("stderr", nil), wantCode: 422, wantBody: `{"error":"tool_failed","message":"stderr"}`},
		{name: "encode", err: ErrEncode("x.jpg", nil), wantCode: 500, wantBody: `{"error":"encode_error","message":"could not write x.jpg"}`},
		{name: "unknown", err: stderrors.New("secret detail"), wantCode: 500, wantBody: `{"error":"internal_error","message":"internal server error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return HandleError(c, zap.NewNop(), tt.err)
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode)
			assert.JSONEq(t, tt.wantBody, string(body))
		})
	}
}
