package notes_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	notes "github.com/goliatone/go-notes"
	"github.com/goliatone/go-notes/middleware/jwtware"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: http.StatusOK},
		{name: "validation", err: notes.ErrValidation, want: http.StatusBadRequest},
		{name: "duplicate", err: notes.ErrDuplicateCredential, want: http.StatusBadRequest},
		{name: "invalid credentials", err: notes.ErrInvalidCredentials, want: http.StatusBadRequest},
		{name: "missing token", err: notes.ErrMissingToken, want: http.StatusUnauthorized},
		{name: "invalid token", err: notes.ErrInvalidToken, want: http.StatusUnauthorized},
		{name: "not allowed", err: notes.ErrNotAllowed, want: http.StatusUnauthorized},
		{name: "not found", err: notes.ErrNotFound, want: http.StatusNotFound},
		{name: "internal", err: notes.ErrInternal, want: http.StatusInternalServerError},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
		{name: "wrapped", err: fmt.Errorf("loading: %w", notes.ErrNotFound), want: http.StatusNotFound},
		{name: "middleware missing", err: jwtware.ErrMissingToken, want: http.StatusUnauthorized},
		{name: "middleware invalid", err: fmt.Errorf("%w: bad", jwtware.ErrInvalidToken), want: http.StatusUnauthorized},
		{name: "fiber not found", err: fiber.ErrNotFound, want: http.StatusNotFound},
		{name: "fiber bad request", err: fiber.ErrBadRequest, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, notes.HTTPStatus(tt.err))
		})
	}
}

func TestIsError(t *testing.T) {
	custom := notes.ErrNotFound.Clone()
	custom.Message = "Notes not found for the user"

	assert.True(t, notes.IsError(custom, notes.ErrNotFound))
	assert.False(t, notes.IsError(custom, notes.ErrNotAllowed))
	assert.True(t, notes.IsError(fmt.Errorf("loading: %w", custom), notes.ErrNotFound))
	assert.Equal(t, "Not found", notes.ErrNotFound.Message, "sentinels are not mutated")

	// both token errors share a message but remain distinct
	assert.Equal(t, notes.ErrMissingToken.Message, notes.ErrInvalidToken.Message)
	assert.False(t, notes.IsError(notes.ErrMissingToken, notes.ErrInvalidToken))
	assert.Equal(t, notes.TextCodeInvalidToken, notes.ErrInvalidToken.TextCode)

	assert.False(t, notes.IsError(nil, notes.ErrNotFound))
	assert.False(t, notes.IsError(errors.New("plain"), notes.ErrNotFound))
	assert.False(t, notes.IsError(notes.ErrNotFound, nil))
}

func TestIsError_FollowsSource(t *testing.T) {
	inner := notes.ErrDuplicateCredential.Clone()
	outer := goerrors.New("register failed", goerrors.CategoryOperation)
	outer.Source = inner

	assert.True(t, notes.IsError(outer, notes.ErrDuplicateCredential))
	assert.False(t, notes.IsError(outer, notes.ErrValidation))
}

func TestAsError(t *testing.T) {
	assert.Nil(t, notes.AsError(nil))

	e := notes.AsError(jwtware.ErrMissingToken)
	assert.Equal(t, notes.TextCodeMissingToken, e.TextCode)
	assert.ErrorIs(t, e, jwtware.ErrMissingToken)

	e = notes.AsError(fmt.Errorf("%w: expired", jwtware.ErrInvalidToken))
	assert.Equal(t, notes.TextCodeInvalidToken, e.TextCode)

	e = notes.AsError(fiber.NewError(fiber.StatusNotFound, "Cannot GET /nope"))
	assert.Equal(t, notes.TextCodeNotFound, e.TextCode)
	assert.Equal(t, "Cannot GET /nope", e.Message)

	cause := errors.New("connection refused")
	e = notes.AsError(cause)
	assert.Equal(t, notes.TextCodeInternal, e.TextCode)
	assert.Equal(t, goerrors.CategoryInternal, e.Category)
	assert.Equal(t, notes.ErrInternal.Message, e.Message)
	assert.ErrorIs(t, e, cause)

	original := notes.ErrValidation.Clone()
	assert.Same(t, original, notes.AsError(fmt.Errorf("wrapped: %w", original)))
}

func TestAsError_KeepsInternalMetadata(t *testing.T) {
	cause := errors.New("disk on fire")
	wrapped := goerrors.Wrap(cause, goerrors.CategoryInternal, "store call failed").
		WithMetadata(map[string]any{"table": "notes", "operation": "create"})

	e := notes.AsError(wrapped)
	require.NotNil(t, e)
	assert.Equal(t, notes.TextCodeInternal, e.TextCode)
	assert.Equal(t, "notes", e.Metadata["table"])
	assert.Equal(t, "create", e.Metadata["operation"])
	assert.ErrorIs(t, e, cause)
	assert.Nil(t, notes.ErrInternal.Metadata)
}

func TestSentinelCodes(t *testing.T) {
	tests := []struct {
		err      *goerrors.Error
		category goerrors.Category
		textCode string
	}{
		{notes.ErrValidation, goerrors.CategoryValidation, notes.TextCodeValidation},
		{notes.ErrDuplicateCredential, goerrors.CategoryConflict, notes.TextCodeDuplicateCredential},
		{notes.ErrInvalidCredentials, goerrors.CategoryAuth, notes.TextCodeInvalidCredentials},
		{notes.ErrNotAllowed, goerrors.CategoryAuthz, notes.TextCodeNotAllowed},
		{notes.ErrNotFound, goerrors.CategoryNotFound, notes.TextCodeNotFound},
		{notes.ErrInternal, goerrors.CategoryInternal, notes.TextCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.textCode, func(t *testing.T) {
			assert.Equal(t, tt.category, tt.err.Category)
			assert.Equal(t, tt.textCode, tt.err.TextCode)
		})
	}
}
