package notes

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-notes/middleware/jwtware"
)

const (
	TextCodeValidation          = "VALIDATION"
	TextCodeDuplicateCredential = "DUPLICATE_CREDENTIAL"
	TextCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	TextCodeMissingToken        = "MISSING_TOKEN"
	TextCodeInvalidToken        = "INVALID_TOKEN"
	TextCodeNotAllowed          = "NOT_ALLOWED"
	TextCodeNotFound            = "NOT_FOUND"
	TextCodeInternal            = "INTERNAL"
	TextCodeMissingSigningKey   = "MISSING_SIGNING_KEY"
	TextCodeEmptyPassword       = "EMPTY_PASSWORD"
)

// ErrValidation is returned for malformed input
var ErrValidation = goerrors.New("Validation failed", goerrors.CategoryValidation).
	WithTextCode(TextCodeValidation).
	WithCode(goerrors.CodeBadRequest)

// ErrDuplicateCredential is returned when registering an email already in use
var ErrDuplicateCredential = goerrors.New("An account with this email already exists", goerrors.CategoryConflict).
	WithTextCode(TextCodeDuplicateCredential).
	WithCode(goerrors.CodeBadRequest)

// ErrInvalidCredentials covers both unknown email and wrong password
var ErrInvalidCredentials = goerrors.New("Invalid credentials", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(goerrors.CodeBadRequest)

// ErrMissingToken is returned when a protected route gets no token
var ErrMissingToken = goerrors.New("Please authenticate using a valid token", goerrors.CategoryAuth).
	WithTextCode(TextCodeMissingToken).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidToken is returned for bad signatures, bad payloads and wrong roles
var ErrInvalidToken = goerrors.New("Please authenticate using a valid token", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidToken).
	WithCode(goerrors.CodeUnauthorized)

// ErrNotAllowed is returned when an id equality check fails
var ErrNotAllowed = goerrors.New("Not Allowed", goerrors.CategoryAuthz).
	WithTextCode(TextCodeNotAllowed).
	WithCode(goerrors.CodeUnauthorized)

// ErrNotFound is returned for absent records
var ErrNotFound = goerrors.New("Not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrInternal is the public face of every unexpected failure
var ErrInternal = goerrors.New("Internal Server Error", goerrors.CategoryInternal).
	WithTextCode(TextCodeInternal).
	WithCode(goerrors.CodeInternal)

// ErrMissingSigningKey is a fatal configuration error
var ErrMissingSigningKey = goerrors.New("token signing key is required", goerrors.CategoryBadInput).
	WithTextCode(TextCodeMissingSigningKey)

// ErrNoEmptyString is returned when hashing an empty password
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(goerrors.CodeBadRequest)

// Not found messages per resource
const (
	MsgAdminNotFound = "Admin not found"
	MsgUserNotFound  = "User not found"
	MsgNoteNotFound  = "Note not found"
)

// derive copies base so call sites can set their own message and cause
// without touching the shared sentinel.
func derive(base *goerrors.Error, message string, source error) *goerrors.Error {
	clone := base.Clone()
	if message != "" {
		clone.Message = message
	}
	if source != nil {
		clone.Source = source
	}
	return clone
}

// IsError reports whether err, or any taxonomy error it wraps, carries the
// text code of target.
func IsError(err error, target *goerrors.Error) bool {
	if target == nil {
		return false
	}
	for err != nil {
		var e *goerrors.Error
		if !goerrors.As(err, &e) {
			return false
		}
		if e == target || (target.TextCode != "" && e.TextCode == target.TextCode) {
			return true
		}
		err = e.Source
	}
	return false
}

// AsError normalizes any error into the taxonomy. Unknown errors become
// ErrInternal wrapping the cause.
func AsError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, jwtware.ErrMissingToken):
		return derive(ErrMissingToken, "", err)
	case errors.Is(err, jwtware.ErrInvalidToken):
		return derive(ErrInvalidToken, "", err)
	}

	var e *goerrors.Error
	if goerrors.As(err, &e) && e.Category != goerrors.CategoryInternal {
		return e
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch fe.Code {
		case fiber.StatusNotFound:
			return derive(ErrNotFound, fe.Message, err)
		case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
			return derive(ErrValidation, fe.Message, err)
		}
	}

	internal := derive(ErrInternal, "", err)
	if e != nil && len(e.Metadata) > 0 {
		internal.WithMetadata(e.Metadata)
	}
	return internal
}

// HTTPStatus maps an error onto its response status
func HTTPStatus(err error) int {
	e := AsError(err)
	if e == nil {
		return http.StatusOK
	}

	switch e.Category {
	case goerrors.CategoryValidation, goerrors.CategoryConflict:
		return http.StatusBadRequest
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		if e.TextCode == TextCodeInvalidCredentials {
			return http.StatusBadRequest
		}
		return http.StatusUnauthorized
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "duplicate key value")
}
