package notes_test

import (
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	notes "github.com/goliatone/go-notes"
)

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	require.True(t, notes.IsError(err, notes.ErrValidation))
	var e *goerrors.Error
	require.True(t, goerrors.As(err, &e))
	return e.ValidationMap()
}

func TestValidate_RegisterPayload(t *testing.T) {
	assert.NoError(t, notes.Validate(notes.RegisterPayload{
		Name:     "Jane",
		Email:    "jane@example.com",
		Password: "secret",
	}))

	fields := fieldsOf(t, notes.Validate(notes.RegisterPayload{}))
	assert.Len(t, fields, 3)

	fields = fieldsOf(t, notes.Validate(notes.RegisterPayload{
		Name:     "Jane",
		Email:    "jane@example.com",
		Password: strings.Repeat("x", 73),
	}))
	assert.Equal(t, map[string]string{"password": "password must have 5 to 72 characters"}, fields)
}

func TestValidate_UpdateProfilePayload(t *testing.T) {
	fields := fieldsOf(t, notes.Validate(notes.UpdateProfilePayload{}))
	assert.Contains(t, fields, "name")

	assert.NoError(t, notes.Validate(notes.UpdateProfilePayload{Name: "Janet"}))
	assert.NoError(t, notes.Validate(notes.UpdateProfilePayload{Password: "secret"}))

	fields = fieldsOf(t, notes.Validate(notes.UpdateProfilePayload{Name: "Jo"}))
	assert.Equal(t, "Name must be at least 3 characters", fields["name"])
}

func TestValidate_NotePayloads(t *testing.T) {
	fields := fieldsOf(t, notes.Validate(notes.NotePayload{Title: "ab", Description: "abcd"}))
	assert.Equal(t, "Enter a valid title", fields["title"])
	assert.Equal(t, "Description must be at least 5 characters", fields["description"])

	assert.NoError(t, notes.Validate(notes.NoteUpdatePayload{}))
	assert.NoError(t, notes.Validate(notes.NoteUpdatePayload{Tag: "x"}))

	fields = fieldsOf(t, notes.Validate(notes.NoteUpdatePayload{Title: "ab"}))
	assert.Contains(t, fields, "title")

	fields = fieldsOf(t, notes.Validate(notes.InfoPayload{Title: "Maintenance"}))
	assert.Contains(t, fields, "description")
}
