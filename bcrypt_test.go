package notes_test

import (
	"strings"
	"sync"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	notes "github.com/goliatone/go-notes"
)

func TestBcryptHasher_Hash(t *testing.T) {
	h := notes.NewBcryptHasher(notes.MinBcryptCost)

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "Valid password",
			password: "securePassword123!",
			wantErr:  false,
		},
		{
			name:     "Empty password",
			password: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := h.Hash(tt.password)

			if tt.wantErr {
				assert.True(t, notes.IsError(err, notes.ErrNoEmptyString))
				return
			}

			assert.NoError(t, err)
			assert.NotEmpty(t, hash)
			assert.True(t, h.Verify(tt.password, hash))
		})
	}
}

func TestBcryptHasher_CostClamp(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{name: "below minimum", in: 4, want: notes.MinBcryptCost},
		{name: "zero", in: 0, want: notes.MinBcryptCost},
		{name: "minimum", in: 10, want: 10},
		{name: "above minimum", in: 11, want: 11},
		{name: "above maximum", in: 99, want: bcrypt.MaxCost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, notes.NewBcryptHasher(tt.in).Cost())
		})
	}

	hash, err := notes.NewBcryptHasher(4).Hash("password")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, notes.MinBcryptCost, cost)
}

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	h := notes.NewBcryptHasher(notes.MinBcryptCost)

	first, err := h.Hash("hunter22")
	require.NoError(t, err)
	second, err := h.Hash("hunter22")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "every hash carries its own salt")
	assert.NotContains(t, first, "hunter22")

	assert.True(t, h.Verify("hunter22", first))
	assert.True(t, h.Verify("hunter22", second))
	assert.False(t, h.Verify("hunter23", first))
	assert.False(t, h.Verify("", first))
}

func TestBcryptHasher_MalformedHash(t *testing.T) {
	h := notes.NewBcryptHasher(notes.MinBcryptCost)

	for _, hashed := range []string{"", "not-a-hash", "$2a$10$short", strings.Repeat("x", 60)} {
		assert.NotPanics(t, func() {
			assert.False(t, h.Verify("password", hashed))
		})
	}
}

func TestBcryptHasher_Rejects(t *testing.T) {
	h := notes.NewBcryptHasher(notes.MinBcryptCost)

	_, err := h.Hash("")
	assert.True(t, notes.IsError(err, notes.ErrNoEmptyString))

	_, err = h.Hash(strings.Repeat("a", 73))
	assert.True(t, notes.IsError(err, notes.ErrValidation))
	assert.Equal(t, 400, notes.HTTPStatus(err))

	fields, ok := goerrors.GetValidationErrors(err)
	require.True(t, ok)
	require.Len(t, fields, 1)
	assert.Equal(t, "password", fields[0].Field)
}

func TestBcryptHasher_Concurrent(t *testing.T) {
	h := notes.NewBcryptHasher(notes.MinBcryptCost)

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hash, err := h.Hash("concurrent")
			if err == nil && !h.Verify("concurrent", hash) {
				err = notes.ErrInvalidCredentials
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}
