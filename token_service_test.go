package notes_test

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	notes "github.com/goliatone/go-notes"
)

// tamper replaces a character in the middle of a token segment. The last
// character is avoided since its padding bits may not change the bytes.
func tamper(token string, segment int) string {
	parts := strings.Split(token, ".")
	b := []byte(parts[segment])
	i := len(b) / 2
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}
	parts[segment] = string(b)
	return strings.Join(parts, ".")
}

// flipPaddingBits rewrites the final signature character so that only its
// unused low bits change. A lenient decoder yields the same signature bytes.
func flipPaddingBits(t *testing.T, token string) string {
	t.Helper()

	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	require.Equal(t, 43, len(sig), "HS256 signature encodes to 43 characters")

	last := sig[len(sig)-1]
	idx := strings.IndexByte(alphabet, last)
	require.GreaterOrEqual(t, idx, 0)
	sig[len(sig)-1] = alphabet[idx^1]

	parts[2] = string(sig)
	return strings.Join(parts, ".")
}

func decodePayload(t *testing.T, token string) map[string]any {
	t.Helper()

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	out := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestNewTokenService(t *testing.T) {
	cfg := newTestConfig()
	cfg.signingKey = ""

	ts, err := notes.NewTokenService(cfg)
	assert.True(t, notes.IsError(err, notes.ErrMissingSigningKey))
	assert.Nil(t, ts)

	ts, err = notes.NewTokenService(nil)
	assert.True(t, notes.IsError(err, notes.ErrMissingSigningKey))
	assert.Nil(t, ts)

	cfg = newTestConfig()
	cfg.ttl = -time.Hour
	_, err = notes.NewTokenService(cfg)
	assert.Error(t, err)

	ts = newTestTokens(t, newTestConfig())
	assert.Equal(t, 24*time.Hour, ts.TTL())
}

func TestTokenService_RoundTrip(t *testing.T) {
	ts := newTestTokens(t, newTestConfig())

	for _, role := range notes.GetAllRoles() {
		t.Run(role.String(), func(t *testing.T) {
			token, err := ts.Issue(role, "principal-1")
			require.NoError(t, err)

			claims, err := ts.Verify(token)
			require.NoError(t, err)

			id, ok := claims.PrincipalID(string(role))
			assert.True(t, ok)
			assert.Equal(t, "principal-1", id)

			got, ok := claims.Role()
			assert.True(t, ok)
			assert.Equal(t, role, got)

			assert.NotEmpty(t, claims.TokenID())
			assert.False(t, claims.IssuedAt().IsZero())
		})
	}
}

func TestTokenService_PayloadShape(t *testing.T) {
	ts := newTestTokens(t, newTestConfig())

	token, err := ts.Issue(notes.RoleAdmin, "admin-1")
	require.NoError(t, err)

	payload := decodePayload(t, token)

	admin, ok := payload["admin"].(map[string]any)
	require.True(t, ok, "id is nested under the role key")
	assert.Equal(t, "admin-1", admin["id"])
	assert.NotContains(t, payload, "user")
	assert.Contains(t, payload, "jti")
	assert.Contains(t, payload, "exp")
}

func TestTokenService_CrossRole(t *testing.T) {
	ts := newTestTokens(t, newTestConfig())

	userToken, err := ts.Issue(notes.RoleUser, "user-1")
	require.NoError(t, err)

	claims, err := ts.Verify(userToken)
	require.NoError(t, err)

	_, ok := claims.PrincipalID(string(notes.RoleAdmin))
	assert.False(t, ok, "a user token carries no admin id")

	adminToken, err := ts.Issue(notes.RoleAdmin, "admin-1")
	require.NoError(t, err)

	claims, err = ts.Verify(adminToken)
	require.NoError(t, err)

	_, ok = claims.PrincipalID(string(notes.RoleUser))
	assert.False(t, ok, "an admin token carries no user id")
}

func TestTokenService_TokensAreOpaque(t *testing.T) {
	ts := newTestTokens(t, newTestConfig())

	a, err := ts.Issue(notes.RoleUser, "user-1")
	require.NoError(t, err)
	b, err := ts.Issue(notes.RoleUser, "user-1")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)

	ca, err := ts.Verify(a)
	require.NoError(t, err)
	cb, err := ts.Verify(b)
	require.NoError(t, err)
	assert.NotEqual(t, ca.TokenID(), cb.TokenID())
}

func TestTokenService_Rejects(t *testing.T) {
	cfg := newTestConfig()
	ts := newTestTokens(t, cfg)

	valid, err := ts.Issue(notes.RoleUser, "user-1")
	require.NoError(t, err)

	other := newTestConfig()
	other.signingKey = "another-secret"
	foreign, err := newTestTokens(t, other).Issue(notes.RoleUser, "user-1")
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"user": map[string]any{"id": "user-1"},
	}).SignedString([]byte(cfg.signingKey))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"user": map[string]any{"id": "user-1"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noPrincipal, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
	}).SignedString([]byte(cfg.signingKey))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not.a.token"},
		{name: "tampered signature", token: tamper(valid, 2)},
		{name: "tampered payload", token: tamper(valid, 1)},
		{name: "altered last signature character", token: flipPaddingBits(t, valid)},
		{name: "wrong secret", token: foreign},
		{name: "unexpected algorithm", token: hs512},
		{name: "unsigned", token: unsigned},
		{name: "no principal", token: noPrincipal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ts.Verify(tt.token)
			assert.True(t, notes.IsError(err, notes.ErrInvalidToken))
			assert.Nil(t, claims)
			assert.Equal(t, 401, notes.HTTPStatus(err))
		})
	}
}

func TestTokenService_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	cfg := newTestConfig()
	cfg.ttl = time.Hour
	ts := newTestTokens(t, cfg, notes.WithTokenClock(clock))

	token, err := ts.Issue(notes.RoleUser, "user-1")
	require.NoError(t, err)

	claims, err := ts.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour).Unix(), claims.Expires().Unix())

	now = now.Add(2 * time.Hour)
	_, err = ts.Verify(token)
	assert.True(t, notes.IsError(err, notes.ErrInvalidToken))
}

func TestTokenService_NoExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	cfg := newTestConfig()
	cfg.ttl = 0
	ts := newTestTokens(t, cfg, notes.WithTokenClock(func() time.Time { return now }))

	token, err := ts.Issue(notes.RoleAdmin, "admin-1")
	require.NoError(t, err)
	assert.NotContains(t, decodePayload(t, token), "exp")

	now = now.AddDate(10, 0, 0)
	claims, err := ts.Verify(token)
	require.NoError(t, err)
	assert.True(t, claims.Expires().IsZero())
}

func TestTokenService_Issuer(t *testing.T) {
	cfg := newTestConfig()
	cfg.issuer = "notesd"
	ts := newTestTokens(t, cfg)

	token, err := ts.Issue(notes.RoleUser, "user-1")
	require.NoError(t, err)
	_, err = ts.Verify(token)
	assert.NoError(t, err)

	other := newTestConfig()
	other.issuer = "someone-else"
	foreign, err := newTestTokens(t, other).Issue(notes.RoleUser, "user-1")
	require.NoError(t, err)

	_, err = ts.Verify(foreign)
	assert.True(t, notes.IsError(err, notes.ErrInvalidToken))
}

func TestTokenService_IssueRejectsBadInput(t *testing.T) {
	ts := newTestTokens(t, newTestConfig())

	_, err := ts.Issue(notes.Role("owner"), "id")
	assert.Error(t, err)

	_, err = ts.Issue(notes.RoleUser, "")
	assert.Error(t, err)
}

func TestTokenService_Validate(t *testing.T) {
	ts := newTestTokens(t, newTestConfig())

	token, err := ts.Issue(notes.RoleAdmin, "admin-1")
	require.NoError(t, err)

	claims, err := ts.Validate(token)
	require.NoError(t, err)
	id, ok := claims.PrincipalID("admin")
	assert.True(t, ok)
	assert.Equal(t, "admin-1", id)

	_, err = ts.Validate(tamper(token, 2))
	assert.True(t, notes.IsError(err, notes.ErrInvalidToken))

	_, err = ts.Validate(flipPaddingBits(t, token))
	assert.True(t, notes.IsError(err, notes.ErrInvalidToken))
}

func TestTokenVerifierFunc(t *testing.T) {
	var nilFn notes.TokenVerifierFunc
	_, err := nilFn.Verify("x")
	assert.True(t, notes.IsError(err, notes.ErrInvalidToken))

	fn := notes.TokenVerifierFunc(func(string) (*notes.Claims, error) {
		return &notes.Claims{User: &notes.PrincipalRef{ID: "u"}}, nil
	})
	claims, err := fn.Verify("x")
	require.NoError(t, err)
	id, ok := claims.PrincipalID("user")
	assert.True(t, ok)
	assert.Equal(t, "u", id)
}
