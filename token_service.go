package notes

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-notes/middleware/jwtware"
)

// TokenService issues and verifies HS256 tokens
type TokenService struct {
	signingKey []byte
	ttl        time.Duration
	issuer     string
	logger     Logger
	now        func() time.Time
}

var (
	_ TokenIssuer            = (*TokenService)(nil)
	_ TokenVerifier          = (*TokenService)(nil)
	_ jwtware.TokenValidator = (*TokenService)(nil)
)

// TokenServiceOption configures a TokenService
type TokenServiceOption func(*TokenService)

// WithTokenLogger sets the logger
func WithTokenLogger(logger Logger) TokenServiceOption {
	return func(ts *TokenService) {
		ts.logger = normalizeLogger(logger)
	}
}

// WithTokenClock overrides the time source used to stamp and check tokens
func WithTokenClock(now func() time.Time) TokenServiceOption {
	return func(ts *TokenService) {
		if now != nil {
			ts.now = now
		}
	}
}

// NewTokenService creates a TokenService from cfg. A missing signing key is
// an error; a zero TTL issues tokens without exp.
func NewTokenService(cfg Config, opts ...TokenServiceOption) (*TokenService, error) {
	if cfg == nil || cfg.GetSigningKey() == "" {
		return nil, ErrMissingSigningKey
	}
	if cfg.GetTokenTTL() < 0 {
		return nil, goerrors.New("token ttl must not be negative", goerrors.CategoryBadInput)
	}

	ts := &TokenService{
		signingKey: []byte(cfg.GetSigningKey()),
		ttl:        cfg.GetTokenTTL(),
		issuer:     cfg.GetIssuer(),
		logger:     defLogger(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(ts)
	}
	return ts, nil
}

// TTL returns the configured token lifetime
func (ts *TokenService) TTL() time.Duration {
	return ts.ttl
}

// Issue signs a token carrying id under the role key
func (ts *TokenService) Issue(role Role, id string) (string, error) {
	if !role.IsValid() {
		return "", goerrors.New(fmt.Sprintf("unknown role %q", role), goerrors.CategoryBadInput)
	}
	if id == "" {
		return "", goerrors.New("principal id is required", goerrors.CategoryBadInput)
	}

	now := ts.now()
	claims := newClaims(role, id)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:       uuid.NewString(),
		Issuer:   ts.issuer,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if ts.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ts.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign token")
	}
	return signed, nil
}

// Verify checks the signature and registered claims and returns the payload.
// Every failure is reported as ErrInvalidToken.
func (ts *TokenService) Verify(tokenString string) (*Claims, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(ts.now),
		jwt.WithStrictDecoding(),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return ts.signingKey, nil
	}, parserOptions...)
	if err != nil {
		ts.logger.Debug("token verification failed", "error", err)
		return nil, derive(ErrInvalidToken, "", err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, ok := claims.Role(); !ok {
		return nil, derive(ErrInvalidToken, "token payload carries no principal", nil)
	}
	return claims, nil
}

// Validate satisfies jwtware.TokenValidator
func (ts *TokenService) Validate(tokenString string) (jwtware.Claims, error) {
	return validatorFor(ts).Validate(tokenString)
}
