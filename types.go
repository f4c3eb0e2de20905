package notes

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Logger is the logging contract used across the package. Args are
// key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config holds the options consumed by the token service and the controllers
type Config interface {
	GetSigningKey() string
	GetTokenTTL() time.Duration
	GetIssuer() string
	GetBcryptCost() int
	GetTokenLookup() string
	GetAuditLog() bool
	GetTokenRevocation() bool
}

// PasswordHasher hashes and verifies passwords
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hashed string) bool
}

// TokenIssuer mints tokens for a principal
type TokenIssuer interface {
	Issue(role Role, id string) (string, error)
}

// TokenVerifier parses and checks tokens
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

// PrincipalStore is the credential store for one principal kind.
type PrincipalStore interface {
	FindByEmail(ctx context.Context, email string) (*Principal, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Principal, error)
	Create(ctx context.Context, p *Principal) (*Principal, error)
	Update(ctx context.Context, p *Principal, columns ...string) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*Principal, error)
}

// TokenDenylist stores revoked token ids
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
