package notes_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	notes "github.com/goliatone/go-notes"
)

type testConfig struct {
	signingKey      string
	ttl             time.Duration
	issuer          string
	bcryptCost      int
	tokenLookup     string
	auditLog        bool
	tokenRevocation bool
	requestTimeout  time.Duration
}

func newTestConfig() *testConfig {
	return &testConfig{
		signingKey:      "test-secret",
		ttl:             24 * time.Hour,
		bcryptCost:      notes.MinBcryptCost,
		tokenLookup:     "header:Authorization,header:auth-token",
		auditLog:        true,
		tokenRevocation: true,
		requestTimeout:  5 * time.Second,
	}
}

func (c *testConfig) GetSigningKey() string            { return c.signingKey }
func (c *testConfig) GetTokenTTL() time.Duration       { return c.ttl }
func (c *testConfig) GetIssuer() string                { return c.issuer }
func (c *testConfig) GetBcryptCost() int               { return c.bcryptCost }
func (c *testConfig) GetTokenLookup() string           { return c.tokenLookup }
func (c *testConfig) GetAuditLog() bool                { return c.auditLog }
func (c *testConfig) GetTokenRevocation() bool         { return c.tokenRevocation }
func (c *testConfig) GetRequestTimeout() time.Duration { return c.requestTimeout }

func newTestDB(t *testing.T) *notes.Database {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	database, err := notes.OpenDatabase(notes.DBConfig{DSN: dsn}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, database.Migrate(context.Background()))
	return database
}

func newTestRepo(t *testing.T) notes.RepositoryManager {
	t.Helper()

	repo := notes.NewRepositoryManager(newTestDB(t).Bun())
	require.NoError(t, repo.Validate())
	return repo
}

func newTestTokens(t *testing.T, cfg *testConfig, opts ...notes.TokenServiceOption) *notes.TokenService {
	t.Helper()

	ts, err := notes.NewTokenService(cfg, opts...)
	require.NoError(t, err)
	return ts
}
