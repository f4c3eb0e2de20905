package notes

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RevokedTokens is a TokenDenylist backed by the revoked_tokens table
type RevokedTokens struct {
	repo  repository.Repository[*RevokedToken]
	scope storeScope
	now   func() time.Time
}

var _ TokenDenylist = (*RevokedTokens)(nil)

// NewRevokedTokensRepository creates the denylist store. Entries are keyed by
// token id, not by uuid.
func NewRevokedTokensRepository(db bun.IDB) *RevokedTokens {
	return &RevokedTokens{
		repo: repository.NewRepository[*RevokedToken](db, repository.ModelHandlers[*RevokedToken]{
			NewRecord: func() *RevokedToken { return &RevokedToken{} },
			GetID:     func(*RevokedToken) uuid.UUID { return uuid.Nil },
			SetID:     func(*RevokedToken, uuid.UUID) {},
		}),
		scope: storeScope{table: "revoked_tokens", notFound: "Token not found"},
		now:   time.Now,
	}
}

// Revoke records tokenID. Revoking twice is a no-op. A zero expiresAt keeps
// the entry until it is removed by hand.
func (r *RevokedTokens) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return derive(ErrInvalidToken, "token has no id", nil)
	}

	revoked, err := r.IsRevoked(ctx, tokenID)
	if err != nil || revoked {
		return err
	}

	entry := &RevokedToken{TokenID: tokenID, RevokedAt: r.now().UTC()}
	if !expiresAt.IsZero() {
		exp := expiresAt.UTC()
		entry.ExpiresAt = &exp
	}

	if _, err := r.repo.Create(ctx, entry); err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return r.scope.mapError(err, "revoke")
	}
	return nil
}

// IsRevoked reports whether tokenID has been revoked
func (r *RevokedTokens) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if _, err := r.repo.Get(ctx, repository.SelectBy("token_id", "=", tokenID)); err != nil {
		if repository.IsRecordNotFound(err) {
			return false, nil
		}
		return false, r.scope.mapError(err, "is_revoked")
	}
	return true, nil
}

// Prune removes entries whose token has expired by now
func (r *RevokedTokens) Prune(ctx context.Context, now time.Time) (int64, error) {
	expired := func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.expires_at IS NOT NULL").Where("?TableAlias.expires_at < ?", now.UTC())
	}

	records, _, err := r.repo.List(ctx, unpaged, expired)
	if err != nil {
		return 0, r.scope.mapError(err, "prune")
	}
	if len(records) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.TokenID)
	}

	if err := r.repo.DeleteWhere(ctx, func(q *bun.DeleteQuery) *bun.DeleteQuery {
		return q.Where("token_id IN (?)", bun.In(ids))
	}); err != nil {
		return 0, r.scope.mapError(err, "prune")
	}
	return int64(len(ids)), nil
}
