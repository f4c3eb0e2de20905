package notes

import (
	"context"
	"database/sql"
	"errors"
	"log"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	Validate() error
	MustValidate()
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error

	Admins() PrincipalStore
	Users() PrincipalStore
	Notes() *Notes
	Infos() *Infos
	RevokedTokens() *RevokedTokens

	// DeleteUser removes a user and the notes they own in one transaction
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type mngr struct {
	db      *bun.DB
	admins  PrincipalStore
	users   PrincipalStore
	notes   *Notes
	infos   *Infos
	revoked *RevokedTokens
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:      db,
		admins:  NewAdminsRepository(db),
		users:   NewUsersRepository(db),
		notes:   NewNotesRepository(db),
		infos:   NewInfosRepository(db),
		revoked: NewRevokedTokensRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.db == nil {
		return errors.New("repository manager requires a database")
	}

	if m.admins == nil || m.users == nil {
		return errors.New("principal repositories should be initialized")
	}

	if m.notes == nil || m.infos == nil || m.revoked == nil {
		return errors.New("repositories should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return m.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := NewNotesRepository(tx).DeleteByUser(ctx, id); err != nil {
			return err
		}
		return NewUsersRepository(tx).DeleteByID(ctx, id)
	})
}

func (m mngr) Admins() PrincipalStore {
	return m.admins
}

func (m mngr) Users() PrincipalStore {
	return m.users
}

func (m mngr) Notes() *Notes {
	return m.notes
}

func (m mngr) Infos() *Infos {
	return m.infos
}

func (m mngr) RevokedTokens() *RevokedTokens {
	return m.revoked
}

// unpaged lifts the default page size of repository lists
var unpaged = repository.Paginate(0, 0)

// storeScope names the table a store serves and the message its absent
// records surface with.
type storeScope struct {
	table    string
	notFound string
}

func (s storeScope) mapError(err error, op string) error {
	return mapStoreError(err, s, op)
}

func mapStoreError(err error, scope storeScope, op string) error {
	meta := map[string]any{"table": scope.table, "operation": op}

	switch {
	case err == nil:
		return nil
	case repository.IsRecordNotFound(err):
		return derive(ErrNotFound, scope.notFound, err).WithMetadata(meta)
	case isUniqueViolation(err):
		return derive(ErrDuplicateCredential, "", err).WithMetadata(meta)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryInternal, "store call interrupted").WithMetadata(meta)
	default:
		return goerrors.Wrap(err, goerrors.CategoryInternal, "store call failed").WithMetadata(meta)
	}
}
