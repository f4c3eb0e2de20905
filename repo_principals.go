package notes

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type principalModel interface {
	*Admin | *User
	Base() *Principal
}

type principalStore[T principalModel] struct {
	repository.Repository[T]
	scope storeScope
}

var (
	_ PrincipalStore = (*principalStore[*Admin])(nil)
	_ PrincipalStore = (*principalStore[*User])(nil)
)

// NewAdminsRepository returns the credential store for admins
func NewAdminsRepository(db bun.IDB) PrincipalStore {
	return newPrincipalStore(db, storeScope{table: "admins", notFound: MsgAdminNotFound}, func() *Admin { return &Admin{} })
}

// NewUsersRepository returns the credential store for users
func NewUsersRepository(db bun.IDB) PrincipalStore {
	return newPrincipalStore(db, storeScope{table: "users", notFound: MsgUserNotFound}, func() *User { return &User{} })
}

func newPrincipalStore[T principalModel](db bun.IDB, scope storeScope, newRecord func() T) *principalStore[T] {
	return &principalStore[T]{
		Repository: repository.NewRepository[T](db, repository.ModelHandlers[T]{
			NewRecord: newRecord,
			GetID: func(record T) uuid.UUID {
				return record.Base().ID
			},
			SetID: func(record T, id uuid.UUID) {
				record.Base().ID = id
			},
			GetIdentifier: func() string {
				return "email"
			},
		}),
		scope: scope,
	}
}

func (s *principalStore[T]) wrap(p *Principal) T {
	record := s.Handlers().NewRecord()
	*record.Base() = *p
	return record
}

func (s *principalStore[T]) FindByEmail(ctx context.Context, email string) (*Principal, error) {
	record, err := s.GetByIdentifier(ctx, email)
	if err != nil {
		return nil, s.scope.mapError(err, "find_by_email")
	}
	return record.Base(), nil
}

func (s *principalStore[T]) FindByID(ctx context.Context, id uuid.UUID) (*Principal, error) {
	record, err := s.GetByID(ctx, id.String())
	if err != nil {
		return nil, s.scope.mapError(err, "find_by_id")
	}
	return record.Base(), nil
}

func (s *principalStore[T]) Create(ctx context.Context, p *Principal) (*Principal, error) {
	record, err := s.Repository.Create(ctx, s.wrap(p))
	if err != nil {
		return nil, s.scope.mapError(err, "create")
	}
	*p = *record.Base()
	return p, nil
}

func (s *principalStore[T]) Update(ctx context.Context, p *Principal, columns ...string) error {
	criteria := []repository.UpdateCriteria{}
	if len(columns) > 0 {
		criteria = append(criteria, repository.UpdateColumns(columns...))
	}

	record, err := s.Repository.Update(ctx, s.wrap(p), criteria...)
	if err != nil {
		return s.scope.mapError(err, "update")
	}
	*p = *record.Base()
	return nil
}

func (s *principalStore[T]) DeleteByID(ctx context.Context, id uuid.UUID) error {
	record, err := s.GetByID(ctx, id.String())
	if err != nil {
		return s.scope.mapError(err, "delete")
	}
	if err := s.Delete(ctx, record); err != nil {
		return s.scope.mapError(err, "delete")
	}
	return nil
}

func (s *principalStore[T]) List(ctx context.Context) ([]*Principal, error) {
	records, _, err := s.Repository.List(ctx, unpaged, repository.OrderBy("created_at ASC"))
	if err != nil {
		return nil, s.scope.mapError(err, "list")
	}
	out := make([]*Principal, 0, len(records))
	for _, r := range records {
		out = append(out, r.Base())
	}
	return out, nil
}
