package notes

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Infos stores admin audit log entries
type Infos struct {
	repository.Repository[*Info]
	scope storeScope
}

// NewInfosRepository creates the info store
func NewInfosRepository(db bun.IDB) *Infos {
	return &Infos{
		Repository: repository.NewRepository[*Info](db, repository.ModelHandlers[*Info]{
			NewRecord: func() *Info { return &Info{} },
			GetID: func(i *Info) uuid.UUID {
				if i == nil {
					return uuid.Nil
				}
				return i.ID
			},
			SetID: func(i *Info, id uuid.UUID) {
				if i != nil {
					i.ID = id
				}
			},
		}),
		scope: storeScope{table: "infos", notFound: "Info not found"},
	}
}

// Create inserts an audit log entry
func (i *Infos) Create(ctx context.Context, info *Info) (*Info, error) {
	record, err := i.Repository.Create(ctx, info)
	if err != nil {
		return nil, i.scope.mapError(err, "create")
	}
	return record, nil
}

// ListByAdmin returns the entries recorded for adminID, newest first
func (i *Infos) ListByAdmin(ctx context.Context, adminID uuid.UUID) ([]*Info, error) {
	records, _, err := i.List(ctx,
		unpaged,
		repository.SelectBy("admin_id", "=", adminID.String()),
		repository.OrderBy("inf.created_at DESC"),
	)
	if err != nil {
		return nil, i.scope.mapError(err, "list_by_admin")
	}
	return records, nil
}
