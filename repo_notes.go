package notes

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Notes stores user notes
type Notes struct {
	repository.Repository[*Note]
	scope storeScope
}

// NewNotesRepository creates the notes store
func NewNotesRepository(db bun.IDB) *Notes {
	return &Notes{
		Repository: repository.NewRepository[*Note](db, repository.ModelHandlers[*Note]{
			NewRecord: func() *Note { return &Note{} },
			GetID: func(n *Note) uuid.UUID {
				if n == nil {
					return uuid.Nil
				}
				return n.ID
			},
			SetID: func(n *Note, id uuid.UUID) {
				if n != nil {
					n.ID = id
				}
			},
		}),
		scope: storeScope{table: "notes", notFound: MsgNoteNotFound},
	}
}

var oldestFirst = repository.OrderBy("nt.created_at ASC")

// Create inserts note, assigning an id when none is set
func (n *Notes) Create(ctx context.Context, note *Note) (*Note, error) {
	record, err := n.Repository.Create(ctx, note)
	if err != nil {
		return nil, n.scope.mapError(err, "create")
	}
	return record, nil
}

// FindByID returns the note with id
func (n *Notes) FindByID(ctx context.Context, id uuid.UUID) (*Note, error) {
	record, err := n.GetByID(ctx, id.String())
	if err != nil {
		return nil, n.scope.mapError(err, "find_by_id")
	}
	return record, nil
}

// Update writes columns of note, or every non zero column when none are given
func (n *Notes) Update(ctx context.Context, note *Note, columns ...string) error {
	criteria := []repository.UpdateCriteria{}
	if len(columns) > 0 {
		criteria = append(criteria, repository.UpdateColumns(columns...))
	}
	if _, err := n.Repository.Update(ctx, note, criteria...); err != nil {
		return n.scope.mapError(err, "update")
	}
	return nil
}

// DeleteByID removes the note with id
func (n *Notes) DeleteByID(ctx context.Context, id uuid.UUID) error {
	record, err := n.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := n.Delete(ctx, record); err != nil {
		return n.scope.mapError(err, "delete")
	}
	return nil
}

func (n *Notes) list(ctx context.Context, op string, criteria ...repository.SelectCriteria) ([]*Note, error) {
	criteria = append([]repository.SelectCriteria{unpaged}, criteria...)
	records, _, err := n.List(ctx, append(criteria, oldestFirst)...)
	if err != nil {
		return nil, n.scope.mapError(err, op)
	}
	return records, nil
}

// ListByUser returns the notes owned by userID
func (n *Notes) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Note, error) {
	return n.list(ctx, "list_by_user", repository.SelectBy("user_id", "=", userID.String()))
}

// ListAll returns every note
func (n *Notes) ListAll(ctx context.Context) ([]*Note, error) {
	return n.list(ctx, "list")
}

// ListWithOwners returns every note with its owner populated
func (n *Notes) ListWithOwners(ctx context.Context) ([]*Note, error) {
	return n.list(ctx, "list_with_owners", repository.Relation("Owner", repository.ExcludeColumns("password_hash")))
}

// DeleteByUser removes every note owned by userID
func (n *Notes) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	if err := n.DeleteWhere(ctx, repository.DeleteBy("user_id", "=", userID.String())); err != nil {
		return n.scope.mapError(err, "delete_by_user")
	}
	return nil
}
