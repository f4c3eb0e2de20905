package notes

import (
	"context"
	"time"
)

// NoteService implements note CRUD for owners and the admin views over all notes
type NoteService struct {
	notes *Notes
	users PrincipalStore
	now   func() time.Time
}

func NewNoteService(notes *Notes, users PrincipalStore) *NoteService {
	if notes == nil || users == nil {
		panic("NOTES: note service requires notes and users repositories")
	}
	return &NoteService{notes: notes, users: users, now: time.Now}
}

// ListOwned returns the notes owned by userID
func (s *NoteService) ListOwned(ctx context.Context, userID string) ([]*Note, error) {
	uid, err := parseID(userID, MsgUserNotFound)
	if err != nil {
		return nil, err
	}
	return s.notes.ListByUser(ctx, uid)
}

// Add creates a note for userID. The owner must still exist.
func (s *NoteService) Add(ctx context.Context, userID string, payload NotePayload) (*Note, error) {
	if err := Validate(payload); err != nil {
		return nil, err
	}

	uid, err := parseID(userID, MsgUserNotFound)
	if err != nil {
		return nil, err
	}

	owner, err := s.users.FindByID(ctx, uid)
	if err != nil {
		return nil, err
	}

	tag := payload.Tag
	if tag == "" {
		tag = DefaultNoteTag
	}

	return s.notes.Create(ctx, &Note{
		UserID:      owner.ID,
		Title:       payload.Title,
		Description: payload.Description,
		Tag:         tag,
		CreatedAt:   s.now().UTC(),
	})
}

// Update changes the present fields of a note owned by userID. A note owned
// by someone else is ErrNotAllowed.
func (s *NoteService) Update(ctx context.Context, userID, noteID string, payload NoteUpdatePayload) (*Note, error) {
	if err := Validate(payload); err != nil {
		return nil, err
	}

	note, err := s.owned(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}

	columns := make([]string, 0, 3)
	if payload.Title != "" {
		note.Title = payload.Title
		columns = append(columns, "title")
	}
	if payload.Description != "" {
		note.Description = payload.Description
		columns = append(columns, "description")
	}
	if payload.Tag != "" {
		note.Tag = payload.Tag
		columns = append(columns, "tag")
	}

	if len(columns) == 0 {
		return note, nil
	}

	if err := s.notes.Update(ctx, note, columns...); err != nil {
		return nil, err
	}
	return note, nil
}

// Delete removes a note owned by userID
func (s *NoteService) Delete(ctx context.Context, userID, noteID string) (*Note, error) {
	note, err := s.owned(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}
	if err := s.notes.DeleteByID(ctx, note.ID); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *NoteService) owned(ctx context.Context, userID, noteID string) (*Note, error) {
	nid, err := parseID(noteID, MsgNoteNotFound)
	if err != nil {
		return nil, err
	}

	note, err := s.notes.FindByID(ctx, nid)
	if err != nil {
		return nil, err
	}

	if note.UserID.String() != userID {
		return nil, ErrNotAllowed
	}
	return note, nil
}

// All returns every note
func (s *NoteService) All(ctx context.Context) ([]*Note, error) {
	return s.notes.ListAll(ctx)
}

// AllWithOwners returns every note with its owner's name and email
func (s *NoteService) AllWithOwners(ctx context.Context) ([]*Note, error) {
	return s.notes.ListWithOwners(ctx)
}

// ForUser returns the notes of userID, ErrNotFound when there are none
func (s *NoteService) ForUser(ctx context.Context, userID string) ([]*Note, error) {
	notes, err := s.ListOwned(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(notes) == 0 {
		return nil, derive(ErrNotFound, "Notes not found for the user", nil)
	}
	return notes, nil
}

// DeleteAny removes a note regardless of owner
func (s *NoteService) DeleteAny(ctx context.Context, noteID string) error {
	nid, err := parseID(noteID, MsgNoteNotFound)
	if err != nil {
		return err
	}
	return s.notes.DeleteByID(ctx, nid)
}
