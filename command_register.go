package notes

import (
	"context"
	"time"

	"github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// RegisterPrincipalMessage asks for a new principal of Role. ID is assigned
// by the caller so the record can be read back once the command ran.
type RegisterPrincipalMessage struct {
	ID       uuid.UUID
	Role     Role
	Name     string
	Email    string
	Password string
}

func (e RegisterPrincipalMessage) Type() string { return "principal.register" }

func (e RegisterPrincipalMessage) Validate() error {
	if e.ID == uuid.Nil {
		return goerrors.New("principal id is required", goerrors.CategoryBadInput)
	}
	if !e.Role.IsValid() {
		return goerrors.New("principal role is required", goerrors.CategoryBadInput)
	}
	return Validate(RegisterPayload{Name: e.Name, Email: e.Email, Password: e.Password})
}

// RegisterPrincipalHandler stores a new principal with a hashed password
type RegisterPrincipalHandler struct {
	store  PrincipalStore
	hasher PasswordHasher
	now    func() time.Time
}

var _ command.Commander[RegisterPrincipalMessage] = (*RegisterPrincipalHandler)(nil)

func NewRegisterPrincipalHandler(store PrincipalStore, hasher PasswordHasher) *RegisterPrincipalHandler {
	return &RegisterPrincipalHandler{store: store, hasher: hasher, now: time.Now}
}

func (h *RegisterPrincipalHandler) Execute(ctx context.Context, event RegisterPrincipalMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterPrincipalHandler) execute(ctx context.Context, event RegisterPrincipalMessage) error {
	existing, err := h.store.FindByEmail(ctx, event.Email)
	switch {
	case err == nil && existing != nil:
		return ErrDuplicateCredential
	case err != nil && !IsError(err, ErrNotFound):
		return err
	}

	hash, err := h.hasher.Hash(event.Password)
	if err != nil {
		return err
	}

	if _, err := h.store.Create(ctx, &Principal{
		ID:           event.ID,
		Name:         event.Name,
		Email:        event.Email,
		PasswordHash: hash,
		CreatedAt:    h.now().UTC(),
	}); err != nil {
		if IsError(err, ErrDuplicateCredential) {
			return ErrDuplicateCredential
		}
		return err
	}

	return nil
}
