package notes

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-command"
	"github.com/google/uuid"
)

// Accounts implements the credential flows for one principal kind
type Accounts struct {
	role         Role
	store        PrincipalStore
	hasher       PasswordHasher
	issuer       TokenIssuer
	logger       Logger
	activitySink ActivitySink
	deleter      func(ctx context.Context, id uuid.UUID) error
	registrar    *command.MessageHandler[RegisterPrincipalMessage]
	register     *RegisterPrincipalHandler
	now          func() time.Time
}

// NewAccounts returns the account service for role
func NewAccounts(role Role, store PrincipalStore, hasher PasswordHasher, issuer TokenIssuer) *Accounts {
	if !role.IsValid() {
		panic("NOTES: accounts require a valid role")
	}
	if store == nil || hasher == nil || issuer == nil {
		panic("NOTES: accounts require a store, a hasher and a token issuer")
	}

	return &Accounts{
		role:         role,
		store:        store,
		hasher:       hasher,
		issuer:       issuer,
		logger:       defLogger(),
		activitySink: noopActivitySink{},
		deleter:      store.DeleteByID,
		registrar:    &command.MessageHandler[RegisterPrincipalMessage]{},
		register:     NewRegisterPrincipalHandler(store, hasher),
		now:          time.Now,
	}
}

func (s *Accounts) WithLogger(logger Logger) *Accounts {
	s.logger = normalizeLogger(logger)
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Accounts) WithActivitySink(sink ActivitySink) *Accounts {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithDeleter replaces the store delete, e.g. to cascade owned records.
func (s *Accounts) WithDeleter(deleter func(ctx context.Context, id uuid.UUID) error) *Accounts {
	if deleter != nil {
		s.deleter = deleter
	}
	return s
}

func (s *Accounts) WithClock(now func() time.Time) *Accounts {
	if now != nil {
		s.now = now
		s.register.now = now
	}
	return s
}

// Role returns the principal kind served
func (s *Accounts) Role() Role {
	return s.role
}

// Register creates a principal and returns a token for it. An email that is
// already registered yields ErrDuplicateCredential and leaves the store as is.
func (s *Accounts) Register(ctx context.Context, payload RegisterPayload) (string, *Principal, error) {
	payload.Email = normalizeEmail(payload.Email)
	msg := RegisterPrincipalMessage{
		ID:       uuid.New(),
		Role:     s.role,
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
	}
	if err := s.registrar.ValidateMessage(msg); err != nil {
		return "", nil, unwrapCommandError(err)
	}

	if err := s.register.Execute(ctx, msg); err != nil {
		return "", nil, err
	}

	principal, err := s.store.FindByID(ctx, msg.ID)
	if err != nil {
		return "", nil, err
	}

	token, err := s.issuer.Issue(s.role, principal.ID.String())
	if err != nil {
		return "", nil, err
	}

	s.emitAuthEvent(ctx, ActivityEventRegistered, principal.ID.String(), map[string]any{
		"email": principal.Email,
	})

	return token, principal, nil
}

// Login exchanges credentials for a token. Unknown email and wrong password
// both yield ErrInvalidCredentials.
func (s *Accounts) Login(ctx context.Context, payload LoginPayload) (string, error) {
	payload.Email = normalizeEmail(payload.Email)
	if err := Validate(payload); err != nil {
		return "", err
	}

	principal, err := s.store.FindByEmail(ctx, payload.Email)
	if err != nil {
		if IsError(err, ErrNotFound) {
			s.emitAuthEvent(ctx, ActivityEventLoginFailure, "", map[string]any{"email": payload.Email})
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if !s.hasher.Verify(payload.Password, principal.PasswordHash) {
		s.logger.Debug("login password mismatch", "role", s.role)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, principal.ID.String(), map[string]any{"email": payload.Email})
		return "", ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(s.role, principal.ID.String())
	if err != nil {
		return "", err
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, principal.ID.String(), nil)

	return token, nil
}

// Profile returns the principal with id. A token may outlive its principal,
// so absence is ErrNotFound.
func (s *Accounts) Profile(ctx context.Context, id string) (*Principal, error) {
	pid, err := parseID(id, s.notFoundMessage())
	if err != nil {
		return nil, err
	}
	return s.store.FindByID(ctx, pid)
}

// UpdateProfile applies the present fields of payload to the principal
func (s *Accounts) UpdateProfile(ctx context.Context, id string, payload UpdateProfilePayload) (*Principal, error) {
	if err := Validate(payload); err != nil {
		return nil, err
	}

	principal, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}

	columns := make([]string, 0, 2)
	if payload.Name != "" {
		principal.Name = payload.Name
		columns = append(columns, "name")
	}
	if payload.Password != "" {
		hash, err := s.hasher.Hash(payload.Password)
		if err != nil {
			return nil, err
		}
		principal.PasswordHash = hash
		columns = append(columns, "password_hash")
	}

	if err := s.store.Update(ctx, principal, columns...); err != nil {
		return nil, err
	}

	s.emitAuthEvent(ctx, ActivityEventProfileUpdated, principal.ID.String(), map[string]any{
		"fields": columns,
	})

	return principal, nil
}

// Delete removes the principal with id
func (s *Accounts) Delete(ctx context.Context, id string) error {
	pid, err := parseID(id, s.notFoundMessage())
	if err != nil {
		return err
	}

	if err := s.deleter(ctx, pid); err != nil {
		return err
	}

	s.emitAuthEvent(ctx, ActivityEventDeleted, pid.String(), nil)
	return nil
}

// List returns every principal of this kind
func (s *Accounts) List(ctx context.Context) ([]*Principal, error) {
	return s.store.List(ctx)
}

func (s *Accounts) emitAuthEvent(ctx context.Context, eventType ActivityEventType, principalID string, metadata map[string]any) {
	event := ActivityEvent{
		EventType:   eventType,
		Role:        s.role,
		PrincipalID: principalID,
		Metadata:    metadata,
		OccurredAt:  s.now(),
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if err := normalizeActivitySink(s.activitySink).Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error", "event", eventType, "error", err)
	}
}

func (s *Accounts) notFoundMessage() string {
	if s.role == RoleAdmin {
		return MsgAdminNotFound
	}
	return MsgUserNotFound
}

// unwrapCommandError returns the taxonomy error a command validation failed
// with, so callers see the same error a direct Validate call would give.
func unwrapCommandError(err error) error {
	var cmdErr *command.Error
	if errors.As(err, &cmdErr) && cmdErr.Err != nil {
		return cmdErr.Err
	}
	return err
}

func parseID(id, notFound string) (uuid.UUID, error) {
	pid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, derive(ErrNotFound, notFound, err)
	}
	return pid, nil
}
