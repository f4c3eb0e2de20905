package notes

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventRegistered     ActivityEventType = "auth.register"
	ActivityEventLoginSuccess   ActivityEventType = "auth.login.success"
	ActivityEventLoginFailure   ActivityEventType = "auth.login.failure"
	ActivityEventProfileUpdated ActivityEventType = "auth.profile.updated"
	ActivityEventDeleted        ActivityEventType = "auth.deleted"
	ActivityEventLogout         ActivityEventType = "auth.logout"
)

// ActivityEvent captures audit-friendly information about an action.
type ActivityEvent struct {
	EventType   ActivityEventType
	Role        Role
	PrincipalID string
	Metadata    map[string]any
	OccurredAt  time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}

// InfoActivitySink writes admin events into the info table. Events for other
// roles and events without a resolvable admin id are skipped.
type InfoActivitySink struct {
	infos *Infos
	now   func() time.Time
}

var _ ActivitySink = (*InfoActivitySink)(nil)

func NewInfoActivitySink(infos *Infos) *InfoActivitySink {
	return &InfoActivitySink{infos: infos, now: time.Now}
}

func (s *InfoActivitySink) Record(ctx context.Context, event ActivityEvent) error {
	if event.Role != RoleAdmin {
		return nil
	}

	adminID, err := uuid.Parse(event.PrincipalID)
	if err != nil {
		return nil
	}

	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = s.now()
	}

	_, err = s.infos.Create(ctx, &Info{
		AdminID:     adminID,
		Title:       string(event.EventType),
		Description: describeEvent(event),
		CreatedAt:   occurred.UTC(),
	})
	return err
}

func describeEvent(event ActivityEvent) string {
	if len(event.Metadata) == 0 {
		return fmt.Sprintf("%s %s", event.Role, event.EventType)
	}

	keys := make([]string, 0, len(event.Metadata))
	for k := range event.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, event.Metadata[k]))
	}
	return fmt.Sprintf("%s %s: %s", event.Role, event.EventType, strings.Join(parts, " "))
}
