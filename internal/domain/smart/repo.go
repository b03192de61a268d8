package smart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrReminderNotFound   = errors.New("reminder not found")
	ErrEscalationNotFound = errors.New("escalation not found")
)

// ReminderRepository persists reminders.
type ReminderRepository interface {
	// ListIncomplete returns a user's outstanding reminders ordered by due
	// date, earliest first.
	ListIncomplete(ctx context.Context, userID uuid.UUID) ([]*Reminder, error)

	// CreateIfNoneIncomplete inserts the reminder unless the user already has
	// an incomplete one. The insert and the existence check are a single
	// atomic statement. Reports whether a row was created.
	CreateIfNoneIncomplete(ctx context.Context, r *Reminder) (bool, error)

	// MarkComplete completes a reminder owned by the given user. A miss on
	// either id or owner is ErrReminderNotFound.
	MarkComplete(ctx context.Context, id, userID uuid.UUID) error
}

// EscalationRepository persists escalations.
type EscalationRepository interface {
	// CreateIfAbsent inserts the escalation unless the wound already has one,
	// in any status. Reports whether a row was created.
	CreateIfAbsent(ctx context.Context, e *Escalation) (bool, error)

	// ListPending returns pending escalations with wound and owner attached,
	// oldest first.
	ListPending(ctx context.Context) ([]*EscalationDetail, error)

	GetByID(ctx context.Context, id uuid.UUID) (*Escalation, error)
	Update(ctx context.Context, e *Escalation) error
}

// WoundRef is the slice of a wound the engine needs.
type WoundRef struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Type      string
	Severity  string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WoundSource is the engine's read model over wounds and their logs.
type WoundSource interface {
	// OpenWoundsUpdatedBefore returns open wounds whose updated_at is older
	// than the cutoff.
	OpenWoundsUpdatedBefore(ctx context.Context, cutoff time.Time) ([]WoundRef, error)

	// SevereOpenWounds returns open wounds with severity "severe".
	SevereOpenWounds(ctx context.Context) ([]WoundRef, error)

	// OpenWoundsCreatedBefore returns open wounds created before the cutoff.
	OpenWoundsCreatedBefore(ctx context.Context, cutoff time.Time) ([]WoundRef, error)

	// LatestLogTime returns the creation time of a wound's newest log, or nil
	// when the wound has no logs.
	LatestLogTime(ctx context.Context, woundID uuid.UUID) (*time.Time, error)

	// UserContact returns the owning user's display name and email address.
	UserContact(ctx context.Context, userID uuid.UUID) (name, email string, err error)
}
