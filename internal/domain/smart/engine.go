package smart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/smartwound/smartwound/internal/platform/joblock"
)

// Policy thresholds. These are properties of the care policy, not tunables.
const (
	reminderInactivity = 72 * time.Hour
	escalationStall    = 120 * time.Hour
)

const sweepLockName = "smart-sweep"

// ErrSweepInProgress reports that another sweep holds the lock.
var ErrSweepInProgress = errors.New("sweep already in progress")

// Notifier sends a templated email. Satisfied by notification.Mailer. A nil
// notifier disables reminder mail; the reminder record is still written.
type Notifier interface {
	Send(ctx context.Context, to, templateID string, data map[string]string) error
}

// Engine runs the care escalation sweep: reminders for inactive wound logs,
// escalations for severe or stalled wounds. The engine keeps no state
// between runs; every decision is recomputed from the store.
type Engine struct {
	wounds      WoundSource
	reminders   ReminderRepository
	escalations EscalationRepository
	locker      joblock.Locker
	notifier    Notifier
	now         func() time.Time
	log         zerolog.Logger
}

func NewEngine(wounds WoundSource, reminders ReminderRepository, escalations EscalationRepository, locker joblock.Locker, notifier Notifier, log zerolog.Logger) *Engine {
	return &Engine{
		wounds:      wounds,
		reminders:   reminders,
		escalations: escalations,
		locker:      locker,
		notifier:    notifier,
		now:         time.Now,
		log:         log.With().Str("component", "smart-engine").Logger(),
	}
}

// RunSweep executes one full pass. A second caller while a sweep is running
// gets ErrSweepInProgress. Any store error aborts the sweep; work already
// written stays written and the next sweep picks up the rest.
func (e *Engine) RunSweep(ctx context.Context) (SweepResult, error) {
	release, err := e.locker.Acquire(ctx, sweepLockName)
	if err != nil {
		if errors.Is(err, joblock.ErrAlreadyLocked) {
			return SweepResult{}, ErrSweepInProgress
		}
		return SweepResult{}, fmt.Errorf("acquire sweep lock: %w", err)
	}
	defer release()

	started := e.now()
	var res SweepResult

	res.RemindersCreated, err = e.sweepReminders(ctx)
	if err != nil {
		return res, err
	}
	res.EscalationsCreated, err = e.sweepEscalations(ctx)
	if err != nil {
		return res, err
	}

	e.log.Info().
		Int("reminders_created", res.RemindersCreated).
		Int("escalations_created", res.EscalationsCreated).
		Dur("took", e.now().Sub(started)).
		Msg("sweep completed")
	return res, nil
}

// sweepReminders nudges users whose open wounds have gone quiet. At most one
// incomplete reminder exists per user, so a user with several stale wounds
// gets a single nudge, worded for whichever wound the sweep saw first.
func (e *Engine) sweepReminders(ctx context.Context) (int, error) {
	cutoff := e.now().Add(-reminderInactivity)
	stale, err := e.wounds.OpenWoundsUpdatedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("find inactive wounds: %w", err)
	}

	created := 0
	for _, w := range stale {
		now := e.now()
		rem := &Reminder{
			ID:        uuid.New(),
			UserID:    w.UserID,
			Message:   ReminderMessage(w.Type),
			DueDate:   now,
			CreatedAt: now,
		}
		ok, err := e.reminders.CreateIfNoneIncomplete(ctx, rem)
		if err != nil {
			return created, fmt.Errorf("create reminder: %w", err)
		}
		if ok {
			created++
			e.log.Debug().
				Str("user_id", w.UserID.String()).
				Str("wound_id", w.ID.String()).
				Msg("reminder created")
			e.mailReminder(ctx, w.UserID, rem.Message)
		}
	}
	return created, nil
}

// mailReminder delivers the check-in nudge by email. Delivery failure is
// logged and never fails the sweep; the reminder record already exists.
func (e *Engine) mailReminder(ctx context.Context, userID uuid.UUID, message string) {
	if e.notifier == nil {
		return
	}
	name, email, err := e.wounds.UserContact(ctx, userID)
	if err != nil || email == "" {
		e.log.Warn().Err(err).Str("user_id", userID.String()).Msg("reminder email skipped")
		return
	}
	data := map[string]string{"name": name, "message": message}
	if err := e.notifier.Send(ctx, email, "care-reminder", data); err != nil {
		e.log.Warn().Err(err).Str("user_id", userID.String()).Msg("reminder email failed")
	}
}

// sweepEscalations runs the severe pass first, then the stalled pass. A
// wound that is both severe and stalled gets one escalation with the severe
// reason.
func (e *Engine) sweepEscalations(ctx context.Context) (int, error) {
	created := 0

	severe, err := e.wounds.SevereOpenWounds(ctx)
	if err != nil {
		return 0, fmt.Errorf("find severe wounds: %w", err)
	}
	for _, w := range severe {
		ok, err := e.escalate(ctx, w.ID, ReasonSevere)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}

	cutoff := e.now().Add(-escalationStall)
	aged, err := e.wounds.OpenWoundsCreatedBefore(ctx, cutoff)
	if err != nil {
		return created, fmt.Errorf("find aged wounds: %w", err)
	}
	for _, w := range aged {
		latest, err := e.wounds.LatestLogTime(ctx, w.ID)
		if err != nil {
			return created, fmt.Errorf("latest log time: %w", err)
		}
		if latest != nil && latest.After(cutoff) {
			continue
		}
		ok, err := e.escalate(ctx, w.ID, ReasonStalled)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	return created, nil
}

func (e *Engine) escalate(ctx context.Context, woundID uuid.UUID, reason string) (bool, error) {
	esc := &Escalation{
		ID:        uuid.New(),
		WoundID:   woundID,
		Reason:    reason,
		Status:    EscalationPending,
		CreatedAt: e.now(),
	}
	ok, err := e.escalations.CreateIfAbsent(ctx, esc)
	if err != nil {
		return false, fmt.Errorf("create escalation: %w", err)
	}
	if ok {
		e.log.Info().
			Str("wound_id", woundID.String()).
			Str("reason", reason).
			Msg("wound escalated")
	}
	return ok, nil
}
