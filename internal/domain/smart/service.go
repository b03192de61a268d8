package smart

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service exposes the reminder and escalation read/update surfaces. Sweeps
// live on Engine.
type Service struct {
	reminders   ReminderRepository
	escalations EscalationRepository
	log         zerolog.Logger
}

func NewService(reminders ReminderRepository, escalations EscalationRepository, log zerolog.Logger) *Service {
	return &Service{
		reminders:   reminders,
		escalations: escalations,
		log:         log.With().Str("component", "smart").Logger(),
	}
}

// MyReminders returns the caller's outstanding reminders, earliest due
// first.
func (s *Service) MyReminders(ctx context.Context, userID uuid.UUID) ([]*Reminder, error) {
	return s.reminders.ListIncomplete(ctx, userID)
}

// CompleteReminder marks a reminder done. A reminder belonging to someone
// else is indistinguishable from a missing one.
func (s *Service) CompleteReminder(ctx context.Context, id, userID uuid.UUID) error {
	return s.reminders.MarkComplete(ctx, id, userID)
}

// PendingEscalations returns the review queue, oldest first.
func (s *Service) PendingEscalations(ctx context.Context) ([]*EscalationDetail, error) {
	return s.escalations.ListPending(ctx)
}

// ReviewEscalation moves an escalation to reviewed or resolved. Resolving
// records who and when; resolving an already resolved escalation keeps the
// original resolution.
func (s *Service) ReviewEscalation(ctx context.Context, id uuid.UUID, reviewerID uuid.UUID, req ReviewRequest) (*Escalation, error) {
	if req.Status != EscalationReviewed && req.Status != EscalationResolved {
		return nil, fmt.Errorf("status must be one of reviewed, resolved")
	}

	esc, err := s.escalations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Notes != nil {
		esc.Notes = req.Notes
	}

	if req.Status == EscalationResolved {
		if esc.Status != EscalationResolved {
			now := time.Now()
			esc.ResolvedAt = &now
			esc.ResolvedBy = &reviewerID
		}
		esc.Status = EscalationResolved
	} else {
		if esc.Status == EscalationResolved {
			return nil, fmt.Errorf("escalation is already resolved")
		}
		esc.Status = EscalationReviewed
	}

	if err := s.escalations.Update(ctx, esc); err != nil {
		return nil, err
	}
	s.log.Info().
		Str("escalation_id", id.String()).
		Str("status", esc.Status).
		Str("reviewer_id", reviewerID.String()).
		Msg("escalation reviewed")
	return esc, nil
}
