package smart

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Escalation status values.
const (
	EscalationPending  = "pending"
	EscalationReviewed = "reviewed"
	EscalationResolved = "resolved"
)

// Reasons recorded on engine-created escalations. Clients key UI copy off
// these strings, so they are part of the API surface.
const (
	ReasonSevere  = "Wound identified as severe by AI analysis."
	ReasonStalled = "No improvement or log update in over 5 days."
)

// Reminder nudges a user to update an inactive wound log.
type Reminder struct {
	ID          uuid.UUID `db:"id" json:"id"`
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	Message     string    `db:"message" json:"message"`
	DueDate     time.Time `db:"due_date" json:"due_date"`
	IsCompleted bool      `db:"is_completed" json:"is_completed"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ReminderMessage renders the check-in nudge for a wound type.
func ReminderMessage(woundType string) string {
	return fmt.Sprintf("You haven't updated your wound log for '%s' in a few days. Time for a check-in!", woundType)
}

// Escalation flags a wound for clinical review. At most one escalation ever
// exists per wound, whatever its status.
type Escalation struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	WoundID    uuid.UUID  `db:"wound_id" json:"wound_id"`
	Reason     string     `db:"reason" json:"reason"`
	Notes      *string    `db:"notes" json:"notes,omitempty"`
	Status     string     `db:"status" json:"status"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	ResolvedAt *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
	ResolvedBy *uuid.UUID `db:"resolved_by" json:"resolved_by,omitempty"`
}

// EscalationDetail is an escalation joined with its wound and owner, the
// shape the review queue renders.
type EscalationDetail struct {
	Escalation
	Wound struct {
		ID       uuid.UUID `json:"id"`
		Type     string    `json:"type"`
		Severity string    `json:"severity"`
		Status   string    `json:"status"`
		UserID   uuid.UUID `json:"user_id"`
	} `json:"wound"`
	Owner struct {
		ID       uuid.UUID `json:"id"`
		Email    string    `json:"email"`
		FullName *string   `json:"full_name,omitempty"`
	} `json:"user"`
}

// ReviewRequest moves an escalation through the review workflow.
type ReviewRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

// SweepResult summarizes one engine run.
type SweepResult struct {
	RemindersCreated   int `json:"reminders_created"`
	EscalationsCreated int `json:"escalations_created"`
}
