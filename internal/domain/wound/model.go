package wound

import (
	"time"

	"github.com/google/uuid"
)

// Severity values assigned at creation or by AI analysis.
const (
	SeverityMinor    = "minor"
	SeverityModerate = "moderate"
	SeveritySevere   = "severe"
	SeverityUnknown  = "unknown"
)

// Status values. Transitions are deliberately unconstrained; any status may
// follow any other.
const (
	StatusOpen     = "open"
	StatusHealing  = "healing"
	StatusInfected = "infected"
	StatusClosed   = "closed"
)

var validSeverities = map[string]bool{
	SeverityMinor:    true,
	SeverityModerate: true,
	SeveritySevere:   true,
	SeverityUnknown:  true,
}

var validStatuses = map[string]bool{
	StatusOpen:     true,
	StatusHealing:  true,
	StatusInfected: true,
	StatusClosed:   true,
}

// Wound is a tracked injury belonging to one user.
type Wound struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Type      string    `db:"type" json:"type"`
	Severity  string    `db:"severity" json:"severity"`
	Status    string    `db:"status" json:"status"`
	ImageURL  *string   `db:"image_url" json:"image_url,omitempty"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
	Flagged   bool      `db:"flagged" json:"flagged"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Log is an append-only healing-progress entry. Logs are never updated or
// deleted individually; they go away with their wound.
type Log struct {
	ID        uuid.UUID `db:"id" json:"id"`
	WoundID   uuid.UUID `db:"wound_id" json:"wound_id"`
	PhotoURL  *string   `db:"photo_url" json:"photo_url,omitempty"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Comment is a clinical note left on a wound by an admin or doctor.
type Comment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	WoundID   uuid.UUID `db:"wound_id" json:"wound_id"`
	AuthorID  uuid.UUID `db:"author_id" json:"author_id"`
	Comment   string    `db:"comment" json:"comment"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CreateRequest is the payload for registering a new wound.
type CreateRequest struct {
	Type     string  `json:"type"`
	Severity string  `json:"severity"`
	ImageURL *string `json:"image_url"`
	Notes    *string `json:"notes"`
}

// UpdateRequest carries the mutable wound fields. Nil means unchanged.
type UpdateRequest struct {
	Type     *string `json:"type"`
	Severity *string `json:"severity"`
	Status   *string `json:"status"`
	ImageURL *string `json:"image_url"`
	Notes    *string `json:"notes"`
}
