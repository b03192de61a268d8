package wound

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/smartwound/smartwound/internal/platform/auth"
	"github.com/smartwound/smartwound/pkg/pagination"
)

// Service implements wound tracking with ownership checks. Regular users see
// only their own wounds; a lookup of someone else's wound reports not found
// rather than forbidden, so wound ids are not probeable.
type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log.With().Str("component", "wound").Logger()}
}

// Create registers a new wound for the calling user.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req CreateRequest) (*Wound, error) {
	if req.Type == "" {
		return nil, fmt.Errorf("type is required")
	}
	if req.Severity == "" {
		req.Severity = SeverityUnknown
	}
	if !validSeverities[req.Severity] {
		return nil, fmt.Errorf("severity must be one of minor, moderate, severe, unknown")
	}

	now := time.Now()
	w := &Wound{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      req.Type,
		Severity:  req.Severity,
		Status:    StatusOpen,
		ImageURL:  req.ImageURL,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, err
	}
	s.log.Info().Str("wound_id", w.ID.String()).Str("user_id", userID.String()).Msg("wound created")
	return w, nil
}

// Get returns a wound the caller is allowed to see.
func (s *Service) Get(ctx context.Context, userID uuid.UUID, role auth.Role, id uuid.UUID) (*Wound, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.UserID != userID && !role.CanViewAnyWound() {
		return nil, ErrNotFound
	}
	return w, nil
}

// List returns the caller's wounds, or all wounds for doctors and admins.
func (s *Service) List(ctx context.Context, userID uuid.UUID, role auth.Role, status string, p pagination.Params) ([]*Wound, int, error) {
	f := ListFilter{Status: status}
	if !role.CanViewAnyWound() {
		f.UserID = &userID
	}
	return s.repo.List(ctx, f, p)
}

// Update applies the given changes. Owners and admins may update.
func (s *Service) Update(ctx context.Context, userID uuid.UUID, role auth.Role, id uuid.UUID, req UpdateRequest) (*Wound, error) {
	w, err := s.Get(ctx, userID, role, id)
	if err != nil {
		return nil, err
	}
	if w.UserID != userID && !role.CanModerate() {
		return nil, ErrNotFound
	}

	if req.Type != nil {
		if *req.Type == "" {
			return nil, fmt.Errorf("type is required")
		}
		w.Type = *req.Type
	}
	if req.Severity != nil {
		if !validSeverities[*req.Severity] {
			return nil, fmt.Errorf("severity must be one of minor, moderate, severe, unknown")
		}
		w.Severity = *req.Severity
	}
	if req.Status != nil {
		if !validStatuses[*req.Status] {
			return nil, fmt.Errorf("status must be one of open, healing, infected, closed")
		}
		// Any transition is accepted, closed wounds included.
		w.Status = *req.Status
	}
	if req.ImageURL != nil {
		w.ImageURL = req.ImageURL
	}
	if req.Notes != nil {
		w.Notes = req.Notes
	}
	w.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// ListFlagged returns wounds awaiting moderation review.
func (s *Service) ListFlagged(ctx context.Context) ([]*Wound, error) {
	flagged := true
	wounds, _, err := s.repo.List(ctx, ListFilter{Flagged: &flagged}, pagination.Params{Limit: 100})
	return wounds, err
}

// SetFlagged marks a wound for moderation review.
func (s *Service) SetFlagged(ctx context.Context, id uuid.UUID, flagged bool) (*Wound, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	w.Flagged = flagged
	if err := s.repo.Update(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// Delete removes a wound and, through the schema, its logs, comments and
// escalations.
func (s *Service) Delete(ctx context.Context, userID uuid.UUID, role auth.Role, id uuid.UUID) error {
	w, err := s.Get(ctx, userID, role, id)
	if err != nil {
		return err
	}
	if w.UserID != userID && !role.CanModerate() {
		return ErrNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("wound_id", id.String()).Msg("wound deleted")
	return nil
}

// AddLog appends a healing-progress entry and touches the wound's updated_at
// so the inactivity reminder clock restarts.
func (s *Service) AddLog(ctx context.Context, userID uuid.UUID, role auth.Role, woundID uuid.UUID, photoURL, notes *string) (*Log, error) {
	w, err := s.Get(ctx, userID, role, woundID)
	if err != nil {
		return nil, err
	}
	if w.UserID != userID {
		return nil, ErrNotFound
	}
	if (photoURL == nil || *photoURL == "") && (notes == nil || *notes == "") {
		return nil, fmt.Errorf("a photo or notes are required")
	}

	l := &Log{
		ID:        uuid.New(),
		WoundID:   woundID,
		PhotoURL:  photoURL,
		Notes:     notes,
		CreatedAt: time.Now(),
	}
	if err := s.repo.CreateLog(ctx, l); err != nil {
		return nil, err
	}

	w.UpdatedAt = l.CreatedAt
	if err := s.repo.Update(ctx, w); err != nil {
		return nil, err
	}
	return l, nil
}

// ListLogs returns a wound's log entries, newest first.
func (s *Service) ListLogs(ctx context.Context, userID uuid.UUID, role auth.Role, woundID uuid.UUID) ([]*Log, error) {
	if _, err := s.Get(ctx, userID, role, woundID); err != nil {
		return nil, err
	}
	return s.repo.ListLogs(ctx, woundID)
}

// AddComment records a clinical note. Only doctors and admins may comment.
func (s *Service) AddComment(ctx context.Context, authorID uuid.UUID, woundID uuid.UUID, text string) (*Comment, error) {
	if text == "" {
		return nil, fmt.Errorf("comment is required")
	}
	if _, err := s.repo.GetByID(ctx, woundID); err != nil {
		return nil, err
	}

	cm := &Comment{
		ID:        uuid.New(),
		WoundID:   woundID,
		AuthorID:  authorID,
		Comment:   text,
		CreatedAt: time.Now(),
	}
	if err := s.repo.CreateComment(ctx, cm); err != nil {
		return nil, err
	}
	return cm, nil
}

// ListComments returns a wound's clinical notes, visible to the owner and to
// doctors and admins.
func (s *Service) ListComments(ctx context.Context, userID uuid.UUID, role auth.Role, woundID uuid.UUID) ([]*Comment, error) {
	if _, err := s.Get(ctx, userID, role, woundID); err != nil {
		return nil, err
	}
	return s.repo.ListComments(ctx, woundID)
}
