package smart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgReminderRepository struct {
	pool *pgxpool.Pool
}

// NewPgReminderRepository returns a ReminderRepository backed by PostgreSQL.
func NewPgReminderRepository(pool *pgxpool.Pool) ReminderRepository {
	return &pgReminderRepository{pool: pool}
}

func (r *pgReminderRepository) ListIncomplete(ctx context.Context, userID uuid.UUID) ([]*Reminder, error) {
	query := `SELECT id, user_id, message, due_date, is_completed, created_at
		FROM reminders
		WHERE user_id = $1 AND NOT is_completed
		ORDER BY due_date ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()

	var reminders []*Reminder
	for rows.Next() {
		var rem Reminder
		if err := rows.Scan(&rem.ID, &rem.UserID, &rem.Message, &rem.DueDate,
			&rem.IsCompleted, &rem.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		reminders = append(reminders, &rem)
	}
	return reminders, rows.Err()
}

func (r *pgReminderRepository) CreateIfNoneIncomplete(ctx context.Context, rem *Reminder) (bool, error) {
	// The WHERE NOT EXISTS and the partial unique index on
	// reminders(user_id) WHERE NOT is_completed together make this safe
	// against concurrent sweeps.
	query := `INSERT INTO reminders (id, user_id, message, due_date, is_completed, created_at)
		SELECT $1, $2, $3, $4, false, $5
		WHERE NOT EXISTS (
			SELECT 1 FROM reminders WHERE user_id = $2 AND NOT is_completed
		)
		ON CONFLICT DO NOTHING`

	tag, err := r.pool.Exec(ctx, query, rem.ID, rem.UserID, rem.Message, rem.DueDate, rem.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("insert reminder: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *pgReminderRepository) MarkComplete(ctx context.Context, id, userID uuid.UUID) error {
	query := `UPDATE reminders SET is_completed = true WHERE id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("complete reminder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReminderNotFound
	}
	return nil
}

type pgEscalationRepository struct {
	pool *pgxpool.Pool
}

// NewPgEscalationRepository returns an EscalationRepository backed by
// PostgreSQL.
func NewPgEscalationRepository(pool *pgxpool.Pool) EscalationRepository {
	return &pgEscalationRepository{pool: pool}
}

func (r *pgEscalationRepository) CreateIfAbsent(ctx context.Context, e *Escalation) (bool, error) {
	// escalations.wound_id is unique, so a concurrent insert loses quietly.
	query := `INSERT INTO escalations (id, wound_id, reason, notes, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (wound_id) DO NOTHING`

	tag, err := r.pool.Exec(ctx, query, e.ID, e.WoundID, e.Reason, e.Notes, e.Status, e.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("insert escalation: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *pgEscalationRepository) ListPending(ctx context.Context) ([]*EscalationDetail, error) {
	query := `SELECT e.id, e.wound_id, e.reason, e.notes, e.status, e.created_at,
			e.resolved_at, e.resolved_by,
			w.id, w.type, w.severity, w.status, w.user_id,
			u.id, u.email, u.full_name
		FROM escalations e
		JOIN wounds w ON w.id = e.wound_id
		JOIN users u ON u.id = w.user_id
		WHERE e.status = 'pending'
		ORDER BY e.created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list escalations: %w", err)
	}
	defer rows.Close()

	var details []*EscalationDetail
	for rows.Next() {
		var d EscalationDetail
		if err := rows.Scan(
			&d.ID, &d.WoundID, &d.Reason, &d.Notes, &d.Status, &d.CreatedAt,
			&d.ResolvedAt, &d.ResolvedBy,
			&d.Wound.ID, &d.Wound.Type, &d.Wound.Severity, &d.Wound.Status, &d.Wound.UserID,
			&d.Owner.ID, &d.Owner.Email, &d.Owner.FullName,
		); err != nil {
			return nil, fmt.Errorf("scan escalation: %w", err)
		}
		details = append(details, &d)
	}
	return details, rows.Err()
}

func (r *pgEscalationRepository) GetByID(ctx context.Context, id uuid.UUID) (*Escalation, error) {
	query := `SELECT id, wound_id, reason, notes, status, created_at, resolved_at, resolved_by
		FROM escalations WHERE id = $1`

	var e Escalation
	err := r.pool.QueryRow(ctx, query, id).Scan(&e.ID, &e.WoundID, &e.Reason,
		&e.Notes, &e.Status, &e.CreatedAt, &e.ResolvedAt, &e.ResolvedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEscalationNotFound
		}
		return nil, fmt.Errorf("get escalation: %w", err)
	}
	return &e, nil
}

func (r *pgEscalationRepository) Update(ctx context.Context, e *Escalation) error {
	query := `UPDATE escalations SET notes = $2, status = $3, resolved_at = $4, resolved_by = $5
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, e.ID, e.Notes, e.Status, e.ResolvedAt, e.ResolvedBy)
	if err != nil {
		return fmt.Errorf("update escalation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEscalationNotFound
	}
	return nil
}

type pgWoundSource struct {
	pool *pgxpool.Pool
}

// NewPgWoundSource returns the engine's wound read model backed by
// PostgreSQL.
func NewPgWoundSource(pool *pgxpool.Pool) WoundSource {
	return &pgWoundSource{pool: pool}
}

const woundRefCols = `id, user_id, type, severity, status, created_at, updated_at`

func (s *pgWoundSource) queryRefs(ctx context.Context, query string, args ...any) ([]WoundRef, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query wounds: %w", err)
	}
	defer rows.Close()

	var refs []WoundRef
	for rows.Next() {
		var w WoundRef
		if err := rows.Scan(&w.ID, &w.UserID, &w.Type, &w.Severity, &w.Status,
			&w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan wound: %w", err)
		}
		refs = append(refs, w)
	}
	return refs, rows.Err()
}

func (s *pgWoundSource) OpenWoundsUpdatedBefore(ctx context.Context, cutoff time.Time) ([]WoundRef, error) {
	query := `SELECT ` + woundRefCols + ` FROM wounds
		WHERE status = 'open' AND updated_at < $1 ORDER BY updated_at ASC`
	return s.queryRefs(ctx, query, cutoff)
}

func (s *pgWoundSource) SevereOpenWounds(ctx context.Context) ([]WoundRef, error) {
	query := `SELECT ` + woundRefCols + ` FROM wounds
		WHERE status = 'open' AND severity = 'severe' ORDER BY created_at ASC`
	return s.queryRefs(ctx, query)
}

func (s *pgWoundSource) OpenWoundsCreatedBefore(ctx context.Context, cutoff time.Time) ([]WoundRef, error) {
	query := `SELECT ` + woundRefCols + ` FROM wounds
		WHERE status = 'open' AND created_at < $1 ORDER BY created_at ASC`
	return s.queryRefs(ctx, query, cutoff)
}

func (s *pgWoundSource) LatestLogTime(ctx context.Context, woundID uuid.UUID) (*time.Time, error) {
	query := `SELECT created_at FROM wound_logs
		WHERE wound_id = $1 ORDER BY created_at DESC LIMIT 1`

	var t time.Time
	err := s.pool.QueryRow(ctx, query, woundID).Scan(&t)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest log time: %w", err)
	}
	return &t, nil
}

func (s *pgWoundSource) UserContact(ctx context.Context, userID uuid.UUID) (string, string, error) {
	var name, email string
	err := s.pool.QueryRow(ctx,
		`SELECT full_name, email FROM users WHERE id = $1`, userID).Scan(&name, &email)
	if err != nil {
		return "", "", fmt.Errorf("user contact: %w", err)
	}
	return name, email, nil
}
