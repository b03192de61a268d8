package wound

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartwound/smartwound/pkg/pagination"
)

const woundCols = `id, user_id, type, severity, status, image_url, notes, flagged, created_at, updated_at`

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository returns a Repository backed by PostgreSQL.
func NewPgRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func scanWound(row pgx.Row) (*Wound, error) {
	var w Wound
	err := row.Scan(&w.ID, &w.UserID, &w.Type, &w.Severity, &w.Status,
		&w.ImageURL, &w.Notes, &w.Flagged, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan wound: %w", err)
	}
	return &w, nil
}

func (r *pgRepository) Create(ctx context.Context, w *Wound) error {
	query := `INSERT INTO wounds (id, user_id, type, severity, status, image_url,
		notes, flagged, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query, w.ID, w.UserID, w.Type, w.Severity,
		w.Status, w.ImageURL, w.Notes, w.Flagged, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert wound: %w", err)
	}
	return nil
}

func (r *pgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Wound, error) {
	query := `SELECT ` + woundCols + ` FROM wounds WHERE id = $1`
	return scanWound(r.pool.QueryRow(ctx, query, id))
}

func (r *pgRepository) Update(ctx context.Context, w *Wound) error {
	query := `UPDATE wounds SET type = $2, severity = $3, status = $4,
		image_url = $5, notes = $6, flagged = $7, updated_at = now()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, w.ID, w.Type, w.Severity, w.Status,
		w.ImageURL, w.Notes, w.Flagged)
	if err != nil {
		return fmt.Errorf("update wound: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM wounds WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete wound: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepository) List(ctx context.Context, f ListFilter, p pagination.Params) ([]*Wound, int, error) {
	var conds []string
	var args []any
	if f.UserID != nil {
		args = append(args, *f.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Flagged != nil {
		args = append(args, *f.Flagged)
		conds = append(conds, fmt.Sprintf("flagged = $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM wounds`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count wounds: %w", err)
	}

	args = append(args, p.Limit, p.Offset)
	query := fmt.Sprintf(`SELECT %s FROM wounds%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		woundCols, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list wounds: %w", err)
	}
	defer rows.Close()

	var wounds []*Wound
	for rows.Next() {
		w, err := scanWound(rows)
		if err != nil {
			return nil, 0, err
		}
		wounds = append(wounds, w)
	}
	return wounds, total, rows.Err()
}

func (r *pgRepository) CreateLog(ctx context.Context, l *Log) error {
	query := `INSERT INTO wound_logs (id, wound_id, photo_url, notes, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.pool.Exec(ctx, query, l.ID, l.WoundID, l.PhotoURL, l.Notes, l.CreatedAt); err != nil {
		return fmt.Errorf("insert wound log: %w", err)
	}
	return nil
}

func (r *pgRepository) ListLogs(ctx context.Context, woundID uuid.UUID) ([]*Log, error) {
	query := `SELECT id, wound_id, photo_url, notes, created_at
		FROM wound_logs WHERE wound_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, woundID)
	if err != nil {
		return nil, fmt.Errorf("list wound logs: %w", err)
	}
	defer rows.Close()

	var logs []*Log
	for rows.Next() {
		var l Log
		if err := rows.Scan(&l.ID, &l.WoundID, &l.PhotoURL, &l.Notes, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan wound log: %w", err)
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}

func (r *pgRepository) CreateComment(ctx context.Context, cm *Comment) error {
	query := `INSERT INTO wound_comments (id, wound_id, author_id, comment, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.pool.Exec(ctx, query, cm.ID, cm.WoundID, cm.AuthorID, cm.Comment, cm.CreatedAt); err != nil {
		return fmt.Errorf("insert wound comment: %w", err)
	}
	return nil
}

func (r *pgRepository) ListComments(ctx context.Context, woundID uuid.UUID) ([]*Comment, error) {
	query := `SELECT id, wound_id, author_id, comment, created_at
		FROM wound_comments WHERE wound_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, woundID)
	if err != nil {
		return nil, fmt.Errorf("list wound comments: %w", err)
	}
	defer rows.Close()

	var comments []*Comment
	for rows.Next() {
		var cm Comment
		if err := rows.Scan(&cm.ID, &cm.WoundID, &cm.AuthorID, &cm.Comment, &cm.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan wound comment: %w", err)
		}
		comments = append(comments, &cm)
	}
	return comments, rows.Err()
}
