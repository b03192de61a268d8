package forum

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository returns a Repository backed by PostgreSQL.
func NewPgRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) CreatePost(ctx context.Context, p *Post) error {
	query := `INSERT INTO forum_posts (id, user_id, wound_type, content, flagged, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.pool.Exec(ctx, query, p.ID, p.UserID, p.WoundType, p.Content, p.Flagged, p.CreatedAt); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func scanPostWithAuthor(row pgx.Row) (*Post, error) {
	var p Post
	var a Author
	err := row.Scan(&p.ID, &p.UserID, &p.WoundType, &p.Content, &p.Flagged,
		&p.CreatedAt, &a.ID, &a.FullName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}
	p.Author = &a
	return &p, nil
}

const postJoin = `SELECT p.id, p.user_id, p.wound_type, p.content, p.flagged, p.created_at,
	u.id, u.full_name
	FROM forum_posts p JOIN users u ON u.id = p.user_id`

func (r *pgRepository) GetPost(ctx context.Context, id uuid.UUID) (*PostDetail, error) {
	p, err := scanPostWithAuthor(r.pool.QueryRow(ctx, postJoin+` WHERE p.id = $1`, id))
	if err != nil {
		return nil, err
	}

	query := `SELECT c.id, c.post_id, c.user_id, c.content, c.flagged, c.created_at,
		u.id, u.full_name
		FROM forum_comments c JOIN users u ON u.id = c.user_id
		WHERE c.post_id = $1 ORDER BY c.created_at ASC`

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	detail := &PostDetail{Post: *p, Comments: []*Comment{}}
	for rows.Next() {
		var cm Comment
		var a Author
		if err := rows.Scan(&cm.ID, &cm.PostID, &cm.UserID, &cm.Content,
			&cm.Flagged, &cm.CreatedAt, &a.ID, &a.FullName); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		cm.Author = &a
		detail.Comments = append(detail.Comments, &cm)
	}
	return detail, rows.Err()
}

func (r *pgRepository) ListPosts(ctx context.Context, f PostFilter) ([]*Post, error) {
	var conds []string
	var args []any
	if f.WoundType != "" {
		args = append(args, f.WoundType)
		conds = append(conds, fmt.Sprintf("p.wound_type = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		conds = append(conds, fmt.Sprintf("p.content ILIKE $%d", len(args)))
	}
	if f.Flagged != nil {
		args = append(args, *f.Flagged)
		conds = append(conds, fmt.Sprintf("p.flagged = $%d", len(args)))
	}

	query := postJoin
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY p.created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []*Post
	for rows.Next() {
		p, err := scanPostWithAuthor(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *pgRepository) UpdatePost(ctx context.Context, p *Post) error {
	query := `UPDATE forum_posts SET wound_type = $2, content = $3, flagged = $4 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, p.ID, p.WoundType, p.Content, p.Flagged)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *pgRepository) DeletePost(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM forum_posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *pgRepository) CreateComment(ctx context.Context, cm *Comment) error {
	query := `INSERT INTO forum_comments (id, post_id, user_id, content, flagged, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.pool.Exec(ctx, query, cm.ID, cm.PostID, cm.UserID, cm.Content, cm.Flagged, cm.CreatedAt); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *pgRepository) GetComment(ctx context.Context, id uuid.UUID) (*Comment, error) {
	query := `SELECT c.id, c.post_id, c.user_id, c.content, c.flagged, c.created_at,
		u.id, u.full_name
		FROM forum_comments c JOIN users u ON u.id = c.user_id
		WHERE c.id = $1`

	var cm Comment
	var a Author
	err := r.pool.QueryRow(ctx, query, id).Scan(&cm.ID, &cm.PostID, &cm.UserID,
		&cm.Content, &cm.Flagged, &cm.CreatedAt, &a.ID, &a.FullName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	cm.Author = &a
	return &cm, nil
}

func (r *pgRepository) UpdateComment(ctx context.Context, cm *Comment) error {
	query := `UPDATE forum_comments SET content = $2, flagged = $3 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, cm.ID, cm.Content, cm.Flagged)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCommentNotFound
	}
	return nil
}

func (r *pgRepository) DeleteComment(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM forum_comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCommentNotFound
	}
	return nil
}

func (r *pgRepository) ListFlaggedComments(ctx context.Context) ([]*Comment, error) {
	query := `SELECT c.id, c.post_id, c.user_id, c.content, c.flagged, c.created_at,
		u.id, u.full_name
		FROM forum_comments c JOIN users u ON u.id = c.user_id
		WHERE c.flagged ORDER BY c.created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list flagged comments: %w", err)
	}
	defer rows.Close()

	var comments []*Comment
	for rows.Next() {
		var cm Comment
		var a Author
		if err := rows.Scan(&cm.ID, &cm.PostID, &cm.UserID, &cm.Content,
			&cm.Flagged, &cm.CreatedAt, &a.ID, &a.FullName); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		cm.Author = &a
		comments = append(comments, &cm)
	}
	return comments, rows.Err()
}
