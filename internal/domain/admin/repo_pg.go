package admin

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type pgStatsRepository struct {
	pool *pgxpool.Pool
}

// NewPgStatsRepository returns a StatsRepository backed by PostgreSQL.
func NewPgStatsRepository(pool *pgxpool.Pool) StatsRepository {
	return &pgStatsRepository{pool: pool}
}

func (r *pgStatsRepository) count(ctx context.Context, query string) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

func (r *pgStatsRepository) buckets(ctx context.Context, query string) ([]CountBucket, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("grouped count: %w", err)
	}
	defer rows.Close()

	var out []CountBucket
	for rows.Next() {
		var b CountBucket
		var key *string
		if err := rows.Scan(&key, &b.Count); err != nil {
			return nil, fmt.Errorf("scan bucket: %w", err)
		}
		if key != nil {
			b.Key = *key
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *pgStatsRepository) SystemStats(ctx context.Context) (*SystemStats, error) {
	var stats SystemStats
	var err error

	counts := []struct {
		dst   *int
		query string
	}{
		{&stats.Users, `SELECT count(*) FROM users`},
		{&stats.Wounds, `SELECT count(*) FROM wounds`},
		{&stats.WoundLogs, `SELECT count(*) FROM wound_logs`},
		{&stats.Clinics, `SELECT count(*) FROM clinics`},
		{&stats.ForumPosts, `SELECT count(*) FROM forum_posts`},
		{&stats.ForumComments, `SELECT count(*) FROM forum_comments`},
		{&stats.Reminders, `SELECT count(*) FROM reminders`},
		{&stats.Escalations.Total, `SELECT count(*) FROM escalations`},
		{&stats.Escalations.Pending, `SELECT count(*) FROM escalations WHERE status = 'pending'`},
		{&stats.FlaggedContent.Posts, `SELECT count(*) FROM forum_posts WHERE flagged`},
		{&stats.FlaggedContent.Comments, `SELECT count(*) FROM forum_comments WHERE flagged`},
	}
	for _, c := range counts {
		if *c.dst, err = r.count(ctx, c.query); err != nil {
			return nil, err
		}
	}
	return &stats, nil
}

func (r *pgStatsRepository) WoundStats(ctx context.Context) (*WoundStats, error) {
	var stats WoundStats
	var err error

	if stats.TotalWounds, err = r.count(ctx, `SELECT count(*) FROM wounds`); err != nil {
		return nil, err
	}
	if stats.ByType, err = r.buckets(ctx,
		`SELECT type, count(*) FROM wounds GROUP BY type ORDER BY count(*) DESC`); err != nil {
		return nil, err
	}
	if stats.BySeverity, err = r.buckets(ctx,
		`SELECT severity, count(*) FROM wounds GROUP BY severity ORDER BY count(*) DESC`); err != nil {
		return nil, err
	}
	if stats.ByStatus, err = r.buckets(ctx,
		`SELECT status, count(*) FROM wounds GROUP BY status ORDER BY count(*) DESC`); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *pgStatsRepository) ClinicStats(ctx context.Context) (*ClinicStats, error) {
	var stats ClinicStats
	var err error

	if stats.TotalClinics, err = r.count(ctx, `SELECT count(*) FROM clinics`); err != nil {
		return nil, err
	}
	if stats.ByCountry, err = r.buckets(ctx,
		`SELECT country, count(*) FROM clinics GROUP BY country ORDER BY count(*) DESC`); err != nil {
		return nil, err
	}
	if stats.ByCity, err = r.buckets(ctx,
		`SELECT city, count(*) FROM clinics GROUP BY city ORDER BY count(*) DESC`); err != nil {
		return nil, err
	}
	return &stats, nil
}
