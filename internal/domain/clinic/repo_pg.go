package clinic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const clinicCols = `id, name, address, city, country, phone, latitude, longitude, created_at`

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository returns a Repository backed by PostgreSQL.
func NewPgRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func scanClinic(row pgx.Row) (*Clinic, error) {
	var c Clinic
	err := row.Scan(&c.ID, &c.Name, &c.Address, &c.City, &c.Country, &c.Phone,
		&c.Latitude, &c.Longitude, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan clinic: %w", err)
	}
	return &c, nil
}

func (r *pgRepository) Create(ctx context.Context, c *Clinic) error {
	query := `INSERT INTO clinics (id, name, address, city, country, phone, latitude, longitude, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.pool.Exec(ctx, query, c.ID, c.Name, c.Address, c.City, c.Country,
		c.Phone, c.Latitude, c.Longitude, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert clinic: %w", err)
	}
	return nil
}

func (r *pgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	query := `SELECT ` + clinicCols + ` FROM clinics WHERE id = $1`
	return scanClinic(r.pool.QueryRow(ctx, query, id))
}

func (r *pgRepository) Update(ctx context.Context, c *Clinic) error {
	query := `UPDATE clinics SET name = $2, address = $3, city = $4, country = $5,
		phone = $6, latitude = $7, longitude = $8
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, c.ID, c.Name, c.Address, c.City,
		c.Country, c.Phone, c.Latitude, c.Longitude)
	if err != nil {
		return fmt.Errorf("update clinic: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clinics WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete clinic: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepository) List(ctx context.Context, f SearchFilter) ([]*Clinic, error) {
	var conds []string
	var args []any
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR address ILIKE $%d)", len(args), len(args)))
	}
	if f.City != "" {
		args = append(args, f.City)
		conds = append(conds, fmt.Sprintf("city = $%d", len(args)))
	}
	if f.Country != "" {
		args = append(args, f.Country)
		conds = append(conds, fmt.Sprintf("country = $%d", len(args)))
	}

	query := `SELECT ` + clinicCols + ` FROM clinics`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY name ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list clinics: %w", err)
	}
	defer rows.Close()

	var clinics []*Clinic
	for rows.Next() {
		c, err := scanClinic(rows)
		if err != nil {
			return nil, err
		}
		clinics = append(clinics, c)
	}
	return clinics, rows.Err()
}

func (r *pgRepository) Nearby(ctx context.Context, lat, lon, radiusKm float64) ([]*NearbyClinic, error) {
	// Haversine evaluated in SQL so no earthdistance extension is needed.
	query := `SELECT ` + clinicCols + `,
		6371 * 2 * asin(sqrt(
			power(sin(radians(latitude - $1) / 2), 2) +
			cos(radians($1)) * cos(radians(latitude)) *
			power(sin(radians(longitude - $2) / 2), 2)
		)) AS distance_km
		FROM clinics
		WHERE latitude IS NOT NULL AND longitude IS NOT NULL
		AND 6371 * 2 * asin(sqrt(
			power(sin(radians(latitude - $1) / 2), 2) +
			cos(radians($1)) * cos(radians(latitude)) *
			power(sin(radians(longitude - $2) / 2), 2)
		)) <= $3
		ORDER BY distance_km ASC`

	rows, err := r.pool.Query(ctx, query, lat, lon, radiusKm)
	if err != nil {
		return nil, fmt.Errorf("nearby clinics: %w", err)
	}
	defer rows.Close()

	var clinics []*NearbyClinic
	for rows.Next() {
		var nc NearbyClinic
		if err := rows.Scan(&nc.ID, &nc.Name, &nc.Address, &nc.City, &nc.Country,
			&nc.Phone, &nc.Latitude, &nc.Longitude, &nc.CreatedAt, &nc.DistanceKm); err != nil {
			return nil, fmt.Errorf("scan nearby clinic: %w", err)
		}
		clinics = append(clinics, &nc)
	}
	return clinics, rows.Err()
}
