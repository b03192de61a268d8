package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartwound/smartwound/pkg/pagination"
)

const userCols = `id, email, password_hash, role, full_name, gender, date_of_birth,
	phone_number, country, city, known_conditions, allergies, medication,
	profile_pic, privacy_consent, is_verified, verification_token,
	verification_token_expires_at, created_at, updated_at`

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository returns a Repository backed by PostgreSQL.
func NewPgRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.FullName, &u.Gender,
		&u.DateOfBirth, &u.PhoneNumber, &u.Country, &u.City,
		&u.KnownConditions, &u.Allergies, &u.Medication,
		&u.ProfilePic, &u.PrivacyConsent, &u.IsVerified,
		&u.VerificationToken, &u.VerificationTokenExpiresAt,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func (r *pgRepository) Create(ctx context.Context, u *User) error {
	query := `INSERT INTO users (id, email, password_hash, role, full_name,
		privacy_consent, is_verified, verification_token,
		verification_token_expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		u.ID, u.Email, u.PasswordHash, u.Role, u.FullName,
		u.PrivacyConsent, u.IsVerified, u.VerificationToken,
		u.VerificationTokenExpiresAt, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *pgRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `SELECT ` + userCols + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *pgRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userCols + ` FROM users WHERE lower(email) = lower($1)`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *pgRepository) GetByVerificationToken(ctx context.Context, token string) (*User, error) {
	query := `SELECT ` + userCols + ` FROM users WHERE verification_token = $1`
	return scanUser(r.pool.QueryRow(ctx, query, token))
}

func (r *pgRepository) Update(ctx context.Context, u *User) error {
	query := `UPDATE users SET
		email = $2, password_hash = $3, role = $4, full_name = $5, gender = $6,
		date_of_birth = $7, phone_number = $8, country = $9, city = $10,
		known_conditions = $11, allergies = $12, medication = $13,
		profile_pic = $14, privacy_consent = $15, is_verified = $16,
		verification_token = $17, verification_token_expires_at = $18,
		updated_at = now()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		u.ID, u.Email, u.PasswordHash, u.Role, u.FullName, u.Gender,
		u.DateOfBirth, u.PhoneNumber, u.Country, u.City,
		u.KnownConditions, u.Allergies, u.Medication,
		u.ProfilePic, u.PrivacyConsent, u.IsVerified,
		u.VerificationToken, u.VerificationTokenExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepository) List(ctx context.Context, p pagination.Params) ([]*User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := `SELECT ` + userCols + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}
