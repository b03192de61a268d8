package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/smartwound/smartwound/internal/platform/auth"
	"github.com/smartwound/smartwound/pkg/pagination"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotVerified        = errors.New("email not verified")
	ErrTokenExpired       = errors.New("verification token expired")
)

const verificationTokenTTL = 24 * time.Hour

// Notifier sends a templated email. Satisfied by notification.Mailer.
type Notifier interface {
	Send(ctx context.Context, to, templateID string, data map[string]string) error
}

// Service implements account lifecycle and profile management.
type Service struct {
	repo     Repository
	issuer   *auth.TokenIssuer
	notifier Notifier
	baseURL  string
	log      zerolog.Logger
}

func NewService(repo Repository, issuer *auth.TokenIssuer, notifier Notifier, baseURL string, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		issuer:   issuer,
		notifier: notifier,
		baseURL:  strings.TrimRight(baseURL, "/"),
		log:      log.With().Str("component", "identity").Logger(),
	}
}

// Register creates an unverified account and emails a verification link.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return nil, fmt.Errorf("a valid email is required")
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}
	if !req.PrivacyConsent {
		return nil, fmt.Errorf("privacy consent is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	token, err := newVerificationToken()
	if err != nil {
		return nil, err
	}
	expires := time.Now().Add(verificationTokenTTL)

	now := time.Now()
	u := &User{
		ID:                         uuid.New(),
		Email:                      req.Email,
		PasswordHash:               string(hash),
		Role:                       auth.RoleUser,
		FullName:                   req.FullName,
		PrivacyConsent:             true,
		IsVerified:                 false,
		VerificationToken:          &token,
		VerificationTokenExpiresAt: &expires,
		CreatedAt:                  now,
		UpdatedAt:                  now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		name := u.Email
		if u.FullName != nil && *u.FullName != "" {
			name = *u.FullName
		}
		data := map[string]string{
			"name":       name,
			"verify_url": fmt.Sprintf("%s/api/auth/verify-email?token=%s", s.baseURL, token),
		}
		if err := s.notifier.Send(ctx, u.Email, "verify-email", data); err != nil {
			// Account exists either way. The user can request a resend.
			s.log.Error().Err(err).Str("user_id", u.ID.String()).Msg("failed to send verification email")
		}
	}

	s.log.Info().Str("user_id", u.ID.String()).Msg("user registered")
	return u, nil
}

// Login verifies credentials and issues a signed token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !u.IsVerified {
		return "", nil, ErrNotVerified
	}

	token, err := s.issuer.Issue(u.ID, u.Role, u.Email)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, u, nil
}

// VerifyEmail consumes a verification token and activates the account.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("token is required")
	}
	u, err := s.repo.GetByVerificationToken(ctx, token)
	if err != nil {
		return err
	}
	if u.VerificationTokenExpiresAt != nil && time.Now().After(*u.VerificationTokenExpiresAt) {
		return ErrTokenExpired
	}

	u.IsVerified = true
	u.VerificationToken = nil
	u.VerificationTokenExpiresAt = nil
	return s.repo.Update(ctx, u)
}

// GetProfile returns the user behind the given id.
func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile applies the caller-editable fields onto the stored user.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, upd ProfileUpdate) (*User, error) {
	if upd.Gender != nil && !allowedGenders[*upd.Gender] {
		return nil, fmt.Errorf("gender must be one of male, female, other")
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.FullName != nil {
		u.FullName = upd.FullName
	}
	if upd.Gender != nil {
		u.Gender = upd.Gender
	}
	if upd.DateOfBirth != nil {
		u.DateOfBirth = upd.DateOfBirth
	}
	if upd.PhoneNumber != nil {
		u.PhoneNumber = upd.PhoneNumber
	}
	if upd.Country != nil {
		u.Country = upd.Country
	}
	if upd.City != nil {
		u.City = upd.City
	}
	if upd.KnownConditions != nil {
		u.KnownConditions = upd.KnownConditions
	}
	if upd.Allergies != nil {
		u.Allergies = upd.Allergies
	}
	if upd.Medication != nil {
		u.Medication = upd.Medication
	}
	if upd.ProfilePic != nil {
		u.ProfilePic = upd.ProfilePic
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ListUsers returns a page of users, newest first.
func (s *Service) ListUsers(ctx context.Context, p pagination.Params) ([]*User, int, error) {
	return s.repo.List(ctx, p)
}

// SetRole changes a user's role.
func (s *Service) SetRole(ctx context.Context, id uuid.UUID, role auth.Role) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Role = role
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", id.String()).Str("role", string(role)).Msg("role updated")
	return u, nil
}

func newVerificationToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
