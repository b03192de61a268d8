package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/smartwound/smartwound/internal/platform/auth"
)

// User maps to the users table.
type User struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Email           string     `db:"email" json:"email"`
	PasswordHash    string     `db:"password_hash" json:"-"`
	Role            auth.Role  `db:"role" json:"role"`
	FullName        *string    `db:"full_name" json:"full_name,omitempty"`
	Gender          *string    `db:"gender" json:"gender,omitempty"`
	DateOfBirth     *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	PhoneNumber     *string    `db:"phone_number" json:"phone_number,omitempty"`
	Country         *string    `db:"country" json:"country,omitempty"`
	City            *string    `db:"city" json:"city,omitempty"`
	KnownConditions []string   `db:"known_conditions" json:"known_conditions,omitempty"`
	Allergies       []string   `db:"allergies" json:"allergies,omitempty"`
	Medication      []string   `db:"medication" json:"medication,omitempty"`
	ProfilePic      *string    `db:"profile_pic" json:"profile_pic,omitempty"`
	PrivacyConsent  bool       `db:"privacy_consent" json:"privacy_consent"`
	IsVerified      bool       `db:"is_verified" json:"is_verified"`

	VerificationToken          *string    `db:"verification_token" json:"-"`
	VerificationTokenExpiresAt *time.Time `db:"verification_token_expires_at" json:"-"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

var allowedGenders = map[string]bool{
	"male":   true,
	"female": true,
	"other":  true,
}

// RegisterRequest is the payload for account creation.
type RegisterRequest struct {
	Email          string  `json:"email"`
	Password       string  `json:"password"`
	FullName       *string `json:"full_name"`
	PrivacyConsent bool    `json:"privacy_consent"`
}

// ProfileUpdate carries the caller-editable profile fields. Role, email and
// password are managed elsewhere.
type ProfileUpdate struct {
	FullName        *string    `json:"full_name"`
	Gender          *string    `json:"gender"`
	DateOfBirth     *time.Time `json:"date_of_birth"`
	PhoneNumber     *string    `json:"phone_number"`
	Country         *string    `json:"country"`
	City            *string    `json:"city"`
	KnownConditions []string   `json:"known_conditions"`
	Allergies       []string   `json:"allergies"`
	Medication      []string   `json:"medication"`
	ProfilePic      *string    `json:"profile_pic"`
}
