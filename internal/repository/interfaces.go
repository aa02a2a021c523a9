package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/arogyacare/platform-api/internal/model"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByPhone(ctx context.Context, phone string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// UpdateLoginState persists attempt counter, lockout and last-login
	// fields after a login attempt.
	UpdateLoginState(ctx context.Context, user *model.User) error
	// UpdatePassword swaps the hash and clears the temporary-password flags.
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
}

type OTPRepository interface {
	// Replace atomically deletes any existing codes for the phone and
	// inserts the new one, so at most one live code exists per number.
	Replace(ctx context.Context, code *model.OTPCode) error
	// Latest returns the most recently created code for the phone.
	Latest(ctx context.Context, phone string) (*model.OTPCode, error)
	// IncrementAttempts bumps the per-code guess counter and returns the
	// new value.
	IncrementAttempts(ctx context.Context, id uuid.UUID) (int, error)
	// Consume deletes the code row iff it still exists, reporting whether
	// this caller won the delete. Single-use enforcement hangs on this.
	Consume(ctx context.Context, id uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteExpired removes all codes created before cutoff.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

type HospitalRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Hospital, error)
	GetDomain(ctx context.Context, domain string) (*model.HospitalDomain, error)
	// CreateWithAdmin writes the hospital, its domain bindings and the
	// first admin user in a single transaction.
	CreateWithAdmin(ctx context.Context, hospital *model.Hospital, domains []model.HospitalDomain, admin *model.User) error
	// CreateDoctor writes the doctor user and profile in a single
	// transaction.
	CreateDoctor(ctx context.Context, user *model.User, profile *model.DoctorProfile) error
}
