package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/arogyacare/platform-api/internal/model"
	"github.com/arogyacare/platform-api/internal/repository"
)

type hospitalRepository struct {
	BaseRepository
}

func NewHospitalRepository(base BaseRepository) repository.HospitalRepository {
	return &hospitalRepository{base}
}

func (r *hospitalRepository) Get(ctx context.Context, id uuid.UUID) (*model.Hospital, error) {
	query := `SELECT * FROM hospitals WHERE id = $1`

	var hospital model.Hospital
	if err := r.db.GetContext(ctx, &hospital, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get hospital: %w", err)
	}
	return &hospital, nil
}

func (r *hospitalRepository) GetDomain(ctx context.Context, domain string) (*model.HospitalDomain, error) {
	query := `SELECT * FROM hospital_domains WHERE domain = $1`

	var hd model.HospitalDomain
	if err := r.db.GetContext(ctx, &hd, query, strings.ToLower(domain)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get hospital domain: %w", err)
	}
	return &hd, nil
}

// CreateWithAdmin is one of the two places true atomicity is required:
// hospital, domain bindings and the first admin appear together or not
// at all.
func (r *hospitalRepository) CreateWithAdmin(ctx context.Context, hospital *model.Hospital, domains []model.HospitalDomain, admin *model.User) error {
	if hospital.ID == uuid.Nil {
		hospital.ID = uuid.New()
	}
	now := time.Now()
	hospital.CreatedAt = now
	hospital.UpdatedAt = now

	if admin.ID == uuid.Nil {
		admin.ID = uuid.New()
	}
	admin.HospitalID = &hospital.ID
	admin.CreatedAt = now
	admin.UpdatedAt = now

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		hospitalQuery := `
			INSERT INTO hospitals (id, name, city, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
		`
		if _, err := tx.ExecContext(ctx, hospitalQuery,
			hospital.ID, hospital.Name, hospital.City, hospital.CreatedAt, hospital.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to create hospital: %w", err)
		}

		domainQuery := `
			INSERT INTO hospital_domains (domain, hospital_id, role)
			VALUES ($1, $2, $3)
		`
		for _, d := range domains {
			if _, err := tx.ExecContext(ctx, domainQuery,
				strings.ToLower(d.Domain), hospital.ID, d.Role,
			); err != nil {
				return fmt.Errorf("failed to create hospital domain: %w", err)
			}
		}

		return insertUserTx(ctx, tx, admin)
	})
}

// CreateDoctor writes the doctor user and clinical profile atomically.
func (r *hospitalRepository) CreateDoctor(ctx context.Context, user *model.User, profile *model.DoctorProfile) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	profile.UserID = user.ID

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := insertUserTx(ctx, tx, user); err != nil {
			return err
		}

		profileQuery := `
			INSERT INTO doctor_profiles (user_id, hospital_id, specialty, registration_number)
			VALUES ($1, $2, $3, $4)
		`
		if _, err := tx.ExecContext(ctx, profileQuery,
			profile.UserID, profile.HospitalID, profile.Specialty, profile.RegistrationNumber,
		); err != nil {
			return fmt.Errorf("failed to create doctor profile: %w", err)
		}
		return nil
	})
}

func insertUserTx(ctx context.Context, tx *sqlx.Tx, user *model.User) error {
	query := `
		INSERT INTO users (
			id, phone, email, full_name, role, password_hash, hospital_id,
			password_is_temporary, force_password_change, login_attempts,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	if _, err := tx.ExecContext(ctx, query,
		user.ID,
		user.Phone,
		user.Email,
		user.FullName,
		user.Role,
		user.PasswordHash,
		user.HospitalID,
		user.PasswordIsTemporary,
		user.ForcePasswordChange,
		user.LoginAttempts,
		user.CreatedAt,
		user.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}
