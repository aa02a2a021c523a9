package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/arogyacare/platform-api/internal/model"
	"github.com/arogyacare/platform-api/internal/repository"
)

type otpRepository struct {
	BaseRepository
}

func NewOTPRepository(base BaseRepository) repository.OTPRepository {
	return &otpRepository{base}
}

// Replace runs delete-old plus insert-new in one transaction, so a crash
// between the two statements can never leave two live codes for a phone.
func (r *otpRepository) Replace(ctx context.Context, code *model.OTPCode) error {
	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}
	code.CreatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM otp_codes WHERE phone = $1`, code.Phone); err != nil {
			return fmt.Errorf("failed to delete prior codes: %w", err)
		}

		query := `
			INSERT INTO otp_codes (id, phone, code, attempts, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`
		if _, err := tx.ExecContext(ctx, query, code.ID, code.Phone, code.Code, 0, code.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert code: %w", err)
		}
		return nil
	})
}

func (r *otpRepository) Latest(ctx context.Context, phone string) (*model.OTPCode, error) {
	query := `
		SELECT * FROM otp_codes
		WHERE phone = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var code model.OTPCode
	if err := r.db.GetContext(ctx, &code, query, phone); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get code: %w", err)
	}
	return &code, nil
}

func (r *otpRepository) IncrementAttempts(ctx context.Context, id uuid.UUID) (int, error) {
	query := `
		UPDATE otp_codes
		SET attempts = attempts + 1
		WHERE id = $1
		RETURNING attempts
	`

	var attempts int
	if err := r.db.GetContext(ctx, &attempts, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, repository.ErrNotFound
		}
		return 0, fmt.Errorf("failed to increment attempts: %w", err)
	}
	return attempts, nil
}

// Consume is the compare-and-delete primitive: of two concurrent
// verifications only one sees rows affected.
func (r *otpRepository) Consume(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM otp_codes WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to consume code: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *otpRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM otp_codes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete code: %w", err)
	}
	return nil
}

// DeleteExpired is safe to run concurrently with verification: it only
// touches rows already past the expiry window.
func (r *otpRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM otp_codes WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired codes: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}
