package model

import (
	"time"

	"github.com/google/uuid"
)

// OTPCode is a one-time login code tied to a phone number. Phone is stored
// as the ten-digit national number, without the country prefix. At most
// one live code exists per phone: issuing a new code deletes prior rows.
type OTPCode struct {
	ID        uuid.UUID `db:"id"`
	Phone     string    `db:"phone"`
	Code      string    `db:"code"`
	Attempts  int       `db:"attempts"`
	CreatedAt time.Time `db:"created_at"`
}

// ExpiresAt computes the expiry deadline for a code issued at CreatedAt.
func (c *OTPCode) ExpiresAt(window time.Duration) time.Time {
	return c.CreatedAt.Add(window)
}
