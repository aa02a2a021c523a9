package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of user roles. A role is fixed once assigned:
// phone-registered users are always patients, staff roles are set at
// provisioning time.
type Role string

const (
	RolePatient       Role = "patient"
	RoleDoctor        Role = "doctor"
	RoleHospitalAdmin Role = "hospital_admin"
	RolePharmacist    Role = "pharmacist"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RolePatient, RoleDoctor, RoleHospitalAdmin, RolePharmacist:
		return true
	}
	return false
}

// StaffRole reports whether r authenticates via email/password.
func StaffRole(r Role) bool {
	return r == RoleDoctor || r == RoleHospitalAdmin || r == RolePharmacist
}

// User represents a platform user. Patients carry a phone number and no
// password; staff carry an email bound to a hospital domain plus a
// password hash.
type User struct {
	Base
	Phone               *string    `json:"phone_number,omitempty" db:"phone"`
	Email               *string    `json:"email,omitempty" db:"email"`
	FullName            *string    `json:"full_name" db:"full_name"`
	Role                Role       `json:"role" db:"role"`
	PasswordHash        *string    `json:"-" db:"password_hash"`
	HospitalID          *uuid.UUID `json:"hospital_id,omitempty" db:"hospital_id"`
	PasswordIsTemporary bool       `json:"-" db:"password_is_temporary"`
	ForcePasswordChange bool       `json:"-" db:"force_password_change"`
	LoginAttempts       int        `json:"-" db:"login_attempts"`
	LockoutUntil        *time.Time `json:"-" db:"lockout_until"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
}

// Locked reports whether the account lockout window is still open.
func (u *User) Locked(now time.Time) bool {
	return u.LockoutUntil != nil && now.Before(*u.LockoutUntil)
}
