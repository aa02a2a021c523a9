package model

import "github.com/google/uuid"

// Hospital represents an onboarded hospital.
type Hospital struct {
	Base
	Name string `json:"name" db:"name"`
	City string `json:"city" db:"city"`
}

// HospitalDomain binds an email domain to a hospital and the role a login
// from that domain is expected to carry. Domains not present in this
// table fail closed at staff login.
type HospitalDomain struct {
	Domain     string    `json:"domain" db:"domain"`
	HospitalID uuid.UUID `json:"hospital_id" db:"hospital_id"`
	Role       Role      `json:"role" db:"role"`
}

// DoctorProfile holds the clinical sub-record created together with a
// doctor user in one transaction.
type DoctorProfile struct {
	UserID             uuid.UUID `json:"user_id" db:"user_id"`
	HospitalID         uuid.UUID `json:"hospital_id" db:"hospital_id"`
	Specialty          string    `json:"specialty" db:"specialty"`
	RegistrationNumber string    `json:"registration_number" db:"registration_number"`
}
