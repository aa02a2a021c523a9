package model

import "github.com/google/uuid"

// CreateHospitalRequest onboards a hospital together with its first
// admin account. The admin email must belong to AdminDomain.
type CreateHospitalRequest struct {
	Name        string `json:"name" binding:"required"`
	City        string `json:"city" binding:"required"`
	AdminDomain string `json:"admin_domain" binding:"required,fqdn"`
	StaffDomain string `json:"staff_domain" binding:"required,fqdn"`
	AdminEmail  string `json:"admin_email" binding:"required,email"`
	AdminName   string `json:"admin_name" binding:"required"`
}

// CreateDoctorRequest provisions a doctor user plus profile in one
// transaction.
type CreateDoctorRequest struct {
	HospitalID         uuid.UUID `json:"hospital_id" binding:"required"`
	Email              string    `json:"email" binding:"required,email"`
	FullName           string    `json:"full_name" binding:"required"`
	Specialty          string    `json:"specialty" binding:"required"`
	RegistrationNumber string    `json:"registration_number" binding:"required"`
}

// ProvisionedAccount reports a freshly provisioned staff account. The
// temporary password is returned once and otherwise only delivered by
// email; it is never stored in clear.
type ProvisionedAccount struct {
	UserID            uuid.UUID `json:"user_id"`
	Email             string    `json:"email"`
	Role              Role      `json:"role"`
	HospitalID        uuid.UUID `json:"hospital_id"`
	TemporaryPassword string    `json:"temporary_password"`
}
