package model

import "github.com/google/uuid"

// Request types. Phone and code formats are checked again inside the
// services; binding-level validation is the first line only.

type OTPRequestRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required,e164in"`
}

type OTPVerifyRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required,e164in"`
	OTPCode     string `json:"otp_code" binding:"required,otp4"`
}

type StaffLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// Response types

// AuthUser is the user summary embedded in login responses.
type AuthUser struct {
	UserID      uuid.UUID `json:"user_id"`
	PhoneNumber *string   `json:"phone_number,omitempty"`
	Email       *string   `json:"email,omitempty"`
	FullName    *string   `json:"full_name"`
	Role        Role      `json:"role"`
}

// PatientLoginResponse is returned by the OTP verify endpoint. ExpiresIn
// mirrors the access token lifetime in seconds.
type PatientLoginResponse struct {
	User         AuthUser `json:"user"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int      `json:"expires_in"`
}

// StaffLoginResponse is returned by the staff login endpoint.
type StaffLoginResponse struct {
	User                   AuthUser `json:"user"`
	AccessToken            string   `json:"access_token"`
	RefreshToken           string   `json:"refresh_token"`
	TokenType              string   `json:"token_type"`
	ExpiresIn              int      `json:"expires_in"`
	Permissions            []string `json:"permissions"`
	FirstLogin             bool     `json:"first_login"`
	RequiresPasswordChange bool     `json:"requires_password_change"`
}

// TokenRefreshResponse is returned by the refresh endpoint.
type TokenRefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}
