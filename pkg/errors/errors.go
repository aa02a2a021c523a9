package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode is the stable machine-readable code surfaced to clients.
type ErrorCode string

// Codes surfaced by the auth endpoints. These are part of the API contract.
const (
	CodeValidation         ErrorCode = "VALIDATION_ERROR"
	CodeInvalidOTP         ErrorCode = "INVALID_OTP"
	CodeExpiredOTP         ErrorCode = "EXPIRED_OTP"
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeAccountLocked      ErrorCode = "ACCOUNT_LOCKED"
	CodeInvalidRole        ErrorCode = "INVALID_ROLE"
	CodeDomainNotAllowed   ErrorCode = "DOMAIN_NOT_ALLOWED"
	CodeRateLimited        ErrorCode = "RATE_LIMITED"
	CodeNotFound           ErrorCode = "NOT_FOUND"
	CodeConflict           ErrorCode = "CONFLICT"
	CodeInternal           ErrorCode = "INTERNAL_ERROR"
)

// AppError represents an application error. The wrapped Err is logged
// server-side only and never serialized to clients.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Status  int       `json:"-"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match on the code, so services can return fresh
// instances while callers compare against the sentinel constructors.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// StatusCode implements the interface the error-handling middleware
// looks for when choosing an HTTP status.
func (e *AppError) StatusCode() int {
	return e.Status
}

// Error constructors

func Validation(message string, err error) *AppError {
	return &AppError{Code: CodeValidation, Status: http.StatusBadRequest, Message: message, Err: err}
}

func InvalidOTP() *AppError {
	return &AppError{Code: CodeInvalidOTP, Status: http.StatusBadRequest, Message: "invalid OTP"}
}

func ExpiredOTP() *AppError {
	return &AppError{Code: CodeExpiredOTP, Status: http.StatusBadRequest, Message: "OTP has expired"}
}

func InvalidCredentials() *AppError {
	return &AppError{Code: CodeInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid credentials"}
}

func AccountLocked() *AppError {
	return &AppError{Code: CodeAccountLocked, Status: http.StatusLocked, Message: "account is locked, please try again later"}
}

func InvalidRole() *AppError {
	return &AppError{Code: CodeInvalidRole, Status: http.StatusForbidden, Message: "role not permitted for this portal"}
}

func DomainNotAllowed() *AppError {
	return &AppError{Code: CodeDomainNotAllowed, Status: http.StatusUnauthorized, Message: "email domain is not registered"}
}

func RateLimited(message string) *AppError {
	return &AppError{Code: CodeRateLimited, Status: http.StatusTooManyRequests, Message: message}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{Code: CodeNotFound, Status: http.StatusNotFound, Message: fmt.Sprintf("%s not found", resource), Err: err}
}

func Conflict(message string, err error) *AppError {
	return &AppError{Code: CodeConflict, Status: http.StatusConflict, Message: message, Err: err}
}

func Internal(err error) *AppError {
	return &AppError{Code: CodeInternal, Status: http.StatusInternalServerError, Message: "internal server error", Err: err}
}
