package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/arogyacare/platform-api/internal/middleware"
	"github.com/arogyacare/platform-api/internal/model"
	"github.com/arogyacare/platform-api/internal/service/auth"
	apperrors "github.com/arogyacare/platform-api/pkg/errors"
	"github.com/arogyacare/platform-api/pkg/httputil"
)

type Handler struct {
	svc *auth.Service
}

func NewHandler(svc *auth.Service) *Handler {
	return &Handler{svc: svc}
}

// RequestOTP handles POST /auth/patient/otp/request. The response is the
// same whether or not the number has an account.
func (h *Handler) RequestOTP(c *gin.Context) {
	var req model.OTPRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body", err))
		return
	}

	if err := h.svc.RequestCode(c.Request.Context(), req.PhoneNumber); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"message": "verification code sent"})
}

// VerifyOTP handles POST /auth/patient/otp/verify.
func (h *Handler) VerifyOTP(c *gin.Context) {
	var req model.OTPVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body", err))
		return
	}

	resp, err := h.svc.VerifyAndLogin(c.Request.Context(), req.PhoneNumber, req.OTPCode)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, resp)
}

// StaffLogin handles POST /auth/staff/login.
func (h *Handler) StaffLogin(c *gin.Context) {
	var req model.StaffLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body", err))
		return
	}

	resp, err := h.svc.StaffLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, resp)
}

// RefreshToken handles POST /auth/refresh.
func (h *Handler) RefreshToken(c *gin.Context) {
	var req model.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body", err))
		return
	}

	resp, err := h.svc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, resp)
}

// ChangePassword handles POST /auth/change-password (authenticated).
func (h *Handler) ChangePassword(c *gin.Context) {
	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body", err))
		return
	}

	userID, ok := middleware.CallerID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.InvalidCredentials())
		return
	}

	if err := h.svc.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"message": "password updated"})
}
