package auth

import (
	"context"
	"errors"

	"github.com/arogyacare/platform-api/internal/model"
	"github.com/arogyacare/platform-api/internal/repository"
	apperrors "github.com/arogyacare/platform-api/pkg/errors"
	"github.com/arogyacare/platform-api/pkg/phone"
)

// RequestCode validates the phone number and hands off to the OTP
// lifecycle. Endpoint-level rate limiting has already run; the OTP
// service applies its own per-phone resend throttle on top.
func (s *Service) RequestCode(ctx context.Context, phoneNumber string) error {
	if !phone.ValidateNumber(phoneNumber) {
		return apperrors.Validation("invalid phone number", nil)
	}
	return s.otpSvc.Issue(ctx, phoneNumber)
}

// VerifyAndLogin consumes the code and logs the patient in, creating the
// account on first successful verification.
func (s *Service) VerifyAndLogin(ctx context.Context, phoneNumber, code string) (*model.PatientLoginResponse, error) {
	if err := s.otpSvc.Verify(ctx, phoneNumber, code); err != nil {
		return nil, err
	}

	user, err := s.users.GetByPhone(ctx, phoneNumber)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Internal(err)
		}

		// First login: the verified phone number becomes a patient account.
		p := phoneNumber
		user = &model.User{
			Phone: &p,
			Role:  model.RolePatient,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, apperrors.Internal(err)
		}
	}

	now := s.now()
	user.LastLoginAt = &now
	if err := s.users.UpdateLoginState(ctx, user); err != nil {
		return nil, apperrors.Internal(err)
	}

	pair, err := s.jwtSvc.IssueTokenPair(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	s.countLogin("patient", "success")
	s.countTokens("patient")

	return &model.PatientLoginResponse{
		User: model.AuthUser{
			UserID:      user.ID,
			PhoneNumber: user.Phone,
			FullName:    user.FullName,
			Role:        user.Role,
		},
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    tokenTypeBearer,
		ExpiresIn:    patientExpiresIn,
	}, nil
}
