package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/arogyacare/platform-api/internal/model"
	"github.com/arogyacare/platform-api/internal/repository"
	apperrors "github.com/arogyacare/platform-api/pkg/errors"
)

// StaffLogin walks the staff authentication chain: domain binding,
// lockout, credentials, role match, token issuance. Each step has its
// own rejection code so portals can react precisely.
func (s *Service) StaffLogin(ctx context.Context, email, password string) (*model.StaffLoginResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	domain, err := emailDomain(email)
	if err != nil {
		s.countLogin("staff", "validation")
		return nil, apperrors.Validation("invalid email", err)
	}

	// Unknown domains fail closed before any credential work.
	binding, err := s.hospitals.GetDomain(ctx, domain)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.countLogin("staff", "domain_not_allowed")
			return nil, apperrors.DomainNotAllowed()
		}
		return nil, apperrors.Internal(err)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.countLogin("staff", "invalid_credentials")
			return nil, apperrors.InvalidCredentials()
		}
		return nil, apperrors.Internal(err)
	}

	// Lockout is checked before the password so a locked account takes
	// the same path whether or not the password is right.
	now := s.now()
	if user.Locked(now) {
		s.countLogin("staff", "locked")
		return nil, apperrors.AccountLocked()
	}

	if user.PasswordHash == nil {
		s.countLogin("staff", "invalid_credentials")
		return nil, apperrors.InvalidCredentials()
	}

	if err := s.hasher.Compare(*user.PasswordHash, password); err != nil {
		user.LoginAttempts++
		if user.LoginAttempts >= s.cfg.MaxLoginAttempts {
			until := now.Add(s.cfg.LockoutDuration)
			user.LockoutUntil = &until
			user.LoginAttempts = 0
		}
		if updateErr := s.users.UpdateLoginState(ctx, user); updateErr != nil {
			return nil, apperrors.Internal(updateErr)
		}
		s.countLogin("staff", "invalid_credentials")
		return nil, apperrors.InvalidCredentials()
	}

	// Correct credentials are not enough: the stored role must match the
	// role the domain implies, and the account must belong to the
	// hospital the domain is bound to.
	if user.Role != binding.Role || user.HospitalID == nil || *user.HospitalID != binding.HospitalID {
		s.countLogin("staff", "invalid_role")
		return nil, apperrors.InvalidRole()
	}

	user.LoginAttempts = 0
	user.LockoutUntil = nil
	user.LastLoginAt = &now
	if err := s.users.UpdateLoginState(ctx, user); err != nil {
		return nil, apperrors.Internal(err)
	}

	pair, err := s.jwtSvc.IssueTokenPair(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	s.countLogin("staff", "success")
	s.countTokens("staff")

	return &model.StaffLoginResponse{
		User: model.AuthUser{
			UserID:   user.ID,
			Email:    user.Email,
			FullName: user.FullName,
			Role:     user.Role,
		},
		AccessToken:            pair.AccessToken,
		RefreshToken:           pair.RefreshToken,
		TokenType:              tokenTypeBearer,
		ExpiresIn:              staffExpiresIn,
		Permissions:            model.PermissionsFor(user.Role),
		FirstLogin:             user.PasswordIsTemporary,
		RequiresPasswordChange: user.ForcePasswordChange,
	}, nil
}

func emailDomain(email string) (string, error) {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", errors.New("malformed email address")
	}
	return email[at+1:], nil
}
