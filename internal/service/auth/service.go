package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/arogyacare/platform-api/internal/model"
	"github.com/arogyacare/platform-api/internal/repository"
	"github.com/arogyacare/platform-api/internal/service/otp"
	"github.com/arogyacare/platform-api/pkg/auth"
	apperrors "github.com/arogyacare/platform-api/pkg/errors"
	"github.com/arogyacare/platform-api/pkg/logger"
	"github.com/arogyacare/platform-api/pkg/metrics"
	"github.com/arogyacare/platform-api/pkg/security"
)

const (
	// expires_in values reported to clients. The staff dashboard refreshes
	// proactively at 2h even though the access token itself lives longer.
	patientExpiresIn = 86400
	staffExpiresIn   = 7200

	tokenTypeBearer = "Bearer"
)

// Config holds staff-login lockout policy.
type Config struct {
	MaxLoginAttempts int
	LockoutDuration  time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxLoginAttempts: 5,
		LockoutDuration:  15 * time.Minute,
	}
}

// Service orchestrates both login flows: passwordless patient OTP login
// and staff email/password login with lockout.
type Service struct {
	users     repository.UserRepository
	hospitals repository.HospitalRepository
	otpSvc    *otp.Service
	jwtSvc    auth.JWTService
	hasher    security.PasswordHasher
	cfg       Config
	metrics   *metrics.Metrics
	logger    *logger.Logger
	now       func() time.Time
}

func NewService(
	users repository.UserRepository,
	hospitals repository.HospitalRepository,
	otpSvc *otp.Service,
	jwtSvc auth.JWTService,
	hasher security.PasswordHasher,
	cfg Config,
	m *metrics.Metrics,
	log *logger.Logger,
) *Service {
	if cfg.MaxLoginAttempts <= 0 {
		cfg.MaxLoginAttempts = 5
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = 15 * time.Minute
	}
	return &Service{
		users:     users,
		hospitals: hospitals,
		otpSvc:    otpSvc,
		jwtSvc:    jwtSvc,
		hasher:    hasher,
		cfg:       cfg,
		metrics:   m,
		logger:    log,
		now:       time.Now,
	}
}

// RefreshToken validates a refresh token and mints a fresh pair carrying
// the user's current role. Signature and expiry failures are not
// distinguished.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*model.TokenRefreshResponse, error) {
	claims, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.InvalidCredentials()
	}

	user, err := s.users.Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.InvalidCredentials()
		}
		return nil, apperrors.Internal(err)
	}

	pair, err := s.jwtSvc.IssueTokenPair(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &model.TokenRefreshResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    tokenTypeBearer,
		ExpiresIn:    staffExpiresIn,
	}, nil
}

// ChangePassword verifies the current credential and installs the new
// hash, clearing the temporary-password flags.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.InvalidCredentials()
		}
		return apperrors.Internal(err)
	}
	if user.PasswordHash == nil {
		return apperrors.InvalidCredentials()
	}

	if err := s.hasher.Compare(*user.PasswordHash, current); err != nil {
		return apperrors.InvalidCredentials()
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return apperrors.Validation("new password is not acceptable", err)
	}

	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

func (s *Service) countLogin(flow, outcome string) {
	if s.metrics != nil {
		s.metrics.LoginAttempts.WithLabelValues(flow, outcome).Inc()
	}
}

func (s *Service) countTokens(flow string) {
	if s.metrics != nil {
		s.metrics.TokensIssued.WithLabelValues(flow).Inc()
	}
}
