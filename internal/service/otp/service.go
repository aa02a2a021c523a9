package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arogyacare/platform-api/internal/model"
	"github.com/arogyacare/platform-api/internal/repository"
	"github.com/arogyacare/platform-api/internal/sms"
	apperrors "github.com/arogyacare/platform-api/pkg/errors"
	"github.com/arogyacare/platform-api/pkg/logger"
	"github.com/arogyacare/platform-api/pkg/metrics"
	"github.com/arogyacare/platform-api/pkg/phone"
)

const codeDigits = 4

// Config holds OTP lifecycle tuning.
type Config struct {
	// ExpiryWindow is how long a code stays valid after issuance.
	ExpiryWindow time.Duration
	// MaxAttempts caps wrong guesses per code; exceeding it deletes the code.
	MaxAttempts int
	// ResendWindow throttles how often a phone may request a new code.
	ResendWindow time.Duration
}

func DefaultConfig() Config {
	return Config{
		ExpiryWindow: 5 * time.Minute,
		MaxAttempts:  5,
		ResendWindow: 60 * time.Second,
	}
}

// Service drives the one-time-code lifecycle for a phone number:
// issuance supersedes prior codes, verification is single-use, expiry
// and attempt caps bound the guessing window.
type Service struct {
	repo    repository.OTPRepository
	sender  sms.Sender
	rdb     *redis.Client
	cfg     Config
	metrics *metrics.Metrics
	logger  *logger.Logger
	now     func() time.Time
}

func NewService(repo repository.OTPRepository, sender sms.Sender, rdb *redis.Client, cfg Config, m *metrics.Metrics, log *logger.Logger) *Service {
	if cfg.ExpiryWindow <= 0 {
		cfg.ExpiryWindow = 5 * time.Minute
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	return &Service{
		repo:    repo,
		sender:  sender,
		rdb:     rdb,
		cfg:     cfg,
		metrics: m,
		logger:  log,
		now:     time.Now,
	}
}

func resendKey(national string) string {
	return fmt.Sprintf("otp:resend:%s", national)
}

// Issue generates a fresh 4-digit code for the phone number, replacing any
// prior code, and dispatches it by SMS. Delivery failure rolls the code
// back so the caller can retry cleanly.
func (s *Service) Issue(ctx context.Context, phoneNumber string) error {
	if !phone.ValidateNumber(phoneNumber) {
		return apperrors.Validation("invalid phone number", nil)
	}
	national := phone.NationalNumber(phoneNumber)

	if s.rdb != nil {
		ttl, err := s.rdb.TTL(ctx, resendKey(national)).Result()
		if err == nil && ttl > 0 {
			return apperrors.RateLimited(fmt.Sprintf("please wait %d seconds before requesting a new code", int(ttl.Seconds())))
		}
	}

	code, err := generateCode()
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to generate code: %w", err))
	}

	record := &model.OTPCode{Phone: national, Code: code}
	if err := s.repo.Replace(ctx, record); err != nil {
		return apperrors.Internal(err)
	}

	message := fmt.Sprintf("Your login code is %s. It is valid for %d minutes.", code, int(s.cfg.ExpiryWindow.Minutes()))

	start := time.Now()
	err = s.sender.Send(ctx, phoneNumber, message)
	if s.metrics != nil {
		s.metrics.SMSSendLatency.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.SMSSendFailures.Inc()
		}
		// Without delivery the code is unusable; remove it so the phone
		// is not locked out of retrying by the supersede rule alone.
		if delErr := s.repo.Delete(ctx, record.ID); delErr != nil {
			s.logger.ZL.Error().Err(delErr).Msg("failed to roll back undelivered code")
		}
		return apperrors.Internal(err)
	}

	if s.rdb != nil && s.cfg.ResendWindow > 0 {
		if err := s.rdb.Set(ctx, resendKey(national), 1, s.cfg.ResendWindow).Err(); err != nil {
			s.logger.ZL.Warn().Err(err).Msg("failed to set resend throttle")
		}
	}

	if s.metrics != nil {
		s.metrics.OTPIssued.Inc()
	}
	return nil
}

// Verify checks the supplied code against the live code for the phone
// number and consumes it on success. A wrong guess leaves the code in
// place (bounded by the attempt cap and expiry window); an expired code
// is removed on sight.
func (s *Service) Verify(ctx context.Context, phoneNumber, supplied string) error {
	if !phone.ValidateNumber(phoneNumber) || !phone.ValidateCode(supplied) {
		return apperrors.Validation("invalid phone number or code", nil)
	}
	national := phone.NationalNumber(phoneNumber)

	record, err := s.repo.Latest(ctx, national)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.countVerify("no_code")
			return apperrors.InvalidOTP()
		}
		return apperrors.Internal(err)
	}

	if s.now().After(record.ExpiresAt(s.cfg.ExpiryWindow)) {
		if err := s.repo.Delete(ctx, record.ID); err != nil {
			return apperrors.Internal(err)
		}
		s.countVerify("expired")
		return apperrors.ExpiredOTP()
	}

	attempts, err := s.repo.IncrementAttempts(ctx, record.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Consumed by a concurrent verification between Latest and here.
			s.countVerify("invalid")
			return apperrors.InvalidOTP()
		}
		return apperrors.Internal(err)
	}
	if attempts > s.cfg.MaxAttempts {
		if err := s.repo.Delete(ctx, record.ID); err != nil {
			return apperrors.Internal(err)
		}
		s.countVerify("attempts_exceeded")
		return apperrors.InvalidOTP()
	}

	// Numeric comparison so stored leading zeros always match.
	storedVal, err := strconv.Atoi(record.Code)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("malformed stored code: %w", err))
	}
	suppliedVal, _ := strconv.Atoi(supplied)
	if storedVal != suppliedVal {
		s.countVerify("invalid")
		return apperrors.InvalidOTP()
	}

	// Single-use: only the caller that wins the delete may log in.
	won, err := s.repo.Consume(ctx, record.ID)
	if err != nil {
		return apperrors.Internal(err)
	}
	if !won {
		s.countVerify("invalid")
		return apperrors.InvalidOTP()
	}

	s.countVerify("success")
	return nil
}

// Sweep removes every code past the expiry window, independent of
// per-verification checks. Covers codes abandoned mid-flow.
func (s *Service) Sweep(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.cfg.ExpiryWindow)
	deleted, err := s.repo.DeleteExpired(ctx, cutoff)
	if err != nil {
		if s.metrics != nil {
			s.metrics.OTPSweepFailures.Inc()
		}
		return 0, err
	}
	if s.metrics != nil {
		s.metrics.OTPSweepDeleted.Add(float64(deleted))
	}
	return deleted, nil
}

func (s *Service) countVerify(outcome string) {
	if s.metrics != nil {
		s.metrics.OTPVerified.WithLabelValues(outcome).Inc()
	}
}

func generateCode() (string, error) {
	digits := make([]byte, codeDigits)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
