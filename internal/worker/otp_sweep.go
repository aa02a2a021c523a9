package worker

import (
	"context"
	"time"

	"github.com/arogyacare/platform-api/internal/service/otp"
	"github.com/arogyacare/platform-api/pkg/logger"
)

// OTPSweepWorker periodically deletes expired verification codes. The
// verification path already removes expired codes on sight; the sweep
// covers codes that were requested and then abandoned.
type OTPSweepWorker struct {
	otpSvc   *otp.Service
	interval time.Duration
	logger   *logger.Logger
}

func NewOTPSweepWorker(otpSvc *otp.Service, interval time.Duration, log *logger.Logger) *OTPSweepWorker {
	return &OTPSweepWorker{
		otpSvc:   otpSvc,
		interval: interval,
		logger:   log,
	}
}

func (w *OTPSweepWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *OTPSweepWorker) sweep(ctx context.Context) {
	deleted, err := w.otpSvc.Sweep(ctx)
	if err != nil {
		w.logger.ZL.Error().Err(err).Msg("failed to sweep expired codes")
		return
	}
	if deleted > 0 {
		w.logger.ZL.Info().Int64("deleted", deleted).Msg("swept expired codes")
	}
}
