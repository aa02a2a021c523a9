package sms

import (
	"context"

	"github.com/arogyacare/platform-api/pkg/logger"
)

// LogSender writes messages to the log instead of a provider. Used in
// development when Twilio credentials are not configured.
type LogSender struct {
	Logger *logger.Logger
}

func (s *LogSender) Send(ctx context.Context, to, message string) error {
	s.Logger.ZL.Info().Str("to", to).Str("message", message).Msg("sms (log only)")
	return nil
}
