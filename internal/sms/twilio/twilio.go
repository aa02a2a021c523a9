package twilio

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/arogyacare/platform-api/internal/sms"
	"github.com/arogyacare/platform-api/pkg/circuitbreaker"
	"github.com/arogyacare/platform-api/pkg/logger"
)

type Config struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

type sender struct {
	client  *twilio.RestClient
	from    string
	breaker *circuitbreaker.CircuitBreaker
	logger  *logger.Logger
}

// NewSender builds a Twilio-backed SMS sender. Calls run through a
// circuit breaker so a provider outage fails fast instead of holding
// request handlers on timeouts.
func NewSender(cfg Config, breaker *circuitbreaker.CircuitBreaker, log *logger.Logger) sms.Sender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &sender{
		client:  client,
		from:    cfg.FromNumber,
		breaker: breaker,
		logger:  log,
	}
}

func (s *sender) Send(ctx context.Context, to, message string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(message)

	err := s.breaker.Execute(func() error {
		_, err := s.client.Api.CreateMessage(params)
		return err
	})
	if err != nil {
		s.logger.ZL.Error().Err(err).Str("to", to).Msg("sms delivery failed")
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	return nil
}
