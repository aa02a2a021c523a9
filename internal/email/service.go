package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/arogyacare/platform-api/pkg/metrics"
)

type Service interface {
	// SendTemporaryPassword delivers the one-time onboarding password to a
	// freshly provisioned staff member.
	SendTemporaryPassword(ctx context.Context, to, name, password string) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpService struct {
	dialer  *gomail.Dialer
	from    string
	metrics *metrics.Metrics
}

func NewSMTPService(cfg Config, m *metrics.Metrics) Service {
	return &smtpService{
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:    cfg.From,
		metrics: m,
	}
}

func (s *smtpService) SendTemporaryPassword(ctx context.Context, to, name, password string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Your staff account is ready")
	m.SetBody("text/plain", fmt.Sprintf(
		"Hello %s,\n\nYour staff account has been created.\n\n"+
			"Temporary password: %s\n\n"+
			"You will be asked to choose a new password at first login.\n",
		name, password,
	))

	if err := s.dialer.DialAndSend(m); err != nil {
		if s.metrics != nil {
			s.metrics.MailSendFailures.Inc()
		}
		return fmt.Errorf("failed to send onboarding email: %w", err)
	}
	return nil
}
