package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// OTP lifecycle
	OTPIssued        prometheus.Counter
	OTPVerified      *prometheus.CounterVec
	OTPSweepDeleted  prometheus.Counter
	OTPSweepFailures prometheus.Counter

	// Login outcomes
	LoginAttempts *prometheus.CounterVec
	TokensIssued  *prometheus.CounterVec

	// External providers
	SMSSendLatency   prometheus.Histogram
	SMSSendFailures  prometheus.Counter
	MailSendFailures prometheus.Counter
}

// New creates and registers all application metrics
func New(namespace string) *Metrics {
	return &Metrics{
		OTPIssued: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "otp_issued_total",
			Help:      "Total number of one-time codes issued",
		}),
		OTPVerified: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "otp_verifications_total",
			Help:      "OTP verification attempts by outcome",
		}, []string{"outcome"}),
		OTPSweepDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "otp_sweep_deleted_total",
			Help:      "Expired one-time codes removed by the sweep",
		}),
		OTPSweepFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "otp_sweep_failures_total",
			Help:      "Sweep runs that returned an error",
		}),
		LoginAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by flow and outcome",
		}, []string{"flow", "outcome"}),
		TokensIssued: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_issued_total",
			Help:      "Token pairs issued by flow",
		}, []string{"flow"}),
		SMSSendLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sms_send_duration_seconds",
			Help:      "Time spent sending OTP SMS messages",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		SMSSendFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sms_send_failures_total",
			Help:      "SMS deliveries that failed at the provider",
		}),
		MailSendFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mail_send_failures_total",
			Help:      "Emails that failed at the SMTP relay",
		}),
	}
}
