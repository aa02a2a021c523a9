package sms

import "context"

// Sender delivers a text message to a phone number. Implementations must
// fail loudly on provider errors; OTP issuance rolls back when delivery
// fails.
type Sender interface {
	Send(ctx context.Context, to, message string) error
}
