package mailer

import (
	"github.com/stkbarbershop/appointments/pkg/logger"
)

// DevMailer logs messages instead of sending them. Used when
// EMAIL_DEV_MODE is set so the booking flow works without a relay.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) Send(toEmail, toName, subject, text, html string) (string, error) {
	logger.Info("📧 [DEV MAIL]",
		"to", toEmail,
		"to_name", toName,
		"subject", subject,
		"text", text,
	)
	return "dev", nil
}
