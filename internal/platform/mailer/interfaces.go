package mailer

// Service is the outbound mail relay. Delivery is synchronous; any
// transport, auth, or configuration failure comes back as the error.
type Service interface {
	Send(toEmail, toName, subject, text, html string) (string, error)
}
