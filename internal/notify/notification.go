package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/stkbarbershop/appointments/internal/booking"
)

// Notification is the rendered email for one appointment submission.
type Notification struct {
	Subject string
	Text    string
	HTML    string
}

var bodyTemplate = template.Must(template.New("appointment").Parse(`<h2>Programare nouă - Stk Barbershop</h2>
<p><strong>Nume complet:</strong> {{.FullName}}</p>
<p><strong>Telefon:</strong> {{.Phone}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Serviciu:</strong> {{.Service}}</p>
<p><strong>Data:</strong> {{.Date}}</p>
<p><strong>Ora:</strong> {{.Time}}</p>
<p><strong>Mesaj:</strong> {{.Message}}</p>
<hr/>
<p>Mesaj generat automat de formularul online.</p>
`))

type templateData struct {
	FullName string
	Phone    string
	Email    string
	Service  string
	Date     string
	Time     string
	Message  string
}

// ForAppointment renders the notification for a validated appointment.
func ForAppointment(a *booking.Appointment) (*Notification, error) {
	data := templateData{
		FullName: a.FullName,
		Phone:    a.Phone,
		Email:    orDash(a.Email),
		Service:  titleCase(a.Service),
		Date:     a.ScheduledAt.Format("2006-01-02"),
		Time:     a.ScheduledAt.Format("15:04"),
		Message:  orDash(a.Message),
	}

	var buf bytes.Buffer
	if err := bodyTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render notification body: %w", err)
	}

	subject := fmt.Sprintf("Programare nouă: %s - %s %s", a.FullName, data.Date, data.Time)

	text := fmt.Sprintf(
		"Programare nouă - Stk Barbershop\n\nNume complet: %s\nTelefon: %s\nEmail: %s\nServiciu: %s\nData: %s\nOra: %s\nMesaj: %s\n",
		data.FullName, data.Phone, data.Email, data.Service, data.Date, data.Time, data.Message,
	)

	return &Notification{
		Subject: subject,
		Text:    text,
		HTML:    buf.String(),
	}, nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
