package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stkbarbershop/appointments/internal/booking"
)

func TestForAppointment(t *testing.T) {
	appt := &booking.Appointment{
		FullName:    "Ion Popescu",
		Phone:       "0712345678",
		Service:     "pachet complet",
		ScheduledAt: time.Date(2025, 5, 11, 14, 30, 0, 0, time.UTC),
	}

	n, err := ForAppointment(appt)
	require.NoError(t, err)

	assert.Equal(t, "Programare nouă: Ion Popescu - 2025-05-11 14:30", n.Subject)
	assert.Contains(t, n.HTML, "Pachet Complet")
	assert.Contains(t, n.HTML, "2025-05-11")
	assert.Contains(t, n.HTML, "14:30")

	// Absent optional fields render as a dash.
	assert.Contains(t, n.HTML, "<strong>Email:</strong> -")
	assert.Contains(t, n.HTML, "<strong>Mesaj:</strong> -")
	assert.Contains(t, n.Text, "Email: -")
}

func TestForAppointment_EscapesUserInput(t *testing.T) {
	appt := &booking.Appointment{
		FullName:    "<script>alert(1)</script>",
		Phone:       "0712345678",
		Service:     "tuns",
		Message:     "<b>hi</b>",
		ScheduledAt: time.Date(2025, 5, 11, 9, 0, 0, 0, time.UTC),
	}

	n, err := ForAppointment(appt)
	require.NoError(t, err)

	assert.NotContains(t, n.HTML, "<script>")
	assert.Contains(t, n.HTML, "&lt;script&gt;")
}
