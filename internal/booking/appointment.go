package booking

import (
	"fmt"
	"time"
)

// AllowedServices is the fixed service vocabulary accepted on the booking
// form. Service input is matched after trimming and lowercasing.
var AllowedServices = map[string]bool{
	"tuns":           true,
	"aranjat barba":  true,
	"pachet complet": true,
}

// AppointmentRequest is the untrusted wire payload of the booking form.
// Required fields are pointers so a structurally absent field can be told
// apart from a present-but-invalid one.
type AppointmentRequest struct {
	FullName      *string `json:"full_name"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email,omitempty"`
	Service       *string `json:"service"`
	Date          *string `json:"date"` // YYYY-MM-DD
	Time          *string `json:"time"` // HH:MM
	Message       *string `json:"message,omitempty"`
	CaptchaA      *int    `json:"captcha_a"`
	CaptchaB      *int    `json:"captcha_b"`
	CaptchaResult *int    `json:"captcha_result"`
}

// Appointment is the trusted, normalized result of validation. It is built
// fresh per request, rendered into a notification, and discarded.
type Appointment struct {
	FullName    string
	Phone       string // whitespace stripped
	Email       string // empty when not supplied
	Service     string // lowercased member of AllowedServices
	Message     string
	ScheduledAt time.Time // combined date+time, strictly in the future
}

// Reason identifies which validation check rejected a payload.
type Reason string

const (
	ReasonMissingField   Reason = "MISSING_FIELD"
	ReasonInvalidName    Reason = "INVALID_NAME"
	ReasonInvalidPhone   Reason = "INVALID_PHONE"
	ReasonInvalidEmail   Reason = "INVALID_EMAIL"
	ReasonInvalidService Reason = "INVALID_SERVICE"
	ReasonInvalidDate    Reason = "INVALID_DATE"
	ReasonInvalidTime    Reason = "INVALID_TIME"
	ReasonPastDateTime   Reason = "PAST_DATETIME"
	ReasonCaptchaFailed  Reason = "CAPTCHA_FAILED"
)

// ValidationError reports the first failing check for a payload. It is
// client-caused and maps to a 400, never to a system fault.
type ValidationError struct {
	Field   string
	Reason  Reason
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
