package booking

import (
	"regexp"
	"time"

	"github.com/stkbarbershop/appointments/internal/utils"
)

// phonePattern: optional leading plus, then 8 to 15 digits, nothing else.
var phonePattern = regexp.MustCompile(`^\+?[0-9]{8,15}$`)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Validator turns an AppointmentRequest into an Appointment or a precise
// rejection. Checks run in a fixed order and stop at the first failure so
// error responses are deterministic: structural presence first, then field
// syntax in declared field order, then the cross-field checks.
type Validator struct {
	now func() time.Time
}

func NewValidator() *Validator {
	return NewValidatorWithClock(time.Now)
}

func NewValidatorWithClock(now func() time.Time) *Validator {
	return &Validator{now: now}
}

func (v *Validator) Validate(req *AppointmentRequest) (*Appointment, error) {
	if err := checkRequired(req); err != nil {
		return nil, err
	}

	fullName := utils.NormalizeString(*req.FullName)
	if len([]rune(fullName)) < 2 {
		return nil, &ValidationError{
			Field:   "full_name",
			Reason:  ReasonInvalidName,
			Message: "Numele trebuie să aibă cel puțin 2 caractere",
		}
	}

	phone := utils.StripPhoneWhitespace(*req.Phone)
	if !phonePattern.MatchString(phone) {
		return nil, &ValidationError{
			Field:   "phone",
			Reason:  ReasonInvalidPhone,
			Message: "Număr de telefon invalid",
		}
	}

	email := ""
	if req.Email != nil && utils.NormalizeString(*req.Email) != "" {
		email = utils.NormalizeString(*req.Email)
		if !utils.IsValidEmail(email) {
			return nil, &ValidationError{
				Field:   "email",
				Reason:  ReasonInvalidEmail,
				Message: "Adresă de email invalidă",
			}
		}
	}

	service := utils.NormalizeService(*req.Service)
	if !AllowedServices[service] {
		return nil, &ValidationError{
			Field:   "service",
			Reason:  ReasonInvalidService,
			Message: "Serviciu invalid",
		}
	}

	date, err := time.ParseInLocation(dateLayout, *req.Date, time.UTC)
	if err != nil {
		return nil, &ValidationError{
			Field:   "date",
			Reason:  ReasonInvalidDate,
			Message: "Format dată invalid (YYYY-MM-DD)",
		}
	}

	clock, err := time.ParseInLocation(timeLayout, *req.Time, time.UTC)
	if err != nil {
		return nil, &ValidationError{
			Field:   "time",
			Reason:  ReasonInvalidTime,
			Message: "Format oră invalid (HH:MM)",
		}
	}

	scheduledAt := time.Date(
		date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), 0, 0, time.UTC,
	)

	// Strict: an appointment at exactly "now" counts as past.
	if !scheduledAt.After(v.now()) {
		return nil, &ValidationError{
			Field:   "date",
			Reason:  ReasonPastDateTime,
			Message: "Data și ora nu pot fi în trecut",
		}
	}

	// Weak, client-computed bot deterrent. It stops naive scripted
	// submissions only and is not a security control.
	if *req.CaptchaA+*req.CaptchaB != *req.CaptchaResult {
		return nil, &ValidationError{
			Field:   "captcha_result",
			Reason:  ReasonCaptchaFailed,
			Message: "Captcha invalid",
		}
	}

	message := ""
	if req.Message != nil {
		message = utils.NormalizeString(*req.Message)
	}

	return &Appointment{
		FullName:    fullName,
		Phone:       phone,
		Email:       email,
		Service:     service,
		Message:     message,
		ScheduledAt: scheduledAt,
	}, nil
}

func checkRequired(req *AppointmentRequest) error {
	required := []struct {
		name    string
		present bool
	}{
		{"full_name", req.FullName != nil},
		{"phone", req.Phone != nil},
		{"service", req.Service != nil},
		{"date", req.Date != nil},
		{"time", req.Time != nil},
		{"captcha_a", req.CaptchaA != nil},
		{"captcha_b", req.CaptchaB != nil},
		{"captcha_result", req.CaptchaResult != nil},
	}

	for _, f := range required {
		if !f.present {
			return &ValidationError{
				Field:   f.name,
				Reason:  ReasonMissingField,
				Message: "Câmp obligatoriu lipsă",
			}
		}
	}
	return nil
}
