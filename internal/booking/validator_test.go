package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

func testValidator() *Validator {
	return NewValidatorWithClock(func() time.Time { return testNow })
}

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }

func validRequest() *AppointmentRequest {
	return &AppointmentRequest{
		FullName:      strp("Ion Popescu"),
		Phone:         strp("0712345678"),
		Service:       strp("Tuns"),
		Date:          strp("2025-05-11"),
		Time:          strp("14:30"),
		CaptchaA:      intp(2),
		CaptchaB:      intp(2),
		CaptchaResult: intp(4),
	}
}

func expectReason(t *testing.T, err error, field string, reason Reason) {
	t.Helper()
	require.Error(t, err)
	verr, ok := err.(*ValidationError)
	require.True(t, ok, "expected *ValidationError, got %T", err)
	assert.Equal(t, field, verr.Field)
	assert.Equal(t, reason, verr.Reason)
}

func TestValidate_ValidRequest(t *testing.T) {
	appt, err := testValidator().Validate(validRequest())
	require.NoError(t, err)

	assert.Equal(t, "Ion Popescu", appt.FullName)
	assert.Equal(t, "0712345678", appt.Phone)
	assert.Equal(t, "tuns", appt.Service)
	assert.Empty(t, appt.Email)
	assert.Equal(t, time.Date(2025, 5, 11, 14, 30, 0, 0, time.UTC), appt.ScheduledAt)
}

func TestValidate_MissingFieldBeforeSyntaxChecks(t *testing.T) {
	req := validRequest()
	req.FullName = strp("X") // would fail InvalidName
	req.Phone = nil

	_, err := testValidator().Validate(req)
	expectReason(t, err, "phone", ReasonMissingField)
}

func TestValidate_MissingCaptcha(t *testing.T) {
	req := validRequest()
	req.CaptchaResult = nil

	_, err := testValidator().Validate(req)
	expectReason(t, err, "captcha_result", ReasonMissingField)
}

func TestValidate_NameTooShort(t *testing.T) {
	req := validRequest()
	req.FullName = strp("  I  ")

	_, err := testValidator().Validate(req)
	expectReason(t, err, "full_name", ReasonInvalidName)
}

func TestValidate_Phone(t *testing.T) {
	cases := []struct {
		name  string
		phone string
		ok    bool
	}{
		{"international", "+40712345678", true},
		{"local", "0712345678", true},
		{"internal whitespace stripped", "0712 345 678", true},
		{"too short", "123", false},
		{"dashes not repaired", "0712-345-678", false},
		{"too long", "1234567890123456", false},
		{"letters", "07123abc78", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			req.Phone = strp(tc.phone)

			_, err := testValidator().Validate(req)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				expectReason(t, err, "phone", ReasonInvalidPhone)
			}
		})
	}
}

func TestValidate_Email(t *testing.T) {
	req := validRequest()
	req.Email = strp("ion@example.com")
	appt, err := testValidator().Validate(req)
	require.NoError(t, err)
	assert.Equal(t, "ion@example.com", appt.Email)

	req.Email = strp("not-an-email")
	_, err = testValidator().Validate(req)
	expectReason(t, err, "email", ReasonInvalidEmail)

	req.Email = strp("ion@localhost")
	_, err = testValidator().Validate(req)
	expectReason(t, err, "email", ReasonInvalidEmail)

	req.Email = strp("ion popescu@example.com")
	_, err = testValidator().Validate(req)
	expectReason(t, err, "email", ReasonInvalidEmail)

	req.Email = strp("Ion <ion@example.com>")
	_, err = testValidator().Validate(req)
	expectReason(t, err, "email", ReasonInvalidEmail)

	// Blank optional email is treated as absent.
	req.Email = strp("  ")
	_, err = testValidator().Validate(req)
	assert.NoError(t, err)
}

func TestValidate_ServiceNormalization(t *testing.T) {
	req := validRequest()
	req.Service = strp("  Tuns  ")
	appt, err := testValidator().Validate(req)
	require.NoError(t, err)
	assert.Equal(t, "tuns", appt.Service)

	req.Service = strp("PACHET COMPLET")
	appt, err = testValidator().Validate(req)
	require.NoError(t, err)
	assert.Equal(t, "pachet complet", appt.Service)

	req.Service = strp("masaj")
	_, err = testValidator().Validate(req)
	expectReason(t, err, "service", ReasonInvalidService)
}

func TestValidate_DateAndTimeFormats(t *testing.T) {
	req := validRequest()
	req.Date = strp("11-05-2025")
	_, err := testValidator().Validate(req)
	expectReason(t, err, "date", ReasonInvalidDate)

	req = validRequest()
	req.Date = strp("2025-13-40")
	_, err = testValidator().Validate(req)
	expectReason(t, err, "date", ReasonInvalidDate)

	req = validRequest()
	req.Time = strp("25:61")
	_, err = testValidator().Validate(req)
	expectReason(t, err, "time", ReasonInvalidTime)

	req = validRequest()
	req.Time = strp("2:30 PM")
	_, err = testValidator().Validate(req)
	expectReason(t, err, "time", ReasonInvalidTime)
}

func TestValidate_StrictlyFuture(t *testing.T) {
	// Yesterday.
	req := validRequest()
	req.Date = strp("2025-05-09")
	_, err := testValidator().Validate(req)
	expectReason(t, err, "date", ReasonPastDateTime)

	// Exactly "now" counts as past: the comparison is strict.
	req = validRequest()
	req.Date = strp("2025-05-10")
	req.Time = strp("12:00")
	_, err = testValidator().Validate(req)
	expectReason(t, err, "date", ReasonPastDateTime)

	// One minute ahead is enough.
	req.Time = strp("12:01")
	_, err = testValidator().Validate(req)
	assert.NoError(t, err)
}

func TestValidate_Captcha(t *testing.T) {
	req := validRequest()
	req.CaptchaA = intp(2)
	req.CaptchaB = intp(3)
	req.CaptchaResult = intp(5)
	_, err := testValidator().Validate(req)
	assert.NoError(t, err)

	req.CaptchaResult = intp(6)
	_, err = testValidator().Validate(req)
	expectReason(t, err, "captcha_result", ReasonCaptchaFailed)
}

func TestValidate_FirstFailureWins(t *testing.T) {
	req := validRequest()
	req.FullName = strp("I")
	req.Phone = strp("123")
	req.Service = strp("masaj")

	_, err := testValidator().Validate(req)
	expectReason(t, err, "full_name", ReasonInvalidName)
}

func TestValidate_MessageTrimmed(t *testing.T) {
	req := validRequest()
	req.Message = strp("  va rog dupa ora 14  ")

	appt, err := testValidator().Validate(req)
	require.NoError(t, err)
	assert.Equal(t, "va rog dupa ora 14", appt.Message)
}
