package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/stkbarbershop/appointments/internal/booking"
	"github.com/stkbarbershop/appointments/internal/http/response"
	"github.com/stkbarbershop/appointments/internal/notify"
	"github.com/stkbarbershop/appointments/internal/platform/mailer"
	"github.com/stkbarbershop/appointments/pkg/events"
	"github.com/stkbarbershop/appointments/pkg/logger"
	"github.com/stkbarbershop/appointments/pkg/metrics"
)

// SubmitResponse is the success envelope for an accepted submission.
type SubmitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type AppointmentsHandler struct {
	Validator  *booking.Validator
	Mailer     mailer.Service
	Events     events.Publisher // optional
	Metrics    *metrics.Metrics
	MailTo     string
	MailToName string
}

func NewAppointmentsHandler(v *booking.Validator, m mailer.Service, ev events.Publisher, reg *metrics.Metrics, mailTo, mailToName string) *AppointmentsHandler {
	return &AppointmentsHandler{
		Validator:  v,
		Mailer:     m,
		Events:     ev,
		Metrics:    reg,
		MailTo:     mailTo,
		MailToName: mailToName,
	}
}

// Create handles POST /api/appointment. The rate limiter has already
// admitted the request by the time it gets here; this decodes, validates,
// renders the notification and dispatches it synchronously.
func (h *AppointmentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.Metrics != nil {
		h.Metrics.SubmissionsReceived.Inc()
	}

	var in booking.AppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "JSON invalid")
		return
	}

	appt, err := h.Validator.Validate(&in)
	if err != nil {
		var verr *booking.ValidationError
		if errors.As(err, &verr) {
			if h.Metrics != nil {
				h.Metrics.ValidationRejected.WithLabelValues(string(verr.Reason)).Inc()
			}
			// Client-caused, not a system fault.
			logger.InfoContext(ctx, "Submission rejected",
				"field", verr.Field,
				"reason", string(verr.Reason),
			)
			response.WriteFieldError(w, http.StatusBadRequest, verr.Message, string(verr.Reason), verr.Field)
			return
		}
		response.BadRequest(w, "Cerere invalidă")
		return
	}

	n, err := notify.ForAppointment(appt)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to render notification", "error", err)
		response.InternalError(w, "Eroare internă")
		return
	}

	if _, err := h.Mailer.Send(h.MailTo, h.MailToName, n.Subject, n.Text, n.HTML); err != nil {
		if h.Metrics != nil {
			h.Metrics.EmailFailures.Inc()
		}
		// Dependency fault: log the cause for operators, keep transport
		// details out of the client-visible message.
		logger.ErrorContext(ctx, "Failed to deliver appointment notification", "error", err)
		response.BadGateway(w, "Eroare la trimiterea emailului")
		return
	}
	if h.Metrics != nil {
		h.Metrics.EmailsSent.Inc()
	}

	if h.Events != nil {
		event := events.AppointmentReceivedEvent{
			FullName:    appt.FullName,
			Phone:       appt.Phone,
			Email:       appt.Email,
			Service:     appt.Service,
			ScheduledAt: appt.ScheduledAt,
			ReceivedAt:  time.Now(),
		}
		if err := h.Events.Publish(ctx, events.AppointmentReceived, event); err != nil {
			logger.ErrorContext(ctx, "Failed to publish appointment event", "error", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(SubmitResponse{
		Success: true,
		Message: "Programarea a fost trimisă cu succes.",
	})
}
