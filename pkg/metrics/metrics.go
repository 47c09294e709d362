package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the Prometheus registry for the API process.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	SubmissionsReceived prometheus.Counter
	RateLimited         prometheus.Counter
	ValidationRejected  *prometheus.CounterVec
	EmailsSent          prometheus.Counter
	EmailFailures       prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		SubmissionsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "appointments_submissions_received_total",
			Help: "Appointment submissions reaching the handler (post rate limit).",
		}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "appointments_rate_limited_total",
			Help: "Requests rejected by the sliding-window rate limiter.",
		}),
		ValidationRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "appointments_validation_rejected_total",
			Help: "Submissions rejected by validation, by reason code.",
		}, []string{"reason"}),
		EmailsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "appointments_emails_sent_total",
			Help: "Notification emails handed off to the mail relay.",
		}),
		EmailFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "appointments_email_failures_total",
			Help: "Notification emails that failed delivery.",
		}),
	}

	reg.MustRegister(
		m.SubmissionsReceived,
		m.RateLimited,
		m.ValidationRejected,
		m.EmailsSent,
		m.EmailFailures,
	)

	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	return m
}

func (m *Metrics) Handler() http.Handler {
	return m.handler
}
