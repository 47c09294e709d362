package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/stkbarbershop/appointments/internal/booking"
	"github.com/stkbarbershop/appointments/internal/http/handlers"
	imw "github.com/stkbarbershop/appointments/internal/http/middleware"
	"github.com/stkbarbershop/appointments/internal/platform/cache"
	"github.com/stkbarbershop/appointments/internal/platform/mailer"
	"github.com/stkbarbershop/appointments/internal/ratelimit"
	"github.com/stkbarbershop/appointments/pkg/config"
	"github.com/stkbarbershop/appointments/pkg/database"
	"github.com/stkbarbershop/appointments/pkg/events"
	"github.com/stkbarbershop/appointments/pkg/logger"
	"github.com/stkbarbershop/appointments/pkg/metrics"
	mw "github.com/stkbarbershop/appointments/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	reg := metrics.New()

	// Optional database, diagnostics only. The booking flow never touches it.
	pool := connectDatabase(ctx, cfg)
	if pool != nil {
		defer pool.Close()
	}

	// Optional event bus.
	var eventBus events.Publisher
	if cfg.NATS.URL != "" {
		bus, err := events.NewNATSEventBus(cfg.NATS.URL)
		if err != nil {
			logger.Warn("NATS unavailable, events disabled", "error", err)
		} else {
			eventBus = bus
			defer bus.Close()
		}
	}

	limiter := ratelimit.New(ratelimit.Config{
		ShortWindow: cfg.RateLimit.ShortWindow,
		ShortMax:    cfg.RateLimit.ShortMax,
		LongWindow:  cfg.RateLimit.LongWindow,
		LongMax:     cfg.RateLimit.LongMax,
	})
	go evictLoop(limiter, cfg.RateLimit.EvictInterval)

	validator := booking.NewValidator()
	mail := selectMailer(cfg)

	appointmentsHandler := handlers.NewAppointmentsHandler(
		validator, mail, eventBus, reg, cfg.Email.MailTo, cfg.Email.MailToName,
	)
	diagnosticsHandler := handlers.NewDiagnosticsHandler(pool, cfg.Database.URL != "")

	rateLimiter := imw.NewRateLimiter(limiter, reg, cfg.RateLimit.ShortWindow)

	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("appointments"))
	r.Use(mw.Logging)
	r.Use(mw.Recover)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Idempotency-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(mw.Health)

	r.Get("/", diagnosticsHandler.Root)
	r.Get("/test", diagnosticsHandler.Test)
	r.Method("GET", "/metrics", reg.Handler())

	r.Route("/api", func(r chi.Router) {
		r.With(appointmentMiddleware(rateLimiter, cfg)...).
			Post("/appointment", appointmentsHandler.Create)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down appointments service...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Appointments service shutdown error", "error", err)
		}
	}()

	logger.Info("Starting appointments service", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Appointments service error", "error", err)
		os.Exit(1)
	}
}

// appointmentMiddleware assembles the submission pipeline: rate limit
// first, then optional idempotent replay from Redis.
func appointmentMiddleware(rl *imw.RateLimiter, cfg *config.Config) []func(http.Handler) http.Handler {
	chain := []func(http.Handler) http.Handler{rl.Middleware()}

	if cfg.Redis.URL != "" {
		store, err := cache.NewRedisStore(context.Background(), cfg.Redis.URL)
		if err != nil {
			logger.Warn("Redis unavailable, idempotency replay disabled", "error", err)
		} else {
			chain = append(chain, mw.IdempotencyMiddleware(store))
		}
	}

	return chain
}

func connectDatabase(ctx context.Context, cfg *config.Config) *pgxpool.Pool {
	if cfg.Database.URL == "" {
		return nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := database.Connect(connectCtx, cfg.Database)
	if err != nil {
		logger.Warn("Database unavailable, /test will report degraded", "error", err)
		return nil
	}
	return pool
}

func selectMailer(cfg *config.Config) mailer.Service {
	if cfg.Email.DevMode {
		logger.Info("Email dev mode: printing notifications to logs")
		return mailer.NewDevMailer()
	}
	if cfg.Email.MailerSendKey != "" {
		return mailer.NewMailer(cfg.Email.MailerSendKey, "Stk Barbershop", cfg.Email.MailFrom)
	}
	return mailer.NewSMTPMailer(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.MailFrom,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPass,
		cfg.Email.SMTPUseTLS,
	)
}

func evictLoop(l *ratelimit.Limiter, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for range ticker.C {
		if n := l.EvictIdle(); n > 0 {
			logger.Debug("Evicted idle rate limit entries", "count", n)
		}
	}
}
