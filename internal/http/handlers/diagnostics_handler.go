package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stkbarbershop/appointments/pkg/logger"
)

// DiagnosticsHandler serves the status and database-introspection
// endpoints. Neither is part of the booking flow; /test only reports on
// whether the optional database is reachable.
type DiagnosticsHandler struct {
	Pool           *pgxpool.Pool // nil when DATABASE_URL is unset
	DatabaseURLSet bool
}

func NewDiagnosticsHandler(pool *pgxpool.Pool, databaseURLSet bool) *DiagnosticsHandler {
	return &DiagnosticsHandler{Pool: pool, DatabaseURLSet: databaseURLSet}
}

// Root handles GET /.
func (h *DiagnosticsHandler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"service": "Stk Barbershop API",
		"status":  "ok",
	})
}

type diagnosticsResponse struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseURL      string   `json:"database_url"`
	ConnectionStatus string   `json:"connection_status"`
	Tables           []string `json:"tables"`
}

// Test handles GET /test. Degraded states are reported in the body; the
// endpoint itself always answers 200.
func (h *DiagnosticsHandler) Test(w http.ResponseWriter, r *http.Request) {
	resp := diagnosticsResponse{
		Backend:          "running",
		Database:         "not_available",
		DatabaseURL:      "not_set",
		ConnectionStatus: "not_connected",
		Tables:           []string{},
	}
	if h.DatabaseURLSet {
		resp.DatabaseURL = "set"
	}

	if h.Pool != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := h.Pool.Ping(ctx); err != nil {
			resp.Database = "error: " + truncate(err.Error(), 50)
		} else {
			resp.Database = "connected"
			resp.ConnectionStatus = "connected"
			resp.Tables = h.listTables(ctx)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *DiagnosticsHandler) listTables(ctx context.Context) []string {
	rows, err := h.Pool.Query(ctx,
		`SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' ORDER BY table_name LIMIT 10`)
	if err != nil {
		return []string{}
	}
	defer rows.Close()

	return collectTableNames(ctx, rows)
}

func collectTableNames(ctx context.Context, rows pgx.Rows) []string {
	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			logger.WarnContext(ctx, "Failed to scan table name", "error", err)
			return tables
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		// Partial listing; say so instead of truncating silently.
		logger.WarnContext(ctx, "Table listing incomplete", "error", err)
	}
	return tables
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
