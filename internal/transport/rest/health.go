package rest

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/frahmantamala/karyawan-management/internal"
	"github.com/frahmantamala/karyawan-management/internal/transport"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
)

const dbPingTimeout = 2 * time.Second

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus `json:"status"`
	Message    string       `json:"message,omitempty"`
	DurationMs int64        `json:"duration_ms"`
}

type HealthHandler struct {
	*transport.BaseHandler
	db *sql.DB
}

func NewHealthHandler(base *transport.BaseHandler, db *sql.DB) *HealthHandler {
	return &HealthHandler{BaseHandler: base, db: db}
}

// Ping only says the process is serving.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	h.WriteSuccess(w, http.StatusOK, "pong", nil)
}

// Health reports 503 when the database does not answer within two seconds.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := internal.WithTimeout(r.Context(), dbPingTimeout)
	defer cancel()

	start := time.Now()
	err := h.db.PingContext(ctx)

	entry := CheckEntry{
		Status:     HealthHealthy,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		h.Logger.Warn("database health check failed", "error", err)
		entry.Status = HealthUnhealthy
		entry.Message = "database unreachable"
	}

	resp := HealthResponse{
		Status:     entry.Status,
		CheckedAt:  time.Now(),
		Components: map[string]CheckEntry{"database": entry},
	}

	if entry.Status == HealthUnhealthy {
		h.WriteJSON(w, http.StatusServiceUnavailable, transport.Envelope{
			Success: false,
			Message: "Karyawan Management API is unhealthy",
			Data:    resp,
			Errors:  []string{entry.Message},
		})
		return
	}
	h.WriteSuccess(w, http.StatusOK, "Karyawan Management API is running", resp)
}
