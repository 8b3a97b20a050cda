package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Pinger is the store dependency checked by the health endpoint
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler reports service health
type Handler struct {
	db      Pinger
	timeout time.Duration
	logger  *zap.Logger
}

// NewHandler constructs a health Handler
func NewHandler(db Pinger, timeout time.Duration, logger *zap.Logger) *Handler {
	return &Handler{db: db, timeout: timeout, logger: logger}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Message  string `json:"message,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected" }
//
// On store failure: 503 and
//
//	{ "status":"error", "database":"disconnected", "message":"Database unavailable" }
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
	}

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Error("health-check: database ping failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
	}

	_ = json.NewEncoder(w).Encode(resp)
}
