package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/stoicjournal/stoic/internal/db"
	"github.com/stoicjournal/stoic/internal/respond"
)

type HealthHandler struct {
	db *sqlx.DB
}

func NewHealthHandler(conn *sqlx.DB) *HealthHandler {
	return &HealthHandler{db: conn}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	err := db.Ping(ctx, h.db)
	if err != nil {
		slog.Error("health check failed", "error", err)
		respond.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
