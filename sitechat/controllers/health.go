package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"sitechat/sitechat/sessions"
	"sitechat/sitechat/utils/logging"
	"sitechat/sitechat/utils/types"

	"go.uber.org/zap"
)

type HealthController struct {
	store sessions.Store
}

func NewHealthController(store sessions.Store) *HealthController {
	return &HealthController{store: store}
}

func (h *HealthController) HealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := types.HealthResponse{Status: "ok", Store: "ok"}
	status := http.StatusOK

	if p, ok := h.store.(sessions.Pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			logging.ErrorLogger.Error("store ping failed", zap.Error(err))
			resp = types.HealthResponse{Status: "degraded", Store: "error"}
			status = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
