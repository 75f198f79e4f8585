package handler

import (
	"bytes"
	"cardiostent/internal/render"
	"cardiostent/internal/service"
	"net/http"

	"go.uber.org/zap"
)

// AdminHandler serves the strategy dashboard
type AdminHandler struct {
	analyticsSvc *service.AnalyticsService
	log          *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(analyticsSvc *service.AnalyticsService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{analyticsSvc: analyticsSvc, log: log}
}

// Dashboard handles GET /admin
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.analyticsSvc.Dashboard(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	var buf bytes.Buffer
	if err := render.Dashboard(&buf, d); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeHTML(w, buf.Bytes())
}

// Analytics handles GET /admin/api/analytics
func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	a, err := h.analyticsSvc.Analytics(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func writeHTML(w http.ResponseWriter, page []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(page)
}
