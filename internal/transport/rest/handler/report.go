package handler

import (
	"bytes"
	"cardiostent/internal/render"
	"cardiostent/internal/service"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ReportHandler serves per-respondent analysis pages
type ReportHandler struct {
	reportSvc *service.ReportService
	log       *zap.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportSvc *service.ReportService, log *zap.Logger) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc, log: log}
}

// Report handles GET /admin/report/{id}
func (h *ReportHandler) Report(w http.ResponseWriter, r *http.Request) {
	ref := mux.Vars(r)["id"]

	sub, err := h.reportSvc.Get(r.Context(), ref)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	var buf bytes.Buffer
	if err := render.Report(&buf, sub); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeHTML(w, buf.Bytes())
}
