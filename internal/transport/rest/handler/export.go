package handler

import (
	"cardiostent/internal/model"
	"cardiostent/internal/service"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// ExportHandler serves the CSV export
type ExportHandler struct {
	exportSvc *service.ExportService
	log       *zap.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(exportSvc *service.ExportService, log *zap.Logger) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, log: log}
}

// Export handles GET /admin/export
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, _, err := h.exportSvc.CSV(r.Context())
	if errors.Is(err, model.ErrNotFound) {
		writeText(w, http.StatusNotFound, "No data found.")
		return
	}
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+model.ExportFilename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Archive handles POST /admin/export/archive
func (h *ExportHandler) Archive(w http.ResponseWriter, r *http.Request) {
	res, err := h.exportSvc.Archive(r.Context())
	if errors.Is(err, model.ErrNotFound) {
		writeText(w, http.StatusNotFound, "No data found.")
		return
	}
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
