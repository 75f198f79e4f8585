package handler

import (
	"cardiostent/internal/model"
	"cardiostent/internal/service"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// maxSubmissionBytes bounds a single questionnaire payload
const maxSubmissionBytes = 1 << 20

// SubmitHandler accepts questionnaire submissions
type SubmitHandler struct {
	submissionSvc *service.SubmissionService
	log           *zap.Logger
}

// NewSubmitHandler creates a new submit handler
func NewSubmitHandler(submissionSvc *service.SubmissionService, log *zap.Logger) *SubmitHandler {
	return &SubmitHandler{submissionSvc: submissionSvc, log: log}
}

// Submit handles POST /api/submit
func (h *SubmitHandler) Submit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSubmissionBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeText(w, http.StatusRequestEntityTooLarge, "Submission too large.")
			return
		}
		writeText(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sub, err := h.submissionSvc.Submit(r.Context(), body)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, model.SubmitResponse{
		Message: "Data saved successfully",
		ID:      sub.ID,
	})
}
