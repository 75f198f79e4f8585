package handler

import (
	"cardiostent/internal/model"
	"cardiostent/internal/service"
	"cardiostent/internal/transport/rest/middleware"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// AuthHandler issues admin session tokens
type AuthHandler struct {
	authSvc *service.AuthService
	log     *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authSvc *service.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, log: log}
}

// Token handles POST /admin/token
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	username := middleware.GetAdmin(r.Context())
	if username == "" {
		middleware.Challenge(w)
		return
	}

	resp, err := h.authSvc.IssueToken(username)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(message))
}

// writeServiceError maps service errors to status codes with plain text bodies
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error) {
	var validationErr *model.ValidationError
	var storageErr *model.StorageError

	switch {
	case errors.As(err, &validationErr):
		writeText(w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, model.ErrNotFound):
		writeText(w, http.StatusNotFound, "Not found.")
	case errors.Is(err, model.ErrUnauthorized):
		middleware.Challenge(w)
	case errors.Is(err, model.ErrArchiveDisabled):
		writeText(w, http.StatusServiceUnavailable, "Export archive is not configured.")
	case errors.As(err, &storageErr):
		log.Error("storage failure", zap.String("op", storageErr.Op), zap.Error(storageErr.Err))
		writeText(w, http.StatusInternalServerError, "Storage error. Please try again later.")
	default:
		log.Error("request failed", zap.Error(err))
		writeText(w, http.StatusInternalServerError, "Internal server error.")
	}
}
