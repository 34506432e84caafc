package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jobportal/apiserver/internal/apperr"
	"github.com/jobportal/apiserver/internal/services"
	"github.com/jobportal/apiserver/types"
	"go.uber.org/zap"
)

type contextKey string

const contextUserKey contextKey = "user"

// userFromContext returns the authenticated identity attached by
// RequireAuth.
func userFromContext(ctx context.Context) (types.User, bool) {
	user, ok := ctx.Value(contextUserKey).(types.User)
	return user, ok
}

// ErrorResponse is the JSON error payload. Every error carries a
// human-readable message; validation failures additionally carry the
// per-field complaints, and application conflicts carry the current
// status.
type ErrorResponse struct {
	Message       string                  `json:"message"`
	Errors        []string                `json:"errors,omitempty"`
	CurrentStatus types.ApplicationStatus `json:"currentStatus,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Message: message})
}

func writeValidationErrors(w http.ResponseWriter, fieldErrors []string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Message: "Validation failed",
		Errors:  fieldErrors,
	})
}

// writeServiceError maps the error taxonomy to HTTP statuses in one
// place. Unclassified errors become a 500 without leaking detail.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var dup *services.DuplicateApplicationError
	if errors.As(err, &dup) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Message:       dup.Error(),
			CurrentStatus: dup.CurrentStatus,
		})
		return
	}
	var illegal *services.IllegalTransitionError
	if errors.As(err, &illegal) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Message:       illegal.Error(),
			CurrentStatus: illegal.CurrentStatus,
		})
		return
	}

	if appErr := apperr.As(err); appErr != nil {
		switch appErr.Type {
		case apperr.TypeValidation:
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Message: appErr.Message,
				Errors:  appErr.Fields,
			})
		case apperr.TypeAuthentication:
			writeError(w, http.StatusUnauthorized, appErr.Message)
		case apperr.TypeAuthorization:
			writeError(w, http.StatusForbidden, appErr.Message)
		case apperr.TypeNotFound:
			writeError(w, http.StatusNotFound, appErr.Message)
		case apperr.TypeConflict:
			writeError(w, http.StatusBadRequest, appErr.Message)
		default:
			logger.Error("internal error", zap.Error(err))
			writeError(w, http.StatusInternalServerError, appErr.Message)
		}
		return
	}

	logger.Error("unclassified error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "Server error")
}
