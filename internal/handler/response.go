// internal/handler/response.go
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gurkanbulca/taskmanagement/internal/apperrors"
	"github.com/gurkanbulca/taskmanagement/internal/logger"
	"github.com/gurkanbulca/taskmanagement/internal/validation"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn(context.Background(), "failed to encode response", "error", err)
	}
}

func violations(field, message string) *validation.Errors {
	out := &validation.Errors{}
	out.Add(field, message)
	return out
}

// writeError maps an error onto the status code and violation payload the
// API promises. Unknown errors never leak their message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs *validation.Errors
	if errors.As(err, &verrs) {
		writeJSON(w, http.StatusBadRequest, verrs)
		return
	}

	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		logger.Error(r.Context(), err, "unhandled error", "path", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, violations("internalError", "internal server error"))
		return
	}

	switch appErr.Type {
	case apperrors.ErrorTypeValidation, apperrors.ErrorTypeDuplicate, apperrors.ErrorTypeConflict:
		writeJSON(w, http.StatusBadRequest, violations(string(appErr.Origin), appErr.Message))
	case apperrors.ErrorTypeNotFound:
		writeJSON(w, http.StatusNotFound, violations(string(appErr.Origin), appErr.Message))
	default:
		logger.Error(r.Context(), err, "request failed", "path", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, violations("internalError", "internal server error"))
	}
}

// decodeJSON reads a JSON body into dst, reporting malformed input as a
// single violation.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return violations("body", "malformed JSON payload: "+err.Error())
	}
	return nil
}
