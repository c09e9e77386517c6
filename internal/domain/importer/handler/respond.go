package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/FACorreiaa/contact-importer/internal/domain/importer/mapping"
	"github.com/FACorreiaa/contact-importer/internal/domain/importer/session"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]apiError{"error": {Code: code, Message: message}})
}

func writeErrorDetails(w http.ResponseWriter, status int, code, message string, details any) {
	writeJSON(w, status, map[string]apiError{"error": {Code: code, Message: message, Details: details}})
}

func decodeJSON(body io.Reader, dst any) error {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeValidationError maps mapping validation failures onto 422 responses
// the mapping screen can render field by field.
func writeValidationError(w http.ResponseWriter, err error) {
	var structErr *mapping.StructureError
	if errors.As(err, &structErr) {
		missing := make([]string, len(structErr.Missing))
		for i, f := range structErr.Missing {
			missing[i] = string(f)
		}
		writeErrorDetails(w, http.StatusUnprocessableEntity, "IMPORT_MAPPING_INCOMPLETE",
			structErr.Error(), map[string]any{"missingFields": missing})
		return
	}

	var rowErr *mapping.RowContentError
	if errors.As(err, &rowErr) {
		writeErrorDetails(w, http.StatusUnprocessableEntity, "IMPORT_ROWS_INVALID",
			rowErr.Error(), map[string]any{"rows": rowErr.Rows})
		return
	}

	writeError(w, http.StatusUnprocessableEntity, "IMPORT_INVALID", err.Error())
}

func writeSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, "IMPORT_SESSION_NOT_FOUND", err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "IMPORT_INTERNAL", err.Error())
}
