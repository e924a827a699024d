package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/hrmigrate/hrmigrate/pkg/models"
	"github.com/hrmigrate/hrmigrate/pkg/session"
)

// writeJSONResponse writes a JSON response with the given status code
func writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeErrorResponse writes an error response with the given status code and message
func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	writeJSONResponse(w, statusCode, map[string]any{
		"error":  message,
		"status": "error",
	})
}

// writeServiceError maps a service error to a status code. Configuration
// errors carry their details so the caller can point at the offending file,
// column or rule.
func writeServiceError(w http.ResponseWriter, err error) {
	var ce *models.ConfigError
	switch {
	case errors.As(err, &ce):
		body := map[string]any{
			"error":  ce.Error(),
			"status": "error",
		}
		if ce.Kind != nil {
			body["kind"] = ce.Kind.Error()
		}
		if ce.File != "" {
			body["file"] = ce.File
		}
		if ce.Column != "" {
			body["column"] = ce.Column
		}
		if ce.Rule != "" {
			body["rule"] = ce.Rule
		}
		writeJSONResponse(w, http.StatusUnprocessableEntity, body)
	case errors.Is(err, session.ErrNotFound):
		writeErrorResponse(w, http.StatusNotFound, err.Error())
	default:
		writeErrorResponse(w, http.StatusInternalServerError, err.Error())
	}
}

// parseLimit extracts the limit query parameter, returning def if it is
// missing or not a positive integer
func parseLimit(r *http.Request, def int) int {
	limitParam := r.URL.Query().Get("limit")
	if limitParam == "" {
		return def
	}
	limit, err := strconv.Atoi(limitParam)
	if err != nil || limit <= 0 {
		return def
	}
	return limit
}

// parseBool reads a boolean query parameter; anything unparsable is false
func parseBool(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}
