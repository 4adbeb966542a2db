package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"facturatie/internal/app"
	"facturatie/internal/backend"
	"facturatie/internal/core"
	"facturatie/internal/logger"
	"facturatie/internal/prefs"
	"facturatie/internal/reminder"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// classify maps a service error to an HTTP status and a stable error code.
func classify(err error) (int, string) {
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, core.ErrInvalidShape):
		return http.StatusBadRequest, "INVALID_SHAPE"
	case errors.Is(err, core.ErrInvalidNumber):
		return http.StatusUnprocessableEntity, "INVALID_NUMBER"
	case errors.Is(err, app.ErrValidation),
		errors.Is(err, reminder.ErrInvalidStage),
		errors.Is(err, reminder.ErrMissingInvoiceID),
		errors.Is(err, prefs.ErrInvalidValue):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, core.ErrNegativeCount),
		errors.Is(err, core.ErrUnknownDenomination),
		errors.Is(err, core.ErrUnsupportedCurrency):
		return http.StatusBadRequest, "INVALID_CASH_COUNT"
	case errors.Is(err, prefs.ErrUnknownKey):
		return http.StatusNotFound, "UNKNOWN_PREFERENCE"
	case errors.Is(err, backend.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, backend.ErrUnauthorized), errors.Is(err, backend.ErrNoToken):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.As(err, &apiErr):
		return http.StatusBadGateway, "BACKEND_ERROR"
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}

// writeServiceError translates err into a JSON error response. Internal errors
// are logged and their message is not exposed.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		msg = "internal server error"
	}
	writeError(w, r, msg, code, status)
}
