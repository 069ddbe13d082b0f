// Package respond writes the API's JSON envelopes.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/scango/internal/carrier"
	"github.com/MrJamesThe3rd/scango/internal/http/wire"
	"github.com/MrJamesThe3rd/scango/internal/transaction"
)

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error writes a {"success": false, "error": message} body.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, wire.ErrorResponse{Error: message})
}

// Err maps a domain error to its status code and writes it. Unmapped errors
// are logged and answered with a generic message.
func Err(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "status", status, "error", err)
	}

	if status == http.StatusInternalServerError {
		Error(w, status, "internal error")
		return
	}

	Error(w, status, err.Error())
}

// StatusFor picks the HTTP status for err.
func StatusFor(err error) int {
	var cerr *carrier.Error

	switch {
	case errors.Is(err, transaction.ErrValidation), errors.Is(err, transaction.ErrPaymentRequired):
		return http.StatusBadRequest
	case errors.Is(err, transaction.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, transaction.ErrInvalidTransition):
		return http.StatusConflict
	case errors.As(err, &cerr):
		if cerr.Rejected() {
			return http.StatusUnprocessableEntity
		}

		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
