package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sector-partition-service/internal/domain"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// statusFor maps domain failures to HTTP statuses. Unknown errors are 500 and
// their text is not exposed to the client.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidParameter),
		errors.Is(err, domain.ErrUnknownStrategy),
		errors.Is(err, domain.ErrEmptyGeometry):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrNoSubdivisionFound),
		errors.Is(err, domain.ErrRunNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrProviderUnavailable):
		return http.StatusBadGateway, "boundary provider unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
