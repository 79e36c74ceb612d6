package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"multidrop-route-service/internal/api/dto"
	"multidrop-route-service/internal/domain"
	"multidrop-route-service/internal/platform/logging"
	"multidrop-route-service/internal/platform/obs"
	"multidrop-route-service/internal/ports"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Warn("encode failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, dto.ErrorResponse{
		Error:         msg,
		CorrelationID: obs.RequestID(r.Context()),
	})
}

// writeDomainError maps typed errors to client responses. Anything
// unrecognised is logged and hidden behind a 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var (
		invalid  *domain.InvalidInputError
		geocode  *domain.GeocodingRequiredError
		capacity *domain.CapacityExceededError
	)

	switch {
	case errors.As(err, &invalid):
		writeJSON(w, r, http.StatusBadRequest, dto.ErrorResponse{
			Error:         invalid.Error(),
			Field:         invalid.Field,
			CorrelationID: obs.RequestID(r.Context()),
		})
	case errors.As(err, &geocode):
		writeError(w, r, http.StatusUnprocessableEntity, geocode.Error())
	case errors.As(err, &capacity):
		writeError(w, r, http.StatusUnprocessableEntity, capacity.Error())
	case errors.Is(err, ports.ErrQuoteNotFound):
		writeError(w, r, http.StatusNotFound, "quote not found")
	default:
		logging.FromContext(r.Context()).Error(op+" failed",
			zap.String("req_id", obs.RequestID(r.Context())),
			zap.Error(err),
		)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}
