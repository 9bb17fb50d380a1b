package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"boba-kart/internal/middleware"
	"boba-kart/internal/model"

	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// statusFor maps a domain error kind to its HTTP status.
func statusFor(kind model.ErrorKind) int {
	switch kind {
	case model.KindValidation:
		return http.StatusBadRequest
	case model.KindAuthentication:
		return http.StatusUnauthorized
	case model.KindAuthorization:
		return http.StatusForbidden
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders err. Domain errors keep their message and field map;
// anything else becomes a generic 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	correlationID := middleware.RequestIDFromContext(r.Context())

	if de, ok := model.AsDomainError(err); ok {
		status := statusFor(de.Kind)
		logger.Debug().
			Str("code", de.Code).
			Int("status", status).
			Str("request_id", correlationID).
			Msg(de.Message)
		WriteJSON(w, status, model.ErrorResponse{
			Error:         de.Message,
			Code:          de.Code,
			Fields:        de.Fields,
			CorrelationID: correlationID,
		})
		return
	}

	logger.Error().
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("request_id", correlationID).
		Msg("handler error")
	WriteJSON(w, http.StatusInternalServerError, model.ErrorResponse{
		Error:         "An unexpected error occurred",
		Code:          model.ErrCodeInternalError,
		CorrelationID: correlationID,
	})
}

// DecodeJSON reads a single JSON document from the request body into v.
// Unknown fields are ignored.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return model.NewValidationError("Request body is invalid", map[string]string{
				typeErr.Field: fmt.Sprintf("%s has the wrong type", typeErr.Field),
			})
		}
		if errors.Is(err, io.EOF) {
			return model.NewDomainError(model.KindValidation, model.ErrCodeInvalidJSON, "Request body is required")
		}
		return model.NewDomainError(model.KindValidation, model.ErrCodeInvalidJSON, "Request body must be valid JSON")
	}
	return nil
}
