package helpers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"eventlottery/internal/domain"
)

// StatusFor maps a service error to an HTTP status and error code.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, ErrCodeUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, domain.ErrFull):
		return http.StatusConflict, ErrCodeFull
	case errors.Is(err, domain.ErrDuplicateEntry), errors.Is(err, domain.ErrAlreadyConfirmed):
		return http.StatusConflict, ErrCodeConflict
	case errors.Is(err, domain.ErrInvalidTimes), errors.Is(err, domain.ErrInvalidParent),
		errors.Is(err, domain.ErrWrongNotificationType):
		return http.StatusUnprocessableEntity, ErrCodeUnprocessable
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrCodeBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrCodeTimeout
	default:
		return http.StatusInternalServerError, ErrCodeInternalError
	}
}

// WriteServiceError writes err as a JSON error. Unmapped errors are logged and returned as 500.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, code := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	}
	WriteJSONError(w, status, code, err.Error())
}
