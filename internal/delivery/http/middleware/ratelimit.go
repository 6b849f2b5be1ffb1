package middleware

import (
	"log/slog"
	"net/http"

	"eventlottery/internal/delivery/http/helpers"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimit limits requests per client IP using an in-memory store. rate uses the
// limiter format, e.g. "100-M" for 100 requests per minute. An empty rate disables limiting.
func RateLimit(logger *slog.Logger, rate string, next http.Handler) (http.Handler, error) {
	if rate == "" {
		return next, nil
	}
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, err
	}
	instance := limiter.New(memory.NewStore(), parsed)
	mw := stdlib.NewMiddleware(instance,
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			helpers.WriteJSONError(w, http.StatusTooManyRequests, helpers.ErrCodeTooMany, "rate limit exceeded")
		}),
		stdlib.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			logger.ErrorContext(r.Context(), "rate limiter failed", "path", r.URL.Path, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "rate limiter failed")
		}),
	)
	return mw.Handler(next), nil
}
