package http

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"eventlottery/internal/delivery/http/controllers"
	"eventlottery/internal/delivery/http/middleware"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Entrants      *controllers.EntrantController
	Events        *controllers.EventController
	Notifications *controllers.NotificationController
	Logs          *controllers.LogController
}

// RouterConfig holds the middleware settings.
type RouterConfig struct {
	RateLimit      string
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// NewRouter initializes the HTTP router with all application routes and returns
// the methods those routes serve.
func NewRouter(c Controllers) (*http.ServeMux, []string) {
	mux := http.NewServeMux()
	var methods []string
	handle := func(pattern string, h http.HandlerFunc) {
		if method, _, ok := strings.Cut(pattern, " "); ok && !slices.Contains(methods, method) {
			methods = append(methods, method)
		}
		mux.HandleFunc(pattern, h)
	}

	// Entrants
	handle("POST /entrants", c.Entrants.CreateEntrant)
	handle("GET /entrants/{entrantID}", c.Entrants.GetEntrant)
	handle("GET /entrants/device/{deviceID}", c.Entrants.GetEntrantByDevice)
	handle("PUT /entrants/{entrantID}", c.Entrants.UpdateEntrant)
	handle("DELETE /entrants/{entrantID}", c.Entrants.DeleteEntrant)
	handle("POST /entrants/{entrantID}/sub-entrants", c.Entrants.CreateSubEntrant)
	handle("GET /entrants/{entrantID}/events", c.Entrants.ListEntrantEvents)
	handle("GET /entrants/{entrantID}/notifications", c.Entrants.ListEntrantNotifications)

	// Events
	handle("POST /events", c.Events.CreateEvent)
	handle("GET /events", c.Events.ListEvents)
	handle("GET /events/{eventID}", c.Events.GetEvent)
	handle("PUT /events/{eventID}", c.Events.UpdateEvent)
	handle("DELETE /events/{eventID}", c.Events.DeleteEvent)
	handle("GET /events/{eventID}/entrants", c.Events.GetRoster)
	handle("POST /events/{eventID}/entrants", c.Events.AddEntrants)
	handle("DELETE /events/{eventID}/entrants/{entrantID}", c.Events.RemoveEntrant)
	handle("POST /events/{eventID}/entrants/remove", c.Events.RemoveEntrants)
	handle("GET /events/{eventID}/waitlist", c.Events.GetWaitlist)
	handle("POST /events/{eventID}/waitlist", c.Events.JoinWaitlist)
	handle("DELETE /events/{eventID}/waitlist/{entrantID}", c.Events.LeaveWaitlist)
	handle("POST /events/{eventID}/lottery", c.Events.RunLottery)
	handle("POST /events/{eventID}/notifications", c.Events.NotifyEntrants)
	handle("GET /events/{eventID}/roster/export", c.Events.ExportRoster)

	// Notifications
	handle("GET /notifications/respond", c.Notifications.RespondWithToken)
	handle("GET /notifications/{notificationID}", c.Notifications.GetNotification)
	handle("POST /notifications/{notificationID}/read", c.Notifications.MarkRead)
	handle("POST /notifications/{notificationID}/accept", c.Notifications.Accept)
	handle("POST /notifications/{notificationID}/decline", c.Notifications.Decline)
	handle("DELETE /notifications/{notificationID}", c.Notifications.DeleteNotification)

	// Audit log
	handle("GET /logs", c.Logs.ListLogs)
	handle("POST /logs/{logID}/read", c.Logs.MarkLogRead)
	handle("DELETE /logs/{logID}", c.Logs.DeleteLog)
	handle("DELETE /logs", c.Logs.ClearLogs)

	handle("GET /health", controllers.Health)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux, methods
}

// NewHandler wraps the router in middleware: rate limit, CORS, logging, request timeout.
func NewHandler(logger *slog.Logger, c Controllers, cfg RouterConfig) (http.Handler, error) {
	mux, methods := NewRouter(c)
	var h http.Handler = middleware.Timeout(cfg.RequestTimeout, mux)
	h = middleware.LoggingMiddleware(logger, h)
	h = middleware.CORS(cfg.AllowedOrigins, methods, h)
	return middleware.RateLimit(logger, cfg.RateLimit, h)
}
