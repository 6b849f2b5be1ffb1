package controllers

import (
	"log/slog"
	"net/http"

	"eventlottery/internal/delivery/http/helpers"
	"eventlottery/internal/domain"
)

type LogController struct {
	Logger  *slog.Logger
	Service domain.AuditService
}

func NewLogController(logger *slog.Logger, svc domain.AuditService) *LogController {
	return &LogController{
		Logger:  logger,
		Service: svc,
	}
}

// ListLogs godoc
// @Summary List audit entries
// @Description type and event_id are exclusive filters; type wins when both are given.
// @Tags logs
// @Produce json
// @Param type query string false "Log type, e.g. LOTTERY_RUN"
// @Param event_id query int false "Event ID"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains items and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /logs [get]
func (c *LogController) ListLogs(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.QueryInt(w, r, "event_id")
	if !ok {
		return
	}
	var (
		logs []*domain.LogEntry
		err  error
	)
	switch typ := domain.LogType(r.URL.Query().Get("type")); {
	case typ != "":
		logs, err = c.Service.ListLogsOfType(r.Context(), typ)
	case eventID > 0:
		logs, err = c.Service.ListLogsForEvent(r.Context(), eventID)
	default:
		logs, err = c.Service.ListLogs(r.Context())
	}
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.Paginate(logs, helpers.ParsePagination(r)))
}

// MarkLogRead godoc
// @Summary Mark an audit entry read
// @Tags logs
// @Produce json
// @Param logID path string true "Log ID"
// @Success 200 {object} helpers.APIResponse "data is the log entry"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /logs/{logID}/read [post]
func (c *LogController) MarkLogRead(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("logID")
	if id == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing logID")
		return
	}
	entry, err := c.Service.MarkAsRead(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, entry)
}

// DeleteLog godoc
// @Summary Delete an audit entry
// @Tags logs
// @Param logID path string true "Log ID"
// @Success 204 "No Content"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /logs/{logID} [delete]
func (c *LogController) DeleteLog(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("logID")
	if id == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing logID")
		return
	}
	if err := c.Service.DeleteLog(r.Context(), id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearLogs godoc
// @Summary Purge the audit log
// @Tags logs
// @Success 204 "No Content"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /logs [delete]
func (c *LogController) ClearLogs(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.ClearLogs(r.Context()); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
