package controllers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"eventlottery/internal/delivery/http/helpers"
	"eventlottery/internal/domain"
)

// EventRequest is the request body for POST /events and PUT /events/{eventID}.
// A max_waiting of zero means the waitlist is unbounded.
type EventRequest struct {
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Location          string    `json:"location"`
	Guidelines        string    `json:"guidelines"`
	ImageURL          string    `json:"image_url"`
	EventDate         time.Time `json:"event_date"`
	RegistrationStart time.Time `json:"registration_start"`
	RegistrationEnd   time.Time `json:"registration_end"`
	MaxEntrants       int       `json:"max_entrants"`
	MaxWaiting        int       `json:"max_waiting"`
	OrganizerID       int       `json:"organizer_id"`
	EntrantLoc        bool      `json:"entrant_loc"`
	EntrantDist       string    `json:"entrant_dist"`
}

// Validate implements Validator. Returns error messages for required and range rules.
func (e EventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(e.Name) == "" {
		errs = append(errs, "name is required")
	}
	if e.MaxEntrants < 0 {
		errs = append(errs, "max_entrants must not be negative")
	}
	if e.MaxWaiting < 0 {
		errs = append(errs, "max_waiting must not be negative")
	}
	if e.OrganizerID < 0 {
		errs = append(errs, "organizer_id must not be negative")
	}
	return errs
}

func (e EventRequest) info() domain.EventInfo {
	info := domain.NewEventInfo(strings.TrimSpace(e.Name), e.Description, e.Location, e.Guidelines, e.ImageURL,
		e.EventDate, e.RegistrationStart, e.RegistrationEnd,
		e.MaxEntrants, e.MaxWaiting, e.OrganizerID)
	info.EntrantLoc = e.EntrantLoc
	info.EntrantDist = e.EntrantDist
	return *info
}

// EntrantIDsRequest is the request body for batch roster changes.
type EntrantIDsRequest struct {
	EntrantIDs []int `json:"entrant_ids"`
}

// Validate implements Validator.
func (b EntrantIDsRequest) Validate() []string {
	if len(b.EntrantIDs) == 0 {
		return []string{"entrant_ids is required"}
	}
	for _, id := range b.EntrantIDs {
		if id < 1 {
			return []string{"entrant_ids must be positive"}
		}
	}
	return nil
}

// JoinWaitlistRequest is the request body for POST /events/{eventID}/waitlist.
type JoinWaitlistRequest struct {
	EntrantID int `json:"entrant_id"`
}

// Validate implements Validator.
func (j JoinWaitlistRequest) Validate() []string {
	if j.EntrantID < 1 {
		return []string{"entrant_id is required"}
	}
	return nil
}

// BroadcastRequest is the request body for POST /events/{eventID}/notifications.
type BroadcastRequest struct {
	SenderID int    `json:"sender_id"`
	Audience string `json:"audience"`
	Title    string `json:"title"`
	Body     string `json:"body"`
}

// Validate implements Validator.
func (b BroadcastRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(b.Title) == "" {
		errs = append(errs, "title is required")
	}
	switch domain.Audience(b.Audience) {
	case "", domain.AudienceConfirmed, domain.AudienceWaitlist, domain.AudienceAll:
	default:
		errs = append(errs, "audience must be confirmed, waitlist or all")
	}
	return errs
}

// BroadcastResponse is the data payload for a broadcast.
type BroadcastResponse struct {
	Sent int `json:"sent"`
}

// EventSuccessResponse is the success response envelope for single-event endpoints.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// LotterySuccessResponse is the success response envelope for POST /events/{eventID}/lottery.
type LotterySuccessResponse struct {
	Data  *domain.LotteryResult `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

type EventController struct {
	Logger   *slog.Logger
	Service  domain.EventService
	Exporter domain.RosterExporter
}

func NewEventController(logger *slog.Logger, svc domain.EventService, exporter domain.RosterExporter) *EventController {
	return &EventController{
		Logger:   logger,
		Service:  svc,
		Exporter: exporter,
	}
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates an event with an empty roster. Registration times are checked unless validate=false.
// @Tags events
// @Accept json
// @Produce json
// @Param validate query bool false "Check registration times (default true)"
// @Param event body EventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 422 {object} helpers.APIResponse "error.code: unprocessable"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	validate := true
	if s := r.URL.Query().Get("validate"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid validate")
			return
		}
		validate = v
	}
	var req EventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.CreateEvent(r.Context(), req.info(), validate)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// ListEvents godoc
// @Summary List or search events
// @Description Filters are ANDed. name and location match case-insensitive substrings; from and to bound the event date inclusively.
// @Tags events
// @Produce json
// @Param name query string false "Name contains"
// @Param location query string false "Location contains"
// @Param from query string false "Earliest event date (RFC3339)"
// @Param to query string false "Latest event date (RFC3339)"
// @Param organizer_id query int false "Organizer ID"
// @Param entrant_id query int false "Entrant ID (confirmed or waitlisted)"
// @Param future query bool false "Only events that have not happened yet"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains items and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	q, ok := parseEventQuery(w, r)
	if !ok {
		return
	}
	events, err := c.Service.SearchEvents(r.Context(), q)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.Paginate(events, helpers.ParsePagination(r)))
}

func parseEventQuery(w http.ResponseWriter, r *http.Request) (domain.EventQuery, bool) {
	query := r.URL.Query()
	q := domain.EventQuery{
		Name:     query.Get("name"),
		Location: query.Get("location"),
	}
	var ok bool
	if q.From, ok = queryTime(w, r, "from"); !ok {
		return q, false
	}
	if q.To, ok = queryTime(w, r, "to"); !ok {
		return q, false
	}
	if q.OrganizerID, ok = helpers.QueryInt(w, r, "organizer_id"); !ok {
		return q, false
	}
	if q.EntrantID, ok = helpers.QueryInt(w, r, "entrant_id"); !ok {
		return q, false
	}
	if s := query.Get("future"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid future")
			return q, false
		}
		q.FutureOnly = v
	}
	return q, true
}

func queryTime(w http.ResponseWriter, r *http.Request, name string) (*time.Time, bool) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid "+name)
		return nil, false
	}
	return &t, true
}

// GetEvent godoc
// @Summary Get an event
// @Tags events
// @Produce json
// @Param eventID path int true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathInt(w, r, "eventID")
	if !ok {
		return
	}
	event, err := c.Service.GetEvent(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// UpdateEvent godoc
// @Summary Update event details
// @Description Replaces the descriptive fields. The roster is kept; max_entrants may not drop below it.
// @Tags events
// @Accept json
// @Produce json
// @Param eventID path int true "Event ID"
// @Param event body EventRequest true "Event data"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathInt(w, r, "eventID")
	if !ok {
		return
	}
	var req EventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), id, req.info())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes the event and notifies confirmed entrants. Waitlisted entrants are not notified.
// @Tags events
// @Param eventID path int true "Event ID"
// @Success 204 "No Content"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathInt(w, r, "eventID")
	if !ok {
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetRoster godoc
// @Summary List confirmed entrants
// @Tags roster
// @Produce json
// @Param eventID path int true "Event ID"
// @Success 200 {object} helpers.APIResponse "data is an array of entrants"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/entrants [get]
func (c *EventController) GetRoster(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathInt(w, r, "eventID")
	if !ok {
		return
	}
	entrants, err := c.Service.GetRoster(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, entrants)
}

// AddEntrants godoc
// @Summary Confirm entrants
// @Description Adds every id to the roster, or none of them when any fails.
// @Tags roster
// @Accept json
// @Param eventID path int true "Event ID"
// @Param body body EntrantIDsRequest true "Entrant IDs"
// @Success 204 "No Content"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: full or conflict"
// @Router /events/{eventID}/entrants [post]
func (c *EventController) AddEntrants(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathInt(w, r, "eventID")
	if !ok {
		return
	}
	var req EntrantIDsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.AddEntrants(r.Context(), id, req.EntrantIDs); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveEntrant godoc
// @Summary Remove a confirmed entrant
// @Tags roster
// @Param eventID path int true "Event ID"
// @Param entrantID path int true "Entrant ID"
// @Success 204 "No Content"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/entrants/{entrantID} [delete]
func (c *EventController) RemoveEntrant(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathInt(w, r, "eventID")
	if !ok {
		return
	}
	entrantID, ok := helpers.PathInt(w, r, "entrantID")
	if !ok {
		return
	}
	if err := c.Service.RemoveEntrant(r.Context(), eventID, entrantID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveEntrants godoc
// @Summary Remove confirmed entrants
// @Description Removes every id from the roster, or none of them when any is missing.
// @Tags roster
// @Accept json
// @Param eventID path int true "Event ID"
// @Param body body EntrantIDsRequest true "Entrant IDs"
// @Success 204 "No Content"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/entrants/remove [post]
func (c *EventController) RemoveEntrants(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathInt(w, r, "eventID")
	if !ok {
		return
	}
	var req EntrantIDsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.RemoveEntrants(r.Context(), id, req.EntrantIDs); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetWaitlist godoc
// @Summary List waitlisted entrants
// @Description Entrants in join order.
// @Tags waitlist
// @Produce json
// @Param eventID path int true "Event ID"
// @Success 200 {object} helpers.APIResponse "data is an array of entrants"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/waitlist [get]
func (c *EventController) GetWaitlist(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathInt(w, r, "eventID")
	if !ok {
		return
	}
	entrants, err := c.Service.GetWaitlist(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, entrants)
}

// JoinWaitlist godoc
// @Summary Join the waitlist
// @Tags waitlist
// @Accept json
// @Param eventID path int true "Event ID"
// @Param body body JoinWaitlistRequest true "Entrant"
// @Success 204 "No Content"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: full or conflict"
// @Router /events/{eventID}/waitlist [post]
func (c *EventController) JoinWaitlist(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathInt(w, r, "eventID")
	if !ok {
		return
	}
	var req JoinWaitlistRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.AddToWaitlist(r.Context(), id, req.EntrantID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LeaveWaitlist godoc
// @Summary Leave the waitlist
// @Tags waitlist
// @Param eventID path int true "Event ID"
// @Param entrantID path int true "Entrant ID"
// @Success 204 "No Content"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/waitlist/{entrantID} [delete]
func (c *EventController) LeaveWaitlist(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathInt(w, r, "eventID")
	if !ok {
		return
	}
	entrantID, ok := helpers.PathInt(w, r, "entrantID")
	if !ok {
		return
	}
	if err := c.Service.RemoveFromWaitlist(r.Context(), eventID, entrantID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RunLottery godoc
// @Summary Run the lottery
// @Description Draws min(remaining capacity, waitlist size) winners from the waitlist, confirms them, and notifies winners and losers.
// @Tags lottery
// @Produce json
// @Param eventID path int true "Event ID"
// @Success 200 {object} controllers.LotterySuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (event missing or waitlist empty)"
// @Failure 409 {object} helpers.APIResponse "error.code: full"
// @Router /events/{eventID}/lottery [post]
func (c *EventController) RunLottery(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathInt(w, r, "eventID")
	if !ok {
		return
	}
	result, err := c.Service.RunLottery(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// NotifyEntrants godoc
// @Summary Broadcast to event members
// @Tags notifications
// @Accept json
// @Produce json
// @Param eventID path int true "Event ID"
// @Param body body BroadcastRequest true "Message"
// @Success 200 {object} helpers.APIResponse "data.sent is the recipient count"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/notifications [post]
func (c *EventController) NotifyEntrants(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathInt(w, r, "eventID")
	if !ok {
		return
	}
	var req BroadcastRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	sent, err := c.Service.NotifyEntrants(r.Context(), id, req.SenderID, domain.Audience(req.Audience), req.Title, req.Body)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, BroadcastResponse{Sent: sent})
}

// ExportRoster godoc
// @Summary Export the roster
// @Description Downloads confirmed and waitlisted entrants as csv, xlsx or pdf.
// @Tags roster
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce application/pdf
// @Param eventID path int true "Event ID"
// @Param format query string false "csv (default), xlsx or pdf"
// @Success 200 {file} file
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/roster/export [get]
func (c *EventController) ExportRoster(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathInt(w, r, "eventID")
	if !ok {
		return
	}
	format := domain.ExportFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = domain.ExportCSV
	}
	// Buffer so a failed export still gets a JSON error.
	var buf bytes.Buffer
	if err := c.Exporter.ExportRoster(r.Context(), id, format, &buf); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="event-%d-roster.%s"`, id, format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
