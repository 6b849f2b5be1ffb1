package controllers

import (
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"eventlottery/internal/delivery/http/helpers"
	"eventlottery/internal/domain"
)

// ProfileRequest is the request body for entrant profile writes.
type ProfileRequest struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	SendNotifications bool   `json:"send_notifications"`
}

func (p ProfileRequest) validate() []string {
	var errs []string
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, "name is required")
	}
	if p.Email != "" {
		if _, err := mail.ParseAddress(p.Email); err != nil {
			errs = append(errs, "email is invalid")
		}
	}
	return errs
}

func (p ProfileRequest) profile() domain.Profile {
	return domain.Profile{
		Name:              strings.TrimSpace(p.Name),
		Email:             strings.TrimSpace(p.Email),
		Phone:             strings.TrimSpace(p.Phone),
		SendNotifications: p.SendNotifications,
	}
}

// CreateEntrantRequest is the request body for POST /entrants.
type CreateEntrantRequest struct {
	ProfileRequest
	DeviceID string `json:"device_id"`
}

// Validate implements Validator.
func (c CreateEntrantRequest) Validate() []string {
	return c.validate()
}

// UpdateEntrantRequest is the request body for PUT /entrants/{entrantID} and POST /entrants/{entrantID}/sub-entrants.
type UpdateEntrantRequest struct {
	ProfileRequest
}

// Validate implements Validator.
func (u UpdateEntrantRequest) Validate() []string {
	return u.validate()
}

// EntrantSuccessResponse is the success response envelope for single-entrant endpoints.
type EntrantSuccessResponse struct {
	Data  *domain.Entrant   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type EntrantController struct {
	Logger        *slog.Logger
	Service       domain.EntrantService
	Events        domain.EventService
	Notifications domain.NotificationService
}

func NewEntrantController(logger *slog.Logger, svc domain.EntrantService, events domain.EventService, notifications domain.NotificationService) *EntrantController {
	return &EntrantController{
		Logger:        logger,
		Service:       svc,
		Events:        events,
		Notifications: notifications,
	}
}

// CreateEntrant godoc
// @Summary Create an entrant
// @Description Registers a root entrant. device_id is optional and must be unique when given.
// @Tags entrants
// @Accept json
// @Produce json
// @Param entrant body CreateEntrantRequest true "Entrant profile"
// @Success 201 {object} controllers.EntrantSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /entrants [post]
func (c *EntrantController) CreateEntrant(w http.ResponseWriter, r *http.Request) {
	var req CreateEntrantRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	entrant, err := c.Service.CreateEntrant(r.Context(), req.profile(), strings.TrimSpace(req.DeviceID))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, entrant)
}

// GetEntrant godoc
// @Summary Get an entrant
// @Tags entrants
// @Produce json
// @Param entrantID path int true "Entrant ID"
// @Success 200 {object} controllers.EntrantSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /entrants/{entrantID} [get]
func (c *EntrantController) GetEntrant(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathInt(w, r, "entrantID")
	if !ok {
		return
	}
	entrant, err := c.Service.GetEntrant(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, entrant)
}

// GetEntrantByDevice godoc
// @Summary Get an entrant by device id
// @Tags entrants
// @Produce json
// @Param deviceID path string true "Device ID"
// @Success 200 {object} controllers.EntrantSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /entrants/device/{deviceID} [get]
func (c *EntrantController) GetEntrantByDevice(w http.ResponseWriter, r *http.Request) {
	deviceID := r.PathValue("deviceID")
	if deviceID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing deviceID")
		return
	}
	entrant, err := c.Service.GetEntrantByDeviceID(r.Context(), deviceID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, entrant)
}

// UpdateEntrant godoc
// @Summary Update an entrant's profile
// @Tags entrants
// @Accept json
// @Produce json
// @Param entrantID path int true "Entrant ID"
// @Param profile body UpdateEntrantRequest true "Replacement profile"
// @Success 200 {object} controllers.EntrantSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /entrants/{entrantID} [put]
func (c *EntrantController) UpdateEntrant(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathInt(w, r, "entrantID")
	if !ok {
		return
	}
	var req UpdateEntrantRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	entrant, err := c.Service.UpdateEntrant(r.Context(), id, req.profile())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, entrant)
}

// DeleteEntrant godoc
// @Summary Delete an entrant
// @Description Removes the entrant from every event roster and waitlist, detaches family links, then deletes the record.
// @Tags entrants
// @Param entrantID path int true "Entrant ID"
// @Success 204 "No Content"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /entrants/{entrantID} [delete]
func (c *EntrantController) DeleteEntrant(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathInt(w, r, "entrantID")
	if !ok {
		return
	}
	if err := c.Service.DeleteEntrant(r.Context(), id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateSubEntrant godoc
// @Summary Create a sub-entrant
// @Description Creates an entrant grouped under a root entrant. The parent must not itself be a sub-entrant.
// @Tags entrants
// @Accept json
// @Produce json
// @Param entrantID path int true "Parent entrant ID"
// @Param profile body UpdateEntrantRequest true "Sub-entrant profile"
// @Success 201 {object} controllers.EntrantSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 422 {object} helpers.APIResponse "error.code: unprocessable"
// @Router /entrants/{entrantID}/sub-entrants [post]
func (c *EntrantController) CreateSubEntrant(w http.ResponseWriter, r *http.Request) {
	parentID, ok := helpers.PathInt(w, r, "entrantID")
	if !ok {
		return
	}
	var req UpdateEntrantRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	entrant, err := c.Service.CreateSubEntrant(r.Context(), parentID, req.profile())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, entrant)
}

// ListEntrantEvents godoc
// @Summary List events for an entrant
// @Description Events where the entrant is confirmed or waitlisted, earliest first.
// @Tags entrants
// @Produce json
// @Param entrantID path int true "Entrant ID"
// @Param when query string false "all, future or past"
// @Success 200 {object} helpers.APIResponse "data is an array of events"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /entrants/{entrantID}/events [get]
func (c *EntrantController) ListEntrantEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathInt(w, r, "entrantID")
	if !ok {
		return
	}
	when := domain.EventTimeFilter(r.URL.Query().Get("when"))
	events, err := c.Events.GetEventsForEntrant(r.Context(), id, when)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// ListEntrantNotifications godoc
// @Summary Notification inbox
// @Description Notifications addressed to the entrant, newest first.
// @Tags entrants
// @Produce json
// @Param entrantID path int true "Entrant ID"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains items and pagination"
// @Router /entrants/{entrantID}/notifications [get]
func (c *EntrantController) ListEntrantNotifications(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathInt(w, r, "entrantID")
	if !ok {
		return
	}
	list, err := c.Notifications.ListForRecipient(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.Paginate(list, helpers.ParsePagination(r)))
}
