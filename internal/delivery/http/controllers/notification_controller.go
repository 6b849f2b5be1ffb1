package controllers

import (
	"log/slog"
	"net/http"

	"eventlottery/internal/delivery/http/helpers"
	"eventlottery/internal/domain"
)

// NotificationSuccessResponse is the success response envelope for single-notification endpoints.
type NotificationSuccessResponse struct {
	Data  *domain.Notification `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

type NotificationController struct {
	Logger      *slog.Logger
	Service     domain.NotificationService
	Invitations domain.InvitationService
}

func NewNotificationController(logger *slog.Logger, svc domain.NotificationService, invitations domain.InvitationService) *NotificationController {
	return &NotificationController{
		Logger:      logger,
		Service:     svc,
		Invitations: invitations,
	}
}

// GetNotification godoc
// @Summary Get a notification
// @Tags notifications
// @Produce json
// @Param notificationID path string true "Notification ID"
// @Success 200 {object} controllers.NotificationSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /notifications/{notificationID} [get]
func (c *NotificationController) GetNotification(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("notificationID")
	if id == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing notificationID")
		return
	}
	n, err := c.Service.GetNotification(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, n)
}

// MarkRead godoc
// @Summary Mark a notification read
// @Tags notifications
// @Produce json
// @Param notificationID path string true "Notification ID"
// @Success 200 {object} controllers.NotificationSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /notifications/{notificationID}/read [post]
func (c *NotificationController) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("notificationID")
	if id == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing notificationID")
		return
	}
	n, err := c.Service.MarkRead(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, n)
}

// Accept godoc
// @Summary Accept an invitation or stay on the waitlist
// @Description On an invitation this confirms the entrant when capacity allows; on a not-selected notice it keeps the waitlist spot.
// @Tags notifications
// @Produce json
// @Param notificationID path string true "Notification ID"
// @Success 200 {object} controllers.NotificationSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 422 {object} helpers.APIResponse "error.code: unprocessable"
// @Router /notifications/{notificationID}/accept [post]
func (c *NotificationController) Accept(w http.ResponseWriter, r *http.Request) {
	c.respond(w, r, domain.ResponseAccept)
}

// Decline godoc
// @Summary Decline an invitation or leave the waitlist
// @Tags notifications
// @Produce json
// @Param notificationID path string true "Notification ID"
// @Success 200 {object} controllers.NotificationSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 422 {object} helpers.APIResponse "error.code: unprocessable"
// @Router /notifications/{notificationID}/decline [post]
func (c *NotificationController) Decline(w http.ResponseWriter, r *http.Request) {
	c.respond(w, r, domain.ResponseDecline)
}

func (c *NotificationController) respond(w http.ResponseWriter, r *http.Request, action domain.ResponseAction) {
	id := r.PathValue("notificationID")
	if id == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing notificationID")
		return
	}
	n, err := c.Invitations.Respond(r.Context(), id, action)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, n)
}

// RespondWithToken godoc
// @Summary Respond through a signed email link
// @Tags notifications
// @Produce json
// @Param token query string true "Signed response token"
// @Success 200 {object} controllers.NotificationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /notifications/respond [get]
func (c *NotificationController) RespondWithToken(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing token")
		return
	}
	n, err := c.Invitations.RespondWithToken(r.Context(), token)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, n)
}

// DeleteNotification godoc
// @Summary Delete a notification
// @Tags notifications
// @Param notificationID path string true "Notification ID"
// @Success 204 "No Content"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /notifications/{notificationID} [delete]
func (c *NotificationController) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("notificationID")
	if id == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing notificationID")
		return
	}
	if err := c.Service.DeleteNotification(r.Context(), id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
