package controllers

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventlottery/internal/delivery/http/helpers"
	"eventlottery/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntrantController_CreateEntrant(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		fakeErr        error
		wantStatus     int
		wantBodySubstr string
		check          func(t *testing.T, fake *fakeEntrantService, e domain.Entrant)
	}{
		{
			name:       "success",
			body:       `{"name":" Ada ","email":"ada@example.com","send_notifications":true,"device_id":"dev-1"}`,
			wantStatus: http.StatusCreated,
			check: func(t *testing.T, fake *fakeEntrantService, e domain.Entrant) {
				assert.Equal(t, "Ada", fake.lastProfile.Name)
				assert.True(t, fake.lastProfile.SendNotifications)
				assert.Equal(t, "dev-1", fake.lastDeviceID)
				assert.Equal(t, "dev-1", e.DeviceID)
			},
		},
		{
			name:           "bad request invalid json",
			body:           `{invalid`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "invalid",
		},
		{
			name:           "missing name",
			body:           `{"email":"ada@example.com"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "name is required",
		},
		{
			name:           "invalid email",
			body:           `{"name":"Ada","email":"not-an-email"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "email is invalid",
		},
		{
			name:           "unknown field rejected",
			body:           `{"name":"Ada","id":7}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "unknown field",
		},
		{
			name:           "duplicate device",
			body:           `{"name":"Ada","device_id":"dev-1"}`,
			fakeErr:        domain.ErrDuplicateEntry,
			wantStatus:     http.StatusConflict,
			wantBodySubstr: helpers.ErrCodeConflict,
		},
		{
			name:           "service error",
			body:           `{"name":"Ada"}`,
			fakeErr:        errors.New("db error"),
			wantStatus:     http.StatusInternalServerError,
			wantBodySubstr: "db error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeEntrantService{err: tt.fakeErr}
			ctrl := NewEntrantController(testLogger, fake, &fakeEventService{}, &fakeNotificationService{})
			req := httptest.NewRequest(http.MethodPost, "/entrants", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			ctrl.CreateEntrant(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			if tt.check != nil {
				var e domain.Entrant
				decodeEnvelope(t, rr, &e)
				tt.check(t, fake, e)
				return
			}
			envelope := decodeEnvelope(t, rr, nil)
			require.NotNil(t, envelope.Error)
			assert.Contains(t, envelope.Error.Code+" "+envelope.Error.Message, tt.wantBodySubstr)
		})
	}
}

func TestEntrantController_GetEntrant(t *testing.T) {
	tests := []struct {
		name       string
		entrantID  string
		fakeErr    error
		wantStatus int
		wantCode   string
	}{
		{name: "success", entrantID: "3", wantStatus: http.StatusOK},
		{name: "non numeric id", entrantID: "abc", wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
		{name: "zero id", entrantID: "0", wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
		{name: "not found", entrantID: "3", fakeErr: domain.ErrEntrantNotFound, wantStatus: http.StatusNotFound, wantCode: helpers.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeEntrantService{entrant: domain.NewEntrant(3, domain.Profile{Name: "Ada"}), err: tt.fakeErr}
			ctrl := NewEntrantController(testLogger, fake, &fakeEventService{}, &fakeNotificationService{})
			req := httptest.NewRequest(http.MethodGet, "/entrants/"+tt.entrantID, nil)
			req.SetPathValue("entrantID", tt.entrantID)
			rr := httptest.NewRecorder()

			ctrl.GetEntrant(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantCode != "" {
				envelope := decodeEnvelope(t, rr, nil)
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantCode, envelope.Error.Code)
				return
			}
			var e domain.Entrant
			decodeEnvelope(t, rr, &e)
			assert.Equal(t, 3, e.ID)
			assert.Equal(t, 3, fake.lastID)
		})
	}
}

func TestEntrantController_GetEntrantByDevice(t *testing.T) {
	fake := &fakeEntrantService{entrant: domain.NewEntrant(8, domain.Profile{Name: "Ada"})}
	ctrl := NewEntrantController(testLogger, fake, &fakeEventService{}, &fakeNotificationService{})
	req := httptest.NewRequest(http.MethodGet, "/entrants/device/dev-9", nil)
	req.SetPathValue("deviceID", "dev-9")
	rr := httptest.NewRecorder()

	ctrl.GetEntrantByDevice(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "dev-9", fake.lastDeviceID)
}

func TestEntrantController_UpdateEntrant(t *testing.T) {
	fake := &fakeEntrantService{}
	ctrl := NewEntrantController(testLogger, fake, &fakeEventService{}, &fakeNotificationService{})
	req := httptest.NewRequest(http.MethodPut, "/entrants/4", bytes.NewBufferString(`{"name":"Grace","phone":"555"}`))
	req.SetPathValue("entrantID", "4")
	rr := httptest.NewRecorder()

	ctrl.UpdateEntrant(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var e domain.Entrant
	decodeEnvelope(t, rr, &e)
	assert.Equal(t, 4, e.ID)
	assert.Equal(t, "555", e.Profile.Phone)
}

func TestEntrantController_DeleteEntrant(t *testing.T) {
	tests := []struct {
		name       string
		fakeErr    error
		wantStatus int
	}{
		{name: "success", wantStatus: http.StatusNoContent},
		{name: "not found", fakeErr: domain.ErrEntrantNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeEntrantService{err: tt.fakeErr}
			ctrl := NewEntrantController(testLogger, fake, &fakeEventService{}, &fakeNotificationService{})
			req := httptest.NewRequest(http.MethodDelete, "/entrants/5", nil)
			req.SetPathValue("entrantID", "5")
			rr := httptest.NewRecorder()

			ctrl.DeleteEntrant(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.True(t, fake.deleteCalled)
			assert.Equal(t, 5, fake.lastID)
		})
	}
}

func TestEntrantController_CreateSubEntrant(t *testing.T) {
	tests := []struct {
		name       string
		fakeErr    error
		wantStatus int
	}{
		{name: "success", wantStatus: http.StatusCreated},
		{name: "parent is a sub-entrant", fakeErr: domain.ErrInvalidParent, wantStatus: http.StatusUnprocessableEntity},
		{name: "parent missing", fakeErr: domain.ErrEntrantNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeEntrantService{err: tt.fakeErr}
			ctrl := NewEntrantController(testLogger, fake, &fakeEventService{}, &fakeNotificationService{})
			req := httptest.NewRequest(http.MethodPost, "/entrants/1/sub-entrants", bytes.NewBufferString(`{"name":"Kid"}`))
			req.SetPathValue("entrantID", "1")
			rr := httptest.NewRecorder()

			ctrl.CreateSubEntrant(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, 1, fake.lastParentID)
			if tt.wantStatus == http.StatusCreated {
				var e domain.Entrant
				decodeEnvelope(t, rr, &e)
				assert.Equal(t, 1, e.ParentID)
			}
		})
	}
}

func TestEntrantController_ListEntrantEvents(t *testing.T) {
	events := &fakeEventService{events: []*domain.Event{
		domain.NewEvent(domain.EventInfo{ID: 1, Name: "Swim", EventDate: time.Now().Add(time.Hour)}),
	}}
	ctrl := NewEntrantController(testLogger, &fakeEntrantService{}, events, &fakeNotificationService{})
	req := httptest.NewRequest(http.MethodGet, "/entrants/6/events?when=future", nil)
	req.SetPathValue("entrantID", "6")
	rr := httptest.NewRecorder()

	ctrl.ListEntrantEvents(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 6, events.lastEntrant)
	assert.Equal(t, domain.EventsFuture, events.lastWhen)
	var got []domain.Event
	decodeEnvelope(t, rr, &got)
	require.Len(t, got, 1)
	assert.Equal(t, "Swim", got[0].Info.Name)
}

func TestEntrantController_ListEntrantEventsBadFilter(t *testing.T) {
	events := &fakeEventService{err: domain.ErrInvalidInput}
	ctrl := NewEntrantController(testLogger, &fakeEntrantService{}, events, &fakeNotificationService{})
	req := httptest.NewRequest(http.MethodGet, "/entrants/6/events?when=soon", nil)
	req.SetPathValue("entrantID", "6")
	rr := httptest.NewRecorder()

	ctrl.ListEntrantEvents(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestEntrantController_ListEntrantNotifications(t *testing.T) {
	var inbox []*domain.Notification
	for i := range 5 {
		inbox = append(inbox, &domain.Notification{ID: string(rune('a' + i)), RecipientID: 2})
	}
	notifications := &fakeNotificationService{inbox: inbox}
	ctrl := NewEntrantController(testLogger, &fakeEntrantService{}, &fakeEventService{}, notifications)
	req := httptest.NewRequest(http.MethodGet, "/entrants/2/notifications?page=2&page_size=2", nil)
	req.SetPathValue("entrantID", "2")
	rr := httptest.NewRecorder()

	ctrl.ListEntrantNotifications(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 2, notifications.lastRecipient)
	var page helpers.PaginatedResponse[domain.Notification]
	decodeEnvelope(t, rr, &page)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "c", page.Items[0].ID)
	assert.Equal(t, helpers.PaginationMeta{Page: 2, PageSize: 2, Total: 5, TotalPages: 3}, page.Pagination)
}
