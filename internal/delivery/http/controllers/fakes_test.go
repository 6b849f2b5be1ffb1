package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"eventlottery/internal/delivery/http/helpers"
	"eventlottery/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// decodeEnvelope decodes the JSON envelope and, when data is non-nil, unmarshals envelope.Data into it.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, data any) helpers.APIResponse {
	t.Helper()
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
	if data != nil {
		require.Nil(t, envelope.Error, "success response must have error nil")
		raw, err := json.Marshal(envelope.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, data))
	}
	return envelope
}

// fakeEntrantService implements domain.EntrantService for handler tests.
// Methods the controllers never call panic through the nil embedded interface.
type fakeEntrantService struct {
	domain.EntrantService
	entrant      *domain.Entrant
	err          error
	lastProfile  domain.Profile
	lastDeviceID string
	lastID       int
	lastParentID int
	deleteCalled bool
}

func (f *fakeEntrantService) CreateEntrant(_ context.Context, profile domain.Profile, deviceID string) (*domain.Entrant, error) {
	f.lastProfile, f.lastDeviceID = profile, deviceID
	if f.err != nil {
		return nil, f.err
	}
	e := domain.NewEntrant(1, profile)
	e.DeviceID = deviceID
	return e, nil
}

func (f *fakeEntrantService) CreateSubEntrant(_ context.Context, parentID int, profile domain.Profile) (*domain.Entrant, error) {
	f.lastParentID, f.lastProfile = parentID, profile
	if f.err != nil {
		return nil, f.err
	}
	e := domain.NewEntrant(2, profile)
	e.ParentID = parentID
	return e, nil
}

func (f *fakeEntrantService) GetEntrant(_ context.Context, id int) (*domain.Entrant, error) {
	f.lastID = id
	return f.entrant, f.err
}

func (f *fakeEntrantService) GetEntrantByDeviceID(_ context.Context, deviceID string) (*domain.Entrant, error) {
	f.lastDeviceID = deviceID
	return f.entrant, f.err
}

func (f *fakeEntrantService) UpdateEntrant(_ context.Context, id int, profile domain.Profile) (*domain.Entrant, error) {
	f.lastID, f.lastProfile = id, profile
	if f.err != nil {
		return nil, f.err
	}
	return domain.NewEntrant(id, profile), nil
}

func (f *fakeEntrantService) DeleteEntrant(_ context.Context, id int) error {
	f.lastID, f.deleteCalled = id, true
	return f.err
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	domain.EventService
	event        *domain.Event
	events       []*domain.Event
	entrants     []*domain.Entrant
	result       *domain.LotteryResult
	sent         int
	err          error
	lastInfo     domain.EventInfo
	lastValidate bool
	lastQuery    domain.EventQuery
	lastWhen     domain.EventTimeFilter
	lastEventID  int
	lastEntrant  int
	lastIDs      []int
	lastAudience domain.Audience
	lastTitle    string
	lastSender   int
}

func (f *fakeEventService) CreateEvent(_ context.Context, info domain.EventInfo, validate bool) (*domain.Event, error) {
	f.lastInfo, f.lastValidate = info, validate
	if f.err != nil {
		return nil, f.err
	}
	info.ID = 1
	return domain.NewEvent(info), nil
}

func (f *fakeEventService) GetEvent(_ context.Context, id int) (*domain.Event, error) {
	f.lastEventID = id
	return f.event, f.err
}

func (f *fakeEventService) UpdateEvent(_ context.Context, id int, info domain.EventInfo) (*domain.Event, error) {
	f.lastEventID, f.lastInfo = id, info
	if f.err != nil {
		return nil, f.err
	}
	info.ID = id
	return domain.NewEvent(info), nil
}

func (f *fakeEventService) DeleteEvent(_ context.Context, id int) error {
	f.lastEventID = id
	return f.err
}

func (f *fakeEventService) SearchEvents(_ context.Context, q domain.EventQuery) ([]*domain.Event, error) {
	f.lastQuery = q
	return f.events, f.err
}

func (f *fakeEventService) AddEntrants(_ context.Context, eventID int, ids []int) error {
	f.lastEventID, f.lastIDs = eventID, ids
	return f.err
}

func (f *fakeEventService) RemoveEntrant(_ context.Context, eventID, entrantID int) error {
	f.lastEventID, f.lastEntrant = eventID, entrantID
	return f.err
}

func (f *fakeEventService) RemoveEntrants(_ context.Context, eventID int, ids []int) error {
	f.lastEventID, f.lastIDs = eventID, ids
	return f.err
}

func (f *fakeEventService) AddToWaitlist(_ context.Context, eventID, entrantID int) error {
	f.lastEventID, f.lastEntrant = eventID, entrantID
	return f.err
}

func (f *fakeEventService) RemoveFromWaitlist(_ context.Context, eventID, entrantID int) error {
	f.lastEventID, f.lastEntrant = eventID, entrantID
	return f.err
}

func (f *fakeEventService) GetRoster(_ context.Context, eventID int) ([]*domain.Entrant, error) {
	f.lastEventID = eventID
	return f.entrants, f.err
}

func (f *fakeEventService) GetWaitlist(_ context.Context, eventID int) ([]*domain.Entrant, error) {
	f.lastEventID = eventID
	return f.entrants, f.err
}

func (f *fakeEventService) GetEventsForEntrant(_ context.Context, entrantID int, when domain.EventTimeFilter) ([]*domain.Event, error) {
	f.lastEntrant, f.lastWhen = entrantID, when
	return f.events, f.err
}

func (f *fakeEventService) RunLottery(_ context.Context, eventID int) (*domain.LotteryResult, error) {
	f.lastEventID = eventID
	return f.result, f.err
}

func (f *fakeEventService) NotifyEntrants(_ context.Context, eventID, senderID int, audience domain.Audience, title, _ string) (int, error) {
	f.lastEventID, f.lastSender, f.lastAudience, f.lastTitle = eventID, senderID, audience, title
	return f.sent, f.err
}

// fakeExporter writes a fixed payload or fails.
type fakeExporter struct {
	payload    string
	err        error
	lastFormat domain.ExportFormat
}

func (f *fakeExporter) ExportRoster(_ context.Context, _ int, format domain.ExportFormat, w io.Writer) error {
	f.lastFormat = format
	if f.err != nil {
		return f.err
	}
	_, err := io.WriteString(w, f.payload)
	return err
}

// fakeNotificationService implements domain.NotificationService for handler tests.
type fakeNotificationService struct {
	domain.NotificationService
	notification  *domain.Notification
	inbox         []*domain.Notification
	err           error
	lastID        string
	lastRecipient int
}

func (f *fakeNotificationService) GetNotification(_ context.Context, id string) (*domain.Notification, error) {
	f.lastID = id
	return f.notification, f.err
}

func (f *fakeNotificationService) MarkRead(_ context.Context, id string) (*domain.Notification, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	f.notification.MarkRead()
	return f.notification, nil
}

func (f *fakeNotificationService) ListForRecipient(_ context.Context, recipientID int) ([]*domain.Notification, error) {
	f.lastRecipient = recipientID
	return f.inbox, f.err
}

func (f *fakeNotificationService) DeleteNotification(_ context.Context, id string) error {
	f.lastID = id
	return f.err
}

// fakeInvitationService implements domain.InvitationService for handler tests.
type fakeInvitationService struct {
	domain.InvitationService
	notification *domain.Notification
	err          error
	lastID       string
	lastAction   domain.ResponseAction
	lastToken    string
}

func (f *fakeInvitationService) Respond(_ context.Context, id string, action domain.ResponseAction) (*domain.Notification, error) {
	f.lastID, f.lastAction = id, action
	return f.notification, f.err
}

func (f *fakeInvitationService) RespondWithToken(_ context.Context, token string) (*domain.Notification, error) {
	f.lastToken = token
	return f.notification, f.err
}

// fakeAuditService implements domain.AuditService for handler tests.
type fakeAuditService struct {
	domain.AuditService
	logs      []*domain.LogEntry
	err       error
	lastCall  string
	lastType  domain.LogType
	lastEvent int
	lastID    string
}

func (f *fakeAuditService) ListLogs(context.Context) ([]*domain.LogEntry, error) {
	f.lastCall = "all"
	return f.logs, f.err
}

func (f *fakeAuditService) ListLogsOfType(_ context.Context, typ domain.LogType) ([]*domain.LogEntry, error) {
	f.lastCall, f.lastType = "type", typ
	return f.logs, f.err
}

func (f *fakeAuditService) ListLogsForEvent(_ context.Context, eventID int) ([]*domain.LogEntry, error) {
	f.lastCall, f.lastEvent = "event", eventID
	return f.logs, f.err
}

func (f *fakeAuditService) MarkAsRead(_ context.Context, id string) (*domain.LogEntry, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return &domain.LogEntry{ID: id, Read: true}, nil
}

func (f *fakeAuditService) DeleteLog(_ context.Context, id string) error {
	f.lastID = id
	return f.err
}

func (f *fakeAuditService) ClearLogs(context.Context) error {
	f.lastCall = "clear"
	return f.err
}
