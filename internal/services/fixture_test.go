package services

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"eventlottery/internal/domain"
	"eventlottery/internal/lottery"
	"eventlottery/internal/repository"
	"eventlottery/internal/repository/memory"

	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

// flakyStore wraps a store and fails Put for selected collections. onPut, when set,
// runs before every Put and can fail it.
type flakyStore struct {
	domain.Store
	mu      sync.Mutex
	failPut map[string]error
	onPut   func(collection, id string) error
}

func (s *flakyStore) failPutsTo(collection string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failPut[collection] = err
}

func (s *flakyStore) setOnPut(hook func(collection, id string) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onPut = hook
}

func (s *flakyStore) Put(ctx context.Context, collection, id string, doc []byte) error {
	s.mu.Lock()
	err := s.failPut[collection]
	hook := s.onPut
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if hook != nil {
		if err := hook(collection, id); err != nil {
			return err
		}
	}
	return s.Store.Put(ctx, collection, id, doc)
}

// recordingDeliverer captures deliveries and optionally fails them.
type recordingDeliverer struct {
	mu         sync.Mutex
	delivered  []*domain.Notification
	recipients []*domain.Entrant
	err        error
}

func (d *recordingDeliverer) Deliver(ctx context.Context, n *domain.Notification, recipient *domain.Entrant) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.delivered = append(d.delivered, n)
	d.recipients = append(d.recipients, recipient)
	return d.err
}

func (d *recordingDeliverer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.delivered)
}

// fakeTokens issues "<id>|<action>" and parses it back.
type fakeTokens struct {
	issueErr error
}

func (f *fakeTokens) Issue(notificationID string, action domain.ResponseAction) (string, error) {
	if f.issueErr != nil {
		return "", f.issueErr
	}
	return notificationID + "|" + string(action), nil
}

func (f *fakeTokens) Parse(token string) (string, domain.ResponseAction, error) {
	id, action, ok := strings.Cut(token, "|")
	if !ok {
		return "", "", domain.ErrInvalidToken
	}
	return id, domain.ResponseAction(action), nil
}

type fixture struct {
	store         *flakyStore
	cols          repository.Collections
	entrants      domain.EntrantRepository
	events        domain.EventRepository
	audit         domain.AuditService
	deliverer     *recordingDeliverer
	notifications domain.NotificationService
	entrantSvc    domain.EntrantService
	eventSvc      domain.EventService
	invitations   domain.InvitationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := &flakyStore{Store: memory.NewStore(), failPut: map[string]error{}}
	cols := repository.NewCollections("test_")
	f := &fixture{
		store:     store,
		cols:      cols,
		entrants:  repository.NewEntrantRepository(store, cols),
		events:    repository.NewEventRepository(store, cols),
		deliverer: &recordingDeliverer{},
	}
	f.audit = NewAuditService(repository.NewLogRepository(store, cols), testLogger)
	f.notifications = NewNotificationService(repository.NewNotificationRepository(store, cols), f.entrants, f.audit, f.deliverer, testLogger)
	f.entrantSvc = NewEntrantService(f.entrants, f.events, f.audit, testLogger)
	f.eventSvc = NewEventService(f.events, f.entrants, f.notifications, f.audit, lottery.NewEngine(1), testLogger)
	f.invitations = NewInvitationService(f.notifications, f.events, f.audit, &fakeTokens{}, testLogger)
	return f
}

func (f *fixture) entrant(t *testing.T, name string) *domain.Entrant {
	t.Helper()
	e, err := f.entrantSvc.CreateEntrant(context.Background(), domain.Profile{Name: name, Email: strings.ToLower(name) + "@example.com", SendNotifications: true}, "")
	require.NoError(t, err)
	return e
}

// event creates an unvalidated event dated offset from now.
func (f *fixture) event(t *testing.T, name string, maxEntrants, maxWaiting int, offset time.Duration) *domain.Event {
	t.Helper()
	date := time.Now().Add(offset)
	info := domain.NewEventInfo(name, "", "Community Centre", "", "", date, date.Add(-72*time.Hour), date.Add(-48*time.Hour), maxEntrants, maxWaiting, 500)
	ev, err := f.eventSvc.CreateEvent(context.Background(), *info, false)
	require.NoError(t, err)
	return ev
}

func (f *fixture) inbox(t *testing.T, entrantID int) []*domain.Notification {
	t.Helper()
	list, err := f.notifications.ListForRecipient(context.Background(), entrantID)
	require.NoError(t, err)
	return list
}

func (f *fixture) reload(t *testing.T, eventID int) *domain.Event {
	t.Helper()
	ev, err := f.eventSvc.GetEvent(context.Background(), eventID)
	require.NoError(t, err)
	return ev
}

func countOfType(list []*domain.Notification, typ domain.NotificationType) int {
	n := 0
	for _, item := range list {
		if item.Type == typ {
			n++
		}
	}
	return n
}
