package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"eventlottery/internal/domain"
)

// Drawer partitions entrant ids into n winners and the remaining losers.
type Drawer interface {
	Draw(entrantIDs []int, n int) (winners, losers []int)
}

type eventService struct {
	events        domain.EventRepository
	entrants      domain.EntrantRepository
	notifications domain.NotificationService
	audit         domain.AuditService
	drawer        Drawer
	logger        *slog.Logger
	now           func() time.Time
}

func NewEventService(
	events domain.EventRepository,
	entrants domain.EntrantRepository,
	notifications domain.NotificationService,
	audit domain.AuditService,
	drawer Drawer,
	logger *slog.Logger,
) domain.EventService {
	return &eventService{
		events:        events,
		entrants:      entrants,
		notifications: notifications,
		audit:         audit,
		drawer:        drawer,
		logger:        logger,
		now:           time.Now,
	}
}

// CreateEvent stores a new event. With validate set, the registration window must
// satisfy start < end < event date with no timestamp in the past.
func (s *eventService) CreateEvent(ctx context.Context, info domain.EventInfo, validate bool) (*domain.Event, error) {
	if err := info.Validate(); err != nil {
		return nil, err
	}
	now := s.now()
	if validate {
		if err := info.ValidateTimes(now); err != nil {
			return nil, err
		}
	}
	id, err := s.events.NextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("next event id: %w", err)
	}
	info.ID = id
	info.CreatedAt = now
	ev := domain.NewEvent(info)
	if err := s.events.Put(ctx, ev); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.audit.Record(ctx, domain.LogEventCreated, ev.Info.Name, ev.ID(), 0)
	return ev, nil
}

func (s *eventService) GetEvent(ctx context.Context, id int) (*domain.Event, error) {
	ev, err := s.events.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return ev, nil
}

// UpdateEvent replaces the event's descriptive fields; membership is kept.
func (s *eventService) UpdateEvent(ctx context.Context, id int, info domain.EventInfo) (*domain.Event, error) {
	if err := info.Validate(); err != nil {
		return nil, err
	}
	ev, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ev.SetInfo(info); err != nil {
		return nil, err
	}
	if err := s.events.Put(ctx, ev); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	s.audit.Record(ctx, domain.LogEventUpdated, ev.Info.Name, ev.ID(), 0)
	return ev, nil
}

// DeleteEvent deletes the event and sends a cancellation notice to confirmed entrants.
// Waitlisted-only entrants are not notified; their membership is discarded with the event.
func (s *eventService) DeleteEvent(ctx context.Context, id int) error {
	ev, err := s.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	if err := s.events.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	s.audit.Record(ctx, domain.LogEventDeleted, ev.Info.Name, id, 0)
	sendBestEffort(ctx, s.logger, s.notifications, domain.NotificationTypeNotification,
		"Event cancelled",
		fmt.Sprintf("%s has been cancelled.", ev.Info.Name),
		ev.EntrantIDs, ev.Info.OrganizerID, id)
	return nil
}

func (s *eventService) ListEvents(ctx context.Context) ([]*domain.Event, error) {
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

// ListFutureEvents returns events dated after now, soonest first.
func (s *eventService) ListFutureEvents(ctx context.Context) ([]*domain.Event, error) {
	return s.SearchEvents(ctx, domain.EventQuery{FutureOnly: true})
}

func (s *eventService) ListEventsByOrganizer(ctx context.Context, organizerID int) ([]*domain.Event, error) {
	return s.SearchEvents(ctx, domain.EventQuery{OrganizerID: organizerID})
}

// SearchEvents applies every non-zero filter in q and orders matches by event date.
// Name and location match case-insensitively on substrings; From and To are inclusive.
func (s *eventService) SearchEvents(ctx context.Context, q domain.EventQuery) ([]*domain.Event, error) {
	events, err := s.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]*domain.Event, 0, len(events))
	for _, ev := range events {
		if matchesQuery(ev, q, now) {
			out = append(out, ev)
		}
	}
	slices.SortStableFunc(out, (*domain.Event).Compare)
	return out, nil
}

func matchesQuery(ev *domain.Event, q domain.EventQuery, now time.Time) bool {
	info := ev.Info
	if q.Name != "" && !containsFold(info.Name, q.Name) {
		return false
	}
	if q.Location != "" && !containsFold(info.Location, q.Location) {
		return false
	}
	if q.From != nil && info.EventDate.Before(*q.From) {
		return false
	}
	if q.To != nil && info.EventDate.After(*q.To) {
		return false
	}
	if q.OrganizerID != 0 && info.OrganizerID != q.OrganizerID {
		return false
	}
	if q.EntrantID != 0 && !ev.IsMember(q.EntrantID) {
		return false
	}
	if q.FutureOnly && !info.EventDate.After(now) {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func (s *eventService) NextEventID(ctx context.Context) (int, error) {
	id, err := s.events.NextID(ctx)
	if err != nil {
		return 0, fmt.Errorf("next event id: %w", err)
	}
	return id, nil
}

// AddEntrant confirms an entrant, moving them off the waitlist if queued.
func (s *eventService) AddEntrant(ctx context.Context, eventID, entrantID int) error {
	return s.AddEntrants(ctx, eventID, []int{entrantID})
}

func (s *eventService) RemoveEntrant(ctx context.Context, eventID, entrantID int) error {
	return s.RemoveEntrants(ctx, eventID, []int{entrantID})
}

// AddEntrants confirms every id or none: the event is written once, after all adds succeed.
func (s *eventService) AddEntrants(ctx context.Context, eventID int, entrantIDs []int) error {
	ev, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	members, err := loadEntrants(ctx, s.entrants, entrantIDs)
	if err != nil {
		return err
	}
	for _, en := range members {
		if err := ev.AddEntrant(en); err != nil {
			return fmt.Errorf("add entrant %d: %w", en.ID, err)
		}
	}
	if err := s.events.Put(ctx, ev); err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	for _, en := range members {
		s.audit.Record(ctx, domain.LogEntrantJoined, "entrant confirmed", eventID, en.ID)
	}
	return nil
}

// RemoveEntrants drops every id from the roster or none.
func (s *eventService) RemoveEntrants(ctx context.Context, eventID int, entrantIDs []int) error {
	ev, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	for _, id := range entrantIDs {
		if err := ev.RemoveEntrantID(id); err != nil {
			return fmt.Errorf("remove entrant %d: %w", id, err)
		}
	}
	if err := s.events.Put(ctx, ev); err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	for _, id := range entrantIDs {
		s.audit.Record(ctx, domain.LogEntrantLeft, "entrant removed", eventID, id)
	}
	return nil
}

func (s *eventService) AddToWaitlist(ctx context.Context, eventID, entrantID int) error {
	ev, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	en, err := s.entrants.Get(ctx, entrantID)
	if err != nil {
		return fmt.Errorf("get entrant: %w", err)
	}
	if err := ev.AddEntrantToWaitlist(en); err != nil {
		return err
	}
	if err := s.events.Put(ctx, ev); err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	s.audit.Record(ctx, domain.LogWaitlistModified, "entrant joined waitlist", eventID, entrantID)
	return nil
}

func (s *eventService) RemoveFromWaitlist(ctx context.Context, eventID, entrantID int) error {
	ev, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if err := ev.Waitlist.RemoveID(entrantID); err != nil {
		return err
	}
	if err := s.events.Put(ctx, ev); err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	s.audit.Record(ctx, domain.LogWaitlistModified, "entrant left waitlist", eventID, entrantID)
	return nil
}

// GetRoster returns the confirmed entrants in join order.
func (s *eventService) GetRoster(ctx context.Context, eventID int) ([]*domain.Entrant, error) {
	ev, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return loadEntrants(ctx, s.entrants, ev.EntrantIDs)
}

// GetWaitlist returns the waitlisted entrants in queue order.
func (s *eventService) GetWaitlist(ctx context.Context, eventID int) ([]*domain.Entrant, error) {
	ev, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return loadEntrants(ctx, s.entrants, ev.Waitlist.EntrantIDs)
}

// GetEventsForEntrant returns events where the entrant is confirmed or waitlisted.
func (s *eventService) GetEventsForEntrant(ctx context.Context, entrantID int, when domain.EventTimeFilter) ([]*domain.Event, error) {
	events, err := s.SearchEvents(ctx, domain.EventQuery{EntrantID: entrantID})
	if err != nil {
		return nil, err
	}
	now := s.now()
	switch when {
	case domain.EventsAll, "":
		return events, nil
	case domain.EventsFuture:
		return slices.DeleteFunc(events, func(ev *domain.Event) bool { return !ev.Info.EventDate.After(now) }), nil
	case domain.EventsPast:
		return slices.DeleteFunc(events, func(ev *domain.Event) bool { return ev.Info.EventDate.After(now) }), nil
	default:
		return nil, fmt.Errorf("event filter %q: %w", when, domain.ErrInvalidInput)
	}
}

// NotifyEntrants sends a plain notification to the chosen audience and returns how many were stored.
// It fails only when no recipient could be reached.
func (s *eventService) NotifyEntrants(ctx context.Context, eventID, senderID int, audience domain.Audience, title, body string) (int, error) {
	if title == "" {
		return 0, fmt.Errorf("title: %w", domain.ErrInvalidInput)
	}
	ev, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return 0, err
	}
	var recipients []int
	switch audience {
	case domain.AudienceConfirmed:
		recipients = slices.Clone(ev.EntrantIDs)
	case domain.AudienceWaitlist:
		recipients = slices.Clone(ev.Waitlist.EntrantIDs)
	case domain.AudienceAll, "":
		recipients = append(slices.Clone(ev.EntrantIDs), ev.Waitlist.EntrantIDs...)
	default:
		return 0, fmt.Errorf("audience %q: %w", audience, domain.ErrInvalidInput)
	}
	err = s.notifications.SendBulk(ctx, domain.NotificationTypeNotification, title, body, recipients, senderID, eventID)
	failed := failedSends(err)
	if err != nil && failed >= len(recipients) {
		return 0, fmt.Errorf("send notifications: %w", err)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "broadcast partially failed", "event_id", eventID, "failed", failed, "err", err)
	}
	return len(recipients) - failed, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
