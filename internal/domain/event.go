package domain

import (
	"context"
	"slices"
	"time"
)

// LotteryState is an event's position in the draw lifecycle.
type LotteryState string

const (
	LotteryStateOpen  LotteryState = "open"
	LotteryStateDrawn LotteryState = "drawn"
)

// Event owns a confirmed roster and a waitlist, both held as entrant ids.
// An entrant id is in at most one of the two at any time.
type Event struct {
	Info         EventInfo  `json:"info"`
	EntrantIDs   []int      `json:"entrant_ids"`
	Waitlist     Waitlist   `json:"waitlist"`
	CancelledIDs []int      `json:"cancelled_ids"`
	LotteryRuns  int        `json:"lottery_runs"`
	LastDrawAt   *time.Time `json:"last_draw_at,omitempty"`
}

// NewEvent returns an event with an empty roster and a waitlist sized by info.MaxWaiting.
func NewEvent(info EventInfo) *Event {
	if info.MaxWaiting <= 0 {
		info.MaxWaiting = UnlimitedWaiting
	}
	info.CurrentEntrants = 0
	return &Event{
		Info:         info,
		EntrantIDs:   []int{},
		Waitlist:     *NewWaitlistWithCapacity(info.MaxWaiting),
		CancelledIDs: []int{},
	}
}

// ID returns the event id.
func (e *Event) ID() int {
	return e.Info.ID
}

// IsConfirmed reports whether id is on the roster.
func (e *Event) IsConfirmed(id int) bool {
	return slices.Contains(e.EntrantIDs, id)
}

// IsWaitlisted reports whether id is on the waitlist.
func (e *Event) IsWaitlisted(id int) bool {
	_, ok := e.Waitlist.Get(id)
	return ok
}

// IsMember reports whether id is on the roster or the waitlist.
func (e *Event) IsMember(id int) bool {
	return e.IsConfirmed(id) || e.IsWaitlisted(id)
}

// RemainingCapacity returns how many roster spots are free.
func (e *Event) RemainingCapacity() int {
	return e.Info.MaxEntrants - len(e.EntrantIDs)
}

// State returns LotteryStateDrawn once a lottery has run.
func (e *Event) State() LotteryState {
	if e.LotteryRuns > 0 {
		return LotteryStateDrawn
	}
	return LotteryStateOpen
}

// AddEntrant confirms en. It fails with ErrEventFull or ErrDuplicateEntry without
// changing the event. A waitlisted entrant is moved off the waitlist.
func (e *Event) AddEntrant(en *Entrant) error {
	if len(e.EntrantIDs) >= e.Info.MaxEntrants {
		return ErrEventFull
	}
	if e.IsConfirmed(en.ID) {
		return ErrDuplicateEntry
	}
	if e.IsWaitlisted(en.ID) {
		if err := e.Waitlist.RemoveID(en.ID); err != nil {
			return err
		}
	}
	e.EntrantIDs = append(e.EntrantIDs, en.ID)
	e.Info.CurrentEntrants++
	e.CancelledIDs = deleteID(e.CancelledIDs, en.ID)
	return nil
}

// RemoveEntrant drops en from the roster. It fails with ErrEntrantNotFound when en is not confirmed.
func (e *Event) RemoveEntrant(en *Entrant) error {
	return e.RemoveEntrantID(en.ID)
}

// RemoveEntrantID is RemoveEntrant by id.
func (e *Event) RemoveEntrantID(id int) error {
	i := slices.Index(e.EntrantIDs, id)
	if i < 0 {
		return ErrEntrantNotFound
	}
	e.EntrantIDs = slices.Delete(e.EntrantIDs, i, i+1)
	e.Info.CurrentEntrants--
	return nil
}

// AddEntrantToWaitlist queues en. Confirmed entrants are rejected with ErrAlreadyConfirmed;
// otherwise the waitlist's own errors apply.
func (e *Event) AddEntrantToWaitlist(en *Entrant) error {
	if e.IsConfirmed(en.ID) {
		return ErrAlreadyConfirmed
	}
	return e.Waitlist.Add(en)
}

// RemoveEntrantFromWaitlist drops en from the waitlist.
func (e *Event) RemoveEntrantFromWaitlist(en *Entrant) error {
	return e.Waitlist.Remove(en)
}

// Cancel removes id from the roster and waitlist and records it as cancelled.
func (e *Event) Cancel(id int) {
	e.Forget(id)
	if !slices.Contains(e.CancelledIDs, id) {
		e.CancelledIDs = append(e.CancelledIDs, id)
	}
}

// Forget removes every trace of id from the roster, waitlist and cancelled list.
// It reports whether the roster or waitlist changed.
func (e *Event) Forget(id int) bool {
	changed := false
	if e.RemoveEntrantID(id) == nil {
		changed = true
	}
	if e.Waitlist.RemoveID(id) == nil {
		changed = true
	}
	e.CancelledIDs = deleteID(e.CancelledIDs, id)
	return changed
}

// SetInfo replaces the descriptive fields. The id and derived entrant count are kept,
// and a MaxEntrants below the current roster size is rejected.
func (e *Event) SetInfo(info EventInfo) error {
	if info.MaxEntrants < len(e.EntrantIDs) {
		return ErrInvalidInput
	}
	if info.MaxWaiting <= 0 {
		info.MaxWaiting = UnlimitedWaiting
	}
	info.ID = e.Info.ID
	info.CurrentEntrants = e.Info.CurrentEntrants
	info.CreatedAt = e.Info.CreatedAt
	e.Info = info
	e.Waitlist.SetCapacity(info.MaxWaiting)
	return nil
}

// Compare orders events by event date, earliest first.
func (e *Event) Compare(other *Event) int {
	return e.Info.EventDate.Compare(other.Info.EventDate)
}

// Equal reports whether both events have the same id.
func (e *Event) Equal(other *Event) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.Info.ID == other.Info.ID
}

func deleteID(ids []int, id int) []int {
	return slices.DeleteFunc(ids, func(v int) bool { return v == id })
}

// LotteryResult is the outcome of one draw.
type LotteryResult struct {
	EventID int   `json:"event_id"`
	Winners []int `json:"winners"`
	Losers  []int `json:"losers"`
}

// EventTimeFilter selects events relative to now by event date.
type EventTimeFilter string

const (
	EventsAll    EventTimeFilter = "all"
	EventsFuture EventTimeFilter = "future"
	EventsPast   EventTimeFilter = "past"
)

// Audience selects which members of an event receive a broadcast.
type Audience string

const (
	AudienceConfirmed Audience = "confirmed"
	AudienceWaitlist  Audience = "waitlist"
	AudienceAll       Audience = "all"
)

// EventQuery filters events. Zero values are ignored.
type EventQuery struct {
	Name        string
	Location    string
	From        *time.Time
	To          *time.Time
	OrganizerID int
	EntrantID   int
	FutureOnly  bool
}

// EventRepository persists events.
type EventRepository interface {
	Get(ctx context.Context, id int) (*Event, error)
	Put(ctx context.Context, e *Event) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context) ([]*Event, error)
	NextID(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}

// EventService orchestrates events, memberships and lottery draws.
type EventService interface {
	CreateEvent(ctx context.Context, info EventInfo, validate bool) (*Event, error)
	GetEvent(ctx context.Context, id int) (*Event, error)
	UpdateEvent(ctx context.Context, id int, info EventInfo) (*Event, error)
	DeleteEvent(ctx context.Context, id int) error
	ListEvents(ctx context.Context) ([]*Event, error)
	ListFutureEvents(ctx context.Context) ([]*Event, error)
	ListEventsByOrganizer(ctx context.Context, organizerID int) ([]*Event, error)
	SearchEvents(ctx context.Context, q EventQuery) ([]*Event, error)
	NextEventID(ctx context.Context) (int, error)

	AddEntrant(ctx context.Context, eventID, entrantID int) error
	RemoveEntrant(ctx context.Context, eventID, entrantID int) error
	AddEntrants(ctx context.Context, eventID int, entrantIDs []int) error
	RemoveEntrants(ctx context.Context, eventID int, entrantIDs []int) error
	AddToWaitlist(ctx context.Context, eventID, entrantID int) error
	RemoveFromWaitlist(ctx context.Context, eventID, entrantID int) error
	GetRoster(ctx context.Context, eventID int) ([]*Entrant, error)
	GetWaitlist(ctx context.Context, eventID int) ([]*Entrant, error)
	GetEventsForEntrant(ctx context.Context, entrantID int, when EventTimeFilter) ([]*Event, error)

	RunLottery(ctx context.Context, eventID int) (*LotteryResult, error)
	NotifyEntrants(ctx context.Context, eventID, senderID int, audience Audience, title, body string) (int, error)
}
