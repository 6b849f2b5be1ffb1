package domain

import (
	"math"
	"time"
)

// EventInfo describes an event. CurrentEntrants is derived from the roster and
// maintained by Event; callers should not set it directly.
type EventInfo struct {
	ID                int       `json:"id"`
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
	CurrentEntrants   int       `json:"current_entrants"`
	OrganizerID       int       `json:"organizer_id"`
	EntrantLoc        bool      `json:"entrant_loc"`
	EntrantDist       string    `json:"entrant_dist"`
	CreatedAt         time.Time `json:"created_at"`
}

// UnlimitedWaiting is the MaxWaiting value used when no waitlist limit is given.
const UnlimitedWaiting = math.MaxInt

// NewEventInfo returns an EventInfo with no entrants. A maxWaiting of zero or less means unlimited.
func NewEventInfo(name, description, location, guidelines, imageURL string,
	eventDate, regStart, regEnd time.Time,
	maxEntrants, maxWaiting, organizerID int,
) *EventInfo {
	if maxWaiting <= 0 {
		maxWaiting = UnlimitedWaiting
	}
	return &EventInfo{
		Name:              name,
		Description:       description,
		Location:          location,
		Guidelines:        guidelines,
		ImageURL:          imageURL,
		EventDate:         eventDate,
		RegistrationStart: regStart,
		RegistrationEnd:   regEnd,
		MaxEntrants:       maxEntrants,
		MaxWaiting:        maxWaiting,
		OrganizerID:       organizerID,
	}
}

// Validate checks the fields every event needs regardless of creation path.
func (i *EventInfo) Validate() error {
	if i.Name == "" || i.MaxEntrants < 0 || i.MaxWaiting < 0 {
		return ErrInvalidInput
	}
	return nil
}

// ValidateTimes enforces registrationStart < registrationEnd < eventDate with
// every timestamp at or after now. Used on the validated creation path only.
func (i *EventInfo) ValidateTimes(now time.Time) error {
	if i.RegistrationStart.Before(now) || i.RegistrationEnd.Before(now) || i.EventDate.Before(now) {
		return ErrInvalidTimes
	}
	if !i.RegistrationStart.Before(i.RegistrationEnd) || !i.RegistrationEnd.Before(i.EventDate) {
		return ErrInvalidTimes
	}
	return nil
}

// RegistrationOpen reports whether at falls inside the registration window.
func (i *EventInfo) RegistrationOpen(at time.Time) bool {
	return !at.Before(i.RegistrationStart) && at.Before(i.RegistrationEnd)
}
