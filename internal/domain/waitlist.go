package domain

import "slices"

// DefaultWaitlistCapacity is the capacity of a waitlist built with NewWaitlist.
const DefaultWaitlistCapacity = 32768

// Waitlist is a bounded, ordered queue of entrant ids awaiting a spot.
//
// Count is tracked separately from EntrantIDs so administrators can correct it
// with SetCount. Keeping Count <= MaxCapacity is the caller's responsibility.
type Waitlist struct {
	MaxCapacity int   `json:"max_capacity"`
	Count       int   `json:"count"`
	EntrantIDs  []int `json:"entrant_ids"`

	ids map[int]struct{}
}

// NewWaitlist returns an empty waitlist with DefaultWaitlistCapacity.
func NewWaitlist() *Waitlist {
	return NewWaitlistWithCapacity(DefaultWaitlistCapacity)
}

// NewWaitlistWithCapacity returns an empty waitlist holding at most capacity entrants.
func NewWaitlistWithCapacity(capacity int) *Waitlist {
	return &Waitlist{
		MaxCapacity: capacity,
		EntrantIDs:  []int{},
		ids:         make(map[int]struct{}),
	}
}

// index returns the id set, rebuilding it after decoding.
func (w *Waitlist) index() map[int]struct{} {
	if w.ids == nil || len(w.ids) != len(w.EntrantIDs) {
		w.ids = make(map[int]struct{}, len(w.EntrantIDs))
		for _, id := range w.EntrantIDs {
			w.ids[id] = struct{}{}
		}
	}
	return w.ids
}

// Add appends e. It fails with ErrWaitlistFull or ErrDuplicateEntry and leaves the waitlist unchanged.
func (w *Waitlist) Add(e *Entrant) error {
	if w.Count >= w.MaxCapacity {
		return ErrWaitlistFull
	}
	ids := w.index()
	if _, ok := ids[e.ID]; ok {
		return ErrDuplicateEntry
	}
	w.EntrantIDs = append(w.EntrantIDs, e.ID)
	ids[e.ID] = struct{}{}
	w.Count++
	return nil
}

// Remove drops e. It fails with ErrEmptyWaitlist or ErrEntrantNotFound and leaves the waitlist unchanged.
func (w *Waitlist) Remove(e *Entrant) error {
	return w.RemoveID(e.ID)
}

// RemoveID is Remove by entrant id.
func (w *Waitlist) RemoveID(id int) error {
	if w.Count == 0 {
		return ErrEmptyWaitlist
	}
	ids := w.index()
	if _, ok := ids[id]; !ok {
		return ErrEntrantNotFound
	}
	i := slices.Index(w.EntrantIDs, id)
	w.EntrantIDs = slices.Delete(w.EntrantIDs, i, i+1)
	delete(ids, id)
	w.Count--
	return nil
}

// Get returns id and true when the entrant is on the waitlist.
func (w *Waitlist) Get(id int) (int, bool) {
	if _, ok := w.index()[id]; !ok {
		return 0, false
	}
	return id, true
}

// Contains reports whether e is on the waitlist.
func (w *Waitlist) Contains(e *Entrant) bool {
	if e == nil {
		return false
	}
	_, ok := w.Get(e.ID)
	return ok
}

// Position returns the zero-based queue position of id.
func (w *Waitlist) Position(id int) (int, bool) {
	if _, ok := w.index()[id]; !ok {
		return 0, false
	}
	return slices.Index(w.EntrantIDs, id), true
}

// Size returns the number of tracked entrants.
func (w *Waitlist) Size() int {
	return len(w.EntrantIDs)
}

// Clear empties the waitlist and resets Count.
func (w *Waitlist) Clear() {
	w.EntrantIDs = []int{}
	w.ids = make(map[int]struct{})
	w.Count = 0
}

// SetCapacity overrides MaxCapacity.
func (w *Waitlist) SetCapacity(capacity int) {
	w.MaxCapacity = capacity
}

// SetCount overrides Count without re-validating it against MaxCapacity.
func (w *Waitlist) SetCount(count int) {
	w.Count = count
}
