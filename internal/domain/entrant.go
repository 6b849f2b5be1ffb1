package domain

import (
	"context"
	"slices"
)

// Profile holds an entrant's contact details and notification preference.
type Profile struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	SendNotifications bool   `json:"send_notifications"`
}

// Entrant is a person who can join event waitlists and rosters.
// ParentID 0 marks a root entrant; a non-zero ParentID puts the entrant in that entrant's family group.
type Entrant struct {
	ID            int     `json:"id"`
	Profile       Profile `json:"profile"`
	DeviceID      string  `json:"device_id,omitempty"`
	ParentID      int     `json:"parent_id"`
	SubEntrantIDs []int   `json:"sub_entrant_ids"`
}

// NewEntrant returns a root entrant with the given id and profile.
func NewEntrant(id int, profile Profile) *Entrant {
	return &Entrant{
		ID:            id,
		Profile:       profile,
		SubEntrantIDs: []int{},
	}
}

// NewSubEntrant returns an entrant grouped under parent. It fails with ErrInvalidParent
// when parent is itself a sub-entrant, so family groups are never more than one level deep.
func NewSubEntrant(id int, profile Profile, parent *Entrant) (*Entrant, error) {
	if parent == nil {
		return nil, ErrEntrantNotFound
	}
	if parent.ParentID != 0 {
		return nil, ErrInvalidParent
	}
	e := NewEntrant(id, profile)
	e.ParentID = parent.ID
	return e, nil
}

// IsSubEntrant reports whether the entrant belongs to another entrant's group.
func (e *Entrant) IsSubEntrant() bool {
	return e.ParentID != 0
}

// AddSubEntrant links child to e. The child must already point at e.
func (e *Entrant) AddSubEntrant(child *Entrant) error {
	if e.ParentID != 0 {
		return ErrInvalidParent
	}
	if child.ParentID != e.ID || child.ID == e.ID {
		return ErrInvalidInput
	}
	if slices.Contains(e.SubEntrantIDs, child.ID) {
		return ErrDuplicateEntry
	}
	e.SubEntrantIDs = append(e.SubEntrantIDs, child.ID)
	return nil
}

// RemoveSubEntrant unlinks id and reports whether it was linked.
func (e *Entrant) RemoveSubEntrant(id int) bool {
	i := slices.Index(e.SubEntrantIDs, id)
	if i < 0 {
		return false
	}
	e.SubEntrantIDs = slices.Delete(e.SubEntrantIDs, i, i+1)
	return true
}

// Validate checks the family-group invariant on a fully built entrant.
func (e *Entrant) Validate() error {
	if e.ParentID != 0 && len(e.SubEntrantIDs) > 0 {
		return ErrInvalidParent
	}
	if e.ParentID != 0 && e.ParentID == e.ID {
		return ErrInvalidParent
	}
	return nil
}

// EntrantRepository persists entrants.
type EntrantRepository interface {
	Get(ctx context.Context, id int) (*Entrant, error)
	Put(ctx context.Context, e *Entrant) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context) ([]*Entrant, error)
	NextID(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}

// EntrantService is the entrant-facing use case surface.
type EntrantService interface {
	CreateEntrant(ctx context.Context, profile Profile, deviceID string) (*Entrant, error)
	CreateSubEntrant(ctx context.Context, parentID int, profile Profile) (*Entrant, error)
	GetEntrant(ctx context.Context, id int) (*Entrant, error)
	GetEntrantByDeviceID(ctx context.Context, deviceID string) (*Entrant, error)
	GetEntrants(ctx context.Context, ids []int) ([]*Entrant, error)
	ListEntrants(ctx context.Context) ([]*Entrant, error)
	UpdateEntrant(ctx context.Context, id int, profile Profile) (*Entrant, error)
	DeleteEntrant(ctx context.Context, id int) error
	NextEntrantID(ctx context.Context) (int, error)
}
