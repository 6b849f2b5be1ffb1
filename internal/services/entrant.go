package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"eventlottery/internal/domain"
)

// fetchLimit caps concurrent repository calls in fan-out reads and writes.
const fetchLimit = 8

type entrantService struct {
	entrants domain.EntrantRepository
	events   domain.EventRepository
	audit    domain.AuditService
	logger   *slog.Logger

	// deviceMu serializes the device check and the write in CreateEntrant.
	deviceMu sync.Mutex
}

func NewEntrantService(entrants domain.EntrantRepository, events domain.EventRepository, audit domain.AuditService, logger *slog.Logger) domain.EntrantService {
	return &entrantService{entrants: entrants, events: events, audit: audit, logger: logger}
}

// CreateEntrant allocates an id and stores a root entrant. A non-empty deviceID must be unused;
// uniqueness holds within one process.
func (s *entrantService) CreateEntrant(ctx context.Context, profile domain.Profile, deviceID string) (*domain.Entrant, error) {
	if deviceID != "" {
		s.deviceMu.Lock()
		defer s.deviceMu.Unlock()
		_, err := s.GetEntrantByDeviceID(ctx, deviceID)
		if err == nil {
			return nil, fmt.Errorf("device %q: %w", deviceID, domain.ErrDuplicateEntry)
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	id, err := s.entrants.NextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("next entrant id: %w", err)
	}
	e := domain.NewEntrant(id, profile)
	e.DeviceID = deviceID
	if err := s.entrants.Put(ctx, e); err != nil {
		return nil, fmt.Errorf("create entrant: %w", err)
	}
	return e, nil
}

// CreateSubEntrant stores a child under parentID. The parent rule is checked before
// an id is allocated, so nothing is written when it fails.
func (s *entrantService) CreateSubEntrant(ctx context.Context, parentID int, profile domain.Profile) (*domain.Entrant, error) {
	parent, err := s.GetEntrant(ctx, parentID)
	if err != nil {
		return nil, err
	}
	child, err := domain.NewSubEntrant(0, profile, parent)
	if err != nil {
		return nil, err
	}
	id, err := s.entrants.NextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("next entrant id: %w", err)
	}
	child.ID = id
	if err := parent.AddSubEntrant(child); err != nil {
		return nil, err
	}
	if err := s.entrants.Put(ctx, child); err != nil {
		return nil, fmt.Errorf("create entrant: %w", err)
	}
	if err := s.entrants.Put(ctx, parent); err != nil {
		err = fmt.Errorf("update parent entrant: %w", err)
		if derr := s.entrants.Delete(ctx, child.ID); derr != nil {
			return nil, errors.Join(err, fmt.Errorf("remove orphaned sub-entrant %d: %w", child.ID, derr))
		}
		return nil, err
	}
	return child, nil
}

func (s *entrantService) GetEntrant(ctx context.Context, id int) (*domain.Entrant, error) {
	e, err := s.entrants.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get entrant: %w", err)
	}
	return e, nil
}

func (s *entrantService) GetEntrantByDeviceID(ctx context.Context, deviceID string) (*domain.Entrant, error) {
	all, err := s.entrants.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entrants: %w", err)
	}
	for _, e := range all {
		if e.DeviceID == deviceID {
			return e, nil
		}
	}
	return nil, domain.ErrEntrantNotFound
}

// GetEntrants resolves ids concurrently and keeps their order. Any missing id fails the call.
func (s *entrantService) GetEntrants(ctx context.Context, ids []int) ([]*domain.Entrant, error) {
	return loadEntrants(ctx, s.entrants, ids)
}

func (s *entrantService) ListEntrants(ctx context.Context) ([]*domain.Entrant, error) {
	all, err := s.entrants.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entrants: %w", err)
	}
	if all == nil {
		all = []*domain.Entrant{}
	}
	return all, nil
}

func (s *entrantService) UpdateEntrant(ctx context.Context, id int, profile domain.Profile) (*domain.Entrant, error) {
	e, err := s.GetEntrant(ctx, id)
	if err != nil {
		return nil, err
	}
	e.Profile = profile
	if err := s.entrants.Put(ctx, e); err != nil {
		return nil, fmt.Errorf("update entrant: %w", err)
	}
	return e, nil
}

// DeleteEntrant removes the entrant from every event roster and waitlist it appears on,
// fixes up its family group and then deletes the record. No notifications are sent.
func (s *entrantService) DeleteEntrant(ctx context.Context, id int) error {
	e, err := s.GetEntrant(ctx, id)
	if err != nil {
		return err
	}
	if err := s.sweepEvents(ctx, id); err != nil {
		return err
	}
	if err := s.detachFamily(ctx, e); err != nil {
		return err
	}
	if err := s.entrants.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete entrant: %w", err)
	}
	return nil
}

func (s *entrantService) sweepEvents(ctx context.Context, entrantID int) error {
	events, err := s.events.List(ctx)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchLimit)
	for _, ev := range events {
		if !ev.Forget(entrantID) {
			continue
		}
		g.Go(func() error {
			if err := s.events.Put(gctx, ev); err != nil {
				return fmt.Errorf("update event %d: %w", ev.ID(), err)
			}
			s.audit.Record(gctx, domain.LogEntrantLeft, "entrant deleted", ev.ID(), entrantID)
			return nil
		})
	}
	return g.Wait()
}

// detachFamily unlinks a child from its parent, or promotes a parent's children to roots.
func (s *entrantService) detachFamily(ctx context.Context, e *domain.Entrant) error {
	if e.IsSubEntrant() {
		parent, err := s.entrants.Get(ctx, e.ParentID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get parent entrant: %w", err)
		}
		if parent.RemoveSubEntrant(e.ID) {
			if err := s.entrants.Put(ctx, parent); err != nil {
				return fmt.Errorf("update parent entrant: %w", err)
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchLimit)
	for _, childID := range e.SubEntrantIDs {
		g.Go(func() error {
			child, err := s.entrants.Get(gctx, childID)
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("get sub-entrant: %w", err)
			}
			child.ParentID = 0
			if err := s.entrants.Put(gctx, child); err != nil {
				return fmt.Errorf("update sub-entrant: %w", err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *entrantService) NextEntrantID(ctx context.Context) (int, error) {
	id, err := s.entrants.NextID(ctx)
	if err != nil {
		return 0, fmt.Errorf("next entrant id: %w", err)
	}
	return id, nil
}

// loadEntrants fetches ids concurrently, preserving order.
func loadEntrants(ctx context.Context, repo domain.EntrantRepository, ids []int) ([]*domain.Entrant, error) {
	out := make([]*domain.Entrant, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchLimit)
	for i, id := range ids {
		g.Go(func() error {
			e, err := repo.Get(gctx, id)
			if err != nil {
				return fmt.Errorf("get entrant %d: %w", id, err)
			}
			out[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
