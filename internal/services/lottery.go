package services

import (
	"context"
	"fmt"

	"eventlottery/internal/domain"
)

// RunLottery fills the event's free roster spots from its waitlist.
//
// The whole draw is computed in memory and written back with a single Put. Winners
// are invited and the remaining waitlist is told it was not selected only after that
// write succeeds. Sends are best-effort and never undo the draw.
func (s *eventService) RunLottery(ctx context.Context, eventID int) (*domain.LotteryResult, error) {
	ev, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev.Waitlist.Count == 0 || ev.Waitlist.Size() == 0 {
		return nil, domain.ErrEmptyWaitlist
	}
	remaining := ev.RemainingCapacity()
	if remaining <= 0 {
		return nil, domain.ErrEventFull
	}

	n := min(remaining, ev.Waitlist.Size())
	winners, losers := s.drawer.Draw(ev.Waitlist.EntrantIDs, n)
	for _, id := range winners {
		if err := ev.AddEntrant(domain.NewEntrant(id, domain.Profile{})); err != nil {
			return nil, fmt.Errorf("confirm winner %d: %w", id, err)
		}
	}
	drawnAt := s.now()
	ev.LotteryRuns++
	ev.LastDrawAt = &drawnAt

	if err := s.events.Put(ctx, ev); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	// The draw is stored; its audit entry and notices must not depend on the caller staying.
	ctx = context.WithoutCancel(ctx)

	s.audit.Record(ctx, domain.LogLotteryRun,
		fmt.Sprintf("%d selected, %d not selected", len(winners), len(losers)), eventID, 0)
	sendBestEffort(ctx, s.logger, s.notifications, domain.NotificationTypeInvitation,
		"You've been selected",
		fmt.Sprintf("You won a spot at %s. Please accept or decline your invitation.", ev.Info.Name),
		winners, ev.Info.OrganizerID, eventID)
	sendBestEffort(ctx, s.logger, s.notifications, domain.NotificationTypeNotSelected,
		"Not selected this time",
		fmt.Sprintf("You were not selected for %s. You remain on the waitlist in case a spot opens.", ev.Info.Name),
		losers, ev.Info.OrganizerID, eventID)

	return &domain.LotteryResult{EventID: eventID, Winners: winners, Losers: losers}, nil
}
