package services

import (
	"context"
	"fmt"
	"log/slog"

	"eventlottery/internal/domain"
)

type invitationService struct {
	notifications domain.NotificationService
	events        domain.EventRepository
	audit         domain.AuditService
	tokens        domain.ResponseTokenIssuer
	logger        *slog.Logger
}

func NewInvitationService(
	notifications domain.NotificationService,
	events domain.EventRepository,
	audit domain.AuditService,
	tokens domain.ResponseTokenIssuer,
	logger *slog.Logger,
) domain.InvitationService {
	return &invitationService{
		notifications: notifications,
		events:        events,
		audit:         audit,
		tokens:        tokens,
		logger:        logger,
	}
}

func (s *invitationService) AcceptInvitation(ctx context.Context, notificationID string) (*domain.Notification, error) {
	n, err := s.notifications.GetNotification(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	return s.accept(ctx, n)
}

func (s *invitationService) DeclineInvitation(ctx context.Context, notificationID string) (*domain.Notification, error) {
	n, err := s.notifications.GetNotification(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	return s.decline(ctx, n)
}

func (s *invitationService) StayOnWaitlist(ctx context.Context, notificationID string) (*domain.Notification, error) {
	n, err := s.notifications.GetNotification(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	return s.stay(ctx, n)
}

func (s *invitationService) LeaveWaitlist(ctx context.Context, notificationID string) (*domain.Notification, error) {
	n, err := s.notifications.GetNotification(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	return s.leave(ctx, n)
}

// Respond applies action according to the notification's type: accept/decline for
// invitations, stay/leave for not-selected notices.
func (s *invitationService) Respond(ctx context.Context, notificationID string, action domain.ResponseAction) (*domain.Notification, error) {
	n, err := s.notifications.GetNotification(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	switch {
	case action != domain.ResponseAccept && action != domain.ResponseDecline:
		return nil, fmt.Errorf("action %q: %w", action, domain.ErrInvalidInput)
	case n.Type == domain.NotificationTypeInvitation && action == domain.ResponseAccept:
		return s.accept(ctx, n)
	case n.Type == domain.NotificationTypeInvitation:
		return s.decline(ctx, n)
	case n.Type == domain.NotificationTypeNotSelected && action == domain.ResponseAccept:
		return s.stay(ctx, n)
	case n.Type == domain.NotificationTypeNotSelected:
		return s.leave(ctx, n)
	default:
		return nil, domain.ErrWrongNotificationType
	}
}

// RespondWithToken verifies a signed response link and applies it.
func (s *invitationService) RespondWithToken(ctx context.Context, token string) (*domain.Notification, error) {
	id, action, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	return s.Respond(ctx, id, action)
}

// accept confirms a still-waitlisted recipient when a spot is free.
func (s *invitationService) accept(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	if n.Type != domain.NotificationTypeInvitation {
		return nil, domain.ErrWrongNotificationType
	}
	if n.Accepted {
		return n, nil
	}
	ev, err := s.events.Get(ctx, n.EventID)
	switch {
	case err == nil:
		if ev.IsWaitlisted(n.RecipientID) && ev.RemainingCapacity() > 0 {
			if err := ev.AddEntrant(domain.NewEntrant(n.RecipientID, domain.Profile{})); err != nil {
				return nil, err
			}
			if err := s.events.Put(ctx, ev); err != nil {
				return nil, fmt.Errorf("update event: %w", err)
			}
		}
	case !isNotFound(err):
		return nil, fmt.Errorf("get event: %w", err)
	}
	if err := n.Accept(); err != nil {
		return nil, err
	}
	if err := s.notifications.UpdateNotification(ctx, n); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, domain.LogInvitationAccepted, n.Title, n.EventID, n.RecipientID)
	return n, nil
}

// decline gives up the recipient's spot and sends them one cancellation notice.
func (s *invitationService) decline(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	if n.Type != domain.NotificationTypeInvitation {
		return nil, domain.ErrWrongNotificationType
	}
	if n.Declined {
		return n, nil
	}
	name := ""
	ev, err := s.events.Get(ctx, n.EventID)
	switch {
	case err == nil:
		name = ev.Info.Name
		ev.Cancel(n.RecipientID)
		if err := s.events.Put(ctx, ev); err != nil {
			return nil, fmt.Errorf("update event: %w", err)
		}
	case !isNotFound(err):
		return nil, fmt.Errorf("get event: %w", err)
	}
	if err := n.Decline(); err != nil {
		return nil, err
	}
	if err := s.notifications.UpdateNotification(ctx, n); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, domain.LogInvitationDeclined, n.Title, n.EventID, n.RecipientID)
	if ev != nil {
		sendBestEffort(ctx, s.logger, s.notifications, domain.NotificationTypeNotification,
			"Registration cancelled",
			fmt.Sprintf("You declined your invitation to %s. Your spot has been released.", name),
			[]int{n.RecipientID}, ev.Info.OrganizerID, n.EventID)
	}
	return n, nil
}

func (s *invitationService) stay(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	if n.Type != domain.NotificationTypeNotSelected {
		return nil, domain.ErrWrongNotificationType
	}
	if n.Stayed {
		return n, nil
	}
	if err := n.Stay(); err != nil {
		return nil, err
	}
	if err := s.notifications.UpdateNotification(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// leave removes the recipient from the waitlist; a missing membership is ignored.
func (s *invitationService) leave(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	if n.Type != domain.NotificationTypeNotSelected {
		return nil, domain.ErrWrongNotificationType
	}
	if n.Declined {
		return n, nil
	}
	ev, err := s.events.Get(ctx, n.EventID)
	switch {
	case err == nil:
		if ev.Waitlist.RemoveID(n.RecipientID) == nil {
			if err := s.events.Put(ctx, ev); err != nil {
				return nil, fmt.Errorf("update event: %w", err)
			}
			s.audit.Record(ctx, domain.LogWaitlistModified, "entrant left waitlist", n.EventID, n.RecipientID)
		}
	case !isNotFound(err):
		return nil, fmt.Errorf("get event: %w", err)
	}
	if err := n.Decline(); err != nil {
		return nil, err
	}
	if err := s.notifications.UpdateNotification(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}
