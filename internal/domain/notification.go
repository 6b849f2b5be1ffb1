package domain

import (
	"context"
	"time"
)

// NotificationType tags a notification with the response it expects.
type NotificationType string

const (
	NotificationTypeNotification NotificationType = "NOTIFICATION"
	NotificationTypeInvitation   NotificationType = "INVITATION"
	NotificationTypeNotSelected  NotificationType = "NOT_SELECTED"
)

// Valid reports whether t is a known type.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTypeNotification, NotificationTypeInvitation, NotificationTypeNotSelected:
		return true
	}
	return false
}

// Notification is a message to one entrant.
// Accepted and Declined apply to invitations; Stayed and Declined apply to not-selected notices.
// Both flags false means the recipient has not responded.
type Notification struct {
	ID          string           `json:"id"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Body        string           `json:"body"`
	RecipientID int              `json:"recipient_id"`
	SenderID    int              `json:"sender_id"`
	EventID     int              `json:"event_id"`
	CreatedAt   time.Time        `json:"created_at"`
	Read        bool             `json:"read"`
	Accepted    bool             `json:"accepted,omitempty"`
	Declined    bool             `json:"declined,omitempty"`
	Stayed      bool             `json:"stayed,omitempty"`
}

// NewNotification returns an unread notification.
func NewNotification(id string, typ NotificationType, title, body string, recipientID, senderID, eventID int, createdAt time.Time) *Notification {
	return &Notification{
		ID:          id,
		Type:        typ,
		Title:       title,
		Body:        body,
		RecipientID: recipientID,
		SenderID:    senderID,
		EventID:     eventID,
		CreatedAt:   createdAt,
	}
}

// Accept records a positive answer to an invitation.
func (n *Notification) Accept() error {
	if n.Type != NotificationTypeInvitation {
		return ErrWrongNotificationType
	}
	n.Accepted = true
	n.Declined = false
	return nil
}

// Stay records that a not-selected entrant keeps their waitlist spot.
func (n *Notification) Stay() error {
	if n.Type != NotificationTypeNotSelected {
		return ErrWrongNotificationType
	}
	n.Stayed = true
	n.Declined = false
	return nil
}

// Decline records a negative answer to an invitation or not-selected notice.
func (n *Notification) Decline() error {
	switch n.Type {
	case NotificationTypeInvitation:
		n.Accepted = false
	case NotificationTypeNotSelected:
		n.Stayed = false
	default:
		return ErrWrongNotificationType
	}
	n.Declined = true
	return nil
}

// MarkRead flags the notification as read.
func (n *Notification) MarkRead() {
	n.Read = true
}

// Notifier enqueues a message to one recipient.
type Notifier interface {
	Send(ctx context.Context, typ NotificationType, title, body string, recipientID, senderID, eventID int) error
}

// Deliverer pushes a stored notification out through an external channel.
// recipient may be nil when the entrant record could not be resolved.
type Deliverer interface {
	Deliver(ctx context.Context, n *Notification, recipient *Entrant) error
}

// NotificationRepository persists notifications.
type NotificationRepository interface {
	Get(ctx context.Context, id string) (*Notification, error)
	Put(ctx context.Context, n *Notification) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Notification, error)
	Clear(ctx context.Context) error
}

// NotificationService stores, delivers and manages notifications.
type NotificationService interface {
	Notifier
	SendBulk(ctx context.Context, typ NotificationType, title, body string, recipientIDs []int, senderID, eventID int) error
	GetNotification(ctx context.Context, id string) (*Notification, error)
	ListForRecipient(ctx context.Context, recipientID int) ([]*Notification, error)
	ListForEvent(ctx context.Context, eventID int) ([]*Notification, error)
	MarkRead(ctx context.Context, id string) (*Notification, error)
	UpdateNotification(ctx context.Context, n *Notification) error
	DeleteNotification(ctx context.Context, id string) error
	ClearNotifications(ctx context.Context) error
}

// ResponseAction is a recipient's answer to an invitation or not-selected notice.
type ResponseAction string

const (
	ResponseAccept  ResponseAction = "accept"
	ResponseDecline ResponseAction = "decline"
)

// InvitationService applies recipient responses to notifications and the events they reference.
type InvitationService interface {
	AcceptInvitation(ctx context.Context, notificationID string) (*Notification, error)
	DeclineInvitation(ctx context.Context, notificationID string) (*Notification, error)
	StayOnWaitlist(ctx context.Context, notificationID string) (*Notification, error)
	LeaveWaitlist(ctx context.Context, notificationID string) (*Notification, error)
	Respond(ctx context.Context, notificationID string, action ResponseAction) (*Notification, error)
	RespondWithToken(ctx context.Context, token string) (*Notification, error)
}

// ResponseTokenIssuer signs and verifies one-click response links.
type ResponseTokenIssuer interface {
	Issue(notificationID string, action ResponseAction) (string, error)
	Parse(token string) (notificationID string, action ResponseAction, err error)
}
