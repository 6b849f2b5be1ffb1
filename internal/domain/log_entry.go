package domain

import (
	"context"
	"time"
)

// LogType classifies audit log entries.
type LogType string

const (
	LogEntrantJoined      LogType = "ENTRANT_JOINED"
	LogEntrantLeft        LogType = "ENTRANT_LEFT"
	LogEventCreated       LogType = "EVENT_CREATED"
	LogEventUpdated       LogType = "EVENT_UPDATED"
	LogEventDeleted       LogType = "EVENT_DELETED"
	LogLotteryRun         LogType = "LOTTERY_RUN"
	LogInvitationSent     LogType = "INVITATION_SENT"
	LogInvitationAccepted LogType = "INVITATION_ACCEPTED"
	LogInvitationDeclined LogType = "INVITATION_DECLINED"
	LogNotification       LogType = "NOTIFICATION"
	LogWaitlistModified   LogType = "WAITLIST_MODIFIED"
	LogSystem             LogType = "SYSTEM"
	LogError              LogType = "ERROR"
)

// LogEntry is an append-only audit record. Only Read changes after creation.
type LogEntry struct {
	ID               string           `json:"id"`
	Type             LogType          `json:"type"`
	Message          string           `json:"message"`
	NotificationID   string           `json:"notification_id,omitempty"`
	NotificationType NotificationType `json:"notification_type,omitempty"`
	Title            string           `json:"title,omitempty"`
	Body             string           `json:"body,omitempty"`
	RecipientID      int              `json:"recipient_id,omitempty"`
	SenderID         int              `json:"sender_id,omitempty"`
	EventID          int              `json:"event_id,omitempty"`
	EntrantID        int              `json:"entrant_id,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	Read             bool             `json:"read"`
}

// NewLogEntry returns an unread entry for a domain action.
func NewLogEntry(id string, typ LogType, message string, eventID, entrantID int, createdAt time.Time) *LogEntry {
	return &LogEntry{
		ID:        id,
		Type:      typ,
		Message:   message,
		EventID:   eventID,
		EntrantID: entrantID,
		CreatedAt: createdAt,
	}
}

// NewNotificationLog derives an entry from a sent notification.
func NewNotificationLog(id string, n *Notification) *LogEntry {
	typ := LogNotification
	if n.Type == NotificationTypeInvitation {
		typ = LogInvitationSent
	}
	return &LogEntry{
		ID:               id,
		Type:             typ,
		Message:          n.Title,
		NotificationID:   n.ID,
		NotificationType: n.Type,
		Title:            n.Title,
		Body:             n.Body,
		RecipientID:      n.RecipientID,
		SenderID:         n.SenderID,
		EventID:          n.EventID,
		EntrantID:        n.RecipientID,
		CreatedAt:        n.CreatedAt,
	}
}

// MarkAsRead flags the entry as read.
func (l *LogEntry) MarkAsRead() {
	l.Read = true
}

// LogRepository persists audit entries.
type LogRepository interface {
	Get(ctx context.Context, id string) (*LogEntry, error)
	Put(ctx context.Context, l *LogEntry) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*LogEntry, error)
	Clear(ctx context.Context) error
}

// AuditService records and queries audit entries. Record and RecordNotification
// are best-effort: failures are logged and never returned.
type AuditService interface {
	Record(ctx context.Context, typ LogType, message string, eventID, entrantID int)
	RecordNotification(ctx context.Context, n *Notification)
	ListLogs(ctx context.Context) ([]*LogEntry, error)
	ListLogsOfType(ctx context.Context, typ LogType) ([]*LogEntry, error)
	ListLogsForEvent(ctx context.Context, eventID int) ([]*LogEntry, error)
	MarkAsRead(ctx context.Context, id string) (*LogEntry, error)
	DeleteLog(ctx context.Context, id string) error
	ClearLogs(ctx context.Context) error
}
