package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"eventlottery/internal/domain"
)

type auditService struct {
	logs   domain.LogRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewAuditService returns an AuditService backed by logs. Writes through Record
// and RecordNotification never fail the caller; failures go to logger.
func NewAuditService(logs domain.LogRepository, logger *slog.Logger) domain.AuditService {
	return &auditService{logs: logs, logger: logger, now: time.Now}
}

func (s *auditService) Record(ctx context.Context, typ domain.LogType, message string, eventID, entrantID int) {
	entry := domain.NewLogEntry(uuid.NewString(), typ, message, eventID, entrantID, s.now())
	if err := s.logs.Put(ctx, entry); err != nil {
		s.logger.WarnContext(ctx, "audit write failed", "type", typ, "event_id", eventID, "entrant_id", entrantID, "err", err)
	}
}

func (s *auditService) RecordNotification(ctx context.Context, n *domain.Notification) {
	entry := domain.NewNotificationLog(uuid.NewString(), n)
	if err := s.logs.Put(ctx, entry); err != nil {
		s.logger.WarnContext(ctx, "audit write failed", "notification_id", n.ID, "err", err)
	}
}

func (s *auditService) ListLogs(ctx context.Context) ([]*domain.LogEntry, error) {
	logs, err := s.logs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	if logs == nil {
		logs = []*domain.LogEntry{}
	}
	return logs, nil
}

func (s *auditService) ListLogsOfType(ctx context.Context, typ domain.LogType) ([]*domain.LogEntry, error) {
	return s.filter(ctx, func(l *domain.LogEntry) bool { return l.Type == typ })
}

func (s *auditService) ListLogsForEvent(ctx context.Context, eventID int) ([]*domain.LogEntry, error) {
	return s.filter(ctx, func(l *domain.LogEntry) bool { return l.EventID == eventID })
}

func (s *auditService) filter(ctx context.Context, keep func(*domain.LogEntry) bool) ([]*domain.LogEntry, error) {
	logs, err := s.ListLogs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.LogEntry, 0, len(logs))
	for _, l := range logs {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *auditService) MarkAsRead(ctx context.Context, id string) (*domain.LogEntry, error) {
	entry, err := s.logs.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get log: %w", err)
	}
	entry.MarkAsRead()
	if err := s.logs.Put(ctx, entry); err != nil {
		return nil, fmt.Errorf("update log: %w", err)
	}
	return entry, nil
}

func (s *auditService) DeleteLog(ctx context.Context, id string) error {
	if err := s.logs.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete log: %w", err)
	}
	return nil
}

// ClearLogs is the explicit admin purge.
func (s *auditService) ClearLogs(ctx context.Context) error {
	if err := s.logs.Clear(ctx); err != nil {
		return fmt.Errorf("clear logs: %w", err)
	}
	return nil
}
