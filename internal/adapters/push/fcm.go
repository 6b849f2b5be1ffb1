// Package push delivers notifications to entrant devices through Firebase Cloud Messaging.
package push

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"firebase.google.com/go/v4/messaging"

	"eventlottery/internal/domain"
)

// Sender is the part of *messaging.Client used for delivery.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCM publishes each notification to the recipient's topic. Devices subscribe to
// TopicFor(entrantID) when the entrant signs in.
type FCM struct {
	client Sender
	logger *slog.Logger
}

func NewFCM(client Sender, logger *slog.Logger) *FCM {
	return &FCM{client: client, logger: logger}
}

// TopicFor returns the FCM topic an entrant's devices subscribe to.
func TopicFor(entrantID int) string {
	return "entrant-" + strconv.Itoa(entrantID)
}

func (f *FCM) Deliver(ctx context.Context, n *domain.Notification, recipient *domain.Entrant) error {
	message := &messaging.Message{
		Topic: TopicFor(n.RecipientID),
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: map[string]string{
			"notification_id": n.ID,
			"type":            string(n.Type),
			"event_id":        strconv.Itoa(n.EventID),
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	}
	id, err := f.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}
	f.logger.DebugContext(ctx, "push sent", "notification_id", n.ID, "message", id)
	return nil
}
