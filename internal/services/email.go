package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"eventlottery/internal/domain"
)

type emailDeliverer struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	tokens   domain.ResponseTokenIssuer
	baseURL  string
	logger   *slog.Logger
}

// NewEmailDeliverer returns a Deliverer that emails notifications using one template per
// notification type. Invitations and not-selected notices carry signed response links
// rooted at baseURL.
func NewEmailDeliverer(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, tokens domain.ResponseTokenIssuer, baseURL string, logger *slog.Logger) domain.Deliverer {
	return &emailDeliverer{
		mailer:   mailer,
		renderer: renderer,
		tokens:   tokens,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
	}
}

func (d *emailDeliverer) Deliver(ctx context.Context, n *domain.Notification, recipient *domain.Entrant) error {
	if recipient == nil || recipient.Profile.Email == "" {
		return nil
	}
	data := &domain.NotificationEmailData{
		Name:    recipient.Profile.Name,
		Title:   n.Title,
		Body:    n.Body,
		EventID: n.EventID,
	}
	if n.Type == domain.NotificationTypeInvitation || n.Type == domain.NotificationTypeNotSelected {
		accept, err := d.responseURL(n.ID, domain.ResponseAccept)
		if err != nil {
			return err
		}
		decline, err := d.responseURL(n.ID, domain.ResponseDecline)
		if err != nil {
			return err
		}
		data.AcceptURL, data.DeclineURL = accept, decline
	}

	name := templateName(n.Type)
	subject, htmlBody, textBody, err := d.renderer.Render(name, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", name, err)
	}
	if err := d.mailer.Send(ctx, recipient.Profile.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", name, err)
	}
	d.logger.InfoContext(ctx, "notification email sent", "notification_id", n.ID, "template", name)
	return nil
}

func (d *emailDeliverer) responseURL(notificationID string, action domain.ResponseAction) (string, error) {
	token, err := d.tokens.Issue(notificationID, action)
	if err != nil {
		return "", fmt.Errorf("issue response token: %w", err)
	}
	return d.baseURL + "/notifications/respond?token=" + url.QueryEscape(token), nil
}

func templateName(t domain.NotificationType) string {
	switch t {
	case domain.NotificationTypeInvitation:
		return "invitation"
	case domain.NotificationTypeNotSelected:
		return "not_selected"
	default:
		return "notification"
	}
}
