package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// NotificationEmailData is the template data for every notification email.
type NotificationEmailData struct {
	Name       string
	Title      string
	Body       string
	EventID    int
	AcceptURL  string
	DeclineURL string
}
