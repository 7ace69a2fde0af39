package notification

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"

	"github.com/frahmantamala/training-management/internal/core/events"
)

// MailSender abstracts gomail's dialer so tests can capture messages.
type MailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends an email copy of each notification. It subscribes to
// notification-created events, so mail delivery is fully decoupled from the
// fan-out; a down SMTP server costs nothing but a warning log.
type Mailer struct {
	sender    MailSender
	directory UserDirectory
	from      string
	logger    *slog.Logger
}

func NewMailer(host string, port int, username, password, from string, directory UserDirectory, logger *slog.Logger) *Mailer {
	return &Mailer{
		sender:    gomail.NewDialer(host, port, username, password),
		directory: directory,
		from:      from,
		logger:    logger,
	}
}

// NewMailerWithSender injects a sender directly; used by tests.
func NewMailerWithSender(sender MailSender, from string, directory UserDirectory, logger *slog.Logger) *Mailer {
	return &Mailer{
		sender:    sender,
		directory: directory,
		from:      from,
		logger:    logger,
	}
}

// SubscribeTo registers the mailer on the event bus.
func (m *Mailer) SubscribeTo(bus interface {
	Subscribe(eventType string, handler events.Handler)
}) {
	bus.Subscribe(events.EventTypeNotificationCreated, m.HandleNotificationCreated)
}

// HandleNotificationCreated sends the email copy for one notification event.
func (m *Mailer) HandleNotificationCreated(ctx context.Context, event events.Event) error {
	created, ok := event.(*events.NotificationCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}

	recipient, err := m.directory.UserByID(created.RecipientID)
	if err != nil {
		return fmt.Errorf("resolve mail recipient: %w", err)
	}
	if recipient.Email == "" {
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", recipient.Email)
	msg.SetHeader("Subject", created.Title)
	msg.SetBody("text/plain", fmt.Sprintf("Hi %s,\n\n%s\n", recipient.Name, created.Body))

	if err := m.sender.DialAndSend(msg); err != nil {
		m.logger.WarnContext(ctx, "failed to send notification email",
			slog.Int64("notification_id", created.NotificationID),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}
