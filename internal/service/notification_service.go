package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/mailer"
)

// NotificationService turns ticket events into outbound email. Delivery
// failures are logged and go nowhere else.
type NotificationService struct {
	dispatcher events.Dispatcher
	mail       mailer.Sender
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, mail mailer.Sender, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		mail:       mail,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketReplied, n.handleTicketReplied)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("ticket created",
		zap.String("ticket_id", event.TicketID),
		zap.Any("payload", event.Payload),
	)
	return nil
}

func (n *NotificationService) handleTicketReplied(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketRepliedPayload)
	if !ok {
		n.logger.Warn("unexpected payload for ticket_replied event",
			zap.String("event_id", event.ID))
		return nil
	}

	subject, body := replyEmail(payload.OwnerName, payload.Subject, payload.Reply)
	outcome := n.mail.Send(payload.OwnerEmail, subject, body)
	if outcome.Success {
		n.logger.Info("reply notification sent",
			zap.String("ticket_id", event.TicketID),
			zap.String("message_id", outcome.MessageID),
		)
		return nil
	}

	n.logger.Error("reply notification failed",
		zap.String("ticket_id", event.TicketID),
		zap.String("error", outcome.Err),
	)
	return nil
}
