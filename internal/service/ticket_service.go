package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/pkg/util/errorutil"
	"github.com/spec-kit/support-desk/pkg/util/goroutine"
)

// TicketService coordinates the ticket lifecycle: creation, listings, and
// the reply mutation with its follow-up notification.
type TicketService struct {
	tickets    repository.TicketRepository
	clients    repository.ClientRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	ClientRepo repository.ClientRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		clients:    deps.ClientRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// CreateTicket validates and persists a new ticket with status NEW. No
// notification is sent on creation.
func (s *TicketService) CreateTicket(ctx context.Context, ownerID, subject, content string) (*domain.Ticket, error) {
	subject = strings.TrimSpace(subject)
	content = strings.TrimSpace(content)
	if subject == "" {
		return nil, errorutil.NewValidationError("subject is required", nil)
	}
	if content == "" {
		return nil, errorutil.NewValidationError("content is required", nil)
	}

	ticket := &domain.Ticket{
		OwnerID: ownerID,
		Subject: subject,
		Content: content,
		Status:  domain.TicketStatusNew,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, errorutil.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			OwnerID: ticket.OwnerID,
			Subject: ticket.Subject,
		},
	})
	return ticket, nil
}

// ListForOwner returns the owner's tickets, newest first.
func (s *TicketService) ListForOwner(ctx context.Context, ownerID string) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	return tickets, nil
}

// ListAll returns every ticket, newest first, with owner identity
// resolved for operator display.
func (s *TicketService) ListAll(ctx context.Context) ([]domain.TicketWithOwner, error) {
	tickets, err := s.tickets.ListAllWithOwner(ctx)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	return tickets, nil
}

// Reply records an operator reply on a ticket. The store mutation is
// acknowledged before any notification work starts; delivery then runs
// as a detached task whose outcome is observable only through logs, so
// the returned ticket reflects the persisted state regardless of email
// delivery.
func (s *TicketService) Reply(ctx context.Context, ticketID, replyText string, requestedStatus *domain.TicketStatus) (*domain.Ticket, error) {
	replyText = strings.TrimSpace(replyText)
	if replyText == "" {
		return nil, errorutil.NewValidationError("reply text is required", nil)
	}

	status := domain.TicketStatusResolved
	if requestedStatus != nil {
		if !requestedStatus.IsReplyTarget() {
			return nil, errorutil.NewValidationError("status must be IN_PROGRESS or RESOLVED", map[string]any{
				"status": string(*requestedStatus),
			})
		}
		status = *requestedStatus
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, mapTicketErr(err)
	}

	now := time.Now()
	ticket.OperatorReply = &replyText
	ticket.HasOperatorReply = true
	ticket.RepliedAt = &now
	ticket.Status = status

	if err := s.tickets.Save(ctx, ticket); err != nil {
		return nil, mapTicketErr(err)
	}

	s.notifyReplied(ctx, ticket)
	return ticket, nil
}

// notifyReplied schedules the owner notification for a saved reply. Any
// failure here is logged and never reaches the reply caller.
func (s *TicketService) notifyReplied(ctx context.Context, ticket *domain.Ticket) {
	if s.dispatcher == nil {
		return
	}
	owner, err := s.clients.GetByID(ctx, ticket.OwnerID)
	if err != nil {
		s.logger.Warn("owner lookup failed; skipping reply notification",
			zap.String("ticket_id", ticket.ID),
			zap.Error(err),
		)
		return
	}
	if strings.TrimSpace(owner.Email) == "" {
		return
	}

	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketReplied,
		TicketID:  ticket.ID,
		Timestamp: time.Now(),
		Payload: events.TicketRepliedPayload{
			OwnerName:  owner.Name,
			OwnerEmail: owner.Email,
			Subject:    ticket.Subject,
			Reply:      *ticket.OperatorReply,
			Status:     ticket.Status,
		},
	}

	// Detached on purpose: the reply response must not wait on SMTP, and
	// the request context may be gone by the time delivery finishes.
	goroutine.Go(s.logger, "ticket-replied-notification", func() {
		_ = s.dispatcher.Publish(context.Background(), event)
	})
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func mapTicketErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return errorutil.NewNotFound("ticket", nil)
	}
	return errorutil.MapError(err)
}
