package events

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated EventType = "ticket_created"
	EventTicketReplied EventType = "ticket_replied"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	OwnerID string `json:"owner_id"`
	Subject string `json:"subject"`
}

// TicketRepliedPayload carries everything the notification handler needs
// so it never has to read the store.
type TicketRepliedPayload struct {
	OwnerName  string              `json:"owner_name"`
	OwnerEmail string              `json:"owner_email"`
	Subject    string              `json:"subject"`
	Reply      string              `json:"reply"`
	Status     domain.TicketStatus `json:"status"`
}
