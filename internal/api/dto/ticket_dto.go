package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject string `json:"subject"`
	Content string `json:"content"`
}

// ReplyRequest payload for operator replies. Status is optional and
// defaults to RESOLVED.
type ReplyRequest struct {
	Reply  string  `json:"reply"`
	Status *string `json:"status"`
}

// TicketResponse is the client-facing ticket view.
type TicketResponse struct {
	ID               string              `json:"id"`
	Subject          string              `json:"subject"`
	Content          string              `json:"content"`
	Status           domain.TicketStatus `json:"status"`
	HasOperatorReply bool                `json:"has_operator_reply"`
	OperatorReply    *string             `json:"operator_reply,omitempty"`
	RepliedAt        *time.Time          `json:"replied_at,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// TicketWithOwnerResponse adds owner identity for operator listings.
type TicketWithOwnerResponse struct {
	TicketResponse
	Owner OwnerResponse `json:"owner"`
}

// OwnerResponse carries the resolved owner identity.
type OwnerResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company,omitempty"`
}
