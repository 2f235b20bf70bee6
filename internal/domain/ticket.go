package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "NEW"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
)

// IsReplyTarget reports whether an operator reply may move a ticket into
// this status. A reply never returns a ticket to NEW.
func (s TicketStatus) IsReplyTarget() bool {
	return s == TicketStatusInProgress || s == TicketStatusResolved
}

// Ticket is the aggregate for support requests. OwnerID is immutable after
// creation; OperatorReply and RepliedAt are either both unset or both set.
type Ticket struct {
	ID               string
	OwnerID          string
	Subject          string
	Content          string
	Status           TicketStatus
	HasOperatorReply bool
	OperatorReply    *string
	RepliedAt        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TicketWithOwner decorates a ticket with resolved owner identity for
// operator-facing listings.
type TicketWithOwner struct {
	Ticket
	OwnerName    string
	OwnerEmail   string
	OwnerCompany string
}
