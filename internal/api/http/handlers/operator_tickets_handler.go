package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/service"
	"github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// OperatorTicketsHandler manages operator-facing ticket endpoints.
type OperatorTicketsHandler struct {
	service *service.TicketService
}

// NewOperatorTicketsHandler constructs handler.
func NewOperatorTicketsHandler(ticketService *service.TicketService) *OperatorTicketsHandler {
	return &OperatorTicketsHandler{service: ticketService}
}

// ListAll GET /operator/tickets.
func (h *OperatorTicketsHandler) ListAll(c *fiber.Ctx) error {
	tickets, err := h.service.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.TicketWithOwnerResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketWithOwnerResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Reply PUT /operator/tickets/:id/reply.
func (h *OperatorTicketsHandler) Reply(c *fiber.Ctx) error {
	var req dto.ReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}

	var requestedStatus *domain.TicketStatus
	if req.Status != nil && *req.Status != "" {
		status := domain.TicketStatus(*req.Status)
		requestedStatus = &status
	}

	ticket, err := h.service.Reply(c.UserContext(), c.Params("id"), req.Reply, requestedStatus)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

func ticketWithOwnerResponse(entry *domain.TicketWithOwner) dto.TicketWithOwnerResponse {
	return dto.TicketWithOwnerResponse{
		TicketResponse: ticketResponse(&entry.Ticket),
		Owner: dto.OwnerResponse{
			ID:      entry.OwnerID,
			Name:    entry.OwnerName,
			Email:   entry.OwnerEmail,
			Company: entry.OwnerCompany,
		},
	}
}
