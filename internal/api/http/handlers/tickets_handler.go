package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/kabayemedia/ticketing/internal/api/dto"
	"github.com/kabayemedia/ticketing/internal/auth"
	"github.com/kabayemedia/ticketing/internal/domain"
	"github.com/kabayemedia/ticketing/internal/service"
	"github.com/kabayemedia/ticketing/pkg/util"
)

// TicketsHandler manages owner-facing ticket endpoints.
type TicketsHandler struct {
	purchases *service.PurchaseService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(purchases *service.PurchaseService) *TicketsHandler {
	return &TicketsHandler{purchases: purchases}
}

// Purchase POST /tickets/purchase.
func (h *TicketsHandler) Purchase(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("user required")
	}
	var req dto.PurchaseTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.EventID == "" {
		return util.NewValidationError("event_id required", nil)
	}

	ticket, err := h.purchases.Purchase(c.UserContext(), principal.User, req.EventID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ListOwned GET /tickets.
func (h *TicketsHandler) ListOwned(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("user required")
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)

	tickets, err := h.purchases.ListOwned(c.UserContext(), principal.User.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetOwned GET /tickets/:ticket_ref.
func (h *TicketsHandler) GetOwned(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("user required")
	}
	ticket, err := h.purchases.GetOwned(c.UserContext(), principal.User, c.Params("ticket_ref"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		TicketRef:    ticket.TicketRef,
		EventID:      ticket.EventID,
		PaymentState: ticket.PaymentState,
		PaymentRef:   ticket.PaymentRef,
		AccessToken:  ticket.AccessToken,
		QRImageData:  ticket.QRImageData,
		Used:         ticket.Used,
		UsedAt:       ticket.UsedAt,
		PurchasedAt:  ticket.PurchasedAt,
	}
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
