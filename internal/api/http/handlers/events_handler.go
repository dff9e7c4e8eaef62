package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/kabayemedia/ticketing/internal/api/dto"
	"github.com/kabayemedia/ticketing/internal/domain"
	"github.com/kabayemedia/ticketing/internal/service"
	"github.com/kabayemedia/ticketing/pkg/util"
)

// EventsHandler exposes the event catalog.
type EventsHandler struct {
	catalog *service.CatalogService
}

// NewEventsHandler constructs handler.
func NewEventsHandler(catalog *service.CatalogService) *EventsHandler {
	return &EventsHandler{catalog: catalog}
}

// ListActive GET /events.
func (h *EventsHandler) ListActive(c *fiber.Ctx) error {
	events, err := h.catalog.ListActive(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": eventResponses(events)})
}

// Get GET /events/:id.
func (h *EventsHandler) Get(c *fiber.Ctx) error {
	event, err := h.catalog.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": eventResponse(event)})
}

// Create POST /admin/events.
func (h *EventsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		return util.NewValidationError("date must be RFC3339", map[string]any{"date": req.Date})
	}

	event, err := h.catalog.CreateEvent(c.UserContext(), service.EventCreateInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Date:        date,
		Location:    req.Location,
		MaxCapacity: req.MaxCapacity,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": eventResponse(event)})
}

// ListAll GET /admin/events.
func (h *EventsHandler) ListAll(c *fiber.Ctx) error {
	events, err := h.catalog.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": eventResponses(events)})
}

func eventResponse(event *domain.Event) dto.EventResponse {
	return dto.EventResponse{
		ID:          event.ID,
		Name:        event.Name,
		Description: event.Description,
		Price:       event.Price,
		Date:        event.Date,
		Location:    event.Location,
		MaxCapacity: event.MaxCapacity,
		IsActive:    event.IsActive,
	}
}

func eventResponses(events []domain.Event) []dto.EventResponse {
	items := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		items = append(items, eventResponse(&events[i]))
	}
	return items
}
