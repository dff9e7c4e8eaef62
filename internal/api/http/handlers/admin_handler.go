package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kabayemedia/ticketing/internal/api/dto"
	"github.com/kabayemedia/ticketing/internal/domain"
	"github.com/kabayemedia/ticketing/internal/service"
)

// AdminHandler serves the reporting surface.
type AdminHandler struct {
	reports *service.ReportService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(reports *service.ReportService) *AdminHandler {
	return &AdminHandler{reports: reports}
}

// Dashboard GET /admin/dashboard.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.reports.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	entries, err := h.reports.RecentEntries(c.UserContext(), 10)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"stats": fiber.Map{
				"total_tickets": stats.TotalTickets,
				"paid_tickets":  stats.PaidTickets,
				"used_tickets":  stats.UsedTickets,
				"revenue":       stats.Revenue,
			},
			"recent_entries": entryResponses(entries),
		},
	})
}

// ListEntries GET /admin/entries.
func (h *AdminHandler) ListEntries(c *fiber.Ctx) error {
	limit := parseInt(c.Query("limit"), 50)
	entries, err := h.reports.RecentEntries(c.UserContext(), limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": entryResponses(entries)})
}

// ListUsers GET /admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	users, err := h.reports.ListUsers(c.UserContext(), pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]fiber.Map, 0, len(users))
	for _, user := range users {
		items = append(items, fiber.Map{
			"id":         user.ID,
			"username":   user.Username,
			"email":      user.Email,
			"phone":      user.Phone,
			"is_admin":   user.IsAdmin,
			"created_at": user.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func entryResponses(entries []domain.EntryAttempt) []dto.EntryAttemptResponse {
	items := make([]dto.EntryAttemptResponse, 0, len(entries))
	for _, entry := range entries {
		item := dto.EntryAttemptResponse{
			ID:          entry.ID,
			TicketID:    entry.TicketID,
			Outcome:     string(entry.Outcome),
			DeviceRef:   entry.DeviceRef,
			AttemptedAt: entry.AttemptedAt,
		}
		if entry.DenialReason != nil {
			reason := string(*entry.DenialReason)
			item.DenialReason = &reason
		}
		items = append(items, item)
	}
	return items
}
