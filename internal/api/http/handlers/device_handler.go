package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/kabayemedia/ticketing/internal/api/dto"
	"github.com/kabayemedia/ticketing/internal/service"
)

// DeviceHandler receives scanning-device heartbeats.
type DeviceHandler struct {
	devices *service.DeviceService
}

// NewDeviceHandler constructs handler.
func NewDeviceHandler(devices *service.DeviceService) *DeviceHandler {
	return &DeviceHandler{devices: devices}
}

// Report POST /api/device_status.
func (h *DeviceHandler) Report(c *fiber.Ctx) error {
	var req dto.DeviceStatusRequest
	_ = c.BodyParser(&req)

	serverTime, err := h.devices.ReportStatus(c.UserContext(), req.DeviceRef, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(dto.DeviceStatusResponse{
		Status:     "success",
		Message:    "status received",
		ServerTime: serverTime.Format(time.RFC3339),
	})
}

// Status GET /admin/devices/:device_ref.
func (h *DeviceHandler) Status(c *fiber.Ctx) error {
	status, err := h.devices.Status(c.UserContext(), c.Params("device_ref"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": status})
}
