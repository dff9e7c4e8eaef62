package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/kabayemedia/ticketing/internal/api/dto"
	"github.com/kabayemedia/ticketing/internal/domain"
	"github.com/kabayemedia/ticketing/internal/observability"
	"github.com/kabayemedia/ticketing/internal/service"
	"github.com/kabayemedia/ticketing/pkg/util"
)

// ValidateHandler is the device-facing admission endpoint.
type ValidateHandler struct {
	admission *service.AdmissionService
	metrics   *observability.Metrics
}

// NewValidateHandler constructs handler.
func NewValidateHandler(admission *service.AdmissionService, metrics *observability.Metrics) *ValidateHandler {
	return &ValidateHandler{admission: admission, metrics: metrics}
}

// Validate POST /api/validate. The response is consumed by an unattended
// device, so every branch, including dependency failure, answers in the same
// shape with a displayable message.
func (h *ValidateHandler) Validate(c *fiber.Ctx) error {
	var req dto.ValidateRequest
	// An unparseable body is treated like a missing token, not a transport
	// error; the validator owns that branch.
	_ = c.BodyParser(&req)

	decision, err := h.admission.Validate(c.UserContext(), req.Token, req.DeviceRef)
	if err != nil {
		var domainErr *util.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == "SERVICE_UNAVAILABLE" {
			h.metrics.RecordDecision("ERROR", "service_unavailable")
			return c.Status(http.StatusServiceUnavailable).JSON(dto.ValidateResponse{
				Outcome:        "ERROR",
				ReasonCode:     "service_unavailable",
				DisplayMessage: "SCANNER ERROR\nPlease Try Again",
			})
		}
		return err
	}

	h.metrics.RecordDecision(string(decision.Outcome), string(decision.ReasonCode))
	return c.Status(decisionStatus(decision)).JSON(dto.ValidateResponse{
		Outcome:        string(decision.Outcome),
		ReasonCode:     string(decision.ReasonCode),
		DisplayMessage: decision.DisplayMessage,
		AccessGranted:  decision.Granted(),
		HolderName:     decision.HolderName,
		EventName:      decision.EventName,
		TicketRef:      decision.TicketRef,
	})
}

func decisionStatus(decision *service.Decision) int {
	if decision.Granted() {
		return http.StatusOK
	}
	switch decision.ReasonCode {
	case domain.ReasonMissingToken:
		return http.StatusBadRequest
	case domain.ReasonInvalidToken:
		return http.StatusNotFound
	default:
		return http.StatusForbidden
	}
}
