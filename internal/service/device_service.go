package service

import (
	"context"
	"strings"
	"time"

	"github.com/kabayemedia/ticketing/internal/domain"
	"github.com/kabayemedia/ticketing/internal/repository"
	"github.com/kabayemedia/ticketing/pkg/util"
)

// DeviceService records scanning-device heartbeats. It carries no admission
// logic; a stale or missing heartbeat never blocks validation.
type DeviceService struct {
	statuses repository.DeviceStatusRepository
	ttl      time.Duration
	clock    Clock
}

// NewDeviceService constructs the service.
func NewDeviceService(statuses repository.DeviceStatusRepository, ttl time.Duration, clock Clock) *DeviceService {
	if clock == nil {
		clock = SystemClock()
	}
	return &DeviceService{statuses: statuses, ttl: ttl, clock: clock}
}

// ReportStatus stores one heartbeat and returns the server time for device
// clock sync.
func (s *DeviceService) ReportStatus(ctx context.Context, deviceRef, status string) (time.Time, error) {
	if strings.TrimSpace(deviceRef) == "" {
		deviceRef = UnknownDevice
	}
	if strings.TrimSpace(status) == "" {
		status = "unknown"
	}

	now := s.clock.Now()
	heartbeat := &domain.DeviceStatus{
		DeviceRef: deviceRef,
		Status:    status,
		LastSeen:  now,
	}
	if err := s.statuses.SaveHeartbeat(ctx, heartbeat, s.ttl); err != nil {
		return time.Time{}, util.NewServiceUnavailable("device status store", err)
	}
	return now, nil
}

// Status returns the latest heartbeat for one device.
func (s *DeviceService) Status(ctx context.Context, deviceRef string) (*domain.DeviceStatus, error) {
	status, err := s.statuses.GetStatus(ctx, deviceRef)
	if err != nil {
		if err == repository.ErrDeviceNotSeen {
			return nil, util.NewNotFound("device heartbeat", map[string]any{"device_ref": deviceRef})
		}
		return nil, util.NewServiceUnavailable("device status store", err)
	}
	return status, nil
}
