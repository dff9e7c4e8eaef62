package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kabayemedia/ticketing/internal/domain"
)

const deviceKeyPrefix = "device:status:"

// ErrDeviceNotSeen reports that no fresh heartbeat exists for a device.
var ErrDeviceNotSeen = errors.New("device has no recent heartbeat")

// DeviceStatusRepository stores scanning-device heartbeats. Entries expire on
// their own, so a silent device simply disappears from the listing.
type DeviceStatusRepository interface {
	SaveHeartbeat(ctx context.Context, status *domain.DeviceStatus, ttl time.Duration) error
	GetStatus(ctx context.Context, deviceRef string) (*domain.DeviceStatus, error)
}

type deviceStatusRepository struct {
	client *redis.Client
}

// NewDeviceStatusRepository returns a Redis-backed implementation.
func NewDeviceStatusRepository(client *redis.Client) DeviceStatusRepository {
	return &deviceStatusRepository{client: client}
}

func (r *deviceStatusRepository) SaveHeartbeat(ctx context.Context, status *domain.DeviceStatus, ttl time.Duration) error {
	payload, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, deviceKeyPrefix+status.DeviceRef, payload, ttl).Err()
}

func (r *deviceStatusRepository) GetStatus(ctx context.Context, deviceRef string) (*domain.DeviceStatus, error) {
	payload, err := r.client.Get(ctx, deviceKeyPrefix+deviceRef).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrDeviceNotSeen
		}
		return nil, err
	}
	var status domain.DeviceStatus
	if err := json.Unmarshal(payload, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
