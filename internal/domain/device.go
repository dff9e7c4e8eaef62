package domain

import "time"

// DeviceStatus is the last reported heartbeat of a scanning device.
type DeviceStatus struct {
	DeviceRef string    `json:"device_ref"`
	Status    string    `json:"status"`
	LastSeen  time.Time `json:"last_seen"`
}
