package dto

// ValidateRequest is the payload a scanning device posts at the gate.
type ValidateRequest struct {
	Token     string `json:"token"`
	DeviceRef string `json:"device_ref"`
}

// ValidateResponse is consumed verbatim by the device; DisplayMessage goes
// straight to its screen.
type ValidateResponse struct {
	Outcome        string `json:"outcome"`
	ReasonCode     string `json:"reason_code,omitempty"`
	DisplayMessage string `json:"display_message"`
	AccessGranted  bool   `json:"access_granted"`
	HolderName     string `json:"holder_name,omitempty"`
	EventName      string `json:"event_name,omitempty"`
	TicketRef      string `json:"ticket_ref,omitempty"`
}

// DeviceStatusRequest is a device heartbeat payload.
type DeviceStatusRequest struct {
	DeviceRef string `json:"device_ref"`
	Status    string `json:"status"`
}

// DeviceStatusResponse acknowledges a heartbeat.
type DeviceStatusResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	ServerTime string `json:"server_time"`
}
