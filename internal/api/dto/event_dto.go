package dto

import "time"

// CreateEventRequest payload.
type CreateEventRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Date        string  `json:"date"`
	Location    string  `json:"location"`
	MaxCapacity int     `json:"max_capacity"`
}

// EventResponse is a catalog entry.
type EventResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	MaxCapacity int       `json:"max_capacity"`
	IsActive    bool      `json:"is_active"`
}
