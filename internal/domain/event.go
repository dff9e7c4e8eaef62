package domain

import "time"

// Event is the catalog entry tickets are sold against. The validator only
// reads Date; everything else belongs to the catalog surface.
type Event struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Date        time.Time
	Location    string
	MaxCapacity int
	IsActive    bool
	CreatedAt   time.Time
}
