package domain

import "time"

// User is the domain model for ticket-purchasing accounts.
type User struct {
	ID           string
	Username     string
	Email        string
	Phone        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}
