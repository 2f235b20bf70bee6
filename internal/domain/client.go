package domain

import "time"

// Client is the domain model for end-users who submit tickets.
type Client struct {
	ID           string
	Name         string
	Email        string
	Company      string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
