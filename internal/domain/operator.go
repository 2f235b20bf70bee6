package domain

import "time"

// Operator models a support agent who replies to and resolves tickets.
type Operator struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
