package models

import "time"

// Community is a closed group of learners that books sessions atomically together.
type Community struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
