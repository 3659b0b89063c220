// Package models defines client-side data structures for the FICOM
// Integration Testing CLI. The client only ever holds read-only cached
// copies of server-owned records.
package models

import "time"

// User is the cached profile of the authenticated user.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
