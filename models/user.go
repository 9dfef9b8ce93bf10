package models

import "time"

type UserRole string

const (
	RoleOrganizer UserRole = "organizer"
	RoleViewer    UserRole = "viewer"
)

// User is an account allowed to log in. Only organizers may change the roster,
// draw rounds or record results.
type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Role         UserRole  `json:"role"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
