package models

import (
	"time"
)

// User represents the users table in the database.
type User struct {
	ID                    int64     `json:"id"`
	Email                 string    `json:"email"`
	Phone                 *string   `json:"phone"`
	PreferredSigninMethod *string   `json:"preferred_signin_method"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}
