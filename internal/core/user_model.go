package core

import (
	"context"
	"time"
)

// User is a store operator account. Usernames are globally unique so login
// needs no store selector; the account pins the store.
type User struct {
	ID           int       `json:"id"`
	StoreID      int       `json:"store_id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserInput holds the fields required to create a new user.
type UserInput struct {
	StoreID     int
	Username    string
	Password    string
	DisplayName string
	Role        string
}

// UserService manages operator accounts and credential checks.
type UserService interface {
	CreateUser(ctx context.Context, input UserInput) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByID(ctx context.Context, userID int) (*User, error)

	// Authenticate verifies the password against the stored hash. The error
	// is the same for an unknown username and a wrong password.
	Authenticate(ctx context.Context, username, password string) (*User, error)
}
