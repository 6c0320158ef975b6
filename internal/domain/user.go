package domain

import (
	"errors"
	"time"
)

var (
	ErrMissingFields      = errors.New("All fields are required")
	ErrInvalidEmail       = errors.New("Invalid email address")
	ErrPasswordMismatch   = errors.New("Passwords do not match")
	ErrEmailExists        = errors.New("Email already registered")
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

// User is a registry entry. Passwords are stored and compared as given.
type User struct {
	Email           string    `json:"-"`
	Password        string    `json:"password"`
	DeliveryAddress string    `json:"delivery_address"`
	CreatedAt       time.Time `json:"created_at"`
}
