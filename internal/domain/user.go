package domain

import (
	"context"
	"time"
)

// User represents a registered account. An account starts unverified after
// signup and becomes verified once the emailed OTP is confirmed.
type User struct {
	ID           int64
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	OTP          string    // pending one-time code, empty once verified
	OTPExpiresAt time.Time // zero when no OTP is pending
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// Update persists mutable fields (name, phone, password hash, OTP state,
	// verified flag) of an existing user.
	Update(ctx context.Context, user *User) error
}
