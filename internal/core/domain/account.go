package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role distinguishes regular users from marketplace administrators.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Account represents a marketplace user with a wallet balance.
// Balance is in smallest currency units (VND) and is never negative.
// It must only be mutated through ledger operations.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	Balance      int64     `json:"balance"`
	Role         Role      `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin returns true if the account has administrator privileges.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanDebit returns true if the balance covers the given amount.
func (a *Account) CanDebit(amount int64) bool {
	return a.Balance >= amount
}
