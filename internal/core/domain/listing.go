package domain

import (
	"time"

	"github.com/google/uuid"
)

// Listing represents a source-code product offered for sale.
// OwnerID is a plain foreign key; lookups go through the repositories.
type Listing struct {
	ID            uuid.UUID `json:"id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Price         int64     `json:"price"` // In smallest unit (VND); 0 = free
	PurchaseCount int64     `json:"purchase_count"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Purchasable returns true if the listing can currently be settled.
func (l *Listing) Purchasable() bool {
	return l.Active && l.Price >= 0
}
