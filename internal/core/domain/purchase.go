package domain

import (
	"time"

	"github.com/google/uuid"
)

// sellerSharePercent is the seller's share of every purchase; the
// remainder is retained by the platform as commission.
const sellerSharePercent = 80

// Purchase is an immutable settlement record. SellerEarnings and
// Commission always sum exactly to Amount.
type Purchase struct {
	ID              uuid.UUID  `json:"id"`
	BuyerID         uuid.UUID  `json:"buyer_id"`
	ListingID       uuid.UUID  `json:"listing_id"`
	SellerID        uuid.UUID  `json:"seller_id"`
	Amount          int64      `json:"amount"`
	SellerEarnings  int64      `json:"seller_earnings"`
	Commission      int64      `json:"commission"`
	AccessExpiresAt *time.Time `json:"access_expires_at,omitempty"` // nil = never expires
	CreatedAt       time.Time  `json:"created_at"`
}

// SplitAmount computes the seller/platform split for a purchase amount.
// Earnings are floored so that earnings + commission == amount exactly.
func SplitAmount(amount int64) (earnings, commission int64) {
	earnings = amount * sellerSharePercent / 100
	commission = amount - earnings
	return earnings, commission
}

// AccessValid reports whether the buyer's access right is still in effect
// at the given instant.
func (p *Purchase) AccessValid(now time.Time) bool {
	return p.AccessExpiresAt == nil || now.Before(*p.AccessExpiresAt)
}
