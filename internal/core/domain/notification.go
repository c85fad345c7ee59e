package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType identifies the event that produced a notification.
type NotificationType string

const (
	NotificationPurchase           NotificationType = "PURCHASE"
	NotificationSale               NotificationType = "SALE"
	NotificationDepositApproved    NotificationType = "DEPOSIT_APPROVED"
	NotificationDepositRejected    NotificationType = "DEPOSIT_REJECTED"
	NotificationWithdrawalApproved NotificationType = "WITHDRAWAL_APPROVED"
	NotificationWithdrawalRejected NotificationType = "WITHDRAWAL_REJECTED"
)

// Notification is a fire-and-forget side effect of settlement and
// payment-request transitions. It never participates in ledger state.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	AccountID uuid.UUID        `json:"account_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	RelatedID *uuid.UUID       `json:"related_id,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}
