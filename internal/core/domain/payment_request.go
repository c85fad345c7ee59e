package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentRequestType represents the direction of a money movement request.
type PaymentRequestType string

const (
	PaymentRequestDeposit    PaymentRequestType = "deposit"
	PaymentRequestWithdrawal PaymentRequestType = "withdrawal"
)

// PaymentRequestStatus represents the lifecycle state of a payment request.
// pending is the only non-terminal state.
type PaymentRequestStatus string

const (
	PaymentRequestPending  PaymentRequestStatus = "pending"
	PaymentRequestApproved PaymentRequestStatus = "approved"
	PaymentRequestRejected PaymentRequestStatus = "rejected"
)

// BankInfo holds payout details for withdrawal requests.
type BankInfo struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	AccountHolder string `json:"account_holder"`
}

// Empty returns true if no bank details were supplied.
func (b BankInfo) Empty() bool {
	return b.BankName == "" && b.AccountNumber == "" && b.AccountHolder == ""
}

// PaymentRequest is a deposit or withdrawal awaiting admin moderation.
// The account balance is only mutated when the request is approved.
type PaymentRequest struct {
	ID          uuid.UUID            `json:"id"`
	AccountID   uuid.UUID            `json:"account_id"`
	Type        PaymentRequestType   `json:"type"`
	Amount      int64                `json:"amount"`
	Status      PaymentRequestStatus `json:"status"`
	BankInfo    *BankInfo            `json:"bank_info,omitempty"`
	AdminNote   *string              `json:"admin_note,omitempty"`
	ProcessedBy *uuid.UUID           `json:"processed_by,omitempty"`
	ProcessedAt *time.Time           `json:"processed_at,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

// IsPending returns true if the request can still be approved or rejected.
func (r *PaymentRequest) IsPending() bool {
	return r.Status == PaymentRequestPending
}
