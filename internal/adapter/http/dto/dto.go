package dto

import (
	"time"

	"codemarket/internal/core/domain"
	"codemarket/internal/core/ports"
)

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email,max=255"`
	Username    string `json:"username" binding:"required,min=3,max=50,safe_id"`
	Password    string `json:"password" binding:"required,min=8,max=128"`
	DisplayName string `json:"display_name" binding:"required,min=1,max=100"`
}

// LoginRequest is the request body for login. Login accepts either the
// email address or the username.
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// AccountResponse is the public representation of an account.
type AccountResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Balance     int64  `json:"balance"`
	Role        string `json:"role"`
	CreatedAt   string `json:"created_at"`
}

// BalanceResponse is the response for balance query.
type BalanceResponse struct {
	Balance int64 `json:"balance"`
}

// CreateListingRequest is the request body for creating a listing.
type CreateListingRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Slug        string `json:"slug" binding:"required,min=1,max=200,safe_id"`
	Description string `json:"description" binding:"max=5000"`
	Category    string `json:"category" binding:"max=100"`
	Price       int64  `json:"price" binding:"gte=0"`
}

// UpdateListingRequest is the request body for a partial listing update.
type UpdateListingRequest struct {
	Title       *string `json:"title,omitempty" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=5000"`
	Category    *string `json:"category,omitempty" binding:"omitempty,max=100"`
	Price       *int64  `json:"price,omitempty" binding:"omitempty,gte=0"`
	Active      *bool   `json:"active,omitempty"`
}

// ListingResponse is the public representation of a listing.
type ListingResponse struct {
	ID            string `json:"id"`
	OwnerID       string `json:"owner_id"`
	Title         string `json:"title"`
	Slug          string `json:"slug"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	Price         int64  `json:"price"`
	PurchaseCount int64  `json:"purchase_count"`
	Active        bool   `json:"active"`
	CreatedAt     string `json:"created_at"`
}

// ListingListResponse wraps a paginated listing list.
type ListingListResponse struct {
	Items      []ListingResponse `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// PurchaseRequest is the request body for buying a listing.
// ExpectedPrice must match the current listing price; the settlement is
// rejected if the price changed after the buyer saw it.
type PurchaseRequest struct {
	ListingID     string `json:"listing_id" binding:"required,uuid"`
	ExpectedPrice int64  `json:"expected_price" binding:"gte=0"`
}

// PurchaseResponse is the response body for a settled purchase.
type PurchaseResponse struct {
	ID              string  `json:"id"`
	ListingID       string  `json:"listing_id"`
	SellerID        string  `json:"seller_id"`
	Amount          int64   `json:"amount"`
	SellerEarnings  int64   `json:"seller_earnings"`
	Commission      int64   `json:"commission"`
	AccessExpiresAt *string `json:"access_expires_at,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

// AccessResponse reports whether the caller may download a listing.
type AccessResponse struct {
	HasAccess bool `json:"has_access"`
}

// PaymentRequestBody is the request body for submitting a deposit or
// withdrawal request.
type PaymentRequestBody struct {
	Type     string        `json:"type" binding:"required,oneof=deposit withdrawal"`
	Amount   int64         `json:"amount" binding:"required,gt=0"`
	BankInfo *BankInfoBody `json:"bank_info,omitempty"`
}

// BankInfoBody holds payout details for withdrawal requests.
type BankInfoBody struct {
	BankName      string `json:"bank_name" binding:"required,max=100"`
	AccountNumber string `json:"account_number" binding:"required,max=50"`
	AccountHolder string `json:"account_holder" binding:"required,max=100"`
}

// ProcessRequestBody is the admin request body for approving or
// rejecting a payment request.
type ProcessRequestBody struct {
	Note string `json:"note" binding:"max=500"`
}

// PaymentRequestResponse is the public representation of a payment request.
type PaymentRequestResponse struct {
	ID          string        `json:"id"`
	AccountID   string        `json:"account_id"`
	Type        string        `json:"type"`
	Amount      int64         `json:"amount"`
	Status      string        `json:"status"`
	BankInfo    *BankInfoBody `json:"bank_info,omitempty"`
	AdminNote   *string       `json:"admin_note,omitempty"`
	ProcessedAt *string       `json:"processed_at,omitempty"`
	CreatedAt   string        `json:"created_at"`
}

// NotificationResponse is the public representation of a notification.
type NotificationResponse struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	RelatedID *string `json:"related_id,omitempty"`
	Read      bool    `json:"read"`
	CreatedAt string  `json:"created_at"`
}

// UnreadCountResponse is the response for the unread badge query.
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

// DashboardResponse is the per-user dashboard payload.
type DashboardResponse struct {
	Balance         int64 `json:"balance"`
	TotalSpent      int64 `json:"total_spent"`
	TotalEarned     int64 `json:"total_earned"`
	PurchaseCount   int64 `json:"purchase_count"`
	SalesCount      int64 `json:"sales_count"`
	PendingRequests int   `json:"pending_requests"`
	UnreadCount     int64 `json:"unread_count"`
}

// PlatformDashboardResponse is the admin dashboard payload.
type PlatformDashboardResponse struct {
	TotalPurchases  int64 `json:"total_purchases"`
	TotalVolume     int64 `json:"total_volume"`
	TotalCommission int64 `json:"total_commission"`
	PendingRequests int   `json:"pending_requests"`
}

// --- Mapping helpers ---

// FromAccount converts a domain account to its public representation.
func FromAccount(a *domain.Account) AccountResponse {
	return AccountResponse{
		ID:          a.ID.String(),
		Email:       a.Email,
		Username:    a.Username,
		DisplayName: a.DisplayName,
		Balance:     a.Balance,
		Role:        string(a.Role),
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
	}
}

// FromListing converts a domain listing to its public representation.
func FromListing(l *domain.Listing) ListingResponse {
	return ListingResponse{
		ID:            l.ID.String(),
		OwnerID:       l.OwnerID.String(),
		Title:         l.Title,
		Slug:          l.Slug,
		Description:   l.Description,
		Category:      l.Category,
		Price:         l.Price,
		PurchaseCount: l.PurchaseCount,
		Active:        l.Active,
		CreatedAt:     l.CreatedAt.Format(time.RFC3339),
	}
}

// FromPurchase converts a domain purchase to its public representation.
func FromPurchase(p *domain.Purchase) PurchaseResponse {
	resp := PurchaseResponse{
		ID:             p.ID.String(),
		ListingID:      p.ListingID.String(),
		SellerID:       p.SellerID.String(),
		Amount:         p.Amount,
		SellerEarnings: p.SellerEarnings,
		Commission:     p.Commission,
		CreatedAt:      p.CreatedAt.Format(time.RFC3339),
	}
	if p.AccessExpiresAt != nil {
		s := p.AccessExpiresAt.Format(time.RFC3339)
		resp.AccessExpiresAt = &s
	}
	return resp
}

// FromPaymentRequest converts a domain payment request to its public
// representation.
func FromPaymentRequest(r *domain.PaymentRequest) PaymentRequestResponse {
	resp := PaymentRequestResponse{
		ID:        r.ID.String(),
		AccountID: r.AccountID.String(),
		Type:      string(r.Type),
		Amount:    r.Amount,
		Status:    string(r.Status),
		AdminNote: r.AdminNote,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
	if r.BankInfo != nil {
		resp.BankInfo = &BankInfoBody{
			BankName:      r.BankInfo.BankName,
			AccountNumber: r.BankInfo.AccountNumber,
			AccountHolder: r.BankInfo.AccountHolder,
		}
	}
	if r.ProcessedAt != nil {
		s := r.ProcessedAt.Format(time.RFC3339)
		resp.ProcessedAt = &s
	}
	return resp
}

// FromNotification converts a domain notification to its public
// representation.
func FromNotification(n *domain.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:        n.ID.String(),
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
	if n.RelatedID != nil {
		s := n.RelatedID.String()
		resp.RelatedID = &s
	}
	return resp
}

// FromAccountDashboard converts the dashboard payload.
func FromAccountDashboard(d *ports.AccountDashboard) DashboardResponse {
	return DashboardResponse{
		Balance:         d.Balance,
		TotalSpent:      d.TotalSpent,
		TotalEarned:     d.TotalEarned,
		PurchaseCount:   d.PurchaseCount,
		SalesCount:      d.SalesCount,
		PendingRequests: d.PendingRequests,
		UnreadCount:     d.UnreadCount,
	}
}

// FromPlatformDashboard converts the admin dashboard payload.
func FromPlatformDashboard(d *ports.PlatformDashboard) PlatformDashboardResponse {
	return PlatformDashboardResponse{
		TotalPurchases:  d.TotalPurchases,
		TotalVolume:     d.TotalVolume,
		TotalCommission: d.TotalCommission,
		PendingRequests: d.PendingRequests,
	}
}
