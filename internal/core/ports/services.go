package ports

import (
	"context"
	"time"

	"codemarket/internal/core/domain"

	"github.com/google/uuid"
)

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(accountID uuid.UUID, role domain.Role) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	AccountID uuid.UUID
	Role      domain.Role
}

// Mailer sends templated HTML email. Delivery is best-effort; callers
// must never fail a financial operation on a mailer error.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// UnreadCache caches per-account unread notification counts.
type UnreadCache interface {
	Get(ctx context.Context, accountID uuid.UUID) (int64, bool, error)
	Set(ctx context.Context, accountID uuid.UUID, count int64, ttl time.Duration) error
	Invalidate(ctx context.Context, accountID uuid.UUID) error
}

// --- Service Ports (Business Logic) ---

// LedgerService owns all account balance mutations.
type LedgerService interface {
	// Credit adds amount to the account balance and returns the new balance.
	Credit(ctx context.Context, accountID uuid.UUID, amount int64) (int64, error)
	// Debit subtracts amount from the account balance and returns the new
	// balance. The balance never goes negative.
	Debit(ctx context.Context, accountID uuid.UUID, amount int64) (int64, error)
	GetBalance(ctx context.Context, accountID uuid.UUID) (int64, error)
}

// SettlementService executes atomic purchase settlements.
type SettlementService interface {
	SettlePurchase(ctx context.Context, req SettleRequest) (*domain.Purchase, error)
	HasAccess(ctx context.Context, buyerID, listingID uuid.UUID) (bool, error)
	ListPurchases(ctx context.Context, buyerID uuid.UUID) ([]domain.Purchase, error)
}

// SettleRequest holds validated input for purchase settlement.
// ExpectedPrice is the price the client saw; settlement fails if the
// listing price has changed since.
type SettleRequest struct {
	BuyerID       uuid.UUID
	ListingID     uuid.UUID
	ExpectedPrice int64
}

// PaymentRequestService drives the deposit/withdrawal workflow.
type PaymentRequestService interface {
	Submit(ctx context.Context, req SubmitPaymentRequest) (*domain.PaymentRequest, error)
	Approve(ctx context.Context, requestID, adminID uuid.UUID, note string) (*domain.PaymentRequest, error)
	Reject(ctx context.Context, requestID, adminID uuid.UUID, note string) (*domain.PaymentRequest, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.PaymentRequest, error)
	ListPending(ctx context.Context) ([]domain.PaymentRequest, error)
}

// SubmitPaymentRequest holds validated input for a new payment request.
type SubmitPaymentRequest struct {
	AccountID uuid.UUID
	Type      domain.PaymentRequestType
	Amount    int64
	BankInfo  *domain.BankInfo
}

// NotificationService dispatches and queries notifications.
type NotificationService interface {
	// Notify is fire-and-forget: it never returns an error and must not
	// fail the triggering operation.
	Notify(ctx context.Context, accountID uuid.UUID, notifType domain.NotificationType, title, message string, relatedID *uuid.UUID)
	List(ctx context.Context, accountID uuid.UUID, unreadOnly bool) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, accountID uuid.UUID) error
	MarkAllRead(ctx context.Context, accountID uuid.UUID) error
	UnreadCount(ctx context.Context, accountID uuid.UUID) (int64, error)
}

// AuthService defines authentication business logic.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.Account, error)
	Login(ctx context.Context, login, password string) (string, time.Time, error) // token, expiry, error
}

// RegisterRequest holds input for account registration.
type RegisterRequest struct {
	Email       string
	Username    string
	Password    string
	DisplayName string
}

// CatalogService manages the listing catalog.
type CatalogService interface {
	CreateListing(ctx context.Context, req CreateListingRequest) (*domain.Listing, error)
	UpdateListing(ctx context.Context, req UpdateListingRequest) (*domain.Listing, error)
	GetListing(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	ListListings(ctx context.Context, params ListingListParams) ([]domain.Listing, int64, error)
}

// CreateListingRequest holds validated input for a new listing.
type CreateListingRequest struct {
	OwnerID     uuid.UUID
	Title       string
	Slug        string
	Description string
	Category    string
	Price       int64
}

// UpdateListingRequest holds a partial listing update. Nil fields are
// left unchanged. ActorID must be the owner or an admin.
type UpdateListingRequest struct {
	ListingID    uuid.UUID
	ActorID      uuid.UUID
	ActorIsAdmin bool
	Title        *string
	Description  *string
	Category     *string
	Price        *int64
	Active       *bool
}

// ReportingService defines dashboard business logic.
type ReportingService interface {
	GetAccountDashboard(ctx context.Context, accountID uuid.UUID) (*AccountDashboard, error)
	GetPlatformDashboard(ctx context.Context) (*PlatformDashboard, error)
}

// AccountDashboard is the per-user dashboard payload.
type AccountDashboard struct {
	Balance         int64
	TotalSpent      int64
	TotalEarned     int64
	PurchaseCount   int64
	SalesCount      int64
	PendingRequests int
	UnreadCount     int64
}

// PlatformDashboard is the admin dashboard payload.
type PlatformDashboard struct {
	TotalPurchases  int64
	TotalVolume     int64
	TotalCommission int64
	PendingRequests int
}
