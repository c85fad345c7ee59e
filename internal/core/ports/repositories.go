package ports

import (
	"context"
	"time"

	"codemarket/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AccountRepository defines persistence operations for accounts.
// Methods accepting pgx.Tx are used inside settlement transactions
// for pessimistic row locking.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Account, error)
	// UpdateBalance performs a conditional compare-and-swap write: the new
	// balance is stored only if the persisted balance still equals
	// expectedPrevious. Returns false on conflict.
	UpdateBalance(ctx context.Context, id uuid.UUID, newBalance, expectedPrevious int64) (bool, error)
	// SetBalance writes a balance inside a transaction whose row lock was
	// taken via GetByIDForUpdate.
	SetBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance int64) error
}

// ListingRepository defines persistence operations for listings.
type ListingRepository interface {
	Create(ctx context.Context, listing *domain.Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	// GetByIDForUpdate reads a listing with a FOR UPDATE row lock so the
	// price seen inside a settlement transaction cannot change before
	// commit.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Listing, error)
	List(ctx context.Context, params ListingListParams) ([]domain.Listing, int64, error)
	Update(ctx context.Context, listing *domain.Listing) error
	IncrementPurchaseCount(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

// ListingListParams holds filter + pagination for listing queries.
type ListingListParams struct {
	Category   string
	OwnerID    *uuid.UUID
	ActiveOnly bool
	Page       int
	PageSize   int
}

// PurchaseRepository defines persistence for immutable purchase records.
type PurchaseRepository interface {
	Create(ctx context.Context, tx pgx.Tx, purchase *domain.Purchase) error
	GetByBuyerAndListing(ctx context.Context, buyerID, listingID uuid.UUID) (*domain.Purchase, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]domain.Purchase, error)
	// Reporting queries
	GetAccountStats(ctx context.Context, accountID uuid.UUID) (*AccountStats, error)
	GetPlatformStats(ctx context.Context) (*PlatformStats, error)
}

// AccountStats holds per-account dashboard aggregates.
type AccountStats struct {
	TotalSpent    int64
	TotalEarned   int64
	PurchaseCount int64
	SalesCount    int64
}

// PlatformStats holds admin dashboard aggregates.
type PlatformStats struct {
	TotalPurchases  int64
	TotalVolume     int64
	TotalCommission int64
}

// PaymentRequestRepository defines persistence for payment requests.
type PaymentRequestRepository interface {
	Create(ctx context.Context, request *domain.PaymentRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentRequest, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.PaymentRequest, error)
	ListPending(ctx context.Context) ([]domain.PaymentRequest, error)
	// MarkProcessed flips a pending request to a terminal status. The update
	// is conditional on status still being pending; returns false if the
	// request was already processed.
	MarkProcessed(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.PaymentRequestStatus, adminID uuid.UUID, note *string, processedAt time.Time) (bool, error)
}

// NotificationRepository defines persistence for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, unreadOnly bool) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, accountID uuid.UUID) error
	MarkAllRead(ctx context.Context, accountID uuid.UUID) error
	CountUnread(ctx context.Context, accountID uuid.UUID) (int64, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
