package postgres

import (
	"context"
	"errors"
	"fmt"

	"codemarket/internal/core/domain"
	"codemarket/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PurchaseRepo implements ports.PurchaseRepository.
type PurchaseRepo struct {
	pool Pool
}

// NewPurchaseRepo creates a new PurchaseRepo.
func NewPurchaseRepo(pool Pool) *PurchaseRepo {
	return &PurchaseRepo{pool: pool}
}

const purchaseColumns = `id, buyer_id, listing_id, seller_id, amount, seller_earnings, commission, access_expires_at, created_at`

// Create inserts an immutable purchase record within a settlement
// transaction.
func (r *PurchaseRepo) Create(ctx context.Context, tx pgx.Tx, p *domain.Purchase) error {
	query := `INSERT INTO purchases (id, buyer_id, listing_id, seller_id, amount, seller_earnings, commission, access_expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := tx.Exec(ctx, query,
		p.ID, p.BuyerID, p.ListingID, p.SellerID, p.Amount,
		p.SellerEarnings, p.Commission, p.AccessExpiresAt, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}
	return nil
}

// GetByBuyerAndListing fetches the most recent purchase of a listing by a
// buyer, or nil when the buyer never bought it.
func (r *PurchaseRepo) GetByBuyerAndListing(ctx context.Context, buyerID, listingID uuid.UUID) (*domain.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases
		WHERE buyer_id = $1 AND listing_id = $2 ORDER BY created_at DESC LIMIT 1`

	p := &domain.Purchase{}
	err := r.pool.QueryRow(ctx, query, buyerID, listingID).Scan(
		&p.ID, &p.BuyerID, &p.ListingID, &p.SellerID, &p.Amount,
		&p.SellerEarnings, &p.Commission, &p.AccessExpiresAt, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	return p, nil
}

// ListByBuyer returns a buyer's purchase history, newest first.
func (r *PurchaseRepo) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]domain.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE buyer_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, buyerID)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var purchases []domain.Purchase
	for rows.Next() {
		var p domain.Purchase
		if err := rows.Scan(
			&p.ID, &p.BuyerID, &p.ListingID, &p.SellerID, &p.Amount,
			&p.SellerEarnings, &p.Commission, &p.AccessExpiresAt, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchases: %w", err)
	}

	return purchases, nil
}

// GetAccountStats aggregates per-account dashboard figures.
func (r *PurchaseRepo) GetAccountStats(ctx context.Context, accountID uuid.UUID) (*ports.AccountStats, error) {
	query := `SELECT
		COALESCE(SUM(amount) FILTER (WHERE buyer_id = $1), 0),
		COALESCE(SUM(seller_earnings) FILTER (WHERE seller_id = $1), 0),
		COUNT(*) FILTER (WHERE buyer_id = $1),
		COUNT(*) FILTER (WHERE seller_id = $1)
		FROM purchases WHERE buyer_id = $1 OR seller_id = $1`

	stats := &ports.AccountStats{}
	err := r.pool.QueryRow(ctx, query, accountID).Scan(
		&stats.TotalSpent, &stats.TotalEarned, &stats.PurchaseCount, &stats.SalesCount,
	)
	if err != nil {
		return nil, fmt.Errorf("account stats: %w", err)
	}
	return stats, nil
}

// GetPlatformStats aggregates platform-wide figures for the admin dashboard.
func (r *PurchaseRepo) GetPlatformStats(ctx context.Context) (*ports.PlatformStats, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(amount), 0), COALESCE(SUM(commission), 0) FROM purchases`

	stats := &ports.PlatformStats{}
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalPurchases, &stats.TotalVolume, &stats.TotalCommission,
	)
	if err != nil {
		return nil, fmt.Errorf("platform stats: %w", err)
	}
	return stats, nil
}
