package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"codemarket/internal/core/domain"
	"codemarket/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ListingRepo implements ports.ListingRepository.
type ListingRepo struct {
	pool Pool
}

// NewListingRepo creates a new ListingRepo.
func NewListingRepo(pool Pool) *ListingRepo {
	return &ListingRepo{pool: pool}
}

const listingColumns = `id, owner_id, title, slug, description, category, price, purchase_count, is_active, created_at, updated_at`

func scanListing(row pgx.Row) (*domain.Listing, error) {
	l := &domain.Listing{}
	err := row.Scan(
		&l.ID, &l.OwnerID, &l.Title, &l.Slug, &l.Description, &l.Category,
		&l.Price, &l.PurchaseCount, &l.Active, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return l, nil
}

// Create inserts a new listing.
func (r *ListingRepo) Create(ctx context.Context, l *domain.Listing) error {
	query := `INSERT INTO listings (id, owner_id, title, slug, description, category, price, purchase_count, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		l.ID, l.OwnerID, l.Title, l.Slug, l.Description, l.Category,
		l.Price, l.PurchaseCount, l.Active, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

// GetByID fetches a listing by its UUID.
func (r *ListingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`

	l, err := scanListing(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get listing by id: %w", err)
	}
	return l, nil
}

// GetByIDForUpdate fetches a listing with a row lock inside a
// settlement transaction.
func (r *ListingRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1 FOR UPDATE`

	l, err := scanListing(tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get listing for update: %w", err)
	}
	return l, nil
}

// List returns listings matching the filter with total count.
func (r *ListingRepo) List(ctx context.Context, params ports.ListingListParams) ([]domain.Listing, int64, error) {
	where := []string{"1=1"}
	args := []any{}
	argN := 1

	if params.ActiveOnly {
		where = append(where, "is_active = TRUE")
	}
	if params.Category != "" {
		where = append(where, fmt.Sprintf("category = $%d", argN))
		args = append(args, params.Category)
		argN++
	}
	if params.OwnerID != nil {
		where = append(where, fmt.Sprintf("owner_id = $%d", argN))
		args = append(args, *params.OwnerID)
		argN++
	}

	whereClause := strings.Join(where, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM listings WHERE ` + whereClause
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count listings: %w", err)
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := fmt.Sprintf(
		`SELECT %s FROM listings WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		listingColumns, whereClause, argN, argN+1,
	)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		var l domain.Listing
		if err := rows.Scan(
			&l.ID, &l.OwnerID, &l.Title, &l.Slug, &l.Description, &l.Category,
			&l.Price, &l.PurchaseCount, &l.Active, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate listings: %w", err)
	}

	return listings, total, nil
}

// Update persists mutable listing fields.
func (r *ListingRepo) Update(ctx context.Context, l *domain.Listing) error {
	query := `UPDATE listings SET title = $1, description = $2, category = $3, price = $4, is_active = $5, updated_at = NOW()
		WHERE id = $6`

	tag, err := r.pool.Exec(ctx, query, l.Title, l.Description, l.Category, l.Price, l.Active, l.ID)
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("listing not found: %s", l.ID)
	}
	return nil
}

// IncrementPurchaseCount bumps the purchase counter within a settlement
// transaction.
func (r *ListingRepo) IncrementPurchaseCount(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	query := `UPDATE listings SET purchase_count = purchase_count + 1, updated_at = NOW() WHERE id = $1`

	tag, err := tx.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment purchase count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("listing not found: %s", id)
	}
	return nil
}
