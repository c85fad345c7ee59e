package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"codemarket/internal/core/domain"
	"codemarket/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Account Repo ---

type inMemoryAccountRepo struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*domain.Account
}

func newInMemoryAccountRepo() *inMemoryAccountRepo {
	return &inMemoryAccountRepo{accounts: make(map[uuid.UUID]*domain.Account)}
}

func (r *inMemoryAccountRepo) Create(ctx context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Email == a.Email {
			return fmt.Errorf("email already exists")
		}
		if existing.Username == a.Username {
			return fmt.Errorf("username already exists")
		}
	}
	cp := *a
	r.accounts[a.ID] = &cp
	return nil
}

func (r *inMemoryAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *inMemoryAccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryAccountRepo) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.Username == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryAccountRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Account, error) {
	return r.GetByID(ctx, id)
}

// UpdateBalance is a genuine compare-and-swap under the repo mutex, so
// concurrent ledger operations observe the same semantics as the
// conditional UPDATE in PostgreSQL.
func (r *inMemoryAccountRepo) UpdateBalance(ctx context.Context, id uuid.UUID, newBalance, expectedPrevious int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return false, fmt.Errorf("account not found")
	}
	if a.Balance != expectedPrevious {
		return false, nil
	}
	a.Balance = newBalance
	return true, nil
}

func (r *inMemoryAccountRepo) SetBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return fmt.Errorf("account not found")
	}
	a.Balance = balance
	return nil
}

// --- In-Memory Listing Repo ---

type inMemoryListingRepo struct {
	mu       sync.RWMutex
	listings map[uuid.UUID]*domain.Listing
}

func newInMemoryListingRepo() *inMemoryListingRepo {
	return &inMemoryListingRepo{listings: make(map[uuid.UUID]*domain.Listing)}
}

func (r *inMemoryListingRepo) Create(ctx context.Context, l *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *l
	r.listings[l.ID] = &cp
	return nil
}

func (r *inMemoryListingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.listings[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *inMemoryListingRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Listing, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryListingRepo) List(ctx context.Context, params ports.ListingListParams) ([]domain.Listing, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Listing
	for _, l := range r.listings {
		if params.ActiveOnly && !l.Active {
			continue
		}
		if params.Category != "" && l.Category != params.Category {
			continue
		}
		if params.OwnerID != nil && l.OwnerID != *params.OwnerID {
			continue
		}
		result = append(result, *l)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	total := int64(len(result))

	// Simple pagination
	start := (params.Page - 1) * params.PageSize
	if start >= len(result) {
		return []domain.Listing{}, total, nil
	}
	end := start + params.PageSize
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

func (r *inMemoryListingRepo) Update(ctx context.Context, l *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.listings[l.ID]; !ok {
		return fmt.Errorf("listing not found")
	}
	cp := *l
	r.listings[l.ID] = &cp
	return nil
}

func (r *inMemoryListingRepo) IncrementPurchaseCount(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	if !ok {
		return fmt.Errorf("listing not found")
	}
	l.PurchaseCount++
	return nil
}

// --- In-Memory Purchase Repo ---

type inMemoryPurchaseRepo struct {
	mu        sync.RWMutex
	purchases map[uuid.UUID]*domain.Purchase
}

func newInMemoryPurchaseRepo() *inMemoryPurchaseRepo {
	return &inMemoryPurchaseRepo{purchases: make(map[uuid.UUID]*domain.Purchase)}
}

func (r *inMemoryPurchaseRepo) Create(ctx context.Context, tx pgx.Tx, p *domain.Purchase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.purchases[p.ID] = &cp
	return nil
}

func (r *inMemoryPurchaseRepo) GetByBuyerAndListing(ctx context.Context, buyerID, listingID uuid.UUID) (*domain.Purchase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *domain.Purchase
	for _, p := range r.purchases {
		if p.BuyerID != buyerID || p.ListingID != listingID {
			continue
		}
		if latest == nil || p.CreatedAt.After(latest.CreatedAt) {
			latest = p
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (r *inMemoryPurchaseRepo) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]domain.Purchase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Purchase
	for _, p := range r.purchases {
		if p.BuyerID == buyerID {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *inMemoryPurchaseRepo) GetAccountStats(ctx context.Context, accountID uuid.UUID) (*ports.AccountStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := &ports.AccountStats{}
	for _, p := range r.purchases {
		if p.BuyerID == accountID {
			stats.TotalSpent += p.Amount
			stats.PurchaseCount++
		}
		if p.SellerID == accountID {
			stats.TotalEarned += p.SellerEarnings
			stats.SalesCount++
		}
	}
	return stats, nil
}

func (r *inMemoryPurchaseRepo) GetPlatformStats(ctx context.Context) (*ports.PlatformStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := &ports.PlatformStats{}
	for _, p := range r.purchases {
		stats.TotalPurchases++
		stats.TotalVolume += p.Amount
		stats.TotalCommission += p.Commission
	}
	return stats, nil
}

// --- In-Memory Payment Request Repo ---

type inMemoryPaymentRequestRepo struct {
	mu       sync.RWMutex
	requests map[uuid.UUID]*domain.PaymentRequest
}

func newInMemoryPaymentRequestRepo() *inMemoryPaymentRequestRepo {
	return &inMemoryPaymentRequestRepo{requests: make(map[uuid.UUID]*domain.PaymentRequest)}
}

func (r *inMemoryPaymentRequestRepo) Create(ctx context.Context, req *domain.PaymentRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

func (r *inMemoryPaymentRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *req
	return &cp, nil
}

func (r *inMemoryPaymentRequestRepo) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.PaymentRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.PaymentRequest
	for _, req := range r.requests {
		if req.AccountID == accountID {
			result = append(result, *req)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *inMemoryPaymentRequestRepo) ListPending(ctx context.Context) ([]domain.PaymentRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.PaymentRequest
	for _, req := range r.requests {
		if req.Status == domain.PaymentRequestPending {
			result = append(result, *req)
		}
	}
	return result, nil
}

// MarkProcessed is conditional on the stored status still being pending,
// matching the guarded UPDATE in PostgreSQL. The check and the flip
// happen under one mutex hold, so only one concurrent caller wins.
func (r *inMemoryPaymentRequestRepo) MarkProcessed(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.PaymentRequestStatus, adminID uuid.UUID, note *string, processedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return false, nil
	}
	if req.Status != domain.PaymentRequestPending {
		return false, nil
	}
	req.Status = status
	req.ProcessedBy = &adminID
	req.AdminNote = note
	req.ProcessedAt = &processedAt
	return true, nil
}

// --- In-Memory Notification Repo ---

type inMemoryNotificationRepo struct {
	mu            sync.RWMutex
	notifications map[uuid.UUID]*domain.Notification
}

func newInMemoryNotificationRepo() *inMemoryNotificationRepo {
	return &inMemoryNotificationRepo{notifications: make(map[uuid.UUID]*domain.Notification)}
}

func (r *inMemoryNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *n
	r.notifications[n.ID] = &cp
	return nil
}

func (r *inMemoryNotificationRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, unreadOnly bool) ([]domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Notification
	for _, n := range r.notifications {
		if n.AccountID != accountID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		result = append(result, *n)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *inMemoryNotificationRepo) MarkRead(ctx context.Context, id, accountID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok || n.AccountID != accountID {
		return fmt.Errorf("notification not found")
	}
	n.Read = true
	return nil
}

func (r *inMemoryNotificationRepo) MarkAllRead(ctx context.Context, accountID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.AccountID == accountID {
			n.Read = true
		}
	}
	return nil
}

func (r *inMemoryNotificationRepo) CountUnread(ctx context.Context, accountID uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, n := range r.notifications {
		if n.AccountID == accountID && !n.Read {
			count++
		}
	}
	return count, nil
}

// --- In-Memory Transactor (no-op tx) ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }
