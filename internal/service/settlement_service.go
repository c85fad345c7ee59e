package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"codemarket/internal/core/domain"
	"codemarket/internal/core/ports"
	"codemarket/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// SettlementServiceImpl implements ports.SettlementService.
//
// A settlement is a single database transaction: buyer debit, seller
// credit, listing counter increment and the purchase record all commit
// together or not at all. Notifications happen after commit and never
// affect the financial outcome.
type SettlementServiceImpl struct {
	accountRepo  ports.AccountRepository
	listingRepo  ports.ListingRepository
	purchaseRepo ports.PurchaseRepository
	transactor   ports.DBTransactor
	notifSvc     ports.NotificationService
	mailer       ports.Mailer // nil = email disabled
	accessTTL    time.Duration // 0 = access never expires
	log          zerolog.Logger
}

// NewSettlementService creates a new SettlementServiceImpl.
func NewSettlementService(
	accountRepo ports.AccountRepository,
	listingRepo ports.ListingRepository,
	purchaseRepo ports.PurchaseRepository,
	transactor ports.DBTransactor,
	notifSvc ports.NotificationService,
	mailer ports.Mailer,
	accessTTL time.Duration,
	log zerolog.Logger,
) *SettlementServiceImpl {
	return &SettlementServiceImpl{
		accountRepo:  accountRepo,
		listingRepo:  listingRepo,
		purchaseRepo: purchaseRepo,
		transactor:   transactor,
		notifSvc:     notifSvc,
		mailer:       mailer,
		accessTTL:    accessTTL,
		log:          log,
	}
}

// SettlePurchase executes the purchase algorithm.
func (s *SettlementServiceImpl) SettlePurchase(ctx context.Context, req ports.SettleRequest) (*domain.Purchase, error) {
	if req.ExpectedPrice < 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	listing, err := s.listingRepo.GetByID(ctx, req.ListingID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load listing: %w", err))
	}
	if listing == nil {
		return nil, apperror.ErrNotFound("listing")
	}
	if !listing.Active {
		return nil, apperror.ErrListingUnavailable()
	}
	if listing.OwnerID == req.BuyerID {
		return nil, apperror.ErrInvalidPurchase()
	}
	// Stale-price guard: the client must have seen the current price.
	if listing.Price != req.ExpectedPrice {
		return nil, apperror.ErrPriceMismatch()
	}

	existing, err := s.purchaseRepo.GetByBuyerAndListing(ctx, req.BuyerID, req.ListingID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check prior purchase: %w", err))
	}
	if existing != nil && existing.AccessValid(time.Now().UTC()) {
		return nil, apperror.ErrAlreadyPurchased()
	}

	// Begin database transaction
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Re-read under lock: the pre-transaction checks ran on a snapshot,
	// so the price and active flag must be confirmed before money moves.
	listing, err = s.listingRepo.GetByIDForUpdate(ctx, dbTx, req.ListingID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock listing: %w", err))
	}
	if listing == nil || !listing.Active {
		return nil, apperror.ErrListingUnavailable()
	}
	if listing.Price != req.ExpectedPrice {
		return nil, apperror.ErrPriceMismatch()
	}

	price := listing.Price
	earnings, commission := domain.SplitAmount(price)

	if price > 0 {
		buyer, seller, err := s.lockAccountPair(ctx, dbTx, req.BuyerID, listing.OwnerID)
		if err != nil {
			return nil, err
		}
		if !buyer.CanDebit(price) {
			return nil, apperror.ErrInsufficientBalance()
		}

		if err := s.accountRepo.SetBalance(ctx, dbTx, buyer.ID, buyer.Balance-price); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("debit buyer: %w", err))
		}
		if err := s.accountRepo.SetBalance(ctx, dbTx, seller.ID, seller.Balance+earnings); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("credit seller: %w", err))
		}
	}

	if err := s.listingRepo.IncrementPurchaseCount(ctx, dbTx, listing.ID); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("bump purchase count: %w", err))
	}

	now := time.Now().UTC()
	purchase := &domain.Purchase{
		ID:             uuid.New(),
		BuyerID:        req.BuyerID,
		ListingID:      listing.ID,
		SellerID:       listing.OwnerID,
		Amount:         price,
		SellerEarnings: earnings,
		Commission:     commission,
		CreatedAt:      now,
	}
	if s.accessTTL > 0 {
		expiry := now.Add(s.accessTTL)
		purchase.AccessExpiresAt = &expiry
	}

	if err := s.purchaseRepo.Create(ctx, dbTx, purchase); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create purchase record: %w", err))
	}

	// Commit
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	// Post-process: notifications are outside the atomic boundary.
	s.notifSvc.Notify(ctx, listing.OwnerID, domain.NotificationSale,
		"Ban da co don hang moi",
		fmt.Sprintf("Ma nguon %q vua duoc mua voi gia %d VND, ban nhan %d VND.", listing.Title, price, earnings),
		&purchase.ID)
	s.notifSvc.Notify(ctx, req.BuyerID, domain.NotificationPurchase,
		"Mua hang thanh cong",
		fmt.Sprintf("Ban da mua ma nguon %q voi gia %d VND.", listing.Title, price),
		&purchase.ID)
	s.emailSeller(ctx, listing, purchase)

	s.log.Info().
		Str("purchase_id", purchase.ID.String()).
		Str("buyer_id", req.BuyerID.String()).
		Str("listing_id", listing.ID.String()).
		Int64("amount", price).
		Int64("seller_earnings", earnings).
		Int64("commission", commission).
		Msg("purchase settled")

	return purchase, nil
}

// lockAccountPair takes FOR UPDATE locks on both accounts in ascending
// id order so that two crossing settlements cannot deadlock.
func (s *SettlementServiceImpl) lockAccountPair(ctx context.Context, tx pgx.Tx, buyerID, sellerID uuid.UUID) (buyer, seller *domain.Account, err error) {
	first, second := buyerID, sellerID
	if bytes.Compare(second[:], first[:]) < 0 {
		first, second = second, first
	}

	a1, err := s.accountRepo.GetByIDForUpdate(ctx, tx, first)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("lock account: %w", err))
	}
	a2, err := s.accountRepo.GetByIDForUpdate(ctx, tx, second)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("lock account: %w", err))
	}
	if a1 == nil || a2 == nil {
		return nil, nil, apperror.ErrNotFound("account")
	}

	if a1.ID == buyerID {
		return a1, a2, nil
	}
	return a2, a1, nil
}

func (s *SettlementServiceImpl) emailSeller(ctx context.Context, listing *domain.Listing, purchase *domain.Purchase) {
	if s.mailer == nil {
		return
	}
	seller, err := s.accountRepo.GetByID(ctx, listing.OwnerID)
	if err != nil || seller == nil || seller.Email == "" {
		return
	}

	subject := "Don hang moi tren CodeMarket"
	body := fmt.Sprintf(
		"<p>Xin chao %s,</p><p>Ma nguon <b>%s</b> vua duoc ban voi gia %d VND. Ban nhan duoc %d VND.</p>",
		seller.DisplayName, listing.Title, purchase.Amount, purchase.SellerEarnings,
	)
	go func() {
		if err := s.mailer.Send(seller.Email, subject, body); err != nil {
			s.log.Warn().Err(err).Str("seller_id", seller.ID.String()).Msg("sale email delivery failed")
		}
	}()
}

// HasAccess reports whether the buyer currently holds access to the
// listing's content.
func (s *SettlementServiceImpl) HasAccess(ctx context.Context, buyerID, listingID uuid.UUID) (bool, error) {
	purchase, err := s.purchaseRepo.GetByBuyerAndListing(ctx, buyerID, listingID)
	if err != nil {
		return false, apperror.InternalError(fmt.Errorf("load purchase: %w", err))
	}
	if purchase == nil {
		return false, nil
	}
	return purchase.AccessValid(time.Now().UTC()), nil
}

// ListPurchases returns the buyer's purchase history.
func (s *SettlementServiceImpl) ListPurchases(ctx context.Context, buyerID uuid.UUID) ([]domain.Purchase, error) {
	purchases, err := s.purchaseRepo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list purchases: %w", err))
	}
	return purchases, nil
}
