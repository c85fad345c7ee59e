package service

import (
	"context"
	"fmt"

	"codemarket/internal/core/ports"
	"codemarket/pkg/apperror"

	"github.com/google/uuid"
)

// ReportingServiceImpl implements ports.ReportingService.
type ReportingServiceImpl struct {
	accountRepo  ports.AccountRepository
	purchaseRepo ports.PurchaseRepository
	requestRepo  ports.PaymentRequestRepository
	notifSvc     ports.NotificationService
}

// NewReportingService creates a new ReportingServiceImpl.
func NewReportingService(
	accountRepo ports.AccountRepository,
	purchaseRepo ports.PurchaseRepository,
	requestRepo ports.PaymentRequestRepository,
	notifSvc ports.NotificationService,
) *ReportingServiceImpl {
	return &ReportingServiceImpl{
		accountRepo:  accountRepo,
		purchaseRepo: purchaseRepo,
		requestRepo:  requestRepo,
		notifSvc:     notifSvc,
	}
}

// GetAccountDashboard assembles the per-user dashboard payload.
func (s *ReportingServiceImpl) GetAccountDashboard(ctx context.Context, accountID uuid.UUID) (*ports.AccountDashboard, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrNotFound("account")
	}

	stats, err := s.purchaseRepo.GetAccountStats(ctx, accountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("account stats: %w", err))
	}

	requests, err := s.requestRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list requests: %w", err))
	}
	pending := 0
	for _, r := range requests {
		if r.IsPending() {
			pending++
		}
	}

	unread, err := s.notifSvc.UnreadCount(ctx, accountID)
	if err != nil {
		// Dashboard still renders without the badge count.
		unread = 0
	}

	return &ports.AccountDashboard{
		Balance:         account.Balance,
		TotalSpent:      stats.TotalSpent,
		TotalEarned:     stats.TotalEarned,
		PurchaseCount:   stats.PurchaseCount,
		SalesCount:      stats.SalesCount,
		PendingRequests: pending,
		UnreadCount:     unread,
	}, nil
}

// GetPlatformDashboard assembles the admin dashboard payload.
func (s *ReportingServiceImpl) GetPlatformDashboard(ctx context.Context) (*ports.PlatformDashboard, error) {
	stats, err := s.purchaseRepo.GetPlatformStats(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("platform stats: %w", err))
	}

	pending, err := s.requestRepo.ListPending(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list pending: %w", err))
	}

	return &ports.PlatformDashboard{
		TotalPurchases:  stats.TotalPurchases,
		TotalVolume:     stats.TotalVolume,
		TotalCommission: stats.TotalCommission,
		PendingRequests: len(pending),
	}, nil
}
