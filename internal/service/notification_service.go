package service

import (
	"context"
	"fmt"
	"time"

	"codemarket/internal/core/domain"
	"codemarket/internal/core/ports"
	"codemarket/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// unreadCacheTTL bounds staleness of the cached unread counter.
const unreadCacheTTL = 5 * time.Minute

// NotificationServiceImpl implements ports.NotificationService.
// Notify is a pure side-effect sink: failures are logged and swallowed,
// never propagated to the financial operation that triggered them.
type NotificationServiceImpl struct {
	repo  ports.NotificationRepository
	cache ports.UnreadCache // nil = caching disabled
	log   zerolog.Logger
}

// NewNotificationService creates a new NotificationServiceImpl.
func NewNotificationService(repo ports.NotificationRepository, cache ports.UnreadCache, log zerolog.Logger) *NotificationServiceImpl {
	return &NotificationServiceImpl{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Notify records a notification for the account. It never fails the caller.
func (s *NotificationServiceImpl) Notify(ctx context.Context, accountID uuid.UUID, notifType domain.NotificationType, title, message string, relatedID *uuid.UUID) {
	n := &domain.Notification{
		ID:        uuid.New(),
		AccountID: accountID,
		Type:      notifType,
		Title:     title,
		Message:   message,
		RelatedID: relatedID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, n); err != nil {
		s.log.Warn().Err(err).
			Str("account_id", accountID.String()).
			Str("type", string(notifType)).
			Msg("notification write failed")
		return
	}

	s.invalidate(ctx, accountID)
}

// List returns the account's notifications.
func (s *NotificationServiceImpl) List(ctx context.Context, accountID uuid.UUID, unreadOnly bool) ([]domain.Notification, error) {
	notifications, err := s.repo.ListByAccount(ctx, accountID, unreadOnly)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list notifications: %w", err))
	}
	return notifications, nil
}

// MarkRead marks one notification as read.
func (s *NotificationServiceImpl) MarkRead(ctx context.Context, id, accountID uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, id, accountID); err != nil {
		return apperror.ErrNotFound("notification")
	}
	s.invalidate(ctx, accountID)
	return nil
}

// MarkAllRead marks all of the account's notifications as read.
func (s *NotificationServiceImpl) MarkAllRead(ctx context.Context, accountID uuid.UUID) error {
	if err := s.repo.MarkAllRead(ctx, accountID); err != nil {
		return apperror.InternalError(fmt.Errorf("mark all read: %w", err))
	}
	s.invalidate(ctx, accountID)
	return nil
}

// UnreadCount returns the unread notification count, served from the
// Redis cache when warm.
func (s *NotificationServiceImpl) UnreadCount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	if s.cache != nil {
		count, hit, err := s.cache.Get(ctx, accountID)
		if err != nil {
			s.log.Warn().Err(err).Msg("unread cache read failed, falling through to DB")
		} else if hit {
			return count, nil
		}
	}

	count, err := s.repo.CountUnread(ctx, accountID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("count unread: %w", err))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, accountID, count, unreadCacheTTL); err != nil {
			s.log.Warn().Err(err).Msg("unread cache write failed")
		}
	}

	return count, nil
}

func (s *NotificationServiceImpl) invalidate(ctx context.Context, accountID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, accountID); err != nil {
		s.log.Warn().Err(err).Str("account_id", accountID.String()).Msg("unread cache invalidation failed")
	}
}
