package service

import (
	"context"
	"errors"
	"testing"

	"codemarket/internal/core/domain"
	"codemarket/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func setupNotificationService(t *testing.T) (*NotificationServiceImpl, *mocks.MockNotificationRepository, *mocks.MockUnreadCache, *gomock.Controller) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockNotificationRepository(ctrl)
	cache := mocks.NewMockUnreadCache(ctrl)
	svc := NewNotificationService(repo, cache, zerolog.Nop())
	return svc, repo, cache, ctrl
}

func TestNotificationService_Notify(t *testing.T) {
	svc, repo, cache, ctrl := setupNotificationService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	accountID := uuid.New()
	relatedID := uuid.New()

	var created *domain.Notification
	repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, n *domain.Notification) error {
		created = n
		return nil
	})
	cache.EXPECT().Invalidate(ctx, accountID).Return(nil)

	svc.Notify(ctx, accountID, domain.NotificationSale, "Ban da co don hang moi", "chi tiet", &relatedID)

	require.NotNil(t, created)
	assert.Equal(t, accountID, created.AccountID)
	assert.Equal(t, domain.NotificationSale, created.Type)
	assert.False(t, created.Read)
	require.NotNil(t, created.RelatedID)
	assert.Equal(t, relatedID, *created.RelatedID)
}

func TestNotificationService_Notify_SwallowsWriteFailure(t *testing.T) {
	svc, repo, _, ctrl := setupNotificationService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	repo.EXPECT().Create(ctx, gomock.Any()).Return(errors.New("db down"))

	// Must not panic and must not touch the cache.
	svc.Notify(ctx, uuid.New(), domain.NotificationPurchase, "t", "m", nil)
}

func TestNotificationService_UnreadCount_CacheHit(t *testing.T) {
	svc, _, cache, ctrl := setupNotificationService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	accountID := uuid.New()
	cache.EXPECT().Get(ctx, accountID).Return(int64(7), true, nil)

	count, err := svc.UnreadCount(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
}

func TestNotificationService_UnreadCount_CacheMissFillsCache(t *testing.T) {
	svc, repo, cache, ctrl := setupNotificationService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	accountID := uuid.New()
	cache.EXPECT().Get(ctx, accountID).Return(int64(0), false, nil)
	repo.EXPECT().CountUnread(ctx, accountID).Return(int64(3), nil)
	cache.EXPECT().Set(ctx, accountID, int64(3), unreadCacheTTL).Return(nil)

	count, err := svc.UnreadCount(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestNotificationService_UnreadCount_CacheErrorFallsThrough(t *testing.T) {
	svc, repo, cache, ctrl := setupNotificationService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	accountID := uuid.New()
	cache.EXPECT().Get(ctx, accountID).Return(int64(0), false, errors.New("redis down"))
	repo.EXPECT().CountUnread(ctx, accountID).Return(int64(5), nil)
	cache.EXPECT().Set(ctx, accountID, int64(5), unreadCacheTTL).Return(errors.New("redis down"))

	count, err := svc.UnreadCount(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

func TestNotificationService_MarkRead_InvalidatesCache(t *testing.T) {
	svc, repo, cache, ctrl := setupNotificationService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	accountID := uuid.New()
	notifID := uuid.New()
	repo.EXPECT().MarkRead(ctx, notifID, accountID).Return(nil)
	cache.EXPECT().Invalidate(ctx, accountID).Return(nil)

	require.NoError(t, svc.MarkRead(ctx, notifID, accountID))
}

func TestNotificationService_MarkRead_NotFound(t *testing.T) {
	svc, repo, _, ctrl := setupNotificationService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	accountID := uuid.New()
	notifID := uuid.New()
	repo.EXPECT().MarkRead(ctx, notifID, accountID).Return(errors.New("no rows"))

	err := svc.MarkRead(ctx, notifID, accountID)
	assertAppError(t, err, "GEN_001")
}

func TestNotificationService_MarkAllRead(t *testing.T) {
	svc, repo, cache, ctrl := setupNotificationService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	accountID := uuid.New()
	repo.EXPECT().MarkAllRead(ctx, accountID).Return(nil)
	cache.EXPECT().Invalidate(ctx, accountID).Return(nil)

	require.NoError(t, svc.MarkAllRead(ctx, accountID))
}

func TestNotificationService_List(t *testing.T) {
	svc, repo, _, ctrl := setupNotificationService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	accountID := uuid.New()
	repo.EXPECT().ListByAccount(ctx, accountID, true).Return([]domain.Notification{
		{ID: uuid.New(), AccountID: accountID, Type: domain.NotificationPurchase},
	}, nil)

	notifications, err := svc.List(ctx, accountID, true)
	require.NoError(t, err)
	assert.Len(t, notifications, 1)
}

func TestNotificationService_NilCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := mocks.NewMockNotificationRepository(ctrl)
	svc := NewNotificationService(repo, nil, zerolog.Nop())

	ctx := context.Background()
	accountID := uuid.New()
	repo.EXPECT().CountUnread(ctx, accountID).Return(int64(2), nil)

	count, err := svc.UnreadCount(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
