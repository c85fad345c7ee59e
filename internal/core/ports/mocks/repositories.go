package mocks

import (
	"context"
	"reflect"
	"time"

	"codemarket/internal/core/domain"
	"codemarket/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/mock/gomock"
)

// MockAccountRepository is a mock of AccountRepository.
type MockAccountRepository struct {
	ctrl     *gomock.Controller
	recorder *MockAccountRepositoryMockRecorder
}

// MockAccountRepositoryMockRecorder is the mock recorder for
// MockAccountRepository.
type MockAccountRepositoryMockRecorder struct {
	mock *MockAccountRepository
}

// NewMockAccountRepository creates a new mock instance.
func NewMockAccountRepository(ctrl *gomock.Controller) *MockAccountRepository {
	mock := &MockAccountRepository{ctrl: ctrl}
	mock.recorder = &MockAccountRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockAccountRepository) EXPECT() *MockAccountRepositoryMockRecorder {
	return m.recorder
}

// Create mocks base method.
func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Create", ctx, account)
	ret0, _ := ret[0].(error)
	return ret0
}

// Create indicates an expected call of Create.
func (mr *MockAccountRepositoryMockRecorder) Create(ctx, account any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Create", reflect.TypeOf((*MockAccountRepository)(nil).Create), ctx, account)
}

// GetByID mocks base method.
func (m *MockAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetByID", ctx, id)
	ret0, _ := ret[0].(*domain.Account)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetByID indicates an expected call of GetByID.
func (mr *MockAccountRepositoryMockRecorder) GetByID(ctx, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetByID", reflect.TypeOf((*MockAccountRepository)(nil).GetByID), ctx, id)
}

// GetByEmail mocks base method.
func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetByEmail", ctx, email)
	ret0, _ := ret[0].(*domain.Account)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetByEmail indicates an expected call of GetByEmail.
func (mr *MockAccountRepositoryMockRecorder) GetByEmail(ctx, email any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetByEmail", reflect.TypeOf((*MockAccountRepository)(nil).GetByEmail), ctx, email)
}

// GetByUsername mocks base method.
func (m *MockAccountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetByUsername", ctx, username)
	ret0, _ := ret[0].(*domain.Account)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetByUsername indicates an expected call of GetByUsername.
func (mr *MockAccountRepositoryMockRecorder) GetByUsername(ctx, username any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetByUsername", reflect.TypeOf((*MockAccountRepository)(nil).GetByUsername), ctx, username)
}

// GetByIDForUpdate mocks base method.
func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Account, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetByIDForUpdate", ctx, tx, id)
	ret0, _ := ret[0].(*domain.Account)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetByIDForUpdate indicates an expected call of GetByIDForUpdate.
func (mr *MockAccountRepositoryMockRecorder) GetByIDForUpdate(ctx, tx, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetByIDForUpdate", reflect.TypeOf((*MockAccountRepository)(nil).GetByIDForUpdate), ctx, tx, id)
}

// UpdateBalance mocks base method.
func (m *MockAccountRepository) UpdateBalance(ctx context.Context, id uuid.UUID, newBalance, expectedPrevious int64) (bool, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "UpdateBalance", ctx, id, newBalance, expectedPrevious)
	ret0, _ := ret[0].(bool)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// UpdateBalance indicates an expected call of UpdateBalance.
func (mr *MockAccountRepositoryMockRecorder) UpdateBalance(ctx, id, newBalance, expectedPrevious any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "UpdateBalance", reflect.TypeOf((*MockAccountRepository)(nil).UpdateBalance), ctx, id, newBalance, expectedPrevious)
}

// SetBalance mocks base method.
func (m *MockAccountRepository) SetBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance int64) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SetBalance", ctx, tx, id, balance)
	ret0, _ := ret[0].(error)
	return ret0
}

// SetBalance indicates an expected call of SetBalance.
func (mr *MockAccountRepositoryMockRecorder) SetBalance(ctx, tx, id, balance any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SetBalance", reflect.TypeOf((*MockAccountRepository)(nil).SetBalance), ctx, tx, id, balance)
}

// MockListingRepository is a mock of ListingRepository.
type MockListingRepository struct {
	ctrl     *gomock.Controller
	recorder *MockListingRepositoryMockRecorder
}

// MockListingRepositoryMockRecorder is the mock recorder for
// MockListingRepository.
type MockListingRepositoryMockRecorder struct {
	mock *MockListingRepository
}

// NewMockListingRepository creates a new mock instance.
func NewMockListingRepository(ctrl *gomock.Controller) *MockListingRepository {
	mock := &MockListingRepository{ctrl: ctrl}
	mock.recorder = &MockListingRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockListingRepository) EXPECT() *MockListingRepositoryMockRecorder {
	return m.recorder
}

// Create mocks base method.
func (m *MockListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Create", ctx, listing)
	ret0, _ := ret[0].(error)
	return ret0
}

// Create indicates an expected call of Create.
func (mr *MockListingRepositoryMockRecorder) Create(ctx, listing any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Create", reflect.TypeOf((*MockListingRepository)(nil).Create), ctx, listing)
}

// GetByID mocks base method.
func (m *MockListingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetByID", ctx, id)
	ret0, _ := ret[0].(*domain.Listing)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetByID indicates an expected call of GetByID.
func (mr *MockListingRepositoryMockRecorder) GetByID(ctx, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetByID", reflect.TypeOf((*MockListingRepository)(nil).GetByID), ctx, id)
}

// GetByIDForUpdate mocks base method.
func (m *MockListingRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Listing, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetByIDForUpdate", ctx, tx, id)
	ret0, _ := ret[0].(*domain.Listing)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetByIDForUpdate indicates an expected call of GetByIDForUpdate.
func (mr *MockListingRepositoryMockRecorder) GetByIDForUpdate(ctx, tx, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetByIDForUpdate", reflect.TypeOf((*MockListingRepository)(nil).GetByIDForUpdate), ctx, tx, id)
}

// List mocks base method.
func (m *MockListingRepository) List(ctx context.Context, params ports.ListingListParams) ([]domain.Listing, int64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "List", ctx, params)
	ret0, _ := ret[0].([]domain.Listing)
	ret1, _ := ret[1].(int64)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

// List indicates an expected call of List.
func (mr *MockListingRepositoryMockRecorder) List(ctx, params any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "List", reflect.TypeOf((*MockListingRepository)(nil).List), ctx, params)
}

// Update mocks base method.
func (m *MockListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Update", ctx, listing)
	ret0, _ := ret[0].(error)
	return ret0
}

// Update indicates an expected call of Update.
func (mr *MockListingRepositoryMockRecorder) Update(ctx, listing any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Update", reflect.TypeOf((*MockListingRepository)(nil).Update), ctx, listing)
}

// IncrementPurchaseCount mocks base method.
func (m *MockListingRepository) IncrementPurchaseCount(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "IncrementPurchaseCount", ctx, tx, id)
	ret0, _ := ret[0].(error)
	return ret0
}

// IncrementPurchaseCount indicates an expected call of IncrementPurchaseCount.
func (mr *MockListingRepositoryMockRecorder) IncrementPurchaseCount(ctx, tx, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "IncrementPurchaseCount", reflect.TypeOf((*MockListingRepository)(nil).IncrementPurchaseCount), ctx, tx, id)
}

// MockPurchaseRepository is a mock of PurchaseRepository.
type MockPurchaseRepository struct {
	ctrl     *gomock.Controller
	recorder *MockPurchaseRepositoryMockRecorder
}

// MockPurchaseRepositoryMockRecorder is the mock recorder for
// MockPurchaseRepository.
type MockPurchaseRepositoryMockRecorder struct {
	mock *MockPurchaseRepository
}

// NewMockPurchaseRepository creates a new mock instance.
func NewMockPurchaseRepository(ctrl *gomock.Controller) *MockPurchaseRepository {
	mock := &MockPurchaseRepository{ctrl: ctrl}
	mock.recorder = &MockPurchaseRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockPurchaseRepository) EXPECT() *MockPurchaseRepositoryMockRecorder {
	return m.recorder
}

// Create mocks base method.
func (m *MockPurchaseRepository) Create(ctx context.Context, tx pgx.Tx, purchase *domain.Purchase) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Create", ctx, tx, purchase)
	ret0, _ := ret[0].(error)
	return ret0
}

// Create indicates an expected call of Create.
func (mr *MockPurchaseRepositoryMockRecorder) Create(ctx, tx, purchase any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Create", reflect.TypeOf((*MockPurchaseRepository)(nil).Create), ctx, tx, purchase)
}

// GetByBuyerAndListing mocks base method.
func (m *MockPurchaseRepository) GetByBuyerAndListing(ctx context.Context, buyerID, listingID uuid.UUID) (*domain.Purchase, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetByBuyerAndListing", ctx, buyerID, listingID)
	ret0, _ := ret[0].(*domain.Purchase)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetByBuyerAndListing indicates an expected call of GetByBuyerAndListing.
func (mr *MockPurchaseRepositoryMockRecorder) GetByBuyerAndListing(ctx, buyerID, listingID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetByBuyerAndListing", reflect.TypeOf((*MockPurchaseRepository)(nil).GetByBuyerAndListing), ctx, buyerID, listingID)
}

// ListByBuyer mocks base method.
func (m *MockPurchaseRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]domain.Purchase, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListByBuyer", ctx, buyerID)
	ret0, _ := ret[0].([]domain.Purchase)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListByBuyer indicates an expected call of ListByBuyer.
func (mr *MockPurchaseRepositoryMockRecorder) ListByBuyer(ctx, buyerID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListByBuyer", reflect.TypeOf((*MockPurchaseRepository)(nil).ListByBuyer), ctx, buyerID)
}

// GetAccountStats mocks base method.
func (m *MockPurchaseRepository) GetAccountStats(ctx context.Context, accountID uuid.UUID) (*ports.AccountStats, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetAccountStats", ctx, accountID)
	ret0, _ := ret[0].(*ports.AccountStats)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetAccountStats indicates an expected call of GetAccountStats.
func (mr *MockPurchaseRepositoryMockRecorder) GetAccountStats(ctx, accountID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetAccountStats", reflect.TypeOf((*MockPurchaseRepository)(nil).GetAccountStats), ctx, accountID)
}

// GetPlatformStats mocks base method.
func (m *MockPurchaseRepository) GetPlatformStats(ctx context.Context) (*ports.PlatformStats, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetPlatformStats", ctx)
	ret0, _ := ret[0].(*ports.PlatformStats)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetPlatformStats indicates an expected call of GetPlatformStats.
func (mr *MockPurchaseRepositoryMockRecorder) GetPlatformStats(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetPlatformStats", reflect.TypeOf((*MockPurchaseRepository)(nil).GetPlatformStats), ctx)
}

// MockPaymentRequestRepository is a mock of PaymentRequestRepository.
type MockPaymentRequestRepository struct {
	ctrl     *gomock.Controller
	recorder *MockPaymentRequestRepositoryMockRecorder
}

// MockPaymentRequestRepositoryMockRecorder is the mock recorder for
// MockPaymentRequestRepository.
type MockPaymentRequestRepositoryMockRecorder struct {
	mock *MockPaymentRequestRepository
}

// NewMockPaymentRequestRepository creates a new mock instance.
func NewMockPaymentRequestRepository(ctrl *gomock.Controller) *MockPaymentRequestRepository {
	mock := &MockPaymentRequestRepository{ctrl: ctrl}
	mock.recorder = &MockPaymentRequestRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockPaymentRequestRepository) EXPECT() *MockPaymentRequestRepositoryMockRecorder {
	return m.recorder
}

// Create mocks base method.
func (m *MockPaymentRequestRepository) Create(ctx context.Context, request *domain.PaymentRequest) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Create", ctx, request)
	ret0, _ := ret[0].(error)
	return ret0
}

// Create indicates an expected call of Create.
func (mr *MockPaymentRequestRepositoryMockRecorder) Create(ctx, request any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Create", reflect.TypeOf((*MockPaymentRequestRepository)(nil).Create), ctx, request)
}

// GetByID mocks base method.
func (m *MockPaymentRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentRequest, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetByID", ctx, id)
	ret0, _ := ret[0].(*domain.PaymentRequest)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetByID indicates an expected call of GetByID.
func (mr *MockPaymentRequestRepositoryMockRecorder) GetByID(ctx, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetByID", reflect.TypeOf((*MockPaymentRequestRepository)(nil).GetByID), ctx, id)
}

// ListByAccount mocks base method.
func (m *MockPaymentRequestRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.PaymentRequest, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListByAccount", ctx, accountID)
	ret0, _ := ret[0].([]domain.PaymentRequest)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListByAccount indicates an expected call of ListByAccount.
func (mr *MockPaymentRequestRepositoryMockRecorder) ListByAccount(ctx, accountID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListByAccount", reflect.TypeOf((*MockPaymentRequestRepository)(nil).ListByAccount), ctx, accountID)
}

// ListPending mocks base method.
func (m *MockPaymentRequestRepository) ListPending(ctx context.Context) ([]domain.PaymentRequest, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListPending", ctx)
	ret0, _ := ret[0].([]domain.PaymentRequest)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListPending indicates an expected call of ListPending.
func (mr *MockPaymentRequestRepositoryMockRecorder) ListPending(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListPending", reflect.TypeOf((*MockPaymentRequestRepository)(nil).ListPending), ctx)
}

// MarkProcessed mocks base method.
func (m *MockPaymentRequestRepository) MarkProcessed(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.PaymentRequestStatus, adminID uuid.UUID, note *string, processedAt time.Time) (bool, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "MarkProcessed", ctx, tx, id, status, adminID, note, processedAt)
	ret0, _ := ret[0].(bool)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// MarkProcessed indicates an expected call of MarkProcessed.
func (mr *MockPaymentRequestRepositoryMockRecorder) MarkProcessed(ctx, tx, id, status, adminID, note, processedAt any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "MarkProcessed", reflect.TypeOf((*MockPaymentRequestRepository)(nil).MarkProcessed), ctx, tx, id, status, adminID, note, processedAt)
}

// MockDBTransactor is a mock of DBTransactor.
type MockDBTransactor struct {
	ctrl     *gomock.Controller
	recorder *MockDBTransactorMockRecorder
}

// MockDBTransactorMockRecorder is the mock recorder for MockDBTransactor.
type MockDBTransactorMockRecorder struct {
	mock *MockDBTransactor
}

// NewMockDBTransactor creates a new mock instance.
func NewMockDBTransactor(ctrl *gomock.Controller) *MockDBTransactor {
	mock := &MockDBTransactor{ctrl: ctrl}
	mock.recorder = &MockDBTransactorMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockDBTransactor) EXPECT() *MockDBTransactorMockRecorder {
	return m.recorder
}

// Begin mocks base method.
func (m *MockDBTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Begin", ctx)
	ret0, _ := ret[0].(pgx.Tx)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Begin indicates an expected call of Begin.
func (mr *MockDBTransactorMockRecorder) Begin(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Begin", reflect.TypeOf((*MockDBTransactor)(nil).Begin), ctx)
}

// MockUnreadCache is a mock of UnreadCache.
type MockUnreadCache struct {
	ctrl     *gomock.Controller
	recorder *MockUnreadCacheMockRecorder
}

// MockUnreadCacheMockRecorder is the mock recorder for MockUnreadCache.
type MockUnreadCacheMockRecorder struct {
	mock *MockUnreadCache
}

// NewMockUnreadCache creates a new mock instance.
func NewMockUnreadCache(ctrl *gomock.Controller) *MockUnreadCache {
	mock := &MockUnreadCache{ctrl: ctrl}
	mock.recorder = &MockUnreadCacheMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockUnreadCache) EXPECT() *MockUnreadCacheMockRecorder {
	return m.recorder
}

// Get mocks base method.
func (m *MockUnreadCache) Get(ctx context.Context, accountID uuid.UUID) (int64, bool, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Get", ctx, accountID)
	ret0, _ := ret[0].(int64)
	ret1, _ := ret[1].(bool)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

// Get indicates an expected call of Get.
func (mr *MockUnreadCacheMockRecorder) Get(ctx, accountID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Get", reflect.TypeOf((*MockUnreadCache)(nil).Get), ctx, accountID)
}

// Set mocks base method.
func (m *MockUnreadCache) Set(ctx context.Context, accountID uuid.UUID, count int64, ttl time.Duration) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Set", ctx, accountID, count, ttl)
	ret0, _ := ret[0].(error)
	return ret0
}

// Set indicates an expected call of Set.
func (mr *MockUnreadCacheMockRecorder) Set(ctx, accountID, count, ttl any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Set", reflect.TypeOf((*MockUnreadCache)(nil).Set), ctx, accountID, count, ttl)
}

// Invalidate mocks base method.
func (m *MockUnreadCache) Invalidate(ctx context.Context, accountID uuid.UUID) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Invalidate", ctx, accountID)
	ret0, _ := ret[0].(error)
	return ret0
}

// Invalidate indicates an expected call of Invalidate.
func (mr *MockUnreadCacheMockRecorder) Invalidate(ctx, accountID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Invalidate", reflect.TypeOf((*MockUnreadCache)(nil).Invalidate), ctx, accountID)
}
