package mocks

import (
	"context"
	"reflect"
	"time"

	"codemarket/internal/core/domain"
	"codemarket/internal/core/ports"

	"github.com/google/uuid"
	"go.uber.org/mock/gomock"
)

// MockAuthService is a mock of AuthService.
type MockAuthService struct {
	ctrl     *gomock.Controller
	recorder *MockAuthServiceMockRecorder
}

// MockAuthServiceMockRecorder is the mock recorder for MockAuthService.
type MockAuthServiceMockRecorder struct {
	mock *MockAuthService
}

// NewMockAuthService creates a new mock instance.
func NewMockAuthService(ctrl *gomock.Controller) *MockAuthService {
	mock := &MockAuthService{ctrl: ctrl}
	mock.recorder = &MockAuthServiceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockAuthService) EXPECT() *MockAuthServiceMockRecorder {
	return m.recorder
}

// Register mocks base method.
func (m *MockAuthService) Register(ctx context.Context, req ports.RegisterRequest) (*domain.Account, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Register", ctx, req)
	ret0, _ := ret[0].(*domain.Account)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Register indicates an expected call of Register.
func (mr *MockAuthServiceMockRecorder) Register(ctx, req any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Register", reflect.TypeOf((*MockAuthService)(nil).Register), ctx, req)
}

// Login mocks base method.
func (m *MockAuthService) Login(ctx context.Context, login, password string) (string, time.Time, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Login", ctx, login, password)
	ret0, _ := ret[0].(string)
	ret1, _ := ret[1].(time.Time)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

// Login indicates an expected call of Login.
func (mr *MockAuthServiceMockRecorder) Login(ctx, login, password any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Login", reflect.TypeOf((*MockAuthService)(nil).Login), ctx, login, password)
}

// MockLedgerService is a mock of LedgerService.
type MockLedgerService struct {
	ctrl     *gomock.Controller
	recorder *MockLedgerServiceMockRecorder
}

// MockLedgerServiceMockRecorder is the mock recorder for MockLedgerService.
type MockLedgerServiceMockRecorder struct {
	mock *MockLedgerService
}

// NewMockLedgerService creates a new mock instance.
func NewMockLedgerService(ctrl *gomock.Controller) *MockLedgerService {
	mock := &MockLedgerService{ctrl: ctrl}
	mock.recorder = &MockLedgerServiceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockLedgerService) EXPECT() *MockLedgerServiceMockRecorder {
	return m.recorder
}

// Credit mocks base method.
func (m *MockLedgerService) Credit(ctx context.Context, accountID uuid.UUID, amount int64) (int64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Credit", ctx, accountID, amount)
	ret0, _ := ret[0].(int64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Credit indicates an expected call of Credit.
func (mr *MockLedgerServiceMockRecorder) Credit(ctx, accountID, amount any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Credit", reflect.TypeOf((*MockLedgerService)(nil).Credit), ctx, accountID, amount)
}

// Debit mocks base method.
func (m *MockLedgerService) Debit(ctx context.Context, accountID uuid.UUID, amount int64) (int64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Debit", ctx, accountID, amount)
	ret0, _ := ret[0].(int64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Debit indicates an expected call of Debit.
func (mr *MockLedgerServiceMockRecorder) Debit(ctx, accountID, amount any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Debit", reflect.TypeOf((*MockLedgerService)(nil).Debit), ctx, accountID, amount)
}

// GetBalance mocks base method.
func (m *MockLedgerService) GetBalance(ctx context.Context, accountID uuid.UUID) (int64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetBalance", ctx, accountID)
	ret0, _ := ret[0].(int64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetBalance indicates an expected call of GetBalance.
func (mr *MockLedgerServiceMockRecorder) GetBalance(ctx, accountID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetBalance", reflect.TypeOf((*MockLedgerService)(nil).GetBalance), ctx, accountID)
}

// MockSettlementService is a mock of SettlementService.
type MockSettlementService struct {
	ctrl     *gomock.Controller
	recorder *MockSettlementServiceMockRecorder
}

// MockSettlementServiceMockRecorder is the mock recorder for
// MockSettlementService.
type MockSettlementServiceMockRecorder struct {
	mock *MockSettlementService
}

// NewMockSettlementService creates a new mock instance.
func NewMockSettlementService(ctrl *gomock.Controller) *MockSettlementService {
	mock := &MockSettlementService{ctrl: ctrl}
	mock.recorder = &MockSettlementServiceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockSettlementService) EXPECT() *MockSettlementServiceMockRecorder {
	return m.recorder
}

// SettlePurchase mocks base method.
func (m *MockSettlementService) SettlePurchase(ctx context.Context, req ports.SettleRequest) (*domain.Purchase, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SettlePurchase", ctx, req)
	ret0, _ := ret[0].(*domain.Purchase)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// SettlePurchase indicates an expected call of SettlePurchase.
func (mr *MockSettlementServiceMockRecorder) SettlePurchase(ctx, req any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SettlePurchase", reflect.TypeOf((*MockSettlementService)(nil).SettlePurchase), ctx, req)
}

// HasAccess mocks base method.
func (m *MockSettlementService) HasAccess(ctx context.Context, buyerID, listingID uuid.UUID) (bool, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "HasAccess", ctx, buyerID, listingID)
	ret0, _ := ret[0].(bool)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// HasAccess indicates an expected call of HasAccess.
func (mr *MockSettlementServiceMockRecorder) HasAccess(ctx, buyerID, listingID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "HasAccess", reflect.TypeOf((*MockSettlementService)(nil).HasAccess), ctx, buyerID, listingID)
}

// ListPurchases mocks base method.
func (m *MockSettlementService) ListPurchases(ctx context.Context, buyerID uuid.UUID) ([]domain.Purchase, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListPurchases", ctx, buyerID)
	ret0, _ := ret[0].([]domain.Purchase)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListPurchases indicates an expected call of ListPurchases.
func (mr *MockSettlementServiceMockRecorder) ListPurchases(ctx, buyerID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListPurchases", reflect.TypeOf((*MockSettlementService)(nil).ListPurchases), ctx, buyerID)
}

// MockPaymentRequestService is a mock of PaymentRequestService.
type MockPaymentRequestService struct {
	ctrl     *gomock.Controller
	recorder *MockPaymentRequestServiceMockRecorder
}

// MockPaymentRequestServiceMockRecorder is the mock recorder for
// MockPaymentRequestService.
type MockPaymentRequestServiceMockRecorder struct {
	mock *MockPaymentRequestService
}

// NewMockPaymentRequestService creates a new mock instance.
func NewMockPaymentRequestService(ctrl *gomock.Controller) *MockPaymentRequestService {
	mock := &MockPaymentRequestService{ctrl: ctrl}
	mock.recorder = &MockPaymentRequestServiceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockPaymentRequestService) EXPECT() *MockPaymentRequestServiceMockRecorder {
	return m.recorder
}

// Submit mocks base method.
func (m *MockPaymentRequestService) Submit(ctx context.Context, req ports.SubmitPaymentRequest) (*domain.PaymentRequest, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Submit", ctx, req)
	ret0, _ := ret[0].(*domain.PaymentRequest)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Submit indicates an expected call of Submit.
func (mr *MockPaymentRequestServiceMockRecorder) Submit(ctx, req any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Submit", reflect.TypeOf((*MockPaymentRequestService)(nil).Submit), ctx, req)
}

// Approve mocks base method.
func (m *MockPaymentRequestService) Approve(ctx context.Context, requestID, adminID uuid.UUID, note string) (*domain.PaymentRequest, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Approve", ctx, requestID, adminID, note)
	ret0, _ := ret[0].(*domain.PaymentRequest)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Approve indicates an expected call of Approve.
func (mr *MockPaymentRequestServiceMockRecorder) Approve(ctx, requestID, adminID, note any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Approve", reflect.TypeOf((*MockPaymentRequestService)(nil).Approve), ctx, requestID, adminID, note)
}

// Reject mocks base method.
func (m *MockPaymentRequestService) Reject(ctx context.Context, requestID, adminID uuid.UUID, note string) (*domain.PaymentRequest, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Reject", ctx, requestID, adminID, note)
	ret0, _ := ret[0].(*domain.PaymentRequest)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Reject indicates an expected call of Reject.
func (mr *MockPaymentRequestServiceMockRecorder) Reject(ctx, requestID, adminID, note any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Reject", reflect.TypeOf((*MockPaymentRequestService)(nil).Reject), ctx, requestID, adminID, note)
}

// ListByAccount mocks base method.
func (m *MockPaymentRequestService) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.PaymentRequest, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListByAccount", ctx, accountID)
	ret0, _ := ret[0].([]domain.PaymentRequest)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListByAccount indicates an expected call of ListByAccount.
func (mr *MockPaymentRequestServiceMockRecorder) ListByAccount(ctx, accountID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListByAccount", reflect.TypeOf((*MockPaymentRequestService)(nil).ListByAccount), ctx, accountID)
}

// ListPending mocks base method.
func (m *MockPaymentRequestService) ListPending(ctx context.Context) ([]domain.PaymentRequest, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListPending", ctx)
	ret0, _ := ret[0].([]domain.PaymentRequest)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListPending indicates an expected call of ListPending.
func (mr *MockPaymentRequestServiceMockRecorder) ListPending(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListPending", reflect.TypeOf((*MockPaymentRequestService)(nil).ListPending), ctx)
}

// MockNotificationService is a mock of NotificationService.
type MockNotificationService struct {
	ctrl     *gomock.Controller
	recorder *MockNotificationServiceMockRecorder
}

// MockNotificationServiceMockRecorder is the mock recorder for
// MockNotificationService.
type MockNotificationServiceMockRecorder struct {
	mock *MockNotificationService
}

// NewMockNotificationService creates a new mock instance.
func NewMockNotificationService(ctrl *gomock.Controller) *MockNotificationService {
	mock := &MockNotificationService{ctrl: ctrl}
	mock.recorder = &MockNotificationServiceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockNotificationService) EXPECT() *MockNotificationServiceMockRecorder {
	return m.recorder
}

// Notify mocks base method.
func (m *MockNotificationService) Notify(ctx context.Context, accountID uuid.UUID, notifType domain.NotificationType, title, message string, relatedID *uuid.UUID) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "Notify", ctx, accountID, notifType, title, message, relatedID)
}

// Notify indicates an expected call of Notify.
func (mr *MockNotificationServiceMockRecorder) Notify(ctx, accountID, notifType, title, message, relatedID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Notify", reflect.TypeOf((*MockNotificationService)(nil).Notify), ctx, accountID, notifType, title, message, relatedID)
}

// List mocks base method.
func (m *MockNotificationService) List(ctx context.Context, accountID uuid.UUID, unreadOnly bool) ([]domain.Notification, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "List", ctx, accountID, unreadOnly)
	ret0, _ := ret[0].([]domain.Notification)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// List indicates an expected call of List.
func (mr *MockNotificationServiceMockRecorder) List(ctx, accountID, unreadOnly any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "List", reflect.TypeOf((*MockNotificationService)(nil).List), ctx, accountID, unreadOnly)
}

// MarkRead mocks base method.
func (m *MockNotificationService) MarkRead(ctx context.Context, id, accountID uuid.UUID) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "MarkRead", ctx, id, accountID)
	ret0, _ := ret[0].(error)
	return ret0
}

// MarkRead indicates an expected call of MarkRead.
func (mr *MockNotificationServiceMockRecorder) MarkRead(ctx, id, accountID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "MarkRead", reflect.TypeOf((*MockNotificationService)(nil).MarkRead), ctx, id, accountID)
}

// MarkAllRead mocks base method.
func (m *MockNotificationService) MarkAllRead(ctx context.Context, accountID uuid.UUID) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "MarkAllRead", ctx, accountID)
	ret0, _ := ret[0].(error)
	return ret0
}

// MarkAllRead indicates an expected call of MarkAllRead.
func (mr *MockNotificationServiceMockRecorder) MarkAllRead(ctx, accountID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "MarkAllRead", reflect.TypeOf((*MockNotificationService)(nil).MarkAllRead), ctx, accountID)
}

// UnreadCount mocks base method.
func (m *MockNotificationService) UnreadCount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "UnreadCount", ctx, accountID)
	ret0, _ := ret[0].(int64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// UnreadCount indicates an expected call of UnreadCount.
func (mr *MockNotificationServiceMockRecorder) UnreadCount(ctx, accountID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "UnreadCount", reflect.TypeOf((*MockNotificationService)(nil).UnreadCount), ctx, accountID)
}

// MockCatalogService is a mock of CatalogService.
type MockCatalogService struct {
	ctrl     *gomock.Controller
	recorder *MockCatalogServiceMockRecorder
}

// MockCatalogServiceMockRecorder is the mock recorder for MockCatalogService.
type MockCatalogServiceMockRecorder struct {
	mock *MockCatalogService
}

// NewMockCatalogService creates a new mock instance.
func NewMockCatalogService(ctrl *gomock.Controller) *MockCatalogService {
	mock := &MockCatalogService{ctrl: ctrl}
	mock.recorder = &MockCatalogServiceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockCatalogService) EXPECT() *MockCatalogServiceMockRecorder {
	return m.recorder
}

// CreateListing mocks base method.
func (m *MockCatalogService) CreateListing(ctx context.Context, req ports.CreateListingRequest) (*domain.Listing, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CreateListing", ctx, req)
	ret0, _ := ret[0].(*domain.Listing)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// CreateListing indicates an expected call of CreateListing.
func (mr *MockCatalogServiceMockRecorder) CreateListing(ctx, req any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CreateListing", reflect.TypeOf((*MockCatalogService)(nil).CreateListing), ctx, req)
}

// UpdateListing mocks base method.
func (m *MockCatalogService) UpdateListing(ctx context.Context, req ports.UpdateListingRequest) (*domain.Listing, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "UpdateListing", ctx, req)
	ret0, _ := ret[0].(*domain.Listing)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// UpdateListing indicates an expected call of UpdateListing.
func (mr *MockCatalogServiceMockRecorder) UpdateListing(ctx, req any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "UpdateListing", reflect.TypeOf((*MockCatalogService)(nil).UpdateListing), ctx, req)
}

// GetListing mocks base method.
func (m *MockCatalogService) GetListing(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetListing", ctx, id)
	ret0, _ := ret[0].(*domain.Listing)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetListing indicates an expected call of GetListing.
func (mr *MockCatalogServiceMockRecorder) GetListing(ctx, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetListing", reflect.TypeOf((*MockCatalogService)(nil).GetListing), ctx, id)
}

// ListListings mocks base method.
func (m *MockCatalogService) ListListings(ctx context.Context, params ports.ListingListParams) ([]domain.Listing, int64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListListings", ctx, params)
	ret0, _ := ret[0].([]domain.Listing)
	ret1, _ := ret[1].(int64)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

// ListListings indicates an expected call of ListListings.
func (mr *MockCatalogServiceMockRecorder) ListListings(ctx, params any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListListings", reflect.TypeOf((*MockCatalogService)(nil).ListListings), ctx, params)
}

// MockReportingService is a mock of ReportingService.
type MockReportingService struct {
	ctrl     *gomock.Controller
	recorder *MockReportingServiceMockRecorder
}

// MockReportingServiceMockRecorder is the mock recorder for
// MockReportingService.
type MockReportingServiceMockRecorder struct {
	mock *MockReportingService
}

// NewMockReportingService creates a new mock instance.
func NewMockReportingService(ctrl *gomock.Controller) *MockReportingService {
	mock := &MockReportingService{ctrl: ctrl}
	mock.recorder = &MockReportingServiceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockReportingService) EXPECT() *MockReportingServiceMockRecorder {
	return m.recorder
}

// GetAccountDashboard mocks base method.
func (m *MockReportingService) GetAccountDashboard(ctx context.Context, accountID uuid.UUID) (*ports.AccountDashboard, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetAccountDashboard", ctx, accountID)
	ret0, _ := ret[0].(*ports.AccountDashboard)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetAccountDashboard indicates an expected call of GetAccountDashboard.
func (mr *MockReportingServiceMockRecorder) GetAccountDashboard(ctx, accountID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetAccountDashboard", reflect.TypeOf((*MockReportingService)(nil).GetAccountDashboard), ctx, accountID)
}

// GetPlatformDashboard mocks base method.
func (m *MockReportingService) GetPlatformDashboard(ctx context.Context) (*ports.PlatformDashboard, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetPlatformDashboard", ctx)
	ret0, _ := ret[0].(*ports.PlatformDashboard)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetPlatformDashboard indicates an expected call of GetPlatformDashboard.
func (mr *MockReportingServiceMockRecorder) GetPlatformDashboard(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetPlatformDashboard", reflect.TypeOf((*MockReportingService)(nil).GetPlatformDashboard), ctx)
}
