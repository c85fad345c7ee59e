package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpHandler "codemarket/internal/adapter/http/handler"
	redisStorage "codemarket/internal/adapter/storage/redis"
	"codemarket/internal/core/domain"
	"codemarket/internal/service"
	"codemarket/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp builds a full application stack against in-memory repos and
// miniredis. This exercises the real HTTP layer, middleware, handlers,
// services, and the Redis unread cache end-to-end. Rate limiting is left
// disabled so concurrency tests are not throttled.

type testApp struct {
	server      *httptest.Server
	redis       *miniredis.Miniredis
	accountRepo *inMemoryAccountRepo
	listingRepo *inMemoryListingRepo
	tokenSvc    *service.JWTTokenService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	// Start miniredis
	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	unreadCache := redisStorage.NewUnreadCache(rdb)

	// Core services with real implementations
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService("test-jwt-secret-key-32bytes!!", 24*time.Hour, "test-issuer")

	// In-memory repos
	accountRepo := newInMemoryAccountRepo()
	listingRepo := newInMemoryListingRepo()
	purchaseRepo := newInMemoryPurchaseRepo()
	requestRepo := newInMemoryPaymentRequestRepo()
	notificationRepo := newInMemoryNotificationRepo()
	transactor := newInMemoryTransactor()

	// Business services
	log := logger.New("debug", false)
	authSvc := service.NewAuthService(accountRepo, hashSvc, tokenSvc)
	ledgerSvc := service.NewLedgerService(accountRepo, 3, log)
	notificationSvc := service.NewNotificationService(notificationRepo, unreadCache, log)
	settlementSvc := service.NewSettlementService(accountRepo, listingRepo, purchaseRepo, transactor, notificationSvc, nil, 0, log)
	requestSvc := service.NewPaymentRequestService(requestRepo, accountRepo, transactor, notificationSvc, nil, log)
	catalogSvc := service.NewCatalogService(listingRepo, log)
	reportingSvc := service.NewReportingService(accountRepo, purchaseRepo, requestRepo, notificationSvc)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:         authSvc,
		LedgerSvc:       ledgerSvc,
		SettlementSvc:   settlementSvc,
		RequestSvc:      requestSvc,
		NotificationSvc: notificationSvc,
		CatalogSvc:      catalogSvc,
		ReportingSvc:    reportingSvc,
		TokenSvc:        tokenSvc,
		Logger:          log,
	})

	server := httptest.NewServer(router)

	return &testApp{
		server:      server,
		redis:       mr,
		accountRepo: accountRepo,
		listingRepo: listingRepo,
		tokenSvc:    tokenSvc,
	}
}

func (a *testApp) close() {
	a.server.Close()
	a.redis.Close()
}

// --- Integration Tests ---

func TestIntegration_HealthCheck(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Get(app.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestIntegration_RegisterAndLogin(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	// Register
	regBody, _ := json.Marshal(map[string]string{
		"email":        "nguoiban@example.com",
		"username":     "nguoiban",
		"password":     "StrongPass123!",
		"display_name": "Nguoi Ban",
	})
	resp, err := http.Post(app.server.URL+"/api/v1/auth/register", "application/json", bytes.NewReader(regBody))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var regResp map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&regResp))
	data := regResp["data"].(map[string]interface{})
	assert.NotEmpty(t, data["id"])
	assert.Equal(t, float64(0), data["balance"])
	assert.Equal(t, "user", data["role"])

	// Login with email
	loginBody, _ := json.Marshal(map[string]string{
		"login":    "nguoiban@example.com",
		"password": "StrongPass123!",
	})
	resp2, err := http.Post(app.server.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(loginBody))
	require.NoError(t, err)
	defer resp2.Body.Close()

	assert.Equal(t, http.StatusOK, resp2.StatusCode)

	var loginResp map[string]interface{}
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&loginResp))
	loginData := loginResp["data"].(map[string]interface{})
	assert.NotEmpty(t, loginData["token"])
}

func TestIntegration_DuplicateEmail(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	regBody, _ := json.Marshal(map[string]string{
		"email":        "trung@example.com",
		"username":     "nguoidung1",
		"password":     "StrongPass123!",
		"display_name": "Nguoi Dung",
	})
	resp, err := http.Post(app.server.URL+"/api/v1/auth/register", "application/json", bytes.NewReader(regBody))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Same email, different username
	regBody2, _ := json.Marshal(map[string]string{
		"email":        "trung@example.com",
		"username":     "nguoidung2",
		"password":     "StrongPass123!",
		"display_name": "Nguoi Dung 2",
	})
	resp2, err := http.Post(app.server.URL+"/api/v1/auth/register", "application/json", bytes.NewReader(regBody2))
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusConflict, resp2.StatusCode)
}

func TestIntegration_JWT_Unauthorized(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	req, _ := http.NewRequest(http.MethodGet, app.server.URL+"/api/v1/wallet/balance", nil)
	// No Authorization header
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIntegration_PurchaseEndToEnd(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	seller := app.registerUser(t, "seller@example.com", "seller01", "Seller")
	buyer := app.registerUser(t, "buyer@example.com", "buyer01", "Buyer")
	app.seedBalance(t, buyer.id, 1000000)

	listingID := app.createListing(t, seller.token, "Shop ban hang Laravel", "shop-ban-hang-laravel", 500000)

	// Buy
	purchaseBody, _ := json.Marshal(map[string]interface{}{
		"listing_id":     listingID,
		"expected_price": int64(500000),
	})
	resp := app.doJSON(t, http.MethodPost, "/api/v1/purchases", buyer.token, purchaseBody)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var purchaseResp struct {
		Data struct {
			Amount         int64 `json:"amount"`
			SellerEarnings int64 `json:"seller_earnings"`
			Commission     int64 `json:"commission"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&purchaseResp))
	assert.Equal(t, int64(500000), purchaseResp.Data.Amount)
	assert.Equal(t, int64(400000), purchaseResp.Data.SellerEarnings)
	assert.Equal(t, int64(100000), purchaseResp.Data.Commission)

	// Balances: buyer debited the full price, seller credited the 80% share.
	assert.Equal(t, int64(500000), app.getBalance(t, buyer.token))
	assert.Equal(t, int64(400000), app.getBalance(t, seller.token))

	// Access granted
	respAccess := app.doJSON(t, http.MethodGet, "/api/v1/purchases/access/"+listingID, buyer.token, nil)
	defer respAccess.Body.Close()
	require.Equal(t, http.StatusOK, respAccess.StatusCode)
	var accessResp struct {
		Data struct {
			HasAccess bool `json:"has_access"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(respAccess.Body).Decode(&accessResp))
	assert.True(t, accessResp.Data.HasAccess)

	// Buying the same listing again is rejected.
	resp2 := app.doJSON(t, http.MethodPost, "/api/v1/purchases", buyer.token, purchaseBody)
	resp2.Body.Close()
	assert.Equal(t, http.StatusConflict, resp2.StatusCode)

	// Seller got a sale notification; the unread badge goes through Redis.
	respUnread := app.doJSON(t, http.MethodGet, "/api/v1/notifications/unread-count", seller.token, nil)
	defer respUnread.Body.Close()
	require.Equal(t, http.StatusOK, respUnread.StatusCode)
	var unreadResp struct {
		Data struct {
			Count int64 `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(respUnread.Body).Decode(&unreadResp))
	assert.Equal(t, int64(1), unreadResp.Data.Count)
}

func TestIntegration_Purchase_InsufficientBalance(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	seller := app.registerUser(t, "seller@example.com", "seller01", "Seller")
	buyer := app.registerUser(t, "buyer@example.com", "buyer01", "Buyer")
	app.seedBalance(t, buyer.id, 100)

	listingID := app.createListing(t, seller.token, "Theme WordPress", "theme-wordpress", 150)

	purchaseBody, _ := json.Marshal(map[string]interface{}{
		"listing_id":     listingID,
		"expected_price": int64(150),
	})
	resp := app.doJSON(t, http.MethodPost, "/api/v1/purchases", buyer.token, purchaseBody)
	resp.Body.Close()
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)

	// Balance unchanged, nothing settled.
	assert.Equal(t, int64(100), app.getBalance(t, buyer.token))
	assert.Equal(t, int64(0), app.getBalance(t, seller.token))
}

func TestIntegration_Purchase_PriceMismatch(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	seller := app.registerUser(t, "seller@example.com", "seller01", "Seller")
	buyer := app.registerUser(t, "buyer@example.com", "buyer01", "Buyer")
	app.seedBalance(t, buyer.id, 1000000)

	listingID := app.createListing(t, seller.token, "API Golang", "api-golang", 700000)

	// Buyer saw an older price.
	purchaseBody, _ := json.Marshal(map[string]interface{}{
		"listing_id":     listingID,
		"expected_price": int64(500000),
	})
	resp := app.doJSON(t, http.MethodPost, "/api/v1/purchases", buyer.token, purchaseBody)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, int64(1000000), app.getBalance(t, buyer.token))
}

func TestIntegration_DepositApprovalFlow(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	user := app.registerUser(t, "user@example.com", "user01", "User")
	adminToken := app.seedAdmin(t)

	// Submit deposit
	depositBody, _ := json.Marshal(map[string]interface{}{
		"type":   "deposit",
		"amount": int64(200000),
	})
	resp := app.doJSON(t, http.MethodPost, "/api/v1/wallet/requests", user.token, depositBody)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var submitResp struct {
		Data struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&submitResp))
	assert.Equal(t, "pending", submitResp.Data.Status)

	// Submission alone never moves money.
	assert.Equal(t, int64(0), app.getBalance(t, user.token))

	// Admin sees it pending
	respPending := app.doJSON(t, http.MethodGet, "/api/v1/admin/requests", adminToken, nil)
	defer respPending.Body.Close()
	require.Equal(t, http.StatusOK, respPending.StatusCode)

	// Approve
	approveBody, _ := json.Marshal(map[string]string{"note": "da nhan chuyen khoan"})
	respApprove := app.doJSON(t, http.MethodPost, "/api/v1/admin/requests/"+submitResp.Data.ID+"/approve", adminToken, approveBody)
	defer respApprove.Body.Close()
	require.Equal(t, http.StatusOK, respApprove.StatusCode)

	var approveResp struct {
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(respApprove.Body).Decode(&approveResp))
	assert.Equal(t, "approved", approveResp.Data.Status)
	assert.Equal(t, int64(200000), app.getBalance(t, user.token))

	// A second approve must not double-credit.
	respAgain := app.doJSON(t, http.MethodPost, "/api/v1/admin/requests/"+submitResp.Data.ID+"/approve", adminToken, approveBody)
	respAgain.Body.Close()
	assert.Equal(t, http.StatusConflict, respAgain.StatusCode)
	assert.Equal(t, int64(200000), app.getBalance(t, user.token))

	// Rejecting an approved request fails too.
	respReject := app.doJSON(t, http.MethodPost, "/api/v1/admin/requests/"+submitResp.Data.ID+"/reject", adminToken, nil)
	respReject.Body.Close()
	assert.Equal(t, http.StatusConflict, respReject.StatusCode)
}

func TestIntegration_WithdrawalRejectedFlow(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	user := app.registerUser(t, "user@example.com", "user01", "User")
	app.seedBalance(t, user.id, 500000)
	adminToken := app.seedAdmin(t)

	withdrawalBody, _ := json.Marshal(map[string]interface{}{
		"type":   "withdrawal",
		"amount": int64(300000),
		"bank_info": map[string]string{
			"bank_name":      "Vietcombank",
			"account_number": "00123456789",
			"account_holder": "NGUYEN VAN A",
		},
	})
	resp := app.doJSON(t, http.MethodPost, "/api/v1/wallet/requests", user.token, withdrawalBody)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var submitResp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&submitResp))

	respReject := app.doJSON(t, http.MethodPost, "/api/v1/admin/requests/"+submitResp.Data.ID+"/reject", adminToken, nil)
	respReject.Body.Close()
	require.Equal(t, http.StatusOK, respReject.StatusCode)

	// Rejection never touches the balance.
	assert.Equal(t, int64(500000), app.getBalance(t, user.token))
}

func TestIntegration_Withdrawal_MissingBankInfo(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	user := app.registerUser(t, "user@example.com", "user01", "User")
	app.seedBalance(t, user.id, 500000)

	withdrawalBody, _ := json.Marshal(map[string]interface{}{
		"type":   "withdrawal",
		"amount": int64(300000),
	})
	resp := app.doJSON(t, http.MethodPost, "/api/v1/wallet/requests", user.token, withdrawalBody)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestIntegration_AdminEndpointsForbiddenForUsers(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	user := app.registerUser(t, "user@example.com", "user01", "User")

	resp := app.doJSON(t, http.MethodGet, "/api/v1/admin/requests", user.token, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestIntegration_Dashboards(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	seller := app.registerUser(t, "seller@example.com", "seller01", "Seller")
	buyer := app.registerUser(t, "buyer@example.com", "buyer01", "Buyer")
	app.seedBalance(t, buyer.id, 1000000)
	adminToken := app.seedAdmin(t)

	listingID := app.createListing(t, seller.token, "Shop ban hang", "shop-ban-hang", 500000)
	purchaseBody, _ := json.Marshal(map[string]interface{}{
		"listing_id":     listingID,
		"expected_price": int64(500000),
	})
	resp := app.doJSON(t, http.MethodPost, "/api/v1/purchases", buyer.token, purchaseBody)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Buyer dashboard
	respDash := app.doJSON(t, http.MethodGet, "/api/v1/dashboard", buyer.token, nil)
	defer respDash.Body.Close()
	require.Equal(t, http.StatusOK, respDash.StatusCode)
	var dashResp struct {
		Data struct {
			Balance       int64 `json:"balance"`
			TotalSpent    int64 `json:"total_spent"`
			PurchaseCount int64 `json:"purchase_count"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(respDash.Body).Decode(&dashResp))
	assert.Equal(t, int64(500000), dashResp.Data.Balance)
	assert.Equal(t, int64(500000), dashResp.Data.TotalSpent)
	assert.Equal(t, int64(1), dashResp.Data.PurchaseCount)

	// Admin platform dashboard
	respAdmin := app.doJSON(t, http.MethodGet, "/api/v1/admin/dashboard", adminToken, nil)
	defer respAdmin.Body.Close()
	require.Equal(t, http.StatusOK, respAdmin.StatusCode)
	var platformResp struct {
		Data struct {
			TotalPurchases  int64 `json:"total_purchases"`
			TotalVolume     int64 `json:"total_volume"`
			TotalCommission int64 `json:"total_commission"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(respAdmin.Body).Decode(&platformResp))
	assert.Equal(t, int64(1), platformResp.Data.TotalPurchases)
	assert.Equal(t, int64(500000), platformResp.Data.TotalVolume)
	assert.Equal(t, int64(100000), platformResp.Data.TotalCommission)
}

func TestIntegration_ListListings(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	seller := app.registerUser(t, "seller@example.com", "seller01", "Seller")
	app.createListing(t, seller.token, "Shop A", "shop-a", 100000)
	app.createListing(t, seller.token, "Shop B", "shop-b", 200000)

	resp, err := http.Get(app.server.URL + "/api/v1/listings?page=1&page_size=10")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listResp struct {
		Data struct {
			Total int64 `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listResp))
	assert.Equal(t, int64(2), listResp.Data.Total)
}

// --- Helpers ---

type testUser struct {
	id    uuid.UUID
	token string
}

func (a *testApp) registerUser(t *testing.T, email, username, displayName string) testUser {
	t.Helper()
	regBody, _ := json.Marshal(map[string]string{
		"email":        email,
		"username":     username,
		"password":     "StrongPass123!",
		"display_name": displayName,
	})
	resp, err := http.Post(a.server.URL+"/api/v1/auth/register", "application/json", bytes.NewReader(regBody))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	bodyBytes, _ := io.ReadAll(resp.Body)
	var regResp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(bodyBytes, &regResp))
	id, err := uuid.Parse(regResp.Data.ID)
	require.NoError(t, err)

	loginBody, _ := json.Marshal(map[string]string{
		"login":    email,
		"password": "StrongPass123!",
	})
	respLogin, err := http.Post(a.server.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(loginBody))
	require.NoError(t, err)
	defer respLogin.Body.Close()
	require.Equal(t, http.StatusOK, respLogin.StatusCode)

	var loginResp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(respLogin.Body).Decode(&loginResp))
	return testUser{id: id, token: loginResp.Data.Token}
}

// seedAdmin plants an admin account directly in the repo and returns a
// valid token for it. Registration over HTTP only ever creates users.
func (a *testApp) seedAdmin(t *testing.T) string {
	t.Helper()
	adminID := uuid.New()
	require.NoError(t, a.accountRepo.Create(context.Background(), &domain.Account{
		ID:        adminID,
		Email:     fmt.Sprintf("admin-%s@example.com", adminID),
		Username:  "admin_" + adminID.String()[:8],
		Role:      domain.RoleAdmin,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}))
	token, _, err := a.tokenSvc.Generate(adminID, domain.RoleAdmin)
	require.NoError(t, err)
	return token
}

func (a *testApp) seedBalance(t *testing.T, accountID uuid.UUID, balance int64) {
	t.Helper()
	require.NoError(t, a.accountRepo.SetBalance(context.Background(), nil, accountID, balance))
}

func (a *testApp) createListing(t *testing.T, token, title, slug string, price int64) string {
	t.Helper()
	body, _ := json.Marshal(map[string]interface{}{
		"title": title,
		"slug":  slug,
		"price": price,
	})
	resp := a.doJSON(t, http.MethodPost, "/api/v1/listings", token, body)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var listingResp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listingResp))
	return listingResp.Data.ID
}

func (a *testApp) doJSON(t *testing.T, method, path, token string, body []byte) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func (a *testApp) getBalance(t *testing.T, token string) int64 {
	t.Helper()
	resp := a.doJSON(t, http.MethodGet, "/api/v1/wallet/balance", token, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var balResp struct {
		Data struct {
			Balance int64 `json:"balance"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&balResp))
	return balResp.Data.Balance
}
