package handler

import (
	"codemarket/internal/adapter/http/dto"
	"codemarket/internal/adapter/http/middleware"
	"codemarket/internal/core/domain"
	"codemarket/internal/core/ports"
	"codemarket/pkg/apperror"
	"codemarket/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WalletHandler handles balance and payment-request endpoints.
type WalletHandler struct {
	ledgerSvc  ports.LedgerService
	requestSvc ports.PaymentRequestService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(ledgerSvc ports.LedgerService, requestSvc ports.PaymentRequestService) *WalletHandler {
	return &WalletHandler{
		ledgerSvc:  ledgerSvc,
		requestSvc: requestSvc,
	}
}

// GetBalance handles GET /api/v1/wallet/balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	accountID, ok := authedAccountID(c)
	if !ok {
		return
	}

	balance, err := h.ledgerSvc.GetBalance(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{Balance: balance})
}

// SubmitRequest handles POST /api/v1/wallet/requests.
func (h *WalletHandler) SubmitRequest(c *gin.Context) {
	accountID, ok := authedAccountID(c)
	if !ok {
		return
	}

	var req dto.PaymentRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	submit := ports.SubmitPaymentRequest{
		AccountID: accountID,
		Type:      domain.PaymentRequestType(req.Type),
		Amount:    req.Amount,
	}
	if req.BankInfo != nil {
		submit.BankInfo = &domain.BankInfo{
			BankName:      req.BankInfo.BankName,
			AccountNumber: req.BankInfo.AccountNumber,
			AccountHolder: req.BankInfo.AccountHolder,
		}
	}

	result, err := h.requestSvc.Submit(c.Request.Context(), submit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.FromPaymentRequest(result))
}

// ListRequests handles GET /api/v1/wallet/requests.
func (h *WalletHandler) ListRequests(c *gin.Context) {
	accountID, ok := authedAccountID(c)
	if !ok {
		return
	}

	requests, err := h.requestSvc.ListByAccount(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.PaymentRequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, dto.FromPaymentRequest(&requests[i]))
	}
	response.OK(c, items)
}

// authedAccountID extracts the authenticated account ID set by JWTAuth.
// Writes the error response itself when the context is missing it.
func authedAccountID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(middleware.CtxAccountID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return uuid.Nil, false
	}
	return v.(uuid.UUID), true
}
