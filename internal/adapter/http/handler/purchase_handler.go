package handler

import (
	"codemarket/internal/adapter/http/dto"
	"codemarket/internal/core/ports"
	"codemarket/pkg/apperror"
	"codemarket/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PurchaseHandler handles purchase settlement endpoints.
type PurchaseHandler struct {
	settlementSvc ports.SettlementService
}

// NewPurchaseHandler creates a new PurchaseHandler.
func NewPurchaseHandler(settlementSvc ports.SettlementService) *PurchaseHandler {
	return &PurchaseHandler{settlementSvc: settlementSvc}
}

// Purchase handles POST /api/v1/purchases.
func (h *PurchaseHandler) Purchase(c *gin.Context) {
	buyerID, ok := authedAccountID(c)
	if !ok {
		return
	}

	var req dto.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid listing_id"))
		return
	}

	purchase, err := h.settlementSvc.SettlePurchase(c.Request.Context(), ports.SettleRequest{
		BuyerID:       buyerID,
		ListingID:     listingID,
		ExpectedPrice: req.ExpectedPrice,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.FromPurchase(purchase))
}

// ListPurchases handles GET /api/v1/purchases.
func (h *PurchaseHandler) ListPurchases(c *gin.Context) {
	buyerID, ok := authedAccountID(c)
	if !ok {
		return
	}

	purchases, err := h.settlementSvc.ListPurchases(c.Request.Context(), buyerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.PurchaseResponse, 0, len(purchases))
	for i := range purchases {
		items = append(items, dto.FromPurchase(&purchases[i]))
	}
	response.OK(c, items)
}

// CheckAccess handles GET /api/v1/purchases/access/:listing_id.
func (h *PurchaseHandler) CheckAccess(c *gin.Context) {
	buyerID, ok := authedAccountID(c)
	if !ok {
		return
	}

	listingID, err := uuid.Parse(c.Param("listing_id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid listing_id"))
		return
	}

	hasAccess, err := h.settlementSvc.HasAccess(c.Request.Context(), buyerID, listingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.AccessResponse{HasAccess: hasAccess})
}
