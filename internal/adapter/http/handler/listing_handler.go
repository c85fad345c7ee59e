package handler

import (
	"strconv"

	"codemarket/internal/adapter/http/dto"
	"codemarket/internal/adapter/http/middleware"
	"codemarket/internal/core/domain"
	"codemarket/internal/core/ports"
	"codemarket/pkg/apperror"
	"codemarket/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ListingHandler handles catalog endpoints.
type ListingHandler struct {
	catalogSvc ports.CatalogService
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(catalogSvc ports.CatalogService) *ListingHandler {
	return &ListingHandler{catalogSvc: catalogSvc}
}

// Create handles POST /api/v1/listings.
func (h *ListingHandler) Create(c *gin.Context) {
	ownerID, ok := authedAccountID(c)
	if !ok {
		return
	}

	var req dto.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	listing, err := h.catalogSvc.CreateListing(c.Request.Context(), ports.CreateListingRequest{
		OwnerID:     ownerID,
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.FromListing(listing))
}

// Update handles PUT /api/v1/listings/:id.
func (h *ListingHandler) Update(c *gin.Context) {
	actorID, ok := authedAccountID(c)
	if !ok {
		return
	}

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid listing id"))
		return
	}

	var req dto.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	role, _ := c.Get(middleware.CtxRole)
	isAdmin := role == domain.RoleAdmin

	listing, err := h.catalogSvc.UpdateListing(c.Request.Context(), ports.UpdateListingRequest{
		ListingID:    listingID,
		ActorID:      actorID,
		ActorIsAdmin: isAdmin,
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Price:        req.Price,
		Active:       req.Active,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromListing(listing))
}

// Get handles GET /api/v1/listings/:id.
func (h *ListingHandler) Get(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid listing id"))
		return
	}

	listing, err := h.catalogSvc.GetListing(c.Request.Context(), listingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromListing(listing))
}

// List handles GET /api/v1/listings.
func (h *ListingHandler) List(c *gin.Context) {
	params := ports.ListingListParams{
		Category:   c.Query("category"),
		ActiveOnly: c.Query("include_inactive") != "true",
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		params.Page = page
	}
	if pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil {
		params.PageSize = pageSize
	}
	if owner := c.Query("owner_id"); owner != "" {
		ownerID, err := uuid.Parse(owner)
		if err != nil {
			response.Error(c, apperror.Validation("invalid owner_id"))
			return
		}
		params.OwnerID = &ownerID
	}

	listings, total, err := h.catalogSvc.ListListings(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.ListingResponse, 0, len(listings))
	for i := range listings {
		items = append(items, dto.FromListing(&listings[i]))
	}

	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	response.OK(c, dto.ListingListResponse{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}
