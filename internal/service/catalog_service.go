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

// CatalogServiceImpl implements ports.CatalogService.
type CatalogServiceImpl struct {
	listingRepo ports.ListingRepository
	log         zerolog.Logger
}

// NewCatalogService creates a new CatalogServiceImpl.
func NewCatalogService(listingRepo ports.ListingRepository, log zerolog.Logger) *CatalogServiceImpl {
	return &CatalogServiceImpl{
		listingRepo: listingRepo,
		log:         log,
	}
}

// CreateListing publishes a new listing owned by the caller.
func (s *CatalogServiceImpl) CreateListing(ctx context.Context, req ports.CreateListingRequest) (*domain.Listing, error) {
	if req.Price < 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.Title == "" {
		return nil, apperror.Validation("title is required")
	}

	now := time.Now().UTC()
	listing := &domain.Listing{
		ID:          uuid.New(),
		OwnerID:     req.OwnerID,
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.listingRepo.Create(ctx, listing); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create listing: %w", err))
	}

	s.log.Info().
		Str("listing_id", listing.ID.String()).
		Str("owner_id", req.OwnerID.String()).
		Int64("price", req.Price).
		Msg("listing created")

	return listing, nil
}

// UpdateListing applies a partial update. Only the owner or an admin may
// modify a listing.
func (s *CatalogServiceImpl) UpdateListing(ctx context.Context, req ports.UpdateListingRequest) (*domain.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, req.ListingID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load listing: %w", err))
	}
	if listing == nil {
		return nil, apperror.ErrNotFound("listing")
	}

	if listing.OwnerID != req.ActorID && !req.ActorIsAdmin {
		return nil, apperror.ErrForbidden()
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, apperror.Validation("title cannot be empty")
		}
		listing.Title = *req.Title
	}
	if req.Description != nil {
		listing.Description = *req.Description
	}
	if req.Category != nil {
		listing.Category = *req.Category
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, apperror.ErrInvalidAmount()
		}
		listing.Price = *req.Price
	}
	if req.Active != nil {
		listing.Active = *req.Active
	}

	if err := s.listingRepo.Update(ctx, listing); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update listing: %w", err))
	}

	return listing, nil
}

// GetListing fetches one listing.
func (s *CatalogServiceImpl) GetListing(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load listing: %w", err))
	}
	if listing == nil {
		return nil, apperror.ErrNotFound("listing")
	}
	return listing, nil
}

// ListListings returns listings matching the filter.
func (s *CatalogServiceImpl) ListListings(ctx context.Context, params ports.ListingListParams) ([]domain.Listing, int64, error) {
	listings, total, err := s.listingRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list listings: %w", err))
	}
	return listings, total, nil
}
