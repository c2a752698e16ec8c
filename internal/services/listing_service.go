package services

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/estia/marketplace-service/internal/dtos"
	"github.com/estia/marketplace-service/internal/models"
	"github.com/estia/marketplace-service/internal/repositories"
	"github.com/estia/marketplace-service/internal/utils"
)

// Fallback geocoordinates: Athens city center. Used when the submitted
// coordinates do not parse as numbers.
const (
	defaultLatitude  = 37.9838
	defaultLongitude = 23.7275
)

type ListingService struct {
	propRepo     repositories.PropertyRepository
	progressRepo repositories.PropertyProgressRepository
	cache        ListingCache
	media        MediaUploader
}

func NewListingService(
	propRepo repositories.PropertyRepository,
	progressRepo repositories.PropertyProgressRepository,
	cache ListingCache,
	media MediaUploader,
) *ListingService {
	return &ListingService{
		propRepo:     propRepo,
		progressRepo: progressRepo,
		cache:        cache,
		media:        media,
	}
}

// Submit validates and stores a new listing. Every missing required field is
// reported in one field-keyed map; nothing is written unless validation
// passes in full.
func (s *ListingService) Submit(ctx context.Context, ownerID uuid.UUID, req dtos.CreateListingRequest) (*models.Property, error) {
	fields := map[string]string{}

	var propertyType models.PropertyType
	if req.PropertyType == "" {
		fields["property_type"] = "property type is required"
	} else {
		var err error
		propertyType, err = models.ParsePropertyType(req.PropertyType)
		if err != nil {
			fields["property_type"] = err.Error()
		}
	}
	if req.Title == "" {
		fields["title"] = "title is required"
	}
	if req.FullDescription == "" {
		fields["full_description"] = "full description is required"
	}
	if req.Price <= 0 {
		fields["price"] = "price must be a positive amount"
	}
	if req.State == "" {
		fields["state"] = "state is required"
	}
	if req.City == "" {
		fields["city"] = "city is required"
	}
	if req.Street == "" {
		fields["street"] = "street is required"
	}
	if req.Number == "" {
		fields["number"] = "street number is required"
	}
	if len(fields) > 0 {
		return nil, utils.NewValidationError(fields)
	}

	lat, err := strconv.ParseFloat(req.Latitude, 64)
	if err != nil {
		lat = defaultLatitude
	}
	lng, err := strconv.ParseFloat(req.Longitude, 64)
	if err != nil {
		lng = defaultLongitude
	}

	p := &models.Property{
		ID:               uuid.New(),
		OwnerID:          ownerID,
		PropertyType:     propertyType,
		Title:            req.Title,
		ShortDescription: req.ShortDescription,
		FullDescription:  req.FullDescription,
		Price:            req.Price,
		Area:             req.Area,
		State:            req.State,
		City:             req.City,
		Street:           req.Street,
		Number:           req.Number,
		PostalCode:       req.PostalCode,
		Latitude:         lat,
		Longitude:        lng,
		Residential:      req.Residential,
		Commercial:       req.Commercial,
		Plot:             req.Plot,
		Status:           models.StatusPending,
		IsVerified:       false,
	}

	if err := p.ValidateFeatureGroups(); err != nil {
		return nil, utils.NewValidationError(map[string]string{"features": err.Error()})
	}

	if err := s.propRepo.Create(ctx, p); err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to create listing", Err: err}
	}
	if err := s.progressRepo.Create(ctx, models.NewPropertyProgress(p.ID)); err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to create listing progress record", Err: err}
	}

	return p, nil
}

// GetPublic serves the buyer-facing listing detail through the cache.
// Listings that are not approved and verified are reported as not found.
func (s *ListingService) GetPublic(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	if s.cache != nil {
		cached, err := s.cache.GetListing(ctx, id.String())
		if err != nil {
			utils.Logger.WithError(err).Warn("Listing cache read failed, falling through to DB")
		} else if cached != nil && cached.IsPubliclyVisible() {
			return cached, nil
		}
	}

	p, err := s.propRepo.GetByID(ctx, id)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to load listing", Err: err}
	}
	if p == nil || !p.IsPubliclyVisible() {
		return nil, &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "Listing not found"}
	}

	if s.cache != nil {
		if err := s.cache.SetListing(ctx, p); err != nil {
			utils.Logger.WithError(err).Warn("Listing cache write failed")
		}
	}
	return p, nil
}

func (s *ListingService) ListPublic(ctx context.Context) ([]*models.Property, error) {
	out, err := s.propRepo.ListPublic(ctx)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to list listings", Err: err}
	}
	return out, nil
}

func (s *ListingService) ListMine(ctx context.Context, ownerID uuid.UUID) ([]*models.Property, error) {
	out, err := s.propRepo.ListByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to list listings", Err: err}
	}
	return out, nil
}

// AttachImage uploads one image to object storage and appends the returned
// URL to the listing. A storage failure is surfaced and nothing is written.
func (s *ListingService) AttachImage(ctx context.Context, ownerID, propertyID uuid.UUID, fileName string, data []byte, contentType string) (*models.Property, error) {
	p, err := s.propRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to load listing", Err: err}
	}
	if p == nil {
		return nil, &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "Listing not found"}
	}
	if p.OwnerID != ownerID {
		return nil, &utils.AppError{StatusCode: http.StatusForbidden, Code: utils.ErrCodeForbidden, Message: "Not the owner of this listing"}
	}

	url, err := s.media.Upload(ctx, fileName, data, contentType)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusBadGateway, Code: utils.ErrCodeExternalServiceFailure, Message: "Image upload failed", Err: err}
	}

	var updated *models.Property
	err = s.propRepo.UpdateWithRetry(ctx, propertyID, func(p *models.Property) error {
		p.Images = append(p.Images, url)
		updated = p
		return nil
	})
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to attach image", Err: err}
	}

	s.invalidate(ctx, propertyID)
	return updated, nil
}

// GetProgress returns the listing's progress record to its owner.
func (s *ListingService) GetProgress(ctx context.Context, ownerID, propertyID uuid.UUID) (*models.PropertyProgress, error) {
	p, err := s.propRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to load listing", Err: err}
	}
	if p == nil {
		return nil, &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "Listing not found"}
	}
	if p.OwnerID != ownerID {
		return nil, &utils.AppError{StatusCode: http.StatusForbidden, Code: utils.ErrCodeForbidden, Message: "Not the owner of this listing"}
	}

	prog, err := s.progressRepo.GetByPropertyID(ctx, propertyID)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to load listing progress", Err: err}
	}
	if prog == nil {
		return nil, &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "Listing progress not found"}
	}
	return prog, nil
}

// RequestRemoval flags a listing for seller-initiated removal, pending admin
// approval.
func (s *ListingService) RequestRemoval(ctx context.Context, ownerID, propertyID uuid.UUID) (*models.Property, error) {
	p, err := s.propRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to load listing", Err: err}
	}
	if p == nil {
		return nil, &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "Listing not found"}
	}
	if p.OwnerID != ownerID {
		return nil, &utils.AppError{StatusCode: http.StatusForbidden, Code: utils.ErrCodeForbidden, Message: "Not the owner of this listing"}
	}

	var updated *models.Property
	err = s.propRepo.UpdateWithRetry(ctx, propertyID, func(p *models.Property) error {
		p.RemovalRequested = true
		updated = p
		return nil
	})
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "Listing not found"}
		}
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to request removal", Err: err}
	}
	return updated, nil
}

func (s *ListingService) invalidate(ctx context.Context, propertyID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteListing(ctx, propertyID.String()); err != nil {
		utils.Logger.WithError(err).Warnf("Failed to invalidate listing cache for %s", propertyID)
	}
}
