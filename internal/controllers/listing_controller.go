package controllers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/estia/marketplace-service/internal/dtos"
	"github.com/estia/marketplace-service/internal/services"
	"github.com/estia/marketplace-service/internal/utils"
)

// maxImageUploadBytes caps a single listing image at 10 MiB.
const maxImageUploadBytes = 10 << 20

// ListingController serves the public reads and the seller-facing listing
// endpoints.
type ListingController struct {
	listingService *services.ListingService
}

func NewListingController(s *services.ListingService) *ListingController {
	return &ListingController{listingService: s}
}

// GET /api/v1/listings
func (c *ListingController) ListPublicHandler(w http.ResponseWriter, r *http.Request) {
	listings, err := c.listingService.ListPublic(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, listings)
}

// GET /api/v1/listings/{propertyID}
func (c *ListingController) GetPublicHandler(w http.ResponseWriter, r *http.Request) {
	propertyID, err := pathUUID(mux.Vars(r), "propertyID")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	p, err := c.listingService.GetPublic(r.Context(), propertyID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

// POST /api/v1/my/listings
func (c *ListingController) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "SubmitHandler")

	ownerID, err := userIDFromContext(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}

	p, err := c.listingService.Submit(r.Context(), ownerID, req)
	if err != nil {
		logger.WithError(err).Error("Listing submission failed")
		utils.HandleAppError(w, err)
		return
	}
	logger.WithField("propertyID", p.ID).Info("Listing submitted")
	utils.RespondWithJSON(w, http.StatusCreated, p)
}

// GET /api/v1/my/listings
func (c *ListingController) ListMineHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, err := userIDFromContext(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	listings, err := c.listingService.ListMine(r.Context(), ownerID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, listings)
}

// POST /api/v1/my/listings/{propertyID}/images
func (c *ListingController) AttachImageHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, err := userIDFromContext(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	propertyID, err := pathUUID(mux.Vars(r), "propertyID")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid multipart payload", nil, err)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Missing image file", nil, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageUploadBytes))
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Failed to read image file", nil, err)
		return
	}

	p, err := c.listingService.AttachImage(r.Context(), ownerID, propertyID, header.Filename, data, header.Header.Get("Content-Type"))
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

// POST /api/v1/my/listings/{propertyID}/removal-request
func (c *ListingController) RequestRemovalHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, err := userIDFromContext(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	propertyID, err := pathUUID(mux.Vars(r), "propertyID")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	p, err := c.listingService.RequestRemoval(r.Context(), ownerID, propertyID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.ConfirmationResponse{
		Message: "Removal request submitted",
		ID:      p.ID.String(),
	})
}

// GET /api/v1/my/listings/{propertyID}/progress
func (c *ListingController) GetProgressHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, err := userIDFromContext(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	propertyID, err := pathUUID(mux.Vars(r), "propertyID")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	prog, err := c.listingService.GetProgress(r.Context(), ownerID, propertyID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, prog)
}
