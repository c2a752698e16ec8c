package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/estia/marketplace-service/internal/dtos"
	"github.com/estia/marketplace-service/internal/models"
	"github.com/estia/marketplace-service/internal/services"
	"github.com/estia/marketplace-service/internal/utils"
)

// AdminListingController serves the moderation endpoints: status decisions,
// removals, and progress-tracker updates.
type AdminListingController struct {
	adminService    *services.ListingAdminService
	progressService *services.ProgressService
	validate        *validator.Validate
}

func NewAdminListingController(adminService *services.ListingAdminService, progressService *services.ProgressService) *AdminListingController {
	return &AdminListingController{
		adminService:    adminService,
		progressService: progressService,
		validate:        validator.New(),
	}
}

// GET /api/v1/admin/listings?status=PENDING
func (c *AdminListingController) ListHandler(w http.ResponseWriter, r *http.Request) {
	status := models.PropertyStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = models.StatusPending
	}
	listings, err := c.adminService.ListByStatus(r.Context(), status)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, listings)
}

// GET /api/v1/admin/listings/{propertyID}
func (c *AdminListingController) GetHandler(w http.ResponseWriter, r *http.Request) {
	propertyID, err := pathUUID(mux.Vars(r), "propertyID")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	p, err := c.adminService.Get(r.Context(), propertyID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

// POST /api/v1/admin/listings/{propertyID}/approve
func (c *AdminListingController) ApproveHandler(w http.ResponseWriter, r *http.Request) {
	c.moderationHandler(w, r, "ApproveHandler", c.adminService.Approve)
}

// POST /api/v1/admin/listings/{propertyID}/reject
func (c *AdminListingController) RejectHandler(w http.ResponseWriter, r *http.Request) {
	c.moderationHandler(w, r, "RejectHandler", c.adminService.Reject)
}

// POST /api/v1/admin/listings/{propertyID}/request-info
func (c *AdminListingController) RequestInfoHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "RequestInfoHandler")

	adminID, err := userIDFromContext(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	propertyID, err := pathUUID(mux.Vars(r), "propertyID")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.RequestInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	p, err := c.adminService.RequestInfo(r.Context(), adminID, propertyID, req.Message)
	if err != nil {
		logger.WithError(err).Error("Info request failed")
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

// POST /api/v1/admin/listings/{propertyID}/remove
func (c *AdminListingController) RemoveHandler(w http.ResponseWriter, r *http.Request) {
	c.moderationHandler(w, r, "RemoveHandler", c.adminService.Remove)
}

// POST /api/v1/admin/listings/{propertyID}/restore
func (c *AdminListingController) RestoreHandler(w http.ResponseWriter, r *http.Request) {
	c.moderationHandler(w, r, "RestoreHandler", c.adminService.Restore)
}

// POST /api/v1/admin/listings/{propertyID}/removal/approve
func (c *AdminListingController) ApproveRemovalHandler(w http.ResponseWriter, r *http.Request) {
	c.moderationHandler(w, r, "ApproveRemovalHandler", c.adminService.ApproveRemoval)
}

// POST /api/v1/admin/listings/{propertyID}/removal/cancel
func (c *AdminListingController) CancelRemovalHandler(w http.ResponseWriter, r *http.Request) {
	c.moderationHandler(w, r, "CancelRemovalHandler", c.adminService.CancelRemoval)
}

// GET /api/v1/admin/listings/{propertyID}/progress
func (c *AdminListingController) GetProgressHandler(w http.ResponseWriter, r *http.Request) {
	propertyID, err := pathUUID(mux.Vars(r), "propertyID")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	prog, err := c.progressService.Get(r.Context(), propertyID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, prog)
}

// PATCH /api/v1/admin/listings/{propertyID}/progress
func (c *AdminListingController) UpdateProgressHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "UpdateProgressHandler")

	adminID, err := userIDFromContext(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	propertyID, err := pathUUID(mux.Vars(r), "propertyID")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.UpdateProgressStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	prog, err := c.progressService.UpdateStage(r.Context(), adminID, propertyID, req.Tracker, req.Status)
	if err != nil {
		logger.WithError(err).Error("Progress update failed")
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, prog)
}

// moderationHandler factors the shared shape of the body-less moderation
// actions.
func (c *AdminListingController) moderationHandler(
	w http.ResponseWriter,
	r *http.Request,
	name string,
	action func(ctx context.Context, adminID, propertyID uuid.UUID) (*models.Property, error),
) {
	logger := utils.Logger.WithField("handler", name)

	adminID, err := userIDFromContext(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	propertyID, err := pathUUID(mux.Vars(r), "propertyID")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	p, err := action(r.Context(), adminID, propertyID)
	if err != nil {
		logger.WithError(err).Error("Moderation action failed")
		utils.HandleAppError(w, err)
		return
	}
	logger.WithField("propertyID", p.ID).Info("Moderation action applied")
	utils.RespondWithJSON(w, http.StatusOK, p)
}
