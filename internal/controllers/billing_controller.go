package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/estia/marketplace-service/internal/dtos"
	"github.com/estia/marketplace-service/internal/repositories"
	"github.com/estia/marketplace-service/internal/services"
	"github.com/estia/marketplace-service/internal/utils"
)

type BillingController struct {
	billingService *services.BillingService
	userRepo       repositories.UserRepository
	validate       *validator.Validate
}

func NewBillingController(billingService *services.BillingService, userRepo repositories.UserRepository) *BillingController {
	return &BillingController{
		billingService: billingService,
		userRepo:       userRepo,
		validate:       validator.New(),
	}
}

// POST /api/v1/billing/checkout-session
func (c *BillingController) CreateCheckoutSessionHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "CreateCheckoutSessionHandler")

	userID, err := userIDFromContext(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.CheckoutSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	user, err := c.userRepo.GetByID(r.Context(), userID)
	if err != nil || user == nil {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Unknown user", nil, err)
		return
	}

	resp, err := c.billingService.CreateCheckoutSession(r.Context(), user.Email, req)
	if err != nil {
		logger.WithError(err).Error("Checkout session creation failed")
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}
