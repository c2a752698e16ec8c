package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/estia/marketplace-service/internal/dtos"
	"github.com/estia/marketplace-service/internal/services"
	"github.com/estia/marketplace-service/internal/utils"
)

// TransactionController serves the admin-driven transaction pipeline.
type TransactionController struct {
	txService *services.TransactionService
	validate  *validator.Validate
}

func NewTransactionController(s *services.TransactionService) *TransactionController {
	return &TransactionController{
		txService: s,
		validate:  validator.New(),
	}
}

// POST /api/v1/admin/transactions
func (c *TransactionController) CreateHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "CreateTransactionHandler")

	var req dtos.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	t, err := c.txService.Create(r.Context(), req)
	if err != nil {
		logger.WithError(err).Error("Transaction creation failed")
		utils.HandleAppError(w, err)
		return
	}
	logger.WithField("transactionID", t.ID).Info("Transaction created")
	utils.RespondWithJSON(w, http.StatusCreated, t)
}

// GET /api/v1/admin/transactions?stage=PENDING or ?property_id=...
func (c *TransactionController) ListHandler(w http.ResponseWriter, r *http.Request) {
	if rawPropertyID := r.URL.Query().Get("property_id"); rawPropertyID != "" {
		propertyID, err := uuid.Parse(rawPropertyID)
		if err != nil {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid property_id format", nil, err)
			return
		}
		out, err := c.txService.ListByProperty(r.Context(), propertyID)
		if err != nil {
			utils.HandleAppError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, out)
		return
	}

	stage := r.URL.Query().Get("stage")
	if stage == "" {
		stage = "PENDING"
	}
	out, err := c.txService.ListByStage(r.Context(), stage)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, out)
}

// GET /api/v1/admin/transactions/{transactionID}
func (c *TransactionController) GetHandler(w http.ResponseWriter, r *http.Request) {
	transactionID, err := pathUUID(mux.Vars(r), "transactionID")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	resp, err := c.txService.Get(r.Context(), transactionID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// PATCH /api/v1/admin/transactions/{transactionID}/stage
func (c *TransactionController) UpdateStageHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "UpdateStageHandler")

	adminID, err := userIDFromContext(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	transactionID, err := pathUUID(mux.Vars(r), "transactionID")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.UpdateTransactionStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	t, err := c.txService.UpdateStage(r.Context(), adminID, transactionID, req)
	if err != nil {
		logger.WithError(err).Error("Stage update failed")
		utils.HandleAppError(w, err)
		return
	}
	logger.WithField("transactionID", t.ID).WithField("stage", t.Stage).Info("Stage updated")
	utils.RespondWithJSON(w, http.StatusOK, t)
}

// POST /api/v1/admin/transactions/{transactionID}/notifications
func (c *TransactionController) SendNotificationHandler(w http.ResponseWriter, r *http.Request) {
	transactionID, err := pathUUID(mux.Vars(r), "transactionID")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.SendTransactionNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	u, err := c.txService.SendNotification(r.Context(), transactionID, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, u)
}
