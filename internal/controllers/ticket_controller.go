package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/estia/marketplace-service/internal/dtos"
	"github.com/estia/marketplace-service/internal/services"
	"github.com/estia/marketplace-service/internal/utils"
)

type TicketController struct {
	ticketService *services.TicketService
	validate      *validator.Validate
}

func NewTicketController(s *services.TicketService) *TicketController {
	return &TicketController{
		ticketService: s,
		validate:      validator.New(),
	}
}

// POST /api/v1/tickets
func (c *TicketController) CreateHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "CreateTicketHandler")

	callerID, err := userIDFromContext(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.CreateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	t, err := c.ticketService.Create(r.Context(), callerID, isAdminFromContext(r), req)
	if err != nil {
		logger.WithError(err).Error("Ticket creation failed")
		utils.HandleAppError(w, err)
		return
	}
	logger.WithField("ticketID", t.ID).Info("Ticket created")
	utils.RespondWithJSON(w, http.StatusCreated, t)
}

// GET /api/v1/my/tickets
func (c *TicketController) ListMineHandler(w http.ResponseWriter, r *http.Request) {
	callerID, err := userIDFromContext(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	out, err := c.ticketService.ListMine(r.Context(), callerID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, out)
}

// GET /api/v1/admin/tickets?status=OPEN
func (c *TicketController) ListByStatusHandler(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = "OPEN"
	}
	out, err := c.ticketService.ListByStatus(r.Context(), status)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, out)
}

// GET /api/v1/tickets/{ticketID}
func (c *TicketController) GetHandler(w http.ResponseWriter, r *http.Request) {
	ticketID, err := pathUUID(mux.Vars(r), "ticketID")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	t, err := c.ticketService.Get(r.Context(), ticketID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, t)
}

// POST /api/v1/tickets/{ticketID}/messages
func (c *TicketController) PostMessageHandler(w http.ResponseWriter, r *http.Request) {
	callerID, err := userIDFromContext(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	ticketID, err := pathUUID(mux.Vars(r), "ticketID")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	m, err := c.ticketService.PostMessage(r.Context(), ticketID, callerID, isAdminFromContext(r), req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, m)
}

// PATCH /api/v1/admin/tickets/{ticketID}/status
func (c *TicketController) SetStatusHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "SetTicketStatusHandler")

	ticketID, err := pathUUID(mux.Vars(r), "ticketID")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.SetTicketStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	t, err := c.ticketService.SetStatus(r.Context(), ticketID, req.Status)
	if err != nil {
		logger.WithError(err).Error("Ticket status update failed")
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, t)
}
