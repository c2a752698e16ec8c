package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/estia/marketplace-service/internal/dtos"
	"github.com/estia/marketplace-service/internal/models"
	"github.com/estia/marketplace-service/internal/repositories"
	"github.com/estia/marketplace-service/internal/utils"
)

type TicketService struct {
	ticketRepo repositories.SupportTicketRepository
	notifier   Notifier
}

func NewTicketService(ticketRepo repositories.SupportTicketRepository, notifier Notifier) *TicketService {
	return &TicketService{ticketRepo: ticketRepo, notifier: notifier}
}

// Create opens a ticket at OPEN with an empty message log. An admin can open
// one on another user's behalf; everyone else creates for themselves.
// Transaction links are reserved for agents, property links for buyers and
// sellers. URGENT tickets trigger an on-call SMS that never blocks the
// creation.
func (s *TicketService) Create(ctx context.Context, callerID uuid.UUID, callerIsAdmin bool, req dtos.CreateTicketRequest) (*models.SupportTicket, error) {
	role := models.UserRole(req.Role)

	fields := map[string]string{}
	if req.OnBehalfOfUserID != nil && !callerIsAdmin {
		fields["on_behalf_of_user_id"] = "only admins can open tickets on behalf of another user"
	}
	if req.TransactionID != nil && role != models.RoleAgent {
		fields["transaction_id"] = "transaction links are only valid for AGENT tickets"
	}
	if req.PropertyID != nil && role == models.RoleAgent {
		fields["property_id"] = "property links are only valid for BUYER and SELLER tickets"
	}
	if len(fields) > 0 {
		return nil, utils.NewValidationError(fields)
	}

	creatorID := callerID
	var createdBy *uuid.UUID
	if req.OnBehalfOfUserID != nil {
		creatorID = *req.OnBehalfOfUserID
		admin := callerID
		createdBy = &admin
	}

	t := &models.SupportTicket{
		ID:            uuid.New(),
		Title:         req.Title,
		Description:   req.Description,
		Status:        models.TicketOpen,
		Priority:      models.TicketPriority(req.Priority),
		Category:      models.TicketCategory(req.Category),
		CreatorID:     creatorID,
		CreatedByID:   createdBy,
		SelectedRole:  &role,
		PropertyID:    req.PropertyID,
		TransactionID: req.TransactionID,
	}
	if err := s.ticketRepo.Create(ctx, t); err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to create ticket", Err: err}
	}

	if t.Priority == models.PriorityUrgent && s.notifier != nil {
		if err := s.notifier.NotifyUrgentTicket(ctx, t); err != nil {
			utils.Logger.WithError(err).Warnf("Urgent-ticket SMS failed for ticket %s", t.ID)
		}
	}
	return t, nil
}

func (s *TicketService) Get(ctx context.Context, id uuid.UUID) (*models.SupportTicket, error) {
	t, err := s.ticketRepo.GetWithMessages(ctx, id)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to load ticket", Err: err}
	}
	if t == nil {
		return nil, &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "Ticket not found"}
	}
	return t, nil
}

func (s *TicketService) ListMine(ctx context.Context, creatorID uuid.UUID) ([]*models.SupportTicket, error) {
	out, err := s.ticketRepo.ListByCreatorID(ctx, creatorID)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to list tickets", Err: err}
	}
	return out, nil
}

func (s *TicketService) ListByStatus(ctx context.Context, status string) ([]*models.SupportTicket, error) {
	st, err := models.ParseTicketStatus(status)
	if err != nil {
		return nil, utils.NewValidationError(map[string]string{"status": err.Error()})
	}
	out, err := s.ticketRepo.ListByStatus(ctx, st)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to list tickets", Err: err}
	}
	return out, nil
}

// PostMessage appends one message to the ticket. A multiple-choice message
// needs at least two non-empty options; plain messages carry no metadata.
// Posting never changes the ticket's status.
func (s *TicketService) PostMessage(ctx context.Context, ticketID, userID uuid.UUID, isFromAdmin bool, req dtos.PostMessageRequest) (*models.TicketMessage, error) {
	t, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to load ticket", Err: err}
	}
	if t == nil {
		return nil, &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "Ticket not found"}
	}

	var metadata *models.MessageMetadata
	if req.MultipleChoice != nil {
		options := make([]string, 0, len(req.MultipleChoice.Options))
		for _, o := range req.MultipleChoice.Options {
			if strings.TrimSpace(o) != "" {
				options = append(options, o)
			}
		}
		if len(options) < 2 {
			return nil, utils.NewValidationError(map[string]string{
				"multiple_choice.options": "a multiple-choice message needs at least two non-empty options",
			})
		}
		metadata = &models.MessageMetadata{IsMultipleChoice: true, Options: options}
	}

	m := &models.TicketMessage{
		ID:          uuid.New(),
		TicketID:    ticketID,
		UserID:      userID,
		Content:     req.Content,
		IsFromAdmin: isFromAdmin,
		Metadata:    metadata,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.ticketRepo.AppendMessage(ctx, m); err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to post message", Err: err}
	}
	return m, nil
}

// SetStatus moves the ticket to any valid status. There is no transition
// graph; support flows reopen and close tickets freely. The response carries
// the full message log so the dashboard can refresh in one call.
func (s *TicketService) SetStatus(ctx context.Context, ticketID uuid.UUID, status string) (*models.SupportTicket, error) {
	st, err := models.ParseTicketStatus(status)
	if err != nil {
		return nil, utils.NewValidationError(map[string]string{"status": err.Error()})
	}

	err = s.ticketRepo.UpdateWithRetry(ctx, ticketID, func(t *models.SupportTicket) error {
		t.Status = st
		return nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "Ticket not found"}
		}
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to update ticket status", Err: err}
	}
	return s.Get(ctx, ticketID)
}
