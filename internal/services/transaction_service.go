package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/estia/marketplace-service/internal/dtos"
	"github.com/estia/marketplace-service/internal/events"
	"github.com/estia/marketplace-service/internal/models"
	"github.com/estia/marketplace-service/internal/repositories"
	"github.com/estia/marketplace-service/internal/utils"
)

type TransactionService struct {
	txRepo    repositories.TransactionRepository
	propRepo  repositories.PropertyRepository
	userRepo  repositories.UserRepository
	auditRepo repositories.AdminAuditLogRepository
	publisher EventPublisher
	notifier  Notifier
}

func NewTransactionService(
	txRepo repositories.TransactionRepository,
	propRepo repositories.PropertyRepository,
	userRepo repositories.UserRepository,
	auditRepo repositories.AdminAuditLogRepository,
	publisher EventPublisher,
	notifier Notifier,
) *TransactionService {
	return &TransactionService{
		txRepo:    txRepo,
		propRepo:  propRepo,
		userRepo:  userRepo,
		auditRepo: auditRepo,
		publisher: publisher,
		notifier:  notifier,
	}
}

// Create opens a transaction at PENDING. The seller is always the current
// listing owner; callers never supply it.
func (s *TransactionService) Create(ctx context.Context, req dtos.CreateTransactionRequest) (*models.Transaction, error) {
	p, err := s.propRepo.GetByID(ctx, req.PropertyID)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to load listing", Err: err}
	}
	if p == nil {
		return nil, &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "Listing not found"}
	}

	t := &models.Transaction{
		ID:         uuid.New(),
		PropertyID: req.PropertyID,
		BuyerID:    req.BuyerID,
		SellerID:   p.OwnerID,
		AgentID:    req.AgentID,
		Stage:      models.StagePending,
	}
	if err := s.txRepo.Create(ctx, t); err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to create transaction", Err: err}
	}
	return t, nil
}

// Get returns the detail view with the buyer-visibility rule applied.
func (s *TransactionService) Get(ctx context.Context, id uuid.UUID) (*dtos.TransactionResponse, error) {
	t, err := s.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to load transaction", Err: err}
	}
	if t == nil {
		return nil, &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "Transaction not found"}
	}

	updates, err := s.txRepo.ListUpdates(ctx, id)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to load transaction updates", Err: err}
	}

	var buyer *models.User
	if !models.ShouldConcealBuyerInfo(t.Stage) {
		buyer, err = s.userRepo.GetByID(ctx, t.BuyerID)
		if err != nil {
			return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to load buyer", Err: err}
		}
	}

	resp := dtos.NewTransactionResponse(t, buyer, updates)
	return &resp, nil
}

// ListByStage filters on either a real pipeline stage or one of the extended
// presentation-only stages.
func (s *TransactionService) ListByStage(ctx context.Context, stage string) ([]*models.Transaction, error) {
	st := models.TransactionStage(stage)
	if models.StageOrder(st) == -1 && !models.IsFilterStage(st) {
		return nil, utils.NewValidationError(map[string]string{"stage": fmt.Sprintf("unknown stage %q", stage)})
	}
	out, err := s.txRepo.ListByStage(ctx, st)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to list transactions", Err: err}
	}
	return out, nil
}

func (s *TransactionService) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.Transaction, error) {
	out, err := s.txRepo.ListByPropertyID(ctx, propertyID)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to list transactions", Err: err}
	}
	return out, nil
}

// UpdateStage moves the pipeline forward. Backward moves need the explicit
// admin-correction flag; disallowed moves come back as a conflict. The seller
// email and dashboard event go out after the write and never roll it back.
func (s *TransactionService) UpdateStage(ctx context.Context, adminID, id uuid.UUID, req dtos.UpdateTransactionStageRequest) (*models.Transaction, error) {
	target, err := models.ParseTransactionStage(req.Stage)
	if err != nil {
		return nil, utils.NewValidationError(map[string]string{"stage": err.Error()})
	}

	var before models.TransactionStage
	var updated *models.Transaction
	err = s.txRepo.UpdateWithRetry(ctx, id, func(t *models.Transaction) error {
		before = t.Stage
		if !models.CanTransition(t.Stage, target, req.AdminCorrection) {
			return utils.ErrStageNotAllowed
		}
		t.Stage = target
		updated = t
		return nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "Transaction not found"}
		}
		if errors.Is(err, utils.ErrStageNotAllowed) {
			return nil, &utils.AppError{
				StatusCode: http.StatusConflict,
				Code:       utils.ErrCodeConflict,
				Message:    fmt.Sprintf("Stage transition from %s to %s is not allowed", before, target),
				Err:        utils.ErrStageNotAllowed,
			}
		}
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to update transaction stage", Err: err}
	}

	s.auditStage(ctx, adminID, id, before, target)
	s.notifySeller(ctx, updated)
	s.publishStage(ctx, updated)

	return updated, nil
}

// SendNotification appends a manual update to the transaction's log. The
// category comes from the transaction's current stage, not from the caller.
func (s *TransactionService) SendNotification(ctx context.Context, id uuid.UUID, req dtos.SendTransactionNotificationRequest) (*models.Update, error) {
	t, err := s.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to load transaction", Err: err}
	}
	if t == nil {
		return nil, &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "Transaction not found"}
	}

	u := &models.Update{
		ID:        uuid.New(),
		Text:      req.Message,
		Message:   req.Message,
		Recipient: models.UpdateRecipient(req.Recipient),
		Category:  models.CategoryForStage(t.Stage),
		IsUnread:  true,
		Stage:     t.Stage,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.txRepo.AppendUpdate(ctx, u, id); err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to append transaction update", Err: err}
	}
	return u, nil
}

func (s *TransactionService) auditStage(ctx context.Context, adminID, txID uuid.UUID, before, after models.TransactionStage) {
	details, _ := json.Marshal(map[string]string{
		"stage_before": string(before),
		"stage_after":  string(after),
	})
	entry := &models.AdminAuditLog{
		ID:         uuid.New(),
		AdminID:    adminID,
		Action:     models.AuditStageUpdate,
		TargetID:   txID,
		TargetType: models.TargetTransaction,
		Details:    details,
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		utils.Logger.WithError(err).Errorf("Failed to write audit log for stage update on transaction %s", txID)
	}
}

func (s *TransactionService) notifySeller(ctx context.Context, t *models.Transaction) {
	if s.notifier == nil {
		return
	}
	seller, err := s.userRepo.GetByID(ctx, t.SellerID)
	if err != nil || seller == nil {
		utils.Logger.WithError(err).Warnf("Could not resolve seller %s for stage notification", t.SellerID)
		return
	}
	p, err := s.propRepo.GetByID(ctx, t.PropertyID)
	if err != nil || p == nil {
		utils.Logger.WithError(err).Warnf("Could not resolve property %s for stage notification", t.PropertyID)
		return
	}
	if err := s.notifier.NotifyStageChange(ctx, seller.Email, seller.FullName(), p.Title, p.ID.String(), t.Stage); err != nil {
		utils.Logger.WithError(err).Warnf("Stage-change email failed for transaction %s", t.ID)
	}
}

func (s *TransactionService) publishStage(ctx context.Context, t *models.Transaction) {
	if s.publisher == nil {
		return
	}
	evt := events.TransactionStageEvent{
		TransactionID: t.ID,
		PropertyID:    t.PropertyID,
		Stage:         t.Stage,
		OccurredAt:    time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, events.SubjectTransactionStageChanged, evt); err != nil {
		utils.Logger.WithError(err).Warnf("Failed to publish stage event for transaction %s", t.ID)
	}
}
