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

	"github.com/estia/marketplace-service/internal/models"
	"github.com/estia/marketplace-service/internal/repositories"
	"github.com/estia/marketplace-service/internal/utils"
)

type ProgressService struct {
	progressRepo repositories.PropertyProgressRepository
	auditRepo    repositories.AdminAuditLogRepository
}

func NewProgressService(
	progressRepo repositories.PropertyProgressRepository,
	auditRepo repositories.AdminAuditLogRepository,
) *ProgressService {
	return &ProgressService{progressRepo: progressRepo, auditRepo: auditRepo}
}

func (s *ProgressService) Get(ctx context.Context, propertyID uuid.UUID) (*models.PropertyProgress, error) {
	prog, err := s.progressRepo.GetByPropertyID(ctx, propertyID)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to load progress", Err: err}
	}
	if prog == nil {
		return nil, &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "Progress record not found"}
	}
	return prog, nil
}

// UpdateStage moves exactly one tracker to PENDING or COMPLETED. The other
// three trackers are never touched, and the change lands as a note in the
// progress notification log.
func (s *ProgressService) UpdateStage(ctx context.Context, adminID, propertyID uuid.UUID, tracker string, status string) (*models.PropertyProgress, error) {
	target := models.StageStatus(status)
	if target != models.ProgressPending && target != models.ProgressCompleted {
		return nil, utils.NewValidationError(map[string]string{
			"status": fmt.Sprintf("status must be %s or %s", models.ProgressPending, models.ProgressCompleted),
		})
	}

	var old models.StageStatus
	var updated *models.PropertyProgress
	err := s.progressRepo.UpdateWithRetry(ctx, propertyID, func(prog *models.PropertyProgress) error {
		prev, err := prog.SetTracker(tracker, target)
		if err != nil {
			return err
		}
		old = prev
		prog.Notifications = append(prog.Notifications, models.ProgressNote{
			ID:        uuid.New(),
			Title:     "Progress updated",
			Message:   fmt.Sprintf("%s moved from %s to %s", tracker, prev, target),
			Type:      "PROGRESS_UPDATE",
			CreatedAt: time.Now().UTC(),
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "Progress record not found"}
		}
		if errors.Is(err, utils.ErrUnknownTracker) {
			return nil, utils.NewValidationError(map[string]string{"tracker": "unknown tracker name"})
		}
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to update progress", Err: err}
	}
	updated, err = s.progressRepo.GetByPropertyID(ctx, propertyID)
	if err != nil || updated == nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to reload progress", Err: err}
	}

	s.audit(ctx, adminID, propertyID, tracker, old, target)
	return updated, nil
}

func (s *ProgressService) audit(ctx context.Context, adminID, propertyID uuid.UUID, tracker string, before, after models.StageStatus) {
	details, _ := json.Marshal(map[string]string{
		"tracker": tracker,
		"before":  string(before),
		"after":   string(after),
	})
	entry := &models.AdminAuditLog{
		ID:         uuid.New(),
		AdminID:    adminID,
		Action:     models.AuditStatusUpdate,
		TargetID:   propertyID,
		TargetType: models.TargetPropertyProgress,
		Details:    details,
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		utils.Logger.WithError(err).Errorf("Failed to write audit log for progress update on %s", propertyID)
	}
}
