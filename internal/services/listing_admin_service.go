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

	"github.com/estia/marketplace-service/internal/events"
	"github.com/estia/marketplace-service/internal/models"
	"github.com/estia/marketplace-service/internal/repositories"
	"github.com/estia/marketplace-service/internal/utils"
)

// ListingAdminService carries every moderation action an admin can take on a
// listing. Each action writes an audit log entry, invalidates the listing
// cache, and publishes a status event for dashboard consumers.
type ListingAdminService struct {
	propRepo     repositories.PropertyRepository
	progressRepo repositories.PropertyProgressRepository
	auditRepo    repositories.AdminAuditLogRepository
	userRepo     repositories.UserRepository
	cache        ListingCache
	publisher    EventPublisher
	notifier     Notifier
}

func NewListingAdminService(
	propRepo repositories.PropertyRepository,
	progressRepo repositories.PropertyProgressRepository,
	auditRepo repositories.AdminAuditLogRepository,
	userRepo repositories.UserRepository,
	cache ListingCache,
	publisher EventPublisher,
	notifier Notifier,
) *ListingAdminService {
	return &ListingAdminService{
		propRepo:     propRepo,
		progressRepo: progressRepo,
		auditRepo:    auditRepo,
		userRepo:     userRepo,
		cache:        cache,
		publisher:    publisher,
		notifier:     notifier,
	}
}

func (s *ListingAdminService) ListByStatus(ctx context.Context, status models.PropertyStatus) ([]*models.Property, error) {
	out, err := s.propRepo.ListByStatus(ctx, status)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to list listings", Err: err}
	}
	return out, nil
}

func (s *ListingAdminService) Get(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	p, err := s.propRepo.GetByID(ctx, id)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to load listing", Err: err}
	}
	if p == nil {
		return nil, &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "Listing not found"}
	}
	return p, nil
}

// Approve sets the listing live. Approving an already-approved listing is a
// no-op that still succeeds, so double submits from the dashboard are
// harmless.
func (s *ListingAdminService) Approve(ctx context.Context, adminID, propertyID uuid.UUID) (*models.Property, error) {
	return s.moderate(ctx, adminID, propertyID, models.AuditApprove, func(p *models.Property) error {
		p.Status = models.StatusApproved
		p.IsVerified = true
		return nil
	})
}

func (s *ListingAdminService) Reject(ctx context.Context, adminID, propertyID uuid.UUID) (*models.Property, error) {
	return s.moderate(ctx, adminID, propertyID, models.AuditReject, func(p *models.Property) error {
		p.Status = models.StatusRejected
		p.IsVerified = false
		return nil
	})
}

// RequestInfo puts the listing back in the seller's court: the status flips
// to INFO_REQUESTED and the message lands as a note on the progress record.
func (s *ListingAdminService) RequestInfo(ctx context.Context, adminID, propertyID uuid.UUID, message string) (*models.Property, error) {
	p, err := s.moderate(ctx, adminID, propertyID, models.AuditRequestInfo, func(p *models.Property) error {
		p.Status = models.StatusInfoRequested
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = s.progressRepo.UpdateWithRetry(ctx, propertyID, func(prog *models.PropertyProgress) error {
		prog.Notifications = append(prog.Notifications, models.ProgressNote{
			ID:        uuid.New(),
			Title:     "Additional information requested",
			Message:   message,
			Type:      "INFO_REQUEST",
			CreatedAt: time.Now().UTC(),
		})
		return nil
	})
	if err != nil {
		utils.Logger.WithError(err).Errorf("Failed to record info request note for listing %s", propertyID)
	}
	return p, nil
}

// ApproveRemoval honors a seller's pending removal request. Without a pending
// request the call is rejected with a conflict. The precondition runs inside
// the locking loop so a concurrent cancel or removal cannot slip past a stale
// read.
func (s *ListingAdminService) ApproveRemoval(ctx context.Context, adminID, propertyID uuid.UUID) (*models.Property, error) {
	return s.moderate(ctx, adminID, propertyID, models.AuditRemovalApprove, func(p *models.Property) error {
		if !p.RemovalRequested {
			return &utils.AppError{StatusCode: http.StatusConflict, Code: utils.ErrCodeConflict, Message: "No pending removal request for this listing", Err: utils.ErrNoRemovalRequested}
		}
		prev := p.Status
		p.PreviousStatus = &prev
		p.Status = models.StatusUnavailable
		p.RemovalRequested = false
		return nil
	})
}

// CancelRemoval clears a pending removal request and leaves everything else
// untouched.
func (s *ListingAdminService) CancelRemoval(ctx context.Context, adminID, propertyID uuid.UUID) (*models.Property, error) {
	return s.moderate(ctx, adminID, propertyID, models.AuditRemovalCancel, func(p *models.Property) error {
		if !p.RemovalRequested {
			return &utils.AppError{StatusCode: http.StatusConflict, Code: utils.ErrCodeConflict, Message: "No pending removal request for this listing", Err: utils.ErrNoRemovalRequested}
		}
		p.RemovalRequested = false
		return nil
	})
}

// Remove takes the listing down immediately, without a seller request.
// Removing an already-removed listing is a conflict; the check lives in the
// locking loop so a duplicate concurrent Remove cannot clobber
// previous_status.
func (s *ListingAdminService) Remove(ctx context.Context, adminID, propertyID uuid.UUID) (*models.Property, error) {
	return s.moderate(ctx, adminID, propertyID, models.AuditRemove, func(p *models.Property) error {
		if p.Status == models.StatusUnavailable {
			return &utils.AppError{StatusCode: http.StatusConflict, Code: utils.ErrCodeConflict, Message: "Listing is already removed", Err: utils.ErrAlreadyRemoved}
		}
		prev := p.Status
		p.PreviousStatus = &prev
		p.Status = models.StatusUnavailable
		p.RemovalRequested = false
		return nil
	})
}

// Restore brings a removed listing back to the status it held before
// removal. Listings removed before previous_status existed come back as
// PENDING for a fresh review.
func (s *ListingAdminService) Restore(ctx context.Context, adminID, propertyID uuid.UUID) (*models.Property, error) {
	return s.moderate(ctx, adminID, propertyID, models.AuditRestore, func(p *models.Property) error {
		if p.Status != models.StatusUnavailable {
			return &utils.AppError{StatusCode: http.StatusConflict, Code: utils.ErrCodeConflict, Message: "Listing is not removed", Err: utils.ErrWrongStatus}
		}
		if p.PreviousStatus != nil {
			p.Status = *p.PreviousStatus
		} else {
			p.Status = models.StatusPending
		}
		p.PreviousStatus = nil
		return nil
	})
}

// SendModerationDigest mails every admin the count of listings waiting for
// review. Called from the daily cron job.
func (s *ListingAdminService) SendModerationDigest(ctx context.Context) error {
	pending, err := s.propRepo.ListByStatus(ctx, models.StatusPending)
	if err != nil {
		return fmt.Errorf("listing pending properties: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	admins, err := s.userRepo.ListByRole(ctx, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("listing admins: %w", err)
	}
	emails := make([]string, 0, len(admins))
	for _, a := range admins {
		emails = append(emails, a.Email)
	}
	return s.notifier.SendModerationDigest(ctx, emails, len(pending))
}

// moderate is the shared write path: mutate under optimistic locking, audit,
// invalidate the cache, publish the new status.
func (s *ListingAdminService) moderate(
	ctx context.Context,
	adminID, propertyID uuid.UUID,
	action models.AuditAction,
	mutate func(*models.Property) error,
) (*models.Property, error) {
	var before, after models.PropertyStatus
	var updated *models.Property

	err := s.propRepo.UpdateWithRetry(ctx, propertyID, func(p *models.Property) error {
		before = p.Status
		if err := mutate(p); err != nil {
			return err
		}
		after = p.Status
		updated = p
		return nil
	})
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "Listing not found"}
		}
		var appErr *utils.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to update listing", Err: err}
	}

	s.audit(ctx, adminID, propertyID, action, before, after)
	s.invalidate(ctx, propertyID)
	s.publishStatus(ctx, updated)

	return updated, nil
}

func (s *ListingAdminService) audit(ctx context.Context, adminID, targetID uuid.UUID, action models.AuditAction, before, after models.PropertyStatus) {
	details, _ := json.Marshal(map[string]string{
		"status_before": string(before),
		"status_after":  string(after),
	})
	entry := &models.AdminAuditLog{
		ID:         uuid.New(),
		AdminID:    adminID,
		Action:     action,
		TargetID:   targetID,
		TargetType: models.TargetProperty,
		Details:    details,
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		utils.Logger.WithError(err).Errorf("Failed to write audit log for %s on listing %s", action, targetID)
	}
}

func (s *ListingAdminService) invalidate(ctx context.Context, propertyID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteListing(ctx, propertyID.String()); err != nil {
		utils.Logger.WithError(err).Warnf("Failed to invalidate listing cache for %s", propertyID)
	}
}

func (s *ListingAdminService) publishStatus(ctx context.Context, p *models.Property) {
	if s.publisher == nil {
		return
	}
	evt := events.ListingStatusEvent{
		PropertyID: p.ID,
		Status:     p.Status,
		IsVerified: p.IsVerified,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, events.SubjectListingStatusChanged, evt); err != nil {
		utils.Logger.WithError(err).Warnf("Failed to publish status event for listing %s", p.ID)
	}
}
