package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/estia/marketplace-service/internal/models"
	"github.com/estia/marketplace-service/internal/utils"
)

func newProgressFixture(t *testing.T) (*ProgressService, *fakeAuditRepo, uuid.UUID) {
	t.Helper()
	progressRepo := newFakeProgressRepo()
	auditRepo := &fakeAuditRepo{}
	propertyID := uuid.New()
	require.NoError(t, progressRepo.Create(context.Background(), models.NewPropertyProgress(propertyID)))
	return NewProgressService(progressRepo, auditRepo), auditRepo, propertyID
}

func TestUpdateStageMutatesOnlyNamedTracker(t *testing.T) {
	svc, auditRepo, propertyID := newProgressFixture(t)

	prog, err := svc.UpdateStage(context.Background(), uuid.New(), propertyID, models.TrackerLegalDocuments, "COMPLETED")
	require.NoError(t, err)
	require.Equal(t, models.ProgressCompleted, prog.LegalDocumentsStatus)
	require.Equal(t, models.ProgressNotStarted, prog.PlatformReviewStatus)
	require.Equal(t, models.ProgressNotStarted, prog.PlatformAssignmentStatus)
	require.Equal(t, models.ProgressNotStarted, prog.ListingStatus)

	require.Len(t, prog.Notifications, 1, "every tracker change leaves a note")
	require.Len(t, auditRepo.entries, 1)
	require.Equal(t, models.TargetPropertyProgress, auditRepo.entries[0].TargetType)
}

func TestUpdateStageRejectsNotStartedTarget(t *testing.T) {
	svc, _, propertyID := newProgressFixture(t)

	_, err := svc.UpdateStage(context.Background(), uuid.New(), propertyID, models.TrackerListing, "NOT_STARTED")
	var valErr *utils.ValidationError
	require.ErrorAs(t, err, &valErr)
	require.Contains(t, valErr.Fields, "status")
}

func TestUpdateStageRejectsUnknownTracker(t *testing.T) {
	svc, _, propertyID := newProgressFixture(t)

	_, err := svc.UpdateStage(context.Background(), uuid.New(), propertyID, "paperwork", "PENDING")
	var valErr *utils.ValidationError
	require.ErrorAs(t, err, &valErr)
	require.Contains(t, valErr.Fields, "tracker")
}

func TestUpdateStageUnknownPropertyIs404(t *testing.T) {
	svc, _, _ := newProgressFixture(t)

	_, err := svc.UpdateStage(context.Background(), uuid.New(), uuid.New(), models.TrackerListing, "PENDING")
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, 404, appErr.StatusCode)
}

func TestUpdateStageAllowsRegression(t *testing.T) {
	svc, _, propertyID := newProgressFixture(t)

	_, err := svc.UpdateStage(context.Background(), uuid.New(), propertyID, models.TrackerPlatformReview, "COMPLETED")
	require.NoError(t, err)

	// Trackers move freely in both directions.
	prog, err := svc.UpdateStage(context.Background(), uuid.New(), propertyID, models.TrackerPlatformReview, "PENDING")
	require.NoError(t, err)
	require.Equal(t, models.ProgressPending, prog.PlatformReviewStatus)
}
