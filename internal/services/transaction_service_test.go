package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/estia/marketplace-service/internal/dtos"
	"github.com/estia/marketplace-service/internal/events"
	"github.com/estia/marketplace-service/internal/models"
	"github.com/estia/marketplace-service/internal/utils"
)

type txFixture struct {
	svc       *TransactionService
	txRepo    *fakeTransactionRepo
	propRepo  *fakePropertyRepo
	userRepo  *fakeUserRepo
	auditRepo *fakeAuditRepo
	publisher *fakePublisher
	notifier  *fakeNotifier

	seller   *models.User
	buyer    *models.User
	property *models.Property
}

func newTxFixture(t *testing.T) *txFixture {
	t.Helper()
	f := &txFixture{
		txRepo:    newFakeTransactionRepo(),
		propRepo:  newFakePropertyRepo(),
		userRepo:  newFakeUserRepo(),
		auditRepo: &fakeAuditRepo{},
		publisher: &fakePublisher{},
		notifier:  &fakeNotifier{},
	}
	f.svc = NewTransactionService(f.txRepo, f.propRepo, f.userRepo, f.auditRepo, f.publisher, f.notifier)

	phone := "+306900000000"
	f.seller = &models.User{ID: uuid.New(), Email: "seller@estia.example", FirstName: "Maria", LastName: "Papadopoulou", Role: models.RoleSeller}
	f.buyer = &models.User{ID: uuid.New(), Email: "buyer@estia.example", PhoneNumber: &phone, FirstName: "Nikos", LastName: "Georgiou", Role: models.RoleBuyer}
	require.NoError(t, f.userRepo.Create(context.Background(), f.seller))
	require.NoError(t, f.userRepo.Create(context.Background(), f.buyer))

	f.property = &models.Property{ID: uuid.New(), OwnerID: f.seller.ID, Title: "Sunny two-bedroom"}
	require.NoError(t, f.propRepo.Create(context.Background(), f.property))
	return f
}

func (f *txFixture) create(t *testing.T) *models.Transaction {
	t.Helper()
	tx, err := f.svc.Create(context.Background(), dtos.CreateTransactionRequest{
		PropertyID: f.property.ID,
		BuyerID:    f.buyer.ID,
	})
	require.NoError(t, err)
	return tx
}

func TestCreateSetsSellerFromListingOwner(t *testing.T) {
	f := newTxFixture(t)

	tx := f.create(t)
	require.Equal(t, models.StagePending, tx.Stage)
	require.Equal(t, f.seller.ID, tx.SellerID)
	require.Equal(t, f.buyer.ID, tx.BuyerID)
}

func TestCreateUnknownListingIs404(t *testing.T) {
	f := newTxFixture(t)

	_, err := f.svc.Create(context.Background(), dtos.CreateTransactionRequest{
		PropertyID: uuid.New(),
		BuyerID:    f.buyer.ID,
	})
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, 404, appErr.StatusCode)
}

func TestGetConcealsBuyerBeforeDeposit(t *testing.T) {
	f := newTxFixture(t)
	tx := f.create(t)

	resp, err := f.svc.Get(context.Background(), tx.ID)
	require.NoError(t, err)
	require.True(t, resp.BuyerConcealed)
	require.Empty(t, resp.Buyer.Name)
	require.Empty(t, resp.Buyer.Email)
	require.Empty(t, resp.Buyer.Phone)
}

func TestGetRevealsBuyerAfterDeposit(t *testing.T) {
	f := newTxFixture(t)
	tx := f.create(t)
	tx.Stage = models.StageDepositPaid

	resp, err := f.svc.Get(context.Background(), tx.ID)
	require.NoError(t, err)
	require.False(t, resp.BuyerConcealed)
	require.Equal(t, "Nikos Georgiou", resp.Buyer.Name)
	require.Equal(t, "buyer@estia.example", resp.Buyer.Email)
	require.Equal(t, "+306900000000", resp.Buyer.Phone)
}

func TestGetRevealsBuyerOnCancelled(t *testing.T) {
	f := newTxFixture(t)
	tx := f.create(t)
	tx.Stage = models.StageCancelled

	resp, err := f.svc.Get(context.Background(), tx.ID)
	require.NoError(t, err)
	require.False(t, resp.BuyerConcealed, "cancellation does not re-conceal the buyer")
}

func TestUpdateStageForward(t *testing.T) {
	f := newTxFixture(t)
	tx := f.create(t)

	updated, err := f.svc.UpdateStage(context.Background(), uuid.New(), tx.ID, dtos.UpdateTransactionStageRequest{Stage: "MEETING_SCHEDULED"})
	require.NoError(t, err)
	require.Equal(t, models.StageMeetingScheduled, updated.Stage)

	require.Equal(t, []models.TransactionStage{models.StageMeetingScheduled}, f.notifier.stageEmails)
	require.Len(t, f.publisher.events, 1)
	require.Equal(t, events.SubjectTransactionStageChanged, f.publisher.events[0].subject)
	require.Len(t, f.auditRepo.entries, 1)
	require.Equal(t, models.AuditStageUpdate, f.auditRepo.entries[0].Action)
}

func TestUpdateStageBackwardNeedsCorrection(t *testing.T) {
	f := newTxFixture(t)
	tx := f.create(t)
	tx.Stage = models.StageDepositPaid

	_, err := f.svc.UpdateStage(context.Background(), uuid.New(), tx.ID, dtos.UpdateTransactionStageRequest{Stage: "MEETING_SCHEDULED"})
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, 409, appErr.StatusCode)

	updated, err := f.svc.UpdateStage(context.Background(), uuid.New(), tx.ID, dtos.UpdateTransactionStageRequest{Stage: "MEETING_SCHEDULED", AdminCorrection: true})
	require.NoError(t, err)
	require.Equal(t, models.StageMeetingScheduled, updated.Stage)
}

func TestUpdateStageTerminalIsFinal(t *testing.T) {
	f := newTxFixture(t)
	tx := f.create(t)
	tx.Stage = models.StageCompleted

	_, err := f.svc.UpdateStage(context.Background(), uuid.New(), tx.ID, dtos.UpdateTransactionStageRequest{Stage: "CANCELLED"})
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, 409, appErr.StatusCode)
}

func TestUpdateStageRejectsFilterStage(t *testing.T) {
	f := newTxFixture(t)
	tx := f.create(t)

	_, err := f.svc.UpdateStage(context.Background(), uuid.New(), tx.ID, dtos.UpdateTransactionStageRequest{Stage: "PROPERTY_VIEWING"})
	var valErr *utils.ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestUpdateStageSurvivesNotifierFailure(t *testing.T) {
	f := newTxFixture(t)
	f.notifier.err = errBoom
	tx := f.create(t)

	updated, err := f.svc.UpdateStage(context.Background(), uuid.New(), tx.ID, dtos.UpdateTransactionStageRequest{Stage: "MEETING_SCHEDULED"})
	require.NoError(t, err, "a failed email never rolls back the stage write")
	require.Equal(t, models.StageMeetingScheduled, updated.Stage)
}

func TestListByStageAcceptsFilterStages(t *testing.T) {
	f := newTxFixture(t)
	f.create(t)

	out, err := f.svc.ListByStage(context.Background(), "PROPERTY_VIEWING")
	require.NoError(t, err)
	require.Empty(t, out, "no stored transaction ever carries a filter stage")

	out, err = f.svc.ListByStage(context.Background(), "PENDING")
	require.NoError(t, err)
	require.Len(t, out, 1)

	_, err = f.svc.ListByStage(context.Background(), "BOGUS")
	var valErr *utils.ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestSendNotificationDerivesCategoryFromStage(t *testing.T) {
	f := newTxFixture(t)
	tx := f.create(t)
	tx.Stage = models.StageFinalSigning

	u, err := f.svc.SendNotification(context.Background(), tx.ID, dtos.SendTransactionNotificationRequest{
		Recipient: "BUYER",
		Message:   "Please bring your ID to the signing",
	})
	require.NoError(t, err)
	require.Equal(t, models.CategoryContract, u.Category)
	require.Equal(t, models.RecipientBuyer, u.Recipient)
	require.Equal(t, models.StageFinalSigning, u.Stage)
	require.True(t, u.IsUnread)

	updates, err := f.txRepo.ListUpdates(context.Background(), tx.ID)
	require.NoError(t, err)
	require.Len(t, updates, 1)
}
