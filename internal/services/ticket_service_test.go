package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/estia/marketplace-service/internal/dtos"
	"github.com/estia/marketplace-service/internal/models"
	"github.com/estia/marketplace-service/internal/utils"
)

func newTicketFixture() (*TicketService, *fakeTicketRepo, *fakeNotifier) {
	repo := newFakeTicketRepo()
	notifier := &fakeNotifier{}
	return NewTicketService(repo, notifier), repo, notifier
}

func validTicketRequest() dtos.CreateTicketRequest {
	return dtos.CreateTicketRequest{
		Title:       "Cannot update my listing",
		Description: "The save button returns an error.",
		Category:    "TECHNICAL_SUPPORT",
		Priority:    "MEDIUM",
		Role:        "SELLER",
	}
}

func TestCreateTicketOpensWithNoMessages(t *testing.T) {
	svc, _, notifier := newTicketFixture()
	callerID := uuid.New()

	ticket, err := svc.Create(context.Background(), callerID, false, validTicketRequest())
	require.NoError(t, err)
	require.Equal(t, models.TicketOpen, ticket.Status)
	require.Equal(t, callerID, ticket.CreatorID)
	require.Nil(t, ticket.CreatedByID)
	require.Empty(t, ticket.Messages)
	require.Empty(t, notifier.urgentTickets)
}

func TestCreateUrgentTicketTriggersEscalation(t *testing.T) {
	svc, _, notifier := newTicketFixture()

	req := validTicketRequest()
	req.Priority = "URGENT"

	ticket, err := svc.Create(context.Background(), uuid.New(), false, req)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{ticket.ID}, notifier.urgentTickets)
}

func TestCreateUrgentTicketSurvivesSMSFailure(t *testing.T) {
	svc, _, notifier := newTicketFixture()
	notifier.err = errBoom

	req := validTicketRequest()
	req.Priority = "URGENT"

	_, err := svc.Create(context.Background(), uuid.New(), false, req)
	require.NoError(t, err, "a failed SMS never blocks ticket creation")
}

func TestCreateOnBehalfRequiresAdmin(t *testing.T) {
	svc, _, _ := newTicketFixture()
	target := uuid.New()

	req := validTicketRequest()
	req.OnBehalfOfUserID = &target

	_, err := svc.Create(context.Background(), uuid.New(), false, req)
	var valErr *utils.ValidationError
	require.ErrorAs(t, err, &valErr)
	require.Contains(t, valErr.Fields, "on_behalf_of_user_id")

	adminID := uuid.New()
	ticket, err := svc.Create(context.Background(), adminID, true, req)
	require.NoError(t, err)
	require.Equal(t, target, ticket.CreatorID)
	require.NotNil(t, ticket.CreatedByID)
	require.Equal(t, adminID, *ticket.CreatedByID)
}

func TestCreateLinkRules(t *testing.T) {
	svc, _, _ := newTicketFixture()
	link := uuid.New()

	// Transaction links are agent-only.
	req := validTicketRequest()
	req.TransactionID = &link
	_, err := svc.Create(context.Background(), uuid.New(), false, req)
	var valErr *utils.ValidationError
	require.ErrorAs(t, err, &valErr)
	require.Contains(t, valErr.Fields, "transaction_id")

	req.Role = "AGENT"
	_, err = svc.Create(context.Background(), uuid.New(), false, req)
	require.NoError(t, err)

	// Property links are for buyers and sellers.
	req = validTicketRequest()
	req.Role = "AGENT"
	req.PropertyID = &link
	_, err = svc.Create(context.Background(), uuid.New(), false, req)
	require.ErrorAs(t, err, &valErr)
	require.Contains(t, valErr.Fields, "property_id")
}

func TestPostMessageAppendsWithoutStatusChange(t *testing.T) {
	svc, repo, _ := newTicketFixture()
	ticket, err := svc.Create(context.Background(), uuid.New(), false, validTicketRequest())
	require.NoError(t, err)
	require.NoError(t, svc.ticketRepo.UpdateWithRetry(context.Background(), ticket.ID, func(t *models.SupportTicket) error {
		t.Status = models.TicketResolved
		return nil
	}))

	userID := uuid.New()
	m, err := svc.PostMessage(context.Background(), ticket.ID, userID, false, dtos.PostMessageRequest{Content: "Any update on this?"})
	require.NoError(t, err)
	require.Equal(t, "Any update on this?", m.Content)
	require.Nil(t, m.Metadata)

	stored, err := repo.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.Equal(t, models.TicketResolved, stored.Status, "posting never changes status")
}

func TestPostMultipleChoiceNeedsTwoOptions(t *testing.T) {
	svc, _, _ := newTicketFixture()
	ticket, err := svc.Create(context.Background(), uuid.New(), false, validTicketRequest())
	require.NoError(t, err)

	// Blank options do not count.
	_, err = svc.PostMessage(context.Background(), ticket.ID, uuid.New(), true, dtos.PostMessageRequest{
		Content:        "Which applies?",
		MultipleChoice: &dtos.MultipleChoiceRequest{Options: []string{"Yes", "  "}},
	})
	var valErr *utils.ValidationError
	require.ErrorAs(t, err, &valErr)

	m, err := svc.PostMessage(context.Background(), ticket.ID, uuid.New(), true, dtos.PostMessageRequest{
		Content:        "Which applies?",
		MultipleChoice: &dtos.MultipleChoiceRequest{Options: []string{"Yes", "No"}},
	})
	require.NoError(t, err)
	require.NotNil(t, m.Metadata)
	require.True(t, m.Metadata.IsMultipleChoice)
	require.Equal(t, []string{"Yes", "No"}, m.Metadata.Options)
}

func TestSetStatusIsUnconditionalAndReturnsMessages(t *testing.T) {
	svc, _, _ := newTicketFixture()
	ticket, err := svc.Create(context.Background(), uuid.New(), false, validTicketRequest())
	require.NoError(t, err)
	_, err = svc.PostMessage(context.Background(), ticket.ID, uuid.New(), false, dtos.PostMessageRequest{Content: "First message"})
	require.NoError(t, err)

	// CLOSED straight from OPEN, then reopened: no transition graph.
	closed, err := svc.SetStatus(context.Background(), ticket.ID, "CLOSED")
	require.NoError(t, err)
	require.Equal(t, models.TicketClosed, closed.Status)
	require.Len(t, closed.Messages, 1)

	reopened, err := svc.SetStatus(context.Background(), ticket.ID, "IN_PROGRESS")
	require.NoError(t, err)
	require.Equal(t, models.TicketInProgress, reopened.Status)
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	svc, _, _ := newTicketFixture()
	ticket, err := svc.Create(context.Background(), uuid.New(), false, validTicketRequest())
	require.NoError(t, err)

	_, err = svc.SetStatus(context.Background(), ticket.ID, "ARCHIVED")
	var valErr *utils.ValidationError
	require.ErrorAs(t, err, &valErr)
}
