package services

import (
	"context"
	"fmt"
	"net/http"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"

	"github.com/estia/marketplace-service/internal/dtos"
	"github.com/estia/marketplace-service/internal/utils"
)

// BillingService creates Stripe Checkout sessions for seller subscription
// plans. Payment handling past the redirect lives entirely in Stripe.
type BillingService struct {
	// priceIDs maps "<plan_id>:<billing_cycle>" to a Stripe price ID.
	priceIDs   map[string]string
	successURL string
	cancelURL  string
}

func NewBillingService(secretKey string, priceIDs map[string]string, successURL, cancelURL string) *BillingService {
	stripe.Key = secretKey
	return &BillingService{
		priceIDs:   priceIDs,
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

func (s *BillingService) CreateCheckoutSession(ctx context.Context, customerEmail string, req dtos.CheckoutSessionRequest) (*dtos.CheckoutSessionResponse, error) {
	priceID, ok := s.priceIDs[fmt.Sprintf("%s:%s", req.PlanID, req.BillingCycle)]
	if !ok {
		return nil, utils.NewValidationError(map[string]string{"plan_id": "unknown plan or billing cycle"})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		CustomerEmail: stripe.String(customerEmail),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.successURL),
		CancelURL:  stripe.String(s.cancelURL),
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusBadGateway, Code: utils.ErrCodeExternalServiceFailure, Message: "Failed to create checkout session", Err: err}
	}
	return &dtos.CheckoutSessionResponse{URL: sess.URL}, nil
}
