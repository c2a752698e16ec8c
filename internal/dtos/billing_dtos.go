package dtos

type CheckoutSessionRequest struct {
	PlanID       string `json:"plan_id" validate:"required"`
	BillingCycle string `json:"billing_cycle" validate:"required,oneof=MONTHLY YEARLY"`
}

type CheckoutSessionResponse struct {
	URL string `json:"url"`
}
