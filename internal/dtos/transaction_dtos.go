package dtos

import (
	"time"

	"github.com/google/uuid"

	"github.com/estia/marketplace-service/internal/models"
)

type CreateTransactionRequest struct {
	PropertyID uuid.UUID  `json:"property_id" validate:"required"`
	BuyerID    uuid.UUID  `json:"buyer_id" validate:"required"`
	AgentID    *uuid.UUID `json:"agent_id,omitempty"`
}

type UpdateTransactionStageRequest struct {
	Stage string `json:"stage" validate:"required"`
	// AdminCorrection permits a backward stage move; without it only
	// forward transitions (and CANCELLED) are accepted.
	AdminCorrection bool `json:"admin_correction"`
}

type SendTransactionNotificationRequest struct {
	Recipient string `json:"recipient" validate:"required,oneof=BUYER SELLER AGENT"`
	Message   string `json:"message" validate:"required,min=1"`
}

// BuyerContact carries buyer PII. It is zeroed while the concealment rule is
// in force.
type BuyerContact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// TransactionResponse is the admin/detail view of a transaction with the
// buyer-info visibility rule already applied.
type TransactionResponse struct {
	ID         uuid.UUID  `json:"id"`
	PropertyID uuid.UUID  `json:"property_id"`
	BuyerID    uuid.UUID  `json:"buyer_id"`
	SellerID   uuid.UUID  `json:"seller_id"`
	AgentID    *uuid.UUID `json:"agent_id,omitempty"`

	Stage          models.TransactionStage `json:"stage"`
	BuyerConcealed bool                    `json:"buyer_concealed"`
	Buyer          BuyerContact            `json:"buyer"`

	Notifications []models.Update `json:"notifications"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewTransactionResponse applies the concealment rule: buyer contact details
// stay hidden until the stage has reached DEPOSIT_PAID.
func NewTransactionResponse(t *models.Transaction, buyer *models.User, updates []models.Update) TransactionResponse {
	resp := TransactionResponse{
		ID:            t.ID,
		PropertyID:    t.PropertyID,
		BuyerID:       t.BuyerID,
		SellerID:      t.SellerID,
		AgentID:       t.AgentID,
		Stage:         t.Stage,
		Notifications: updates,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
	resp.BuyerConcealed = models.ShouldConcealBuyerInfo(t.Stage)
	if !resp.BuyerConcealed && buyer != nil {
		resp.Buyer = BuyerContact{
			Name:  buyer.FullName(),
			Email: buyer.Email,
		}
		if buyer.PhoneNumber != nil {
			resp.Buyer.Phone = *buyer.PhoneNumber
		}
	}
	return resp
}
