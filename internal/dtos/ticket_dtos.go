package dtos

import "github.com/google/uuid"

type CreateTicketRequest struct {
	Title       string `json:"title" validate:"required,min=1"`
	Description string `json:"description" validate:"required,min=1"`
	Category    string `json:"category" validate:"required,oneof=PROPERTY_INQUIRY TRANSACTION_ISSUE TECHNICAL_SUPPORT ACCOUNT_ISSUE PAYMENT_ISSUE GENERAL"`
	Priority    string `json:"priority" validate:"required,oneof=LOW MEDIUM HIGH URGENT"`
	Role        string `json:"role" validate:"required,oneof=BUYER SELLER AGENT"`

	// OnBehalfOfUserID is set when an admin opens a ticket for a user.
	OnBehalfOfUserID *uuid.UUID `json:"on_behalf_of_user_id,omitempty"`

	PropertyID    *uuid.UUID `json:"property_id,omitempty"`
	TransactionID *uuid.UUID `json:"transaction_id,omitempty"`
}

type MultipleChoiceRequest struct {
	Options []string `json:"options"`
}

type PostMessageRequest struct {
	Content        string                 `json:"content" validate:"required,min=1"`
	MultipleChoice *MultipleChoiceRequest `json:"multiple_choice,omitempty"`
}

type SetTicketStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=OPEN IN_PROGRESS RESOLVED CLOSED"`
}
