package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type TicketStatus string

const (
	TicketOpen       TicketStatus = "OPEN"
	TicketInProgress TicketStatus = "IN_PROGRESS"
	TicketResolved   TicketStatus = "RESOLVED"
	TicketClosed     TicketStatus = "CLOSED"
)

// ParseTicketStatus validates admin-supplied status strings. Transitions
// between the four statuses are unordered; any status is reachable from any
// other.
func ParseTicketStatus(s string) (TicketStatus, error) {
	switch TicketStatus(s) {
	case TicketOpen, TicketInProgress, TicketResolved, TicketClosed:
		return TicketStatus(s), nil
	default:
		return "", fmt.Errorf("unknown ticket status: %q", s)
	}
}

type TicketPriority string

const (
	PriorityLow    TicketPriority = "LOW"
	PriorityMedium TicketPriority = "MEDIUM"
	PriorityHigh   TicketPriority = "HIGH"
	PriorityUrgent TicketPriority = "URGENT"
)

type TicketCategory string

const (
	TicketCategoryPropertyInquiry  TicketCategory = "PROPERTY_INQUIRY"
	TicketCategoryTransactionIssue TicketCategory = "TRANSACTION_ISSUE"
	TicketCategoryTechnicalSupport TicketCategory = "TECHNICAL_SUPPORT"
	TicketCategoryAccountIssue     TicketCategory = "ACCOUNT_ISSUE"
	TicketCategoryPaymentIssue     TicketCategory = "PAYMENT_ISSUE"
	TicketCategoryGeneral          TicketCategory = "GENERAL"
)

// MessageMetadata marks a message as multiple-choice and carries its options.
type MessageMetadata struct {
	IsMultipleChoice bool     `json:"is_multiple_choice"`
	Options          []string `json:"options,omitempty"`
}

type TicketMessage struct {
	ID          uuid.UUID        `json:"id"`
	TicketID    uuid.UUID        `json:"ticket_id"`
	UserID      uuid.UUID        `json:"user_id"`
	Content     string           `json:"content"`
	IsFromAdmin bool             `json:"is_from_admin"`
	Metadata    *MessageMetadata `json:"metadata,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

type SupportTicket struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      TicketStatus   `json:"status"`
	Priority    TicketPriority `json:"priority"`
	Category    TicketCategory `json:"category"`

	CreatorID uuid.UUID `json:"creator_id"`
	// CreatedByID is set when an admin opens the ticket on the creator's
	// behalf.
	CreatedByID *uuid.UUID `json:"created_by_id,omitempty"`
	// SelectedRole overrides the creator's natural role for display/routing.
	SelectedRole *UserRole `json:"selected_role,omitempty"`

	PropertyID    *uuid.UUID `json:"property_id,omitempty"`
	TransactionID *uuid.UUID `json:"transaction_id,omitempty"`

	Messages []TicketMessage `json:"messages"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Versioned
}

func (t *SupportTicket) GetID() string { return t.ID.String() }
