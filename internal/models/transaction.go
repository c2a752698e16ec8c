package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type TransactionStage string

const (
	StagePending          TransactionStage = "PENDING"
	StageMeetingScheduled TransactionStage = "MEETING_SCHEDULED"
	StageDepositPaid      TransactionStage = "DEPOSIT_PAID"
	StageFinalSigning     TransactionStage = "FINAL_SIGNING"
	StageCompleted        TransactionStage = "COMPLETED"
	StageCancelled        TransactionStage = "CANCELLED"
)

// Extended stages accepted for list filtering only; they never appear on a
// stored transaction.
const (
	FilterStageInitialContact      TransactionStage = "INITIAL_CONTACT"
	FilterStagePropertyViewing     TransactionStage = "PROPERTY_VIEWING"
	FilterStageOfferNegotiation    TransactionStage = "OFFER_NEGOTIATION"
	FilterStageContractPreparation TransactionStage = "CONTRACT_PREPARATION"
	FilterStageContractSigning     TransactionStage = "CONTRACT_SIGNING"
	FilterStagePaymentProcessing   TransactionStage = "PAYMENT_PROCESSING"
	FilterStagePropertyTransfer    TransactionStage = "PROPERTY_TRANSFER"
)

// IsFilterStage reports whether s is one of the extended filter-only stages.
func IsFilterStage(s TransactionStage) bool {
	switch s {
	case FilterStageInitialContact, FilterStagePropertyViewing,
		FilterStageOfferNegotiation, FilterStageContractPreparation,
		FilterStageContractSigning, FilterStagePaymentProcessing,
		FilterStagePropertyTransfer:
		return true
	}
	return false
}

// stageOrder drives both the forward-only transition guard and the buyer
// contact concealment rule.
var stageOrder = map[TransactionStage]int{
	StagePending:          0,
	StageMeetingScheduled: 1,
	StageDepositPaid:      2,
	StageFinalSigning:     3,
	StageCompleted:        4,
	StageCancelled:        5,
}

// StageOrder returns the pipeline position of a stage, or -1 for stages
// outside the primary pipeline.
func StageOrder(s TransactionStage) int {
	n, ok := stageOrder[s]
	if !ok {
		return -1
	}
	return n
}

// ParseTransactionStage accepts only the stages a transaction can be set to.
func ParseTransactionStage(s string) (TransactionStage, error) {
	st := TransactionStage(s)
	if _, ok := stageOrder[st]; !ok {
		return "", fmt.Errorf("unknown transaction stage: %q", s)
	}
	return st, nil
}

// IsTerminal reports whether no further stage changes are permitted.
func (s TransactionStage) IsTerminal() bool {
	return s == StageCompleted || s == StageCancelled
}

// CanTransition implements the stage pipeline guard: forward-only along
// PENDING → MEETING_SCHEDULED → DEPOSIT_PAID → FINAL_SIGNING → COMPLETED,
// with CANCELLED reachable from any non-terminal stage. Backward moves are
// allowed only when adminCorrection is set.
func CanTransition(from, to TransactionStage, adminCorrection bool) bool {
	if from.IsTerminal() {
		return false
	}
	if to == StageCancelled {
		return true
	}
	if StageOrder(to) < 0 {
		return false
	}
	if adminCorrection {
		return true
	}
	return StageOrder(to) > StageOrder(from)
}

// ShouldConcealBuyerInfo reports whether buyer contact details must be
// hidden from consumers at the given stage. Concealment ends once the
// deposit is paid; CANCELLED sorts after COMPLETED and is never concealed.
func ShouldConcealBuyerInfo(stage TransactionStage) bool {
	return StageOrder(stage) < 2
}

type UpdateRecipient string

const (
	RecipientBuyer  UpdateRecipient = "BUYER"
	RecipientSeller UpdateRecipient = "SELLER"
	RecipientAgent  UpdateRecipient = "AGENT"
)

type UpdateCategory string

const (
	CategoryAppointment UpdateCategory = "APPOINTMENT"
	CategoryPayment     UpdateCategory = "PAYMENT"
	CategoryContract    UpdateCategory = "CONTRACT"
	CategoryCompletion  UpdateCategory = "COMPLETION"
	CategoryOffer       UpdateCategory = "OFFER"
	CategoryGeneral     UpdateCategory = "GENERAL"
)

// CategoryForStage derives the notification category from the stage the
// notification was sent at.
func CategoryForStage(stage TransactionStage) UpdateCategory {
	switch stage {
	case StagePending, StageMeetingScheduled:
		return CategoryAppointment
	case StageDepositPaid:
		return CategoryPayment
	case StageFinalSigning:
		return CategoryContract
	case StageCompleted:
		return CategoryCompletion
	default:
		return CategoryGeneral
	}
}

// Update is one entry in a transaction's notification log.
type Update struct {
	ID        uuid.UUID        `json:"id"`
	Text      string           `json:"text"`
	Message   string           `json:"message"`
	Recipient UpdateRecipient  `json:"recipient"`
	Category  UpdateCategory   `json:"category"`
	IsUnread  bool             `json:"is_unread"`
	Stage     TransactionStage `json:"stage"`
	CreatedAt time.Time        `json:"created_at"`
}

type Transaction struct {
	ID         uuid.UUID  `json:"id"`
	PropertyID uuid.UUID  `json:"property_id"`
	BuyerID    uuid.UUID  `json:"buyer_id"`
	SellerID   uuid.UUID  `json:"seller_id"`
	AgentID    *uuid.UUID `json:"agent_id,omitempty"`

	Stage     TransactionStage `json:"stage"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`

	Versioned
}

func (t *Transaction) GetID() string { return t.ID.String() }
