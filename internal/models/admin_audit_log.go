package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	AuditCreate         AuditAction = "CREATE"
	AuditUpdate         AuditAction = "UPDATE"
	AuditApprove        AuditAction = "APPROVE"
	AuditReject         AuditAction = "REJECT"
	AuditRequestInfo    AuditAction = "REQUEST_INFO"
	AuditRemove         AuditAction = "REMOVE"
	AuditRestore        AuditAction = "RESTORE"
	AuditStageUpdate    AuditAction = "STAGE_UPDATE"
	AuditStatusUpdate   AuditAction = "STATUS_UPDATE"
	AuditRemovalApprove AuditAction = "REMOVAL_APPROVE"
	AuditRemovalCancel  AuditAction = "REMOVAL_CANCEL"
)

type AuditTargetType string

const (
	TargetProperty         AuditTargetType = "PROPERTY"
	TargetPropertyProgress AuditTargetType = "PROPERTY_PROGRESS"
	TargetTransaction      AuditTargetType = "TRANSACTION"
	TargetSupportTicket    AuditTargetType = "SUPPORT_TICKET"
	TargetUser             AuditTargetType = "USER"
)

type AdminAuditLog struct {
	ID         uuid.UUID        `json:"id"`
	AdminID    uuid.UUID        `json:"admin_id"`
	Action     AuditAction      `json:"action"`
	TargetID   uuid.UUID        `json:"target_id"`
	TargetType AuditTargetType  `json:"target_type"`
	Details    json.RawMessage  `json:"details,omitempty"` // JSONB field for before/after states
	CreatedAt  time.Time        `json:"created_at"`
}
