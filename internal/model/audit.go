package model

import (
	"time"

	"github.com/google/uuid"
)

// Audit action codes written by the workflow.
const (
	AuditActionContractCreated   = "CONTRACT_CREATED"
	AuditActionStatusChanged     = "CONTRACT_STATUS_CHANGED"
	AuditActionApprovalCreated   = "APPROVAL_CREATED"
	AuditActionApprovalResolved  = "APPROVAL_RESOLVED"
	AuditActionApprovalEscalated = "APPROVAL_ESCALATED"
	AuditActionFinalDocAttached  = "FINAL_DOCUMENT_ATTACHED"
)

const AuditModuleWorkflow = "workflow"

// AuditEntry is an append-only record of a state-changing action. The
// workflow writes entries and never reads them back for control decisions.
type AuditEntry struct {
	ID         uuid.UUID
	ActorID    uuid.UUID
	Action     string
	Module     string
	TargetType string
	TargetID   uuid.UUID
	OldValue   []byte
	NewValue   []byte
	Metadata   []byte
	CreatedAt  time.Time
}
