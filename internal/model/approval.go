package model

import (
	"time"

	"github.com/google/uuid"
)

type ApprovalType string

const (
	ApprovalTypeLegal   ApprovalType = "LEGAL"
	ApprovalTypeFinance ApprovalType = "FINANCE"
)

type ApprovalStatus string

const (
	ApprovalStatusPending    ApprovalStatus = "PENDING"
	ApprovalStatusApproved   ApprovalStatus = "APPROVED"
	ApprovalStatusRejected   ApprovalStatus = "REJECTED"
	ApprovalStatusSuperseded ApprovalStatus = "SUPERSEDED"
)

type Approval struct {
	ID         uuid.UUID
	ContractID uuid.UUID
	Type       ApprovalType
	Status     ApprovalStatus
	ActorID    uuid.UUID
	DueDate    *time.Time
	Comment    *string
	// Reason carries the escalation reason for approvals created by
	// escalate-to-legal-head; empty otherwise.
	Reason     *string
	ResolvedBy *uuid.UUID
	ResolvedAt *time.Time
	CreatedAt  time.Time
}
