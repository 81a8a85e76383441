package model

import (
	"time"

	"github.com/google/uuid"
)

// ApprovalsRegister is the flattened view exported to XLSX: one row per
// approval in the organization over a period, joined with contract data.
type ApprovalsRegister struct {
	OrganizationID uuid.UUID
	PeriodStart    time.Time
	PeriodEnd      time.Time
	Rows           []ApprovalRegisterRow
}

type ApprovalRegisterRow struct {
	ContractReference string
	ContractTitle     string
	ContractStatus    ContractStatus
	Type              ApprovalType
	Status            ApprovalStatus
	ActorName         string
	Comment           *string
	DueDate           *time.Time
	CreatedAt         time.Time
	ResolvedAt        *time.Time
}
