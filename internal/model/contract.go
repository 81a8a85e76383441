package model

import (
	"time"

	"github.com/google/uuid"
)

type ContractStatus string

const (
	ContractStatusDraft              ContractStatus = "DRAFT"
	ContractStatusSentToLegal        ContractStatus = "SENT_TO_LEGAL"
	ContractStatusSentToFinance      ContractStatus = "SENT_TO_FINANCE"
	ContractStatusPendingLegalHead   ContractStatus = "PENDING_LEGAL_HEAD"
	ContractStatusLegalApproved      ContractStatus = "LEGAL_APPROVED"
	ContractStatusApprovedLegalHead  ContractStatus = "APPROVED_LEGAL_HEAD"
	ContractStatusFinanceReviewed    ContractStatus = "FINANCE_REVIEWED"
	ContractStatusApproved           ContractStatus = "APPROVED"
	ContractStatusSentToCounterparty ContractStatus = "SENT_TO_COUNTERPARTY"
	ContractStatusCountersigned      ContractStatus = "COUNTERSIGNED"
	ContractStatusActive             ContractStatus = "ACTIVE"
	ContractStatusExpired            ContractStatus = "EXPIRED"
	ContractStatusTerminated         ContractStatus = "TERMINATED"
	ContractStatusRejected           ContractStatus = "REJECTED"
	ContractStatusCancelled          ContractStatus = "CANCELLED"
)

// IsTerminal reports whether no workflow action can move the contract
// further. ACTIVE is not terminal: expire and terminate still apply to it.
func (s ContractStatus) IsTerminal() bool {
	switch s {
	case ContractStatusExpired, ContractStatusTerminated, ContractStatusRejected, ContractStatusCancelled:
		return true
	}
	return false
}

type Contract struct {
	ID                uuid.UUID
	Reference         string
	Title             string
	Status            ContractStatus
	TemplateID        *uuid.UUID
	OrganizationID    uuid.UUID
	CreatedByUserID   uuid.UUID
	Content           string
	AnnexureData      []byte
	FieldData         []byte
	CounterpartyName  string
	CounterpartyEmail string
	StartDate         *time.Time
	EndDate           *time.Time
	Amount            float64
	FinalDocumentID   *uuid.UUID
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ContractDocument bundles everything the PDF export needs.
type ContractDocument struct {
	Contract     Contract
	Organization Organization
	Approvals    []Approval
}
