package service

import (
	"fmt"

	"github.com/nurpe/clm-workflow/internal/model"
)

// Action is a workflow verb applied to a contract. Every action maps to
// exactly one outgoing edge per status in the transition table below.
type Action string

const (
	ActionSubmit             Action = "submit"
	ActionEscalate           Action = "escalate"
	ActionApproveLegal       Action = "approve_legal"
	ActionRejectLegal        Action = "reject_legal"
	ActionSendToFinance      Action = "send_to_finance"
	ActionReviewFinance      Action = "review_finance"
	ActionRejectFinance      Action = "reject_finance"
	ActionApprove            Action = "approve"
	ActionSendToCounterparty Action = "send_to_counterparty"
	ActionCountersign        Action = "countersign"
	ActionActivate           Action = "activate"
	ActionCancel             Action = "cancel"
	ActionUploadFinal        Action = "upload_final"
	ActionExpire             Action = "expire"
	ActionTerminate          Action = "terminate"
)

var transitions = map[model.ContractStatus]map[Action]model.ContractStatus{
	model.ContractStatusDraft: {
		ActionSubmit: model.ContractStatusSentToLegal,
	},
	model.ContractStatusSentToLegal: {
		ActionEscalate:     model.ContractStatusPendingLegalHead,
		ActionApproveLegal: model.ContractStatusLegalApproved,
		ActionRejectLegal:  model.ContractStatusRejected,
	},
	model.ContractStatusPendingLegalHead: {
		ActionApproveLegal: model.ContractStatusApprovedLegalHead,
		ActionRejectLegal:  model.ContractStatusRejected,
	},
	model.ContractStatusLegalApproved: {
		ActionSendToFinance: model.ContractStatusSentToFinance,
		ActionApprove:       model.ContractStatusApproved,
	},
	model.ContractStatusSentToFinance: {
		ActionReviewFinance: model.ContractStatusFinanceReviewed,
		ActionRejectFinance: model.ContractStatusRejected,
	},
	model.ContractStatusApprovedLegalHead: {
		ActionApprove: model.ContractStatusApproved,
	},
	model.ContractStatusFinanceReviewed: {
		ActionApprove: model.ContractStatusApproved,
	},
	model.ContractStatusApproved: {
		ActionSendToCounterparty: model.ContractStatusSentToCounterparty,
	},
	model.ContractStatusSentToCounterparty: {
		ActionCountersign: model.ContractStatusCountersigned,
	},
	model.ContractStatusCountersigned: {
		ActionActivate: model.ContractStatusActive,
	},
	model.ContractStatusActive: {
		ActionExpire:    model.ContractStatusExpired,
		ActionTerminate: model.ContractStatusTerminated,
	},
}

var actionPermissions = map[Action]model.PermissionCode{
	ActionSubmit:             model.PermContractSubmit,
	ActionEscalate:           model.PermLegalAct,
	ActionApproveLegal:       model.PermLegalAct,
	ActionRejectLegal:        model.PermLegalAct,
	ActionSendToFinance:      model.PermContractApprove,
	ActionReviewFinance:      model.PermFinanceAct,
	ActionRejectFinance:      model.PermFinanceAct,
	ActionApprove:            model.PermContractApprove,
	ActionSendToCounterparty: model.PermContractExecute,
	ActionCountersign:        model.PermContractExecute,
	ActionActivate:           model.PermContractExecute,
	ActionCancel:             model.PermContractCancel,
	ActionUploadFinal:        model.PermContractExecute,
	ActionExpire:             model.PermContractExecute,
	ActionTerminate:          model.PermContractExecute,
}

// Next resolves the transition table for (status, action). Cancel is legal
// from every non-terminal status except ACTIVE, which only terminates or
// expires. UploadFinal short-circuits any pre-execution status to ACTIVE:
// a signed execution copy makes the remaining approval steps moot.
func Next(status model.ContractStatus, action Action) (model.ContractStatus, error) {
	if status.IsTerminal() {
		return "", fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, status)
	}

	switch action {
	case ActionCancel:
		if status == model.ContractStatusActive {
			return "", fmt.Errorf("%w: active contracts are terminated, not cancelled", ErrInvalidTransition)
		}
		return model.ContractStatusCancelled, nil
	case ActionUploadFinal:
		if status == model.ContractStatusActive {
			return "", fmt.Errorf("%w: contract is already active", ErrInvalidTransition)
		}
		return model.ContractStatusActive, nil
	}

	edges, ok := transitions[status]
	if !ok {
		return "", fmt.Errorf("%w: no actions from %s", ErrInvalidTransition, status)
	}
	next, ok := edges[action]
	if !ok {
		return "", fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, status)
	}
	return next, nil
}

// PermissionFor returns the permission code an actor must hold to apply
// the action.
func PermissionFor(action Action) model.PermissionCode {
	return actionPermissions[action]
}
