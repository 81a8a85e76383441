package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/clm-workflow/internal/config"
	"github.com/nurpe/clm-workflow/internal/model"
)

// WorkflowStore is the transactional persistence surface the workflow
// drives. Atomically runs fn inside one database transaction; the store it
// passes to fn is bound to that transaction, and GetContractForUpdate
// within it takes a row lock that serializes concurrent actions against
// the same contract.
type WorkflowStore interface {
	Atomically(ctx context.Context, fn func(tx WorkflowStore) error) error

	CreateContract(ctx context.Context, c model.Contract) (*model.Contract, error)
	GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	GetContractForUpdate(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	UpdateContractStatus(ctx context.Context, id uuid.UUID, from, to model.ContractStatus) error
	SetFinalDocument(ctx context.Context, id, documentID uuid.UUID) error
	ListContracts(ctx context.Context, orgID uuid.UUID, status *model.ContractStatus) ([]model.Contract, error)
	ListExpiredActive(ctx context.Context, asOf time.Time) ([]model.Contract, error)
	NextContractSequence(ctx context.Context, year int) (int64, error)

	CreateApproval(ctx context.Context, a model.Approval) (*model.Approval, error)
	GetApproval(ctx context.Context, id uuid.UUID) (*model.Approval, error)
	FindPendingApproval(ctx context.Context, contractID uuid.UUID, t model.ApprovalType) (*model.Approval, error)
	ResolveApproval(ctx context.Context, id uuid.UUID, outcome model.ApprovalStatus, comment string, resolvedBy uuid.UUID) (*model.Approval, error)
	SupersedeApproval(ctx context.Context, id uuid.UUID) error
	ListApprovals(ctx context.Context, contractID uuid.UUID) ([]model.Approval, error)
	CountPendingByActor(ctx context.Context, actorIDs []uuid.UUID) (map[uuid.UUID]int64, error)

	ListAuditEntries(ctx context.Context, targetID uuid.UUID) ([]model.AuditEntry, error)
}

// RoleResolver answers identity questions against the identity tables.
// "Not found" is false or an empty slice, never an error; errors indicate
// the store itself is unavailable.
type RoleResolver interface {
	HasPermission(ctx context.Context, userID, orgID uuid.UUID, code model.PermissionCode) (bool, error)
	HasRole(ctx context.Context, userID, orgID uuid.UUID, role model.RoleCode) (bool, error)
	FindUsersWithRole(ctx context.Context, orgID uuid.UUID, role model.RoleCode) ([]model.User, error)
}

// AuditSink accepts audit entries without ever failing the caller.
type AuditSink interface {
	Record(entry model.AuditEntry)
}

type WorkflowService struct {
	store WorkflowStore
	rbac  RoleResolver
	audit AuditSink
	cfg   *config.Config
}

func NewWorkflowService(store WorkflowStore, rbac RoleResolver, audit AuditSink, cfg *config.Config) *WorkflowService {
	return &WorkflowService{
		store: store,
		rbac:  rbac,
		audit: audit,
		cfg:   cfg,
	}
}

type CreateContractInput struct {
	Title             string
	TemplateID        *uuid.UUID
	Content           string
	AnnexureData      []byte
	FieldData         []byte
	CounterpartyName  string
	CounterpartyEmail string
	StartDate         *time.Time
	EndDate           *time.Time
	Amount            float64
}

func (s *WorkflowService) CreateContract(ctx context.Context, p model.Principal, input CreateContractInput) (*model.Contract, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if err := s.requirePermission(ctx, p.UserID, p.OrgID, model.PermContractCreate); err != nil {
		return nil, err
	}

	var created *model.Contract
	err := s.store.Atomically(ctx, func(tx WorkflowStore) error {
		year := time.Now().UTC().Year()
		seq, err := tx.NextContractSequence(ctx, year)
		if err != nil {
			return err
		}

		contract := model.Contract{
			Reference:         fmt.Sprintf("CTR-%d-%04d", year, seq),
			Title:             strings.TrimSpace(input.Title),
			Status:            model.ContractStatusDraft,
			TemplateID:        input.TemplateID,
			OrganizationID:    p.OrgID,
			CreatedByUserID:   p.UserID,
			Content:           input.Content,
			AnnexureData:      input.AnnexureData,
			FieldData:         input.FieldData,
			CounterpartyName:  input.CounterpartyName,
			CounterpartyEmail: input.CounterpartyEmail,
			StartDate:         input.StartDate,
			EndDate:           input.EndDate,
			Amount:            input.Amount,
		}

		created, err = tx.CreateContract(ctx, contract)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(model.AuditEntry{
		ActorID:    p.UserID,
		Action:     model.AuditActionContractCreated,
		Module:     model.AuditModuleWorkflow,
		TargetType: "contract",
		TargetID:   created.ID,
		NewValue:   statusSnapshot(created.Status),
	})
	return created, nil
}

func (s *WorkflowService) GetContract(ctx context.Context, p model.Principal, id uuid.UUID) (*model.Contract, []model.Approval, error) {
	contract, err := s.store.GetContract(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if contract.OrganizationID != p.OrgID {
		return nil, nil, ErrNotFound
	}

	approvals, err := s.store.ListApprovals(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return contract, approvals, nil
}

func (s *WorkflowService) ListContracts(ctx context.Context, p model.Principal, status *model.ContractStatus) ([]model.Contract, error) {
	return s.store.ListContracts(ctx, p.OrgID, status)
}

func (s *WorkflowService) ListAudit(ctx context.Context, p model.Principal, contractID uuid.UUID) ([]model.AuditEntry, error) {
	if _, _, err := s.GetContract(ctx, p, contractID); err != nil {
		return nil, err
	}
	return s.store.ListAuditEntries(ctx, contractID)
}

// Submit moves a draft to legal review and opens the LEGAL approval
// assigned to the organization's legal pool.
func (s *WorkflowService) Submit(ctx context.Context, p model.Principal, contractID uuid.UUID) (*model.Contract, error) {
	var updated *model.Contract
	err := s.store.Atomically(ctx, func(tx WorkflowStore) error {
		contract, err := s.lockContract(ctx, tx, p, contractID)
		if err != nil {
			return err
		}
		if err := s.requirePermission(ctx, p.UserID, contract.OrganizationID, PermissionFor(ActionSubmit)); err != nil {
			return err
		}

		next, err := Next(contract.Status, ActionSubmit)
		if err != nil {
			return err
		}

		assignee, err := s.pickAssignee(ctx, tx, contract.OrganizationID, model.RoleLegalManager, model.RoleLegalHead)
		if err != nil {
			return err
		}

		if _, err := s.openApproval(ctx, tx, contract, model.ApprovalTypeLegal, assignee, nil); err != nil {
			return err
		}
		if err := s.applyStatus(ctx, tx, p.UserID, contract, next); err != nil {
			return err
		}

		contract.Status = next
		updated = contract
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// EscalateToLegalHead supersedes the requester's pending LEGAL approval,
// reassigns review to a legal head of the same organization and moves the
// contract to PENDING_LEGAL_HEAD. The new approval and the status change
// commit together or not at all.
func (s *WorkflowService) EscalateToLegalHead(ctx context.Context, p model.Principal, contractID uuid.UUID, reason string) (*model.Approval, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}

	var created *model.Approval
	err := s.store.Atomically(ctx, func(tx WorkflowStore) error {
		contract, err := s.lockContract(ctx, tx, p, contractID)
		if err != nil {
			return err
		}
		if err := s.requirePermission(ctx, p.UserID, contract.OrganizationID, PermissionFor(ActionEscalate)); err != nil {
			return err
		}

		next, err := Next(contract.Status, ActionEscalate)
		if err != nil {
			return err
		}

		heads, err := s.rbac.FindUsersWithRole(ctx, contract.OrganizationID, model.RoleLegalHead)
		if err != nil {
			return err
		}
		if len(heads) == 0 {
			return ErrNoEligibleApprover
		}
		assignee, err := s.chooseLeastLoaded(ctx, tx, heads)
		if err != nil {
			return err
		}

		pending, err := s.findPending(ctx, tx, contract.ID, model.ApprovalTypeLegal)
		if err != nil {
			return err
		}
		if pending != nil {
			if err := tx.SupersedeApproval(ctx, pending.ID); err != nil {
				return err
			}
		}

		created, err = s.openApproval(ctx, tx, contract, model.ApprovalTypeLegal, assignee, &reason)
		if err != nil {
			return err
		}
		if err := s.applyStatus(ctx, tx, p.UserID, contract, next); err != nil {
			return err
		}

		s.audit.Record(model.AuditEntry{
			ActorID:    p.UserID,
			Action:     model.AuditActionApprovalEscalated,
			Module:     model.AuditModuleWorkflow,
			TargetType: "approval",
			TargetID:   created.ID,
			Metadata:   mustJSON(map[string]string{"reason": reason, "assignee": assignee.String()}),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Approve resolves a pending approval positively and advances the contract
// along the edge matching the approval type.
func (s *WorkflowService) Approve(ctx context.Context, p model.Principal, approvalID uuid.UUID, comment string) (*model.Approval, error) {
	return s.resolveApproval(ctx, p, approvalID, model.ApprovalStatusApproved, comment)
}

// Reject resolves a pending approval negatively; a comment is mandatory so
// the rejection reason is never lost.
func (s *WorkflowService) Reject(ctx context.Context, p model.Principal, approvalID uuid.UUID, comment string) (*model.Approval, error) {
	if strings.TrimSpace(comment) == "" {
		return nil, fmt.Errorf("%w: comment is required on reject", ErrInvalidInput)
	}
	return s.resolveApproval(ctx, p, approvalID, model.ApprovalStatusRejected, comment)
}

func (s *WorkflowService) resolveApproval(ctx context.Context, p model.Principal, approvalID uuid.UUID, outcome model.ApprovalStatus, comment string) (*model.Approval, error) {
	var resolved *model.Approval
	err := s.store.Atomically(ctx, func(tx WorkflowStore) error {
		approval, err := tx.GetApproval(ctx, approvalID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrApprovalNotFound
			}
			return err
		}

		contract, err := s.lockContract(ctx, tx, p, approval.ContractID)
		if err != nil {
			return err
		}
		if err := s.authorizeResolution(ctx, p, contract.OrganizationID, approval); err != nil {
			return err
		}
		if approval.Status != model.ApprovalStatusPending {
			return ErrNotPending
		}

		next, err := Next(contract.Status, resolutionAction(approval.Type, outcome))
		if err != nil {
			return err
		}

		resolved, err = tx.ResolveApproval(ctx, approval.ID, outcome, comment, p.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Another caller resolved it between our read and the
				// conditional update.
				return ErrNotPending
			}
			return err
		}
		if err := s.applyStatus(ctx, tx, p.UserID, contract, next); err != nil {
			return err
		}

		s.audit.Record(model.AuditEntry{
			ActorID:    p.UserID,
			Action:     model.AuditActionApprovalResolved,
			Module:     model.AuditModuleWorkflow,
			TargetType: "approval",
			TargetID:   resolved.ID,
			OldValue:   mustJSON(map[string]string{"status": string(model.ApprovalStatusPending)}),
			NewValue:   mustJSON(map[string]string{"status": string(outcome)}),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

// SendToFinance opens the FINANCE approval after legal sign-off.
func (s *WorkflowService) SendToFinance(ctx context.Context, p model.Principal, contractID uuid.UUID) (*model.Contract, error) {
	var updated *model.Contract
	err := s.store.Atomically(ctx, func(tx WorkflowStore) error {
		contract, err := s.lockContract(ctx, tx, p, contractID)
		if err != nil {
			return err
		}
		if err := s.requirePermission(ctx, p.UserID, contract.OrganizationID, PermissionFor(ActionSendToFinance)); err != nil {
			return err
		}

		next, err := Next(contract.Status, ActionSendToFinance)
		if err != nil {
			return err
		}

		assignee, err := s.pickAssignee(ctx, tx, contract.OrganizationID, model.RoleFinanceManager)
		if err != nil {
			return err
		}
		if _, err := s.openApproval(ctx, tx, contract, model.ApprovalTypeFinance, assignee, nil); err != nil {
			return err
		}
		if err := s.applyStatus(ctx, tx, p.UserID, contract, next); err != nil {
			return err
		}

		contract.Status = next
		updated = contract
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// MarkApproved applies the final organization-level approval once legal
// (and, when requested, finance) have signed off.
func (s *WorkflowService) MarkApproved(ctx context.Context, p model.Principal, contractID uuid.UUID) (*model.Contract, error) {
	return s.applyContractAction(ctx, p, contractID, ActionApprove)
}

func (s *WorkflowService) SendToCounterparty(ctx context.Context, p model.Principal, contractID uuid.UUID) (*model.Contract, error) {
	return s.applyContractAction(ctx, p, contractID, ActionSendToCounterparty)
}

func (s *WorkflowService) Countersign(ctx context.Context, p model.Principal, contractID uuid.UUID) (*model.Contract, error) {
	return s.applyContractAction(ctx, p, contractID, ActionCountersign)
}

func (s *WorkflowService) Activate(ctx context.Context, p model.Principal, contractID uuid.UUID) (*model.Contract, error) {
	return s.applyContractAction(ctx, p, contractID, ActionActivate)
}

func (s *WorkflowService) Terminate(ctx context.Context, p model.Principal, contractID uuid.UUID) (*model.Contract, error) {
	return s.applyContractAction(ctx, p, contractID, ActionTerminate)
}

// Cancel aborts the workflow from any pre-execution state and closes out
// whatever approvals were still pending.
func (s *WorkflowService) Cancel(ctx context.Context, p model.Principal, contractID uuid.UUID) (*model.Contract, error) {
	var updated *model.Contract
	err := s.store.Atomically(ctx, func(tx WorkflowStore) error {
		contract, err := s.lockContract(ctx, tx, p, contractID)
		if err != nil {
			return err
		}
		if err := s.requirePermission(ctx, p.UserID, contract.OrganizationID, PermissionFor(ActionCancel)); err != nil {
			return err
		}

		next, err := Next(contract.Status, ActionCancel)
		if err != nil {
			return err
		}
		if err := s.supersedePending(ctx, tx, contract.ID); err != nil {
			return err
		}
		if err := s.applyStatus(ctx, tx, p.UserID, contract, next); err != nil {
			return err
		}

		contract.Status = next
		updated = contract
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AttachFinalDocument records the signed execution copy and forces the
// contract straight to ACTIVE, regardless of remaining review steps.
func (s *WorkflowService) AttachFinalDocument(ctx context.Context, p model.Principal, contractID, documentID uuid.UUID) (*model.Contract, error) {
	if documentID == uuid.Nil {
		return nil, fmt.Errorf("%w: document_id is required", ErrInvalidInput)
	}

	var updated *model.Contract
	err := s.store.Atomically(ctx, func(tx WorkflowStore) error {
		contract, err := s.lockContract(ctx, tx, p, contractID)
		if err != nil {
			return err
		}
		if err := s.requirePermission(ctx, p.UserID, contract.OrganizationID, PermissionFor(ActionUploadFinal)); err != nil {
			return err
		}

		next, err := Next(contract.Status, ActionUploadFinal)
		if err != nil {
			return err
		}
		if err := s.supersedePending(ctx, tx, contract.ID); err != nil {
			return err
		}
		if err := tx.SetFinalDocument(ctx, contract.ID, documentID); err != nil {
			return err
		}
		if err := s.applyStatus(ctx, tx, p.UserID, contract, next); err != nil {
			return err
		}

		s.audit.Record(model.AuditEntry{
			ActorID:    p.UserID,
			Action:     model.AuditActionFinalDocAttached,
			Module:     model.AuditModuleWorkflow,
			TargetType: "contract",
			TargetID:   contract.ID,
			Metadata:   mustJSON(map[string]string{"document_id": documentID.String()}),
		})

		contract.Status = next
		updated = contract
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ExpireOverdue sweeps ACTIVE contracts whose end date has passed. Invoked
// by an operational trigger, not by end users, so no principal applies.
func (s *WorkflowService) ExpireOverdue(ctx context.Context) (int, error) {
	overdue, err := s.store.ListExpiredActive(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, contract := range overdue {
		c := contract
		err := s.store.Atomically(ctx, func(tx WorkflowStore) error {
			locked, err := tx.GetContractForUpdate(ctx, c.ID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil
				}
				return err
			}
			next, err := Next(locked.Status, ActionExpire)
			if err != nil {
				// Terminated or already expired since the sweep query ran.
				return nil
			}
			return s.applyStatus(ctx, tx, uuid.Nil, locked, next)
		})
		if err != nil {
			return expired, err
		}
		expired++
	}
	return expired, nil
}

func (s *WorkflowService) applyContractAction(ctx context.Context, p model.Principal, contractID uuid.UUID, action Action) (*model.Contract, error) {
	var updated *model.Contract
	err := s.store.Atomically(ctx, func(tx WorkflowStore) error {
		contract, err := s.lockContract(ctx, tx, p, contractID)
		if err != nil {
			return err
		}
		if err := s.requirePermission(ctx, p.UserID, contract.OrganizationID, PermissionFor(action)); err != nil {
			return err
		}

		next, err := Next(contract.Status, action)
		if err != nil {
			return err
		}
		if err := s.applyStatus(ctx, tx, p.UserID, contract, next); err != nil {
			return err
		}

		contract.Status = next
		updated = contract
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *WorkflowService) lockContract(ctx context.Context, tx WorkflowStore, p model.Principal, id uuid.UUID) (*model.Contract, error) {
	contract, err := tx.GetContractForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if contract.OrganizationID != p.OrgID {
		return nil, ErrNotFound
	}
	return contract, nil
}

func (s *WorkflowService) requirePermission(ctx context.Context, userID, orgID uuid.UUID, code model.PermissionCode) error {
	ok, err := s.rbac.HasPermission(ctx, userID, orgID, code)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnauthorized, code)
	}
	return nil
}

func (s *WorkflowService) authorizeResolution(ctx context.Context, p model.Principal, orgID uuid.UUID, approval *model.Approval) error {
	if p.UserID == approval.ActorID {
		return nil
	}
	ok, err := s.rbac.HasPermission(ctx, p.UserID, orgID, model.ActPermissionFor(approval.Type))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: approval assigned to another actor", ErrUnauthorized)
	}
	return nil
}

func (s *WorkflowService) findPending(ctx context.Context, tx WorkflowStore, contractID uuid.UUID, t model.ApprovalType) (*model.Approval, error) {
	pending, err := tx.FindPendingApproval(ctx, contractID, t)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return pending, nil
}

func (s *WorkflowService) openApproval(ctx context.Context, tx WorkflowStore, contract *model.Contract, t model.ApprovalType, actorID uuid.UUID, reason *string) (*model.Approval, error) {
	existing, err := s.findPending(ctx, tx, contract.ID, t)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s approval %s", ErrDuplicatePending, t, existing.ID)
	}

	approval := model.Approval{
		ContractID: contract.ID,
		Type:       t,
		Status:     model.ApprovalStatusPending,
		ActorID:    actorID,
		DueDate:    s.dueDateFor(t),
		Reason:     reason,
	}

	created, err := tx.CreateApproval(ctx, approval)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Partial unique index backstop for the pre-check above.
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePending, t)
		}
		return nil, err
	}

	s.audit.Record(model.AuditEntry{
		ActorID:    actorID,
		Action:     model.AuditActionApprovalCreated,
		Module:     model.AuditModuleWorkflow,
		TargetType: "approval",
		TargetID:   created.ID,
		NewValue:   mustJSON(map[string]string{"type": string(t), "actor_id": actorID.String()}),
	})
	return created, nil
}

func (s *WorkflowService) supersedePending(ctx context.Context, tx WorkflowStore, contractID uuid.UUID) error {
	for _, t := range []model.ApprovalType{model.ApprovalTypeLegal, model.ApprovalTypeFinance} {
		pending, err := s.findPending(ctx, tx, contractID, t)
		if err != nil {
			return err
		}
		if pending == nil {
			continue
		}
		if err := tx.SupersedeApproval(ctx, pending.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *WorkflowService) applyStatus(ctx context.Context, tx WorkflowStore, actorID uuid.UUID, contract *model.Contract, next model.ContractStatus) error {
	if err := tx.UpdateContractStatus(ctx, contract.ID, contract.Status, next); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStaleState
		}
		return err
	}

	s.audit.Record(model.AuditEntry{
		ActorID:    actorID,
		Action:     model.AuditActionStatusChanged,
		Module:     model.AuditModuleWorkflow,
		TargetType: "contract",
		TargetID:   contract.ID,
		OldValue:   statusSnapshot(contract.Status),
		NewValue:   statusSnapshot(next),
	})
	return nil
}

// pickAssignee selects an approver from role pools in priority order: all
// holders of the first role are considered before any holder of the next.
func (s *WorkflowService) pickAssignee(ctx context.Context, tx WorkflowStore, orgID uuid.UUID, roles ...model.RoleCode) (uuid.UUID, error) {
	for _, role := range roles {
		users, err := s.rbac.FindUsersWithRole(ctx, orgID, role)
		if err != nil {
			return uuid.Nil, err
		}
		if len(users) == 0 {
			continue
		}
		return s.chooseLeastLoaded(ctx, tx, users)
	}
	return uuid.Nil, ErrNoEligibleApprover
}

// chooseLeastLoaded picks the candidate with the fewest pending approvals,
// breaking ties by lowest user id so the choice is deterministic.
func (s *WorkflowService) chooseLeastLoaded(ctx context.Context, tx WorkflowStore, candidates []model.User) (uuid.UUID, error) {
	if len(candidates) == 0 {
		return uuid.Nil, ErrNoEligibleApprover
	}

	ids := make([]uuid.UUID, 0, len(candidates))
	for _, u := range candidates {
		ids = append(ids, u.ID)
	}
	counts, err := tx.CountPendingByActor(ctx, ids)
	if err != nil {
		return uuid.Nil, err
	}

	sort.Slice(ids, func(i, j int) bool {
		ci, cj := counts[ids[i]], counts[ids[j]]
		if ci != cj {
			return ci < cj
		}
		return ids[i].String() < ids[j].String()
	})
	return ids[0], nil
}

func (s *WorkflowService) dueDateFor(t model.ApprovalType) *time.Time {
	days := s.cfg.Workflow.LegalDueDays
	if t == model.ApprovalTypeFinance {
		days = s.cfg.Workflow.FinanceDueDays
	}
	if days <= 0 {
		return nil
	}
	due := time.Now().UTC().AddDate(0, 0, days)
	return &due
}

func resolutionAction(t model.ApprovalType, outcome model.ApprovalStatus) Action {
	if t == model.ApprovalTypeFinance {
		if outcome == model.ApprovalStatusRejected {
			return ActionRejectFinance
		}
		return ActionReviewFinance
	}
	if outcome == model.ApprovalStatusRejected {
		return ActionRejectLegal
	}
	return ActionApproveLegal
}

func statusSnapshot(status model.ContractStatus) []byte {
	return mustJSON(map[string]string{"status": string(status)})
}

func mustJSON(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
