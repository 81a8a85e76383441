package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nurpe/clm-workflow/internal/config"
	"github.com/nurpe/clm-workflow/internal/model"
)

type fakeStore struct {
	mu        sync.Mutex
	contracts map[uuid.UUID]model.Contract
	approvals map[uuid.UUID]model.Approval
	sequences map[int]int64
	audit     []model.AuditEntry
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		contracts: make(map[uuid.UUID]model.Contract),
		approvals: make(map[uuid.UUID]model.Approval),
		sequences: make(map[int]int64),
	}
}

func (s *fakeStore) Atomically(ctx context.Context, fn func(tx WorkflowStore) error) error {
	return fn(s)
}

func (s *fakeStore) CreateContract(ctx context.Context, c model.Contract) (*model.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = uuid.New()
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	s.contracts[c.ID] = c
	cp := c
	return &cp, nil
}

func (s *fakeStore) GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contracts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := c
	return &cp, nil
}

func (s *fakeStore) GetContractForUpdate(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	return s.GetContract(ctx, id)
}

func (s *fakeStore) UpdateContractStatus(ctx context.Context, id uuid.UUID, from, to model.ContractStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contracts[id]
	if !ok || c.Status != from {
		return gorm.ErrRecordNotFound
	}
	c.Status = to
	c.UpdatedAt = time.Now().UTC()
	s.contracts[id] = c
	return nil
}

func (s *fakeStore) SetFinalDocument(ctx context.Context, id, documentID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contracts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.FinalDocumentID = &documentID
	s.contracts[id] = c
	return nil
}

func (s *fakeStore) ListContracts(ctx context.Context, orgID uuid.UUID, status *model.ContractStatus) ([]model.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Contract
	for _, c := range s.contracts {
		if c.OrganizationID != orgID {
			continue
		}
		if status != nil && c.Status != *status {
			continue
		}
		result = append(result, c)
	}
	return result, nil
}

func (s *fakeStore) ListExpiredActive(ctx context.Context, asOf time.Time) ([]model.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Contract
	for _, c := range s.contracts {
		if c.Status == model.ContractStatusActive && c.EndDate != nil && c.EndDate.Before(asOf) {
			result = append(result, c)
		}
	}
	return result, nil
}

func (s *fakeStore) NextContractSequence(ctx context.Context, year int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequences[year]++
	return s.sequences[year], nil
}

func (s *fakeStore) CreateApproval(ctx context.Context, a model.Approval) (*model.Approval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.approvals {
		if existing.ContractID == a.ContractID && existing.Type == a.Type && existing.Status == model.ApprovalStatusPending {
			return nil, gorm.ErrDuplicatedKey
		}
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()
	s.approvals[a.ID] = a
	cp := a
	return &cp, nil
}

func (s *fakeStore) GetApproval(ctx context.Context, id uuid.UUID) (*model.Approval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.approvals[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := a
	return &cp, nil
}

func (s *fakeStore) FindPendingApproval(ctx context.Context, contractID uuid.UUID, t model.ApprovalType) (*model.Approval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.approvals {
		if a.ContractID == contractID && a.Type == t && a.Status == model.ApprovalStatusPending {
			cp := a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeStore) ResolveApproval(ctx context.Context, id uuid.UUID, outcome model.ApprovalStatus, comment string, resolvedBy uuid.UUID) (*model.Approval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.approvals[id]
	if !ok || a.Status != model.ApprovalStatusPending {
		return nil, gorm.ErrRecordNotFound
	}
	now := time.Now().UTC()
	a.Status = outcome
	a.Comment = &comment
	a.ResolvedBy = &resolvedBy
	a.ResolvedAt = &now
	s.approvals[id] = a
	cp := a
	return &cp, nil
}

func (s *fakeStore) SupersedeApproval(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.approvals[id]
	if !ok || a.Status != model.ApprovalStatusPending {
		return gorm.ErrRecordNotFound
	}
	now := time.Now().UTC()
	a.Status = model.ApprovalStatusSuperseded
	a.ResolvedAt = &now
	s.approvals[id] = a
	return nil
}

func (s *fakeStore) ListApprovals(ctx context.Context, contractID uuid.UUID) ([]model.Approval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Approval
	for _, a := range s.approvals {
		if a.ContractID == contractID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (s *fakeStore) CountPendingByActor(ctx context.Context, actorIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[uuid.UUID]int64, len(actorIDs))
	for _, id := range actorIDs {
		for _, a := range s.approvals {
			if a.ActorID == id && a.Status == model.ApprovalStatusPending {
				counts[id]++
			}
		}
	}
	return counts, nil
}

func (s *fakeStore) ListAuditEntries(ctx context.Context, targetID uuid.UUID) ([]model.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.AuditEntry
	for _, e := range s.audit {
		if e.TargetID == targetID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (s *fakeStore) pendingApprovals(contractID uuid.UUID, t model.ApprovalType) []model.Approval {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Approval
	for _, a := range s.approvals {
		if a.ContractID == contractID && a.Type == t && a.Status == model.ApprovalStatusPending {
			result = append(result, a)
		}
	}
	return result
}

func (s *fakeStore) putContract(c model.Contract) model.Contract {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	s.contracts[c.ID] = c
	return c
}

func (s *fakeStore) putApproval(a model.Approval) model.Approval {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	s.approvals[a.ID] = a
	return a
}

type fakeRBAC struct {
	permissions map[uuid.UUID]map[model.PermissionCode]bool
	roles       map[model.RoleCode][]model.User
}

func newFakeRBAC() *fakeRBAC {
	return &fakeRBAC{
		permissions: make(map[uuid.UUID]map[model.PermissionCode]bool),
		roles:       make(map[model.RoleCode][]model.User),
	}
}

func (r *fakeRBAC) grant(userID uuid.UUID, codes ...model.PermissionCode) {
	if r.permissions[userID] == nil {
		r.permissions[userID] = make(map[model.PermissionCode]bool)
	}
	for _, code := range codes {
		r.permissions[userID][code] = true
	}
}

func (r *fakeRBAC) assign(role model.RoleCode, users ...model.User) {
	r.roles[role] = append(r.roles[role], users...)
}

func (r *fakeRBAC) HasPermission(ctx context.Context, userID, orgID uuid.UUID, code model.PermissionCode) (bool, error) {
	return r.permissions[userID][code], nil
}

func (r *fakeRBAC) HasRole(ctx context.Context, userID, orgID uuid.UUID, role model.RoleCode) (bool, error) {
	for _, u := range r.roles[role] {
		if u.ID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRBAC) FindUsersWithRole(ctx context.Context, orgID uuid.UUID, role model.RoleCode) ([]model.User, error) {
	return r.roles[role], nil
}

type recordingSink struct {
	mu      sync.Mutex
	entries []model.AuditEntry
}

func (s *recordingSink) Record(entry model.AuditEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
}

func (s *recordingSink) actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		result = append(result, e.Action)
	}
	return result
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Workflow: config.WorkflowConfig{
			LegalDueDays:   5,
			FinanceDueDays: 5,
		},
	}
}

type workflowFixture struct {
	store   *fakeStore
	rbac    *fakeRBAC
	sink    *recordingSink
	service *WorkflowService

	org          uuid.UUID
	owner        model.Principal
	legalManager model.Principal
	legalHead    model.Principal
	legalHeadTwo model.Principal
	finance      model.Principal
}

func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()

	f := &workflowFixture{
		store: newFakeStore(),
		rbac:  newFakeRBAC(),
		sink:  &recordingSink{},
		org:   uuid.New(),
	}

	f.owner = model.Principal{UserID: uuid.New(), OrgID: f.org}
	f.legalManager = model.Principal{UserID: uuid.New(), OrgID: f.org}
	f.legalHead = model.Principal{UserID: uuid.MustParse("11111111-1111-1111-1111-111111111111"), OrgID: f.org}
	f.legalHeadTwo = model.Principal{UserID: uuid.MustParse("22222222-2222-2222-2222-222222222222"), OrgID: f.org}
	f.finance = model.Principal{UserID: uuid.New(), OrgID: f.org}

	f.rbac.grant(f.owner.UserID,
		model.PermContractCreate, model.PermContractSubmit, model.PermContractApprove,
		model.PermContractExecute, model.PermContractCancel)
	f.rbac.grant(f.legalManager.UserID, model.PermLegalAct)
	f.rbac.grant(f.legalHead.UserID, model.PermLegalAct)
	f.rbac.grant(f.legalHeadTwo.UserID, model.PermLegalAct)
	f.rbac.grant(f.finance.UserID, model.PermFinanceAct)

	f.rbac.assign(model.RoleLegalManager, model.User{ID: f.legalManager.UserID, FullName: "Legal Manager"})
	f.rbac.assign(model.RoleLegalHead, model.User{ID: f.legalHead.UserID, FullName: "Legal Head"})
	f.rbac.assign(model.RoleFinanceManager, model.User{ID: f.finance.UserID, FullName: "Finance Manager"})

	f.service = NewWorkflowService(f.store, f.rbac, f.sink, testConfig())
	return f
}

func (f *workflowFixture) seedContract(status model.ContractStatus) model.Contract {
	return f.store.putContract(model.Contract{
		ID:              uuid.New(),
		Reference:       "CTR-2026-0001",
		Title:           "Master Services Agreement",
		Status:          status,
		OrganizationID:  f.org,
		CreatedByUserID: f.owner.UserID,
	})
}

func TestCreateContract(t *testing.T) {
	f := newWorkflowFixture(t)

	contract, err := f.service.CreateContract(context.Background(), f.owner, CreateContractInput{
		Title:            "Supply Agreement",
		CounterpartyName: "Acme GmbH",
		Amount:           125000,
	})
	require.NoError(t, err)

	assert.Equal(t, model.ContractStatusDraft, contract.Status)
	assert.Regexp(t, `^CTR-\d{4}-0001$`, contract.Reference)
	assert.Equal(t, f.org, contract.OrganizationID)
	assert.Contains(t, f.sink.actions(), model.AuditActionContractCreated)
}

func TestCreateContractRequiresPermission(t *testing.T) {
	f := newWorkflowFixture(t)

	_, err := f.service.CreateContract(context.Background(), f.legalManager, CreateContractInput{Title: "X"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSubmitOpensLegalApproval(t *testing.T) {
	f := newWorkflowFixture(t)
	contract := f.seedContract(model.ContractStatusDraft)

	updated, err := f.service.Submit(context.Background(), f.owner, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContractStatusSentToLegal, updated.Status)

	pending := f.store.pendingApprovals(contract.ID, model.ApprovalTypeLegal)
	require.Len(t, pending, 1)
	assert.Equal(t, f.legalManager.UserID, pending[0].ActorID)
	require.NotNil(t, pending[0].DueDate)
}

func TestSubmitTwiceFailsWithInvalidTransition(t *testing.T) {
	f := newWorkflowFixture(t)
	contract := f.seedContract(model.ContractStatusDraft)

	_, err := f.service.Submit(context.Background(), f.owner, contract.ID)
	require.NoError(t, err)

	_, err = f.service.Submit(context.Background(), f.owner, contract.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	stored, _ := f.store.GetContract(context.Background(), contract.ID)
	assert.Equal(t, model.ContractStatusSentToLegal, stored.Status)
}

func TestSubmitWithLeftoverPendingApprovalConflicts(t *testing.T) {
	f := newWorkflowFixture(t)
	contract := f.seedContract(model.ContractStatusDraft)
	f.store.putApproval(model.Approval{
		ContractID: contract.ID,
		Type:       model.ApprovalTypeLegal,
		Status:     model.ApprovalStatusPending,
		ActorID:    f.legalManager.UserID,
	})

	_, err := f.service.Submit(context.Background(), f.owner, contract.ID)
	assert.ErrorIs(t, err, ErrDuplicatePending)

	stored, _ := f.store.GetContract(context.Background(), contract.ID)
	assert.Equal(t, model.ContractStatusDraft, stored.Status)
}

func TestEscalationScenario(t *testing.T) {
	f := newWorkflowFixture(t)
	contract := f.seedContract(model.ContractStatusSentToLegal)
	f.store.putApproval(model.Approval{
		ContractID: contract.ID,
		Type:       model.ApprovalTypeLegal,
		Status:     model.ApprovalStatusPending,
		ActorID:    f.legalManager.UserID,
	})

	approval, err := f.service.EscalateToLegalHead(context.Background(), f.legalManager, contract.ID, "Integration Test Escalation")
	require.NoError(t, err)

	stored, _ := f.store.GetContract(context.Background(), contract.ID)
	assert.Equal(t, model.ContractStatusPendingLegalHead, stored.Status)

	pending := f.store.pendingApprovals(contract.ID, model.ApprovalTypeLegal)
	require.Len(t, pending, 1, "exactly one PENDING approval after escalation")
	assert.Equal(t, f.legalHead.UserID, pending[0].ActorID)

	ok, err := f.rbac.HasRole(context.Background(), pending[0].ActorID, f.org, model.RoleLegalHead)
	require.NoError(t, err)
	assert.True(t, ok, "escalation must assign a legal head")

	require.NotNil(t, approval.Reason)
	assert.Equal(t, "Integration Test Escalation", *approval.Reason)

	resolved, err := f.service.Approve(context.Background(), f.legalHead, approval.ID, "LGTM")
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalStatusApproved, resolved.Status)

	stored, _ = f.store.GetContract(context.Background(), contract.ID)
	assert.Equal(t, model.ContractStatusApprovedLegalHead, stored.Status)
}

func TestEscalateUnauthorized(t *testing.T) {
	f := newWorkflowFixture(t)
	contract := f.seedContract(model.ContractStatusSentToLegal)

	_, err := f.service.EscalateToLegalHead(context.Background(), f.finance, contract.ID, "not my call")
	assert.ErrorIs(t, err, ErrUnauthorized)

	stored, _ := f.store.GetContract(context.Background(), contract.ID)
	assert.Equal(t, model.ContractStatusSentToLegal, stored.Status)
}

func TestEscalateFromDraftInvalid(t *testing.T) {
	f := newWorkflowFixture(t)
	contract := f.seedContract(model.ContractStatusDraft)

	_, err := f.service.EscalateToLegalHead(context.Background(), f.legalManager, contract.ID, "too early")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	stored, _ := f.store.GetContract(context.Background(), contract.ID)
	assert.Equal(t, model.ContractStatusDraft, stored.Status)
}

func TestEscalateRequiresReason(t *testing.T) {
	f := newWorkflowFixture(t)
	contract := f.seedContract(model.ContractStatusSentToLegal)

	_, err := f.service.EscalateToLegalHead(context.Background(), f.legalManager, contract.ID, "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestEscalateNoEligibleApprover(t *testing.T) {
	f := newWorkflowFixture(t)
	f.rbac.roles[model.RoleLegalHead] = nil
	contract := f.seedContract(model.ContractStatusSentToLegal)

	_, err := f.service.EscalateToLegalHead(context.Background(), f.legalManager, contract.ID, "nobody home")
	assert.ErrorIs(t, err, ErrNoEligibleApprover)

	stored, _ := f.store.GetContract(context.Background(), contract.ID)
	assert.Equal(t, model.ContractStatusSentToLegal, stored.Status)
}

func TestEscalationTieBreakIsDeterministic(t *testing.T) {
	f := newWorkflowFixture(t)
	// Both heads idle: lowest user id wins.
	f.rbac.assign(model.RoleLegalHead, model.User{ID: f.legalHeadTwo.UserID, FullName: "Second Head"})
	contract := f.seedContract(model.ContractStatusSentToLegal)

	approval, err := f.service.EscalateToLegalHead(context.Background(), f.legalManager, contract.ID, "pick one")
	require.NoError(t, err)
	assert.Equal(t, f.legalHead.UserID, approval.ActorID)
}

func TestEscalationPrefersLeastLoadedHead(t *testing.T) {
	f := newWorkflowFixture(t)
	f.rbac.assign(model.RoleLegalHead, model.User{ID: f.legalHeadTwo.UserID, FullName: "Second Head"})

	// The lower-id head is already busy on another contract.
	other := f.seedContract(model.ContractStatusPendingLegalHead)
	f.store.putApproval(model.Approval{
		ContractID: other.ID,
		Type:       model.ApprovalTypeLegal,
		Status:     model.ApprovalStatusPending,
		ActorID:    f.legalHead.UserID,
	})

	contract := f.seedContract(model.ContractStatusSentToLegal)
	approval, err := f.service.EscalateToLegalHead(context.Background(), f.legalManager, contract.ID, "load balance")
	require.NoError(t, err)
	assert.Equal(t, f.legalHeadTwo.UserID, approval.ActorID)
}

func TestApproveIsIdempotentGuarded(t *testing.T) {
	f := newWorkflowFixture(t)
	contract := f.seedContract(model.ContractStatusSentToLegal)
	approval := f.store.putApproval(model.Approval{
		ContractID: contract.ID,
		Type:       model.ApprovalTypeLegal,
		Status:     model.ApprovalStatusPending,
		ActorID:    f.legalManager.UserID,
	})

	first, err := f.service.Approve(context.Background(), f.legalManager, approval.ID, "ok")
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalStatusApproved, first.Status)

	_, err = f.service.Approve(context.Background(), f.legalManager, approval.ID, "ok again")
	assert.ErrorIs(t, err, ErrNotPending)

	stored, _ := f.store.GetContract(context.Background(), contract.ID)
	assert.Equal(t, model.ContractStatusLegalApproved, stored.Status)
}

func TestApproveByUnassignedActorWithoutPermission(t *testing.T) {
	f := newWorkflowFixture(t)
	contract := f.seedContract(model.ContractStatusSentToLegal)
	approval := f.store.putApproval(model.Approval{
		ContractID: contract.ID,
		Type:       model.ApprovalTypeLegal,
		Status:     model.ApprovalStatusPending,
		ActorID:    f.legalManager.UserID,
	})

	_, err := f.service.Approve(context.Background(), f.owner, approval.ID, "sneaky")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRejectRequiresComment(t *testing.T) {
	f := newWorkflowFixture(t)
	contract := f.seedContract(model.ContractStatusSentToLegal)
	approval := f.store.putApproval(model.Approval{
		ContractID: contract.ID,
		Type:       model.ApprovalTypeLegal,
		Status:     model.ApprovalStatusPending,
		ActorID:    f.legalManager.UserID,
	})

	_, err := f.service.Reject(context.Background(), f.legalManager, approval.ID, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	stored, _ := f.store.GetContract(context.Background(), contract.ID)
	assert.Equal(t, model.ContractStatusSentToLegal, stored.Status)
}

func TestRejectMovesContractToRejected(t *testing.T) {
	f := newWorkflowFixture(t)
	contract := f.seedContract(model.ContractStatusPendingLegalHead)
	approval := f.store.putApproval(model.Approval{
		ContractID: contract.ID,
		Type:       model.ApprovalTypeLegal,
		Status:     model.ApprovalStatusPending,
		ActorID:    f.legalHead.UserID,
	})

	resolved, err := f.service.Reject(context.Background(), f.legalHead, approval.ID, "missing indemnity clause")
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalStatusRejected, resolved.Status)

	stored, _ := f.store.GetContract(context.Background(), contract.ID)
	assert.Equal(t, model.ContractStatusRejected, stored.Status)
}

func TestApproveUnknownApproval(t *testing.T) {
	f := newWorkflowFixture(t)

	_, err := f.service.Approve(context.Background(), f.legalManager, uuid.New(), "ghost")
	assert.ErrorIs(t, err, ErrApprovalNotFound)
}

func TestFinanceFlow(t *testing.T) {
	f := newWorkflowFixture(t)
	contract := f.seedContract(model.ContractStatusLegalApproved)

	updated, err := f.service.SendToFinance(context.Background(), f.owner, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContractStatusSentToFinance, updated.Status)

	pending := f.store.pendingApprovals(contract.ID, model.ApprovalTypeFinance)
	require.Len(t, pending, 1)
	assert.Equal(t, f.finance.UserID, pending[0].ActorID)

	resolved, err := f.service.Approve(context.Background(), f.finance, pending[0].ID, "budget fits")
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalStatusApproved, resolved.Status)

	stored, _ := f.store.GetContract(context.Background(), contract.ID)
	assert.Equal(t, model.ContractStatusFinanceReviewed, stored.Status)

	final, err := f.service.MarkApproved(context.Background(), f.owner, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContractStatusApproved, final.Status)
}

func TestExecutionFlow(t *testing.T) {
	f := newWorkflowFixture(t)
	contract := f.seedContract(model.ContractStatusApproved)
	ctx := context.Background()

	updated, err := f.service.SendToCounterparty(ctx, f.owner, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContractStatusSentToCounterparty, updated.Status)

	updated, err = f.service.Countersign(ctx, f.owner, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContractStatusCountersigned, updated.Status)

	updated, err = f.service.Activate(ctx, f.owner, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContractStatusActive, updated.Status)

	updated, err = f.service.Terminate(ctx, f.owner, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContractStatusTerminated, updated.Status)
}

func TestCancelSupersedesPendingApprovals(t *testing.T) {
	f := newWorkflowFixture(t)
	contract := f.seedContract(model.ContractStatusSentToLegal)
	approval := f.store.putApproval(model.Approval{
		ContractID: contract.ID,
		Type:       model.ApprovalTypeLegal,
		Status:     model.ApprovalStatusPending,
		ActorID:    f.legalManager.UserID,
	})

	updated, err := f.service.Cancel(context.Background(), f.owner, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContractStatusCancelled, updated.Status)

	stored, _ := f.store.GetApproval(context.Background(), approval.ID)
	assert.Equal(t, model.ApprovalStatusSuperseded, stored.Status)
	assert.Empty(t, f.store.pendingApprovals(contract.ID, model.ApprovalTypeLegal))
}

func TestAttachFinalDocumentForcesActive(t *testing.T) {
	f := newWorkflowFixture(t)
	contract := f.seedContract(model.ContractStatusSentToLegal)
	f.store.putApproval(model.Approval{
		ContractID: contract.ID,
		Type:       model.ApprovalTypeLegal,
		Status:     model.ApprovalStatusPending,
		ActorID:    f.legalManager.UserID,
	})
	documentID := uuid.New()

	updated, err := f.service.AttachFinalDocument(context.Background(), f.owner, contract.ID, documentID)
	require.NoError(t, err)
	assert.Equal(t, model.ContractStatusActive, updated.Status)

	stored, _ := f.store.GetContract(context.Background(), contract.ID)
	require.NotNil(t, stored.FinalDocumentID)
	assert.Equal(t, documentID, *stored.FinalDocumentID)
	assert.Empty(t, f.store.pendingApprovals(contract.ID, model.ApprovalTypeLegal))
}

func TestExpireOverdue(t *testing.T) {
	f := newWorkflowFixture(t)
	past := time.Now().UTC().AddDate(0, 0, -1)
	future := time.Now().UTC().AddDate(0, 0, 30)

	overdue := f.store.putContract(model.Contract{
		ID: uuid.New(), Status: model.ContractStatusActive,
		OrganizationID: f.org, EndDate: &past,
	})
	current := f.store.putContract(model.Contract{
		ID: uuid.New(), Status: model.ContractStatusActive,
		OrganizationID: f.org, EndDate: &future,
	})

	count, err := f.service.ExpireOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stored, _ := f.store.GetContract(context.Background(), overdue.ID)
	assert.Equal(t, model.ContractStatusExpired, stored.Status)
	stored, _ = f.store.GetContract(context.Background(), current.ID)
	assert.Equal(t, model.ContractStatusActive, stored.Status)
}

func TestCrossOrgAccessIsNotFound(t *testing.T) {
	f := newWorkflowFixture(t)
	contract := f.seedContract(model.ContractStatusDraft)
	outsider := model.Principal{UserID: f.owner.UserID, OrgID: uuid.New()}

	_, err := f.service.Submit(context.Background(), outsider, contract.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = f.service.GetContract(context.Background(), outsider, contract.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
