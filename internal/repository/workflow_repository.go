package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/clm-workflow/internal/model"
	"github.com/nurpe/clm-workflow/internal/service"
)

// WorkflowRepository implements service.WorkflowStore on postgres. Methods
// called through Atomically run on the transaction's connection, so the
// FOR UPDATE lock taken by GetContractForUpdate holds until commit.
type WorkflowRepository struct {
	db *gorm.DB
}

func NewWorkflowRepository(db *gorm.DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

func (r *WorkflowRepository) Atomically(ctx context.Context, fn func(tx service.WorkflowStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&WorkflowRepository{db: tx})
	})
}

const contractColumns = `
	id,
	reference,
	title,
	status,
	template_id,
	organization_id,
	created_by_user_id,
	content,
	annexure_data,
	field_data,
	counterparty_name,
	counterparty_email,
	start_date,
	end_date,
	amount,
	final_document_id,
	created_at,
	updated_at
`

func (r *WorkflowRepository) CreateContract(ctx context.Context, c model.Contract) (*model.Contract, error) {
	var saved model.Contract
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO contracts (
			reference,
			title,
			status,
			template_id,
			organization_id,
			created_by_user_id,
			content,
			annexure_data,
			field_data,
			counterparty_name,
			counterparty_email,
			start_date,
			end_date,
			amount
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+contractColumns,
		c.Reference,
		c.Title,
		c.Status,
		c.TemplateID,
		c.OrganizationID,
		c.CreatedByUserID,
		c.Content,
		c.AnnexureData,
		c.FieldData,
		c.CounterpartyName,
		c.CounterpartyEmail,
		c.StartDate,
		c.EndDate,
		c.Amount,
	).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *WorkflowRepository) GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	return r.getContract(ctx, id, "")
}

func (r *WorkflowRepository) GetContractForUpdate(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	return r.getContract(ctx, id, "FOR UPDATE")
}

func (r *WorkflowRepository) getContract(ctx context.Context, id uuid.UUID, locking string) (*model.Contract, error) {
	var contract model.Contract
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+contractColumns+`
		FROM contracts
		WHERE id = ?
		`+locking,
		id).Scan(&contract).Error
	if err != nil {
		return nil, err
	}
	if contract.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &contract, nil
}

// UpdateContractStatus applies the transition only when the row still
// carries the expected status; zero affected rows means a concurrent
// writer got there first.
func (r *WorkflowRepository) UpdateContractStatus(ctx context.Context, id uuid.UUID, from, to model.ContractStatus) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE contracts
		SET status = ?, updated_at = NOW()
		WHERE id = ? AND status = ?
	`, to, id, from)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *WorkflowRepository) SetFinalDocument(ctx context.Context, id, documentID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE contracts
		SET final_document_id = ?, updated_at = NOW()
		WHERE id = ?
	`, documentID, id).Error
}

func (r *WorkflowRepository) ListContracts(ctx context.Context, orgID uuid.UUID, status *model.ContractStatus) ([]model.Contract, error) {
	query := `
		SELECT ` + contractColumns + `
		FROM contracts
		WHERE organization_id = ?
	`
	args := []interface{}{orgID}
	if status != nil {
		query += " AND status = ?"
		args = append(args, *status)
	}
	query += " ORDER BY created_at DESC"

	var contracts []model.Contract
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&contracts).Error; err != nil {
		return nil, err
	}
	return contracts, nil
}

func (r *WorkflowRepository) ListExpiredActive(ctx context.Context, asOf time.Time) ([]model.Contract, error) {
	var contracts []model.Contract
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+contractColumns+`
		FROM contracts
		WHERE status = ? AND end_date IS NOT NULL AND end_date < ?
		ORDER BY end_date ASC
	`, model.ContractStatusActive, asOf).Scan(&contracts).Error
	if err != nil {
		return nil, err
	}
	return contracts, nil
}

func (r *WorkflowRepository) NextContractSequence(ctx context.Context, year int) (int64, error) {
	var seq int64
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO contract_sequences (year, seq)
		VALUES (?, 1)
		ON CONFLICT (year) DO UPDATE SET seq = contract_sequences.seq + 1
		RETURNING seq
	`, year).Scan(&seq).Error
	if err != nil {
		return 0, err
	}
	return seq, nil
}

const approvalColumns = `
	id,
	contract_id,
	type,
	status,
	actor_id,
	due_date,
	comment,
	reason,
	resolved_by,
	resolved_at,
	created_at
`

func (r *WorkflowRepository) CreateApproval(ctx context.Context, a model.Approval) (*model.Approval, error) {
	var saved model.Approval
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO approvals (
			contract_id,
			type,
			status,
			actor_id,
			due_date,
			reason
		) VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+approvalColumns,
		a.ContractID,
		a.Type,
		a.Status,
		a.ActorID,
		a.DueDate,
		a.Reason,
	).Scan(&saved).Error
	if err != nil {
		if strings.Contains(err.Error(), "23505") || strings.Contains(strings.ToLower(err.Error()), "duplicate key") {
			return nil, gorm.ErrDuplicatedKey
		}
		return nil, err
	}
	return &saved, nil
}

func (r *WorkflowRepository) GetApproval(ctx context.Context, id uuid.UUID) (*model.Approval, error) {
	var approval model.Approval
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+approvalColumns+`
		FROM approvals
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&approval).Error
	if err != nil {
		return nil, err
	}
	if approval.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &approval, nil
}

func (r *WorkflowRepository) FindPendingApproval(ctx context.Context, contractID uuid.UUID, t model.ApprovalType) (*model.Approval, error) {
	var approval model.Approval
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+approvalColumns+`
		FROM approvals
		WHERE contract_id = ? AND type = ? AND status = ?
		LIMIT 1
	`, contractID, t, model.ApprovalStatusPending).Scan(&approval).Error
	if err != nil {
		return nil, err
	}
	if approval.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &approval, nil
}

// ResolveApproval flips a PENDING row to its outcome. The status guard in
// the WHERE clause makes double resolution impossible: the second caller
// matches zero rows and gets gorm.ErrRecordNotFound.
func (r *WorkflowRepository) ResolveApproval(ctx context.Context, id uuid.UUID, outcome model.ApprovalStatus, comment string, resolvedBy uuid.UUID) (*model.Approval, error) {
	var resolved model.Approval
	err := r.db.WithContext(ctx).Raw(`
		UPDATE approvals
		SET status = ?, comment = ?, resolved_by = ?, resolved_at = NOW()
		WHERE id = ? AND status = ?
		RETURNING `+approvalColumns,
		outcome, comment, resolvedBy, id, model.ApprovalStatusPending,
	).Scan(&resolved).Error
	if err != nil {
		return nil, err
	}
	if resolved.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &resolved, nil
}

func (r *WorkflowRepository) SupersedeApproval(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE approvals
		SET status = ?, resolved_at = NOW()
		WHERE id = ? AND status = ?
	`, model.ApprovalStatusSuperseded, id, model.ApprovalStatusPending)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *WorkflowRepository) ListApprovals(ctx context.Context, contractID uuid.UUID) ([]model.Approval, error) {
	var approvals []model.Approval
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+approvalColumns+`
		FROM approvals
		WHERE contract_id = ?
		ORDER BY created_at ASC
	`, contractID).Scan(&approvals).Error
	if err != nil {
		return nil, err
	}
	return approvals, nil
}

func (r *WorkflowRepository) CountPendingByActor(ctx context.Context, actorIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(actorIDs))
	if len(actorIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		ActorID uuid.UUID
		Total   int64
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT actor_id, COUNT(*) AS total
		FROM approvals
		WHERE actor_id = ANY(?) AND status = ?
		GROUP BY actor_id
	`, actorIDs, model.ApprovalStatusPending).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ActorID] = row.Total
	}
	return counts, nil
}

func (r *WorkflowRepository) ListAuditEntries(ctx context.Context, targetID uuid.UUID) ([]model.AuditEntry, error) {
	var entries []model.AuditEntry
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, actor_id, action, module, target_type, target_id, old_value, new_value, metadata, created_at
		FROM audit_log
		WHERE target_id = ?
		ORDER BY created_at ASC
	`, targetID).Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
