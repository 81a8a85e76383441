package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/clm-workflow/internal/model"
)

// ExportRepository serves the read-only export queries. It reuses the
// workflow repository's contract and approval reads and adds the joined
// register view.
type ExportRepository struct {
	*WorkflowRepository
}

func NewExportRepository(db *gorm.DB) *ExportRepository {
	return &ExportRepository{WorkflowRepository: NewWorkflowRepository(db)}
}

func (r *ExportRepository) GetOrganization(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
	var org model.Organization
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, address, phone
		FROM organizations
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&org).Error
	if err != nil {
		return nil, err
	}
	if org.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &org, nil
}

func (r *ExportRepository) ListApprovalRegisterRows(ctx context.Context, orgID uuid.UUID, from, to time.Time) ([]model.ApprovalRegisterRow, error) {
	var rows []model.ApprovalRegisterRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			c.reference AS contract_reference,
			c.title AS contract_title,
			c.status AS contract_status,
			a.type,
			a.status,
			COALESCE(u.full_name, '') AS actor_name,
			a.comment,
			a.due_date,
			a.created_at,
			a.resolved_at
		FROM approvals a
		JOIN contracts c ON c.id = a.contract_id
		LEFT JOIN users u ON u.id = a.actor_id
		WHERE c.organization_id = ?
			AND a.created_at >= ?
			AND a.created_at < ?
		ORDER BY a.created_at ASC
	`, orgID, from, to).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
