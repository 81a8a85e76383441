package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nurpe/clm-workflow/internal/model"
)

// AuditRepository appends audit entries. Writes run on their own
// connection, outside any workflow transaction, so a failed append can
// never roll back the action it describes.
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Insert(ctx context.Context, entry model.AuditEntry) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO audit_log (
			actor_id,
			action,
			module,
			target_type,
			target_id,
			old_value,
			new_value,
			metadata
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		entry.ActorID,
		entry.Action,
		entry.Module,
		entry.TargetType,
		entry.TargetID,
		entry.OldValue,
		entry.NewValue,
		entry.Metadata,
	).Error
}
