package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/clm-workflow/internal/model"
)

// RBACRepository answers role and permission lookups against the identity
// tables owned by the platform's identity service. All queries are
// read-only; a missing user or role is simply "no".
type RBACRepository struct {
	db *gorm.DB
}

func NewRBACRepository(db *gorm.DB) *RBACRepository {
	return &RBACRepository{db: db}
}

func (r *RBACRepository) HasPermission(ctx context.Context, userID, orgID uuid.UUID, code model.PermissionCode) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*)
		FROM user_org_roles uor
		JOIN role_permissions rp ON rp.role_id = uor.role_id
		JOIN permissions p ON p.id = rp.permission_id
		WHERE uor.user_id = ?
			AND uor.organization_id = ?
			AND p.code = ?
	`, userID, orgID, code).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *RBACRepository) HasRole(ctx context.Context, userID, orgID uuid.UUID, role model.RoleCode) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*)
		FROM user_org_roles uor
		JOIN roles ro ON ro.id = uor.role_id
		WHERE uor.user_id = ?
			AND uor.organization_id = ?
			AND ro.code = ?
	`, userID, orgID, role).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *RBACRepository) FindUsersWithRole(ctx context.Context, orgID uuid.UUID, role model.RoleCode) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).Raw(`
		SELECT u.id, u.full_name, u.email
		FROM users u
		JOIN user_org_roles uor ON uor.user_id = u.id
		JOIN roles ro ON ro.id = uor.role_id
		WHERE uor.organization_id = ? AND ro.code = ?
		ORDER BY u.id ASC
	`, orgID, role).Scan(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *RBACRepository) GetOrganization(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
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
