package model

import "github.com/google/uuid"

// Role codes consumed by the workflow. The identity service owns the role
// tables; these constants only name the codes this service queries.
type RoleCode string

const (
	RoleLegalManager   RoleCode = "LEGAL_MANAGER"
	RoleLegalHead      RoleCode = "LEGAL_HEAD"
	RoleFinanceManager RoleCode = "FINANCE_MANAGER"
)

type PermissionCode string

const (
	PermContractCreate  PermissionCode = "contract:create"
	PermContractSubmit  PermissionCode = "contract:submit"
	PermContractApprove PermissionCode = "contract:approve"
	PermContractExecute PermissionCode = "contract:execute"
	PermContractCancel  PermissionCode = "contract:cancel"
	PermLegalAct        PermissionCode = "approval:legal:act"
	PermFinanceAct      PermissionCode = "approval:finance:act"
)

var knownPermissions = map[PermissionCode]struct{}{
	PermContractCreate:  {},
	PermContractSubmit:  {},
	PermContractApprove: {},
	PermContractExecute: {},
	PermContractCancel:  {},
	PermLegalAct:        {},
	PermFinanceAct:      {},
}

// IsKnownPermission guards against typo'd codes silently denying (or
// granting) access when codes arrive from configuration.
func IsKnownPermission(code PermissionCode) bool {
	_, ok := knownPermissions[code]
	return ok
}

// ActPermissionFor returns the permission required to resolve an approval
// of the given type.
func ActPermissionFor(t ApprovalType) PermissionCode {
	if t == ApprovalTypeFinance {
		return PermFinanceAct
	}
	return PermLegalAct
}

type User struct {
	ID       uuid.UUID
	FullName string
	Email    string
}
