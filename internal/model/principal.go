package model

import "github.com/google/uuid"

// Principal identifies the authenticated caller. Permissions and roles are
// resolved against the identity tables per request, not embedded in the
// token, so revocations take effect immediately.
type Principal struct {
	UserID uuid.UUID
	OrgID  uuid.UUID
}

func (p Principal) Valid() bool {
	return p.UserID != uuid.Nil && p.OrgID != uuid.Nil
}
