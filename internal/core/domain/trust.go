package domain

import "github.com/google/uuid"

// TrustLevel makes privilege escalation visible at every data-access call
// site. Repositories performing cross-user reads or writes take a
// TrustLevel argument; user-level trust is enforced in the repository layer
// instead of being implied by which database client happens to be in scope.
type TrustLevel struct {
	system bool
	userID uuid.UUID
}

// AsUser scopes data access to rows the given user may see.
func AsUser(userID uuid.UUID) TrustLevel {
	return TrustLevel{userID: userID}
}

// AsSystem grants unrestricted access. Use only where the flow genuinely
// needs to cross user boundaries (recipient lookup, grant upsert).
func AsSystem() TrustLevel {
	return TrustLevel{system: true}
}

// IsSystem reports whether this access level bypasses per-user scoping.
func (t TrustLevel) IsSystem() bool { return t.system }

// UserID returns the scoping user for user-level trust; zero for system.
func (t TrustLevel) UserID() uuid.UUID { return t.userID }

// Permits reports whether rows owned by ownerID are visible at this level.
func (t TrustLevel) Permits(ownerID uuid.UUID) bool {
	return t.system || t.userID == ownerID
}
