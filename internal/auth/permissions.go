package auth

// Action is an operation a caller asks to perform.
type Action string

// Action constants.
const (
	ActionAlbumRead   Action = "album:read"
	ActionAlbumCreate Action = "album:create"
	ActionAlbumUpdate Action = "album:update"
	ActionAlbumDelete Action = "album:delete"
	ActionUserManage  Action = "user:manage"
	ActionSystemView  Action = "system:view"
)

// Decision is the outcome of an access check.
type Decision int

const (
	// Deny is the zero value so an unset decision never grants access.
	Deny Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// scope qualifies a grant.
type scope int

const (
	scopeAny   scope = iota + 1 // any resource
	scopeOwned                  // only resources the caller owns
)

// roleGrants maps each role to the actions it may perform.
// This is the single source of truth for the authorisation model.
var roleGrants = map[Role]map[Action]scope{
	RoleUser: {
		ActionAlbumRead:   scopeAny,
		ActionAlbumCreate: scopeAny, // first create promotes to EDITOR
	},
	RoleEditor: {
		ActionAlbumRead:   scopeAny,
		ActionAlbumCreate: scopeAny,
		ActionAlbumUpdate: scopeOwned,
		ActionAlbumDelete: scopeOwned,
	},
	RoleAdmin: {
		ActionAlbumRead:   scopeAny,
		ActionAlbumCreate: scopeAny,
		ActionAlbumUpdate: scopeAny,
		ActionAlbumDelete: scopeAny,
		ActionUserManage:  scopeAny,
		ActionSystemView:  scopeAny,
	},
}

// Decide returns Allow when callerRole may perform action. isOwner only
// matters for owner-scoped grants. The role is normalized here so callers
// may pass stored values as-is.
func Decide(action Action, callerRole Role, isOwner bool) Decision {
	grants, ok := roleGrants[NormalizeRole(string(callerRole))]
	if !ok {
		return Deny
	}
	switch grants[action] {
	case scopeAny:
		return Allow
	case scopeOwned:
		if isOwner {
			return Allow
		}
	}
	return Deny
}

// MayAttempt reports whether callerRole could perform action on at least
// some resource. It is the role gate checked before a resource is loaded.
func MayAttempt(action Action, callerRole Role) bool {
	return Decide(action, callerRole, true) == Allow
}

// IsOwner reports whether callerID owns a resource. A nil owner is never
// owned by anyone.
func IsOwner(owner *int64, callerID int64) bool {
	return owner != nil && *owner == callerID
}
