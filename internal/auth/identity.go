package auth

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Identity is the per-request caller identity. It is an explicit two-variant
// value: anonymous, or authenticated with a user id and role. A failed cookie
// verification downgrades to anonymous rather than rejecting the request, so
// the zero value (anonymous) is the safe default everywhere.
type Identity struct {
	UserID string
	Role   string

	authenticated bool
}

func Anonymous() Identity {
	return Identity{}
}

func Authenticated(userID, role string) Identity {
	return Identity{UserID: userID, Role: role, authenticated: true}
}

func (i Identity) IsAnonymous() bool {
	return !i.authenticated
}

func (i Identity) IsAdmin() bool {
	return i.authenticated && i.Role == RoleAdmin
}
