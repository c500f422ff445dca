// Package session models the authenticated identity the CLI acts under and
// the role gate protecting commands. The session is an explicit value
// threaded into whatever needs it; there is no ambient global.
package session

// Roles a platform user can hold. A user may hold several.
const (
	RoleAdmin   = "Admin"
	RoleCurator = "Curator"
	RoleAnalyst = "Analyst"
)

// User is the authenticated user's identity.
type User struct {
	Name   string
	Handle string
	Roles  []string
}

// Session pairs the current user with the bearer token sent on requests.
// A zero Session is unauthenticated.
type Session struct {
	User  *User
	Token string
}

// Authenticated reports whether a token is held.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// Authorized reports whether the session may enter a surface restricted to
// the given roles: it must be authenticated and hold at least one of them.
func (s Session) Authorized(allowed ...string) bool {
	if !s.Authenticated() {
		return false
	}
	for _, role := range s.User.Roles {
		for _, a := range allowed {
			if role == a {
				return true
			}
		}
	}
	return false
}

// HasRole reports whether the session's user holds the given role.
func (s Session) HasRole(role string) bool {
	if s.User == nil {
		return false
	}
	for _, r := range s.User.Roles {
		if r == role {
			return true
		}
	}
	return false
}
