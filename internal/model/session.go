package model

// Role selects which dashboard a session sees. The backend decides what the
// role may actually do.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleAdmin
}

// Session is the bearer credential a tab holds after login. The token is
// opaque; a non-empty token is treated as authenticated.
type Session struct {
	Token  string `json:"token"`
	Role   Role   `json:"role"`
	UserID string `json:"userId"`
}

// Authenticated reports whether the session carries a token.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

// IsAdmin is used for view routing only.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}
