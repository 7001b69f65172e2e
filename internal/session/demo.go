package session

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/miniuni/miniuni-web/internal/model"
)

// ErrUnknownRole is returned for demo logins with a role other than
// student or admin.
var ErrUnknownRole = errors.New("session: unknown role")

// Fixed user ids handed out by demo login.
const (
	DemoAdminUserID   = "1"
	DemoStudentUserID = "2"
)

const demoTokenPrefix = "demo-token-"

// NewDemoSession fabricates a session for role without asking the backend.
// The token is random and was never issued by the backend, so the backend
// cannot honor or revoke it. Demonstration only.
func NewDemoSession(role model.Role) (*model.Session, error) {
	if !role.Valid() {
		return nil, ErrUnknownRole
	}
	userID := DemoStudentUserID
	if role == model.RoleAdmin {
		userID = DemoAdminUserID
	}

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return &model.Session{
		Token:  demoTokenPrefix + suffix,
		Role:   role,
		UserID: userID,
	}, nil
}

// IsDemo reports whether s was produced by NewDemoSession.
func IsDemo(s *model.Session) bool {
	return s != nil && strings.HasPrefix(s.Token, demoTokenPrefix)
}
