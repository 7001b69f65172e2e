package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// LoginRequest is the credentials form, also the /auth/login body.
type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// SignupRequest is the /auth/signup body. Self signup always asks for a
// student account.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// AuthResponse is returned by both /auth/login and /auth/signup.
type AuthResponse struct {
	Token  string `json:"token"`
	Role   Role   `json:"role"`
	UserID ID     `json:"userId"`
	Email  string `json:"email,omitempty"`
}

// Session converts the response into the session stored for the tab.
func (r *AuthResponse) Session() *Session {
	return &Session{
		Token:  r.Token,
		Role:   r.Role,
		UserID: string(r.UserID),
	}
}

// ID is an identifier that may arrive as a JSON number or string and is kept
// in its textual form.
type ID string

// UnmarshalJSON accepts 42, "42" and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a number or string: %w", err)
	}
	*id = ID(strings.TrimSpace(n.String()))
	return nil
}
