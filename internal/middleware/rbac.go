package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/miniuni/miniuni-web/internal/response"
)

// RequireSession sends logged-out browsers back to the login screen.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetSession(c).Authenticated() {
			deny(c, http.StatusUnauthorized, response.ErrSessionRequired)
			return
		}
		c.Next()
	}
}

// RequireAdmin admits admin sessions only.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := GetSession(c)
		if !s.Authenticated() {
			deny(c, http.StatusUnauthorized, response.ErrSessionRequired)
			return
		}
		if !s.IsAdmin() {
			deny(c, http.StatusForbidden, response.ErrAdminAccessOnly)
			return
		}
		c.Next()
	}
}

// RequireStudent admits every non-admin session, matching the root view which
// renders the student dashboard for any role other than admin.
func RequireStudent() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := GetSession(c)
		if !s.Authenticated() {
			deny(c, http.StatusUnauthorized, response.ErrSessionRequired)
			return
		}
		if s.IsAdmin() {
			deny(c, http.StatusForbidden, response.ErrStudentAccessOnly)
			return
		}
		c.Next()
	}
}

// deny answers JSON clients with the error envelope and redirects browsers to
// the root view, which picks the right screen for the current session.
func deny(c *gin.Context, status int, code response.ErrCode) {
	if response.WantsJSON(c) {
		response.AbortFail(c, status, code)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
	c.Abort()
}
