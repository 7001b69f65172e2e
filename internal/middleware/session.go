package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/miniuni/miniuni-web/internal/model"
	"github.com/miniuni/miniuni-web/internal/response"
	"github.com/rs/zerolog"
)

// ContextKeySession is the Gin context key for the tab's session.
const ContextKeySession = "session"

// SessionReader loads a tab's session.
type SessionReader interface {
	Current(ctx context.Context, tabID string) (*model.Session, error)
}

// LoadSession reads the tab's session once per request and stores it in the
// Gin context. A missing session is not an error: the root view renders the
// login screen for it.
func LoadSession(sessions SessionReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		tabID := GetTab(c)
		if tabID == "" {
			response.AbortFail(c, http.StatusBadRequest, response.ErrTabInvalid)
			return
		}

		s, err := sessions.Current(c.Request.Context(), tabID)
		if err != nil {
			zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("tab", tabID).Msg("Failed to load session")
			response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}
		if s != nil {
			c.Set(ContextKeySession, s)
		}
		c.Next()
	}
}

// GetSession retrieves the session from the Gin context, nil when logged out.
func GetSession(c *gin.Context) *model.Session {
	val, exists := c.Get(ContextKeySession)
	if !exists {
		return nil
	}
	s, ok := val.(*model.Session)
	if !ok {
		return nil
	}
	return s
}
