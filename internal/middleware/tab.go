package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ContextKeyTab is the Gin context key for the tab ID.
const ContextKeyTab = "tab_id"

const tabSubject = "tab"

// TabConfig describes the tab cookie.
type TabConfig struct {
	CookieName string
	Secret     []byte
	Secure     bool
}

// Tab identifies the browser with a signed cookie holding a random tab ID.
// A missing, tampered or malformed cookie is replaced with a fresh tab, which
// starts logged out.
func Tab(cfg TabConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, err := c.Cookie(cfg.CookieName); err == nil {
			if id, err := ParseTabToken(raw, cfg.Secret); err == nil {
				c.Set(ContextKeyTab, id)
				c.Next()
				return
			}
			zerolog.Ctx(c.Request.Context()).Debug().Msg("Discarding invalid tab cookie")
		}

		id := uuid.NewString()
		token, err := IssueTabToken(id, cfg.Secret, time.Now())
		if err != nil {
			zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("Failed to sign tab cookie")
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, token, 0, "/", "", cfg.Secure, true)
		c.Set(ContextKeyTab, id)
		c.Next()
	}
}

// IssueTabToken signs id as an HS256 JWT.
func IssueTabToken(id string, secret []byte, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:       id,
		Subject:  tabSubject,
		IssuedAt: jwt.NewNumericDate(now),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseTabToken verifies raw and returns the tab ID it carries.
func ParseTabToken(raw string, secret []byte) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithSubject(tabSubject))
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid tab token")
	}
	if _, err := uuid.Parse(claims.ID); err != nil {
		return "", errors.New("tab token carries a malformed id")
	}
	return claims.ID, nil
}

// GetTab returns the tab ID set by Tab, or "".
func GetTab(c *gin.Context) string {
	return c.GetString(ContextKeyTab)
}
