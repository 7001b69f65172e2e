package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/miniuni/miniuni-web/internal/apiclient"
	"github.com/miniuni/miniuni-web/internal/metrics"
	"github.com/miniuni/miniuni-web/internal/middleware"
	"github.com/miniuni/miniuni-web/internal/model"
	"github.com/miniuni/miniuni-web/internal/response"
	"github.com/miniuni/miniuni-web/internal/session"
	"github.com/miniuni/miniuni-web/internal/view"
	"github.com/rs/zerolog"
)

// AuthHandler handles login, signup, demo login and logout.
type AuthHandler struct {
	pages
	metrics          *metrics.Metrics
	demoLoginEnabled bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	api *apiclient.Client,
	sessions *session.Manager,
	guard *view.Guard,
	m *metrics.Metrics,
	demoLoginEnabled bool,
	log zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		pages:            newPages(api, sessions, guard, log, "auth_handler"),
		metrics:          m,
		demoLoginEnabled: demoLoginEnabled,
	}
}

func (h *AuthHandler) loginView(c *gin.Context) *view.LoginView {
	return view.NewLoginView(h.api, h.sessions, middleware.GetTab(c), h.demoLoginEnabled, h.metrics)
}

// Login godoc
// POST /login
// Credential login, or signup when mode=signup. Success redirects to the
// dashboard; failure re-renders the form with the server's message.
func (h *AuthHandler) Login(c *gin.Context) {
	v := h.loginView(c)
	v.SetSignUp(c.PostForm("mode") == "signup")

	req := model.LoginRequest{
		Email:    c.PostForm("email"),
		Password: c.PostForm("password"),
	}

	s, err := v.Submit(c.Request.Context(), req)
	if err != nil {
		h.logger(c).Info().Err(err).Bool("signup", v.SignUp).Str("email", req.Email).Msg("Login failed")
		pg := h.page(c, "Login")
		pg.Login = v
		h.render(c, statusFor(err), "login.html", pg)
		return
	}

	h.logger(c).Info().Str("role", string(s.Role)).Str("user_id", s.UserID).Bool("signup", v.SignUp).Msg("Logged in")
	c.Redirect(http.StatusSeeOther, "/")
}

// Demo godoc
// POST /demo/:role
// Non-production login that fabricates a session without the backend.
func (h *AuthHandler) Demo(c *gin.Context) {
	if !h.demoLoginEnabled {
		h.fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	v := h.loginView(c)
	s, err := v.Demo(c.Request.Context(), model.Role(c.Param("role")))
	switch {
	case errors.Is(err, session.ErrUnknownRole):
		h.fail(c, http.StatusBadRequest, response.ErrValidation)
		return
	case err != nil:
		h.logger(c).Error().Err(err).Msg("Demo login failed")
		h.fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	h.logger(c).Warn().Str("role", string(s.Role)).Msg("Demo session started")
	c.Redirect(http.StatusSeeOther, "/")
}

// Logout godoc
// POST /logout
// Clears the tab's session whatever its role.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.sessions.Logout(c.Request.Context(), middleware.GetTab(c)); err != nil {
		h.logger(c).Error().Err(err).Msg("Logout failed")
		h.fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}
