package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/miniuni/miniuni-web/internal/apiclient"
	"github.com/miniuni/miniuni-web/internal/metrics"
	"github.com/miniuni/miniuni-web/internal/middleware"
	"github.com/miniuni/miniuni-web/internal/session"
	"github.com/miniuni/miniuni-web/internal/view"
	"github.com/rs/zerolog"
)

// DashboardHandler serves the root route: login screen when logged out,
// otherwise the dashboard for the session's role.
type DashboardHandler struct {
	pages
	metrics          *metrics.Metrics
	demoLoginEnabled bool
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(
	api *apiclient.Client,
	sessions *session.Manager,
	guard *view.Guard,
	m *metrics.Metrics,
	demoLoginEnabled bool,
	log zerolog.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		pages:            newPages(api, sessions, guard, log, "dashboard_handler"),
		metrics:          m,
		demoLoginEnabled: demoLoginEnabled,
	}
}

// Root godoc
// GET /
// Any role other than admin gets the student dashboard.
func (h *DashboardHandler) Root(c *gin.Context) {
	s := middleware.GetSession(c)

	switch {
	case !s.Authenticated():
		v := view.NewLoginView(h.api, h.sessions, middleware.GetTab(c), h.demoLoginEnabled, h.metrics)
		v.SetSignUp(c.Query("mode") == "signup")
		pg := h.page(c, "Login")
		pg.Login = v
		h.render(c, http.StatusOK, "login.html", pg)

	case s.IsAdmin():
		v := view.NewAdminView(h.api.WithSession(s), h.lifetime(c, s))
		v.ShowForm = c.Query("form") == "course"
		v.Mount()
		if c.Request.Context().Err() != nil {
			return
		}
		pg := h.page(c, "Admin Dashboard")
		pg.Admin = v
		h.render(c, http.StatusOK, "admin.html", pg)

	default:
		v := view.NewStudentView(h.api.WithSession(s), h.lifetime(c, s))
		v.Mount()
		if c.Request.Context().Err() != nil {
			return
		}
		pg := h.page(c, "Student Dashboard")
		pg.Student = v
		h.render(c, http.StatusOK, "student.html", pg)
	}
}
