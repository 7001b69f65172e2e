package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/miniuni/miniuni-web/internal/apiclient"
	"github.com/miniuni/miniuni-web/internal/middleware"
	"github.com/miniuni/miniuni-web/internal/model"
	"github.com/miniuni/miniuni-web/internal/response"
	"github.com/miniuni/miniuni-web/internal/session"
	"github.com/miniuni/miniuni-web/internal/view"
	"github.com/rs/zerolog"
)

// Page is the data every template receives.
type Page struct {
	Title    string
	Session  *model.Session
	Demo     bool
	Flash    *session.Flash
	FlashTTL time.Duration

	Login   *view.LoginView
	Student *view.StudentView
	Admin   *view.AdminView

	// Delete confirmation.
	CourseID   int
	CourseName string

	// Error page.
	Message string
}

// pages holds what every page handler needs to build views and render them.
type pages struct {
	api      *apiclient.Client
	sessions *session.Manager
	guard    *view.Guard
	log      zerolog.Logger
}

func newPages(api *apiclient.Client, sessions *session.Manager, guard *view.Guard, log zerolog.Logger, component string) pages {
	return pages{
		api:      api,
		sessions: sessions,
		guard:    guard,
		log:      log.With().Str("component", component).Logger(),
	}
}

// page starts the template data for the current request, picking up the
// tab's live banner if any.
func (p *pages) page(c *gin.Context, title string) Page {
	s := middleware.GetSession(c)
	pg := Page{
		Title:    title,
		Session:  s,
		Demo:     session.IsDemo(s),
		FlashTTL: p.sessions.FlashTTL(),
	}
	f, err := p.sessions.Flash(c.Request.Context(), middleware.GetTab(c))
	if err != nil {
		p.logger(c).Warn().Err(err).Msg("Failed to read flash")
	}
	pg.Flash = f
	return pg
}

// lifetime binds a view to this request and to the session it started with.
func (p *pages) lifetime(c *gin.Context, s *model.Session) *view.Lifetime {
	tabID := middleware.GetTab(c)
	token := ""
	if s != nil {
		token = s.Token
	}
	alive := func(ctx context.Context) bool {
		return p.sessions.StillCurrent(ctx, tabID, token)
	}
	return view.NewLifetime(c.Request.Context(), tabID, alive, p.guard)
}

// finish applies an action outcome: the banner is stored for the tab and the
// browser goes back to the dashboard, which re-fetches its data.
func (p *pages) finish(c *gin.Context, action string, out view.Outcome) {
	log := p.logger(c)
	switch {
	case out.Discarded:
		log.Debug().Str("action", action).AnErr("upstream_err", out.Err).Msg("Result discarded, view no longer current")
	case apiclient.IsStatus(out.Err, http.StatusUnauthorized):
		log.Warn().Err(out.Err).Str("action", action).Bool("demo", session.IsDemo(middleware.GetSession(c))).Msg("Backend rejected the session token")
	case out.Err != nil:
		log.Warn().Err(out.Err).Str("action", action).Msg("Action failed")
	case out.Cancelled:
		log.Debug().Str("action", action).Msg("Action cancelled")
	default:
		log.Info().Str("action", action).Msg("Action succeeded")
	}

	if out.Flash != nil && !out.Discarded {
		if err := p.sessions.Notify(c.Request.Context(), middleware.GetTab(c), *out.Flash); err != nil {
			log.Error().Err(err).Msg("Failed to store flash")
		}
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// stale sends the browser back to the dashboard when a view's lifetime ended
// before its data arrived. Nothing is written if the client is already gone.
func (p *pages) stale(c *gin.Context) {
	if c.Request.Context().Err() != nil {
		c.Abort()
		return
	}
	p.logger(c).Debug().Msg("View no longer current, redirecting")
	c.Redirect(http.StatusSeeOther, "/")
}

func (p *pages) render(c *gin.Context, status int, name string, pg Page) {
	c.HTML(status, name, pg)
}

// fail answers with the error envelope for JSON clients and the error page
// for browsers.
func (p *pages) fail(c *gin.Context, status int, code response.ErrCode) {
	if response.WantsJSON(c) {
		response.Fail(c, status, code)
		return
	}
	pg := p.page(c, http.StatusText(status))
	pg.Message = response.GetMessage(code)
	p.render(c, status, "error.html", pg)
}

func (p *pages) logger(c *gin.Context) *zerolog.Logger {
	l := p.log.With().
		Str("request_id", response.RequestID(c)).
		Str("tab", middleware.GetTab(c)).
		Logger()
	return &l
}

// statusFor maps an action error to the status of the re-rendered form.
func statusFor(err error) int {
	var apiErr *apiclient.Error
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, view.ErrMissingCredentials):
		return http.StatusBadRequest
	case errors.As(err, &apiErr):
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status
		}
		return http.StatusBadGateway
	default:
		var te *apiclient.TransportError
		if errors.As(err, &te) {
			return http.StatusBadGateway
		}
		return http.StatusInternalServerError
	}
}
