package view

import (
	"context"
	"errors"

	"github.com/miniuni/miniuni-web/internal/apiclient"
	"github.com/miniuni/miniuni-web/internal/metrics"
	"github.com/miniuni/miniuni-web/internal/model"
	"github.com/miniuni/miniuni-web/internal/session"
	"github.com/miniuni/miniuni-web/internal/validator"
)

// ErrDemoDisabled is returned by Demo when demo login is switched off.
var ErrDemoDisabled = errors.New("demo login is disabled")

// ErrMissingCredentials is the validation failure for an empty email or password.
var ErrMissingCredentials = errors.New("email and password are required")

// AuthAPI is the part of the backend the login screen needs.
type AuthAPI interface {
	Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error)
	Signup(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error)
}

// SessionWriter persists a freshly obtained session for a tab.
type SessionWriter interface {
	Login(ctx context.Context, tabID string, s *model.Session) error
}

// LoginState is the position in the login flow.
type LoginState int

const (
	Anonymous LoginState = iota
	Authenticating
	Authenticated
)

func (s LoginState) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// LoginView drives the login / signup / demo screen.
type LoginView struct {
	api      AuthAPI
	sessions SessionWriter
	metrics  *metrics.Metrics
	tabID    string

	State       LoginState
	SignUp      bool
	DemoEnabled bool
	Email       string
	Error       string
}

// NewLoginView creates an anonymous login view for tabID.
func NewLoginView(api AuthAPI, sessions SessionWriter, tabID string, demoEnabled bool, m *metrics.Metrics) *LoginView {
	return &LoginView{
		api:         api,
		sessions:    sessions,
		metrics:     m,
		tabID:       tabID,
		DemoEnabled: demoEnabled,
	}
}

// SetSignUp switches between the login and signup forms. Switching clears
// any error on display.
func (v *LoginView) SetSignUp(on bool) {
	if v.SignUp != on {
		v.Error = ""
	}
	v.SignUp = on
}

// Submit sends the credentials to /auth/login or /auth/signup depending on the
// mode. On success the response is stored verbatim as the tab's session.
func (v *LoginView) Submit(ctx context.Context, req model.LoginRequest) (*model.Session, error) {
	v.Email = req.Email
	v.Error = ""

	if fields := validator.Struct(&req); fields != nil {
		v.Error = "Email and password are required"
		return nil, ErrMissingCredentials
	}

	kind := metrics.LoginPassword
	call := v.api.Login
	if v.SignUp {
		kind = metrics.LoginSignup
		call = v.api.Signup
	}

	v.State = Authenticating
	resp, err := call(ctx, req)
	if err != nil {
		v.State = Anonymous
		v.Error = loginErrorMessage(err)
		v.metrics.ObserveLogin(kind, metrics.OutcomeFailure)
		return nil, err
	}

	s := resp.Session()
	if err := v.sessions.Login(ctx, v.tabID, s); err != nil {
		v.State = Anonymous
		v.Error = apiclient.DefaultErrorMessage
		v.metrics.ObserveLogin(kind, metrics.OutcomeFailure)
		return nil, err
	}

	v.State = Authenticated
	v.metrics.ObserveLogin(kind, metrics.OutcomeSuccess)
	return s, nil
}

// Demo fabricates a session for role with no backend round trip. The result
// is not a real credential; see session.NewDemoSession.
func (v *LoginView) Demo(ctx context.Context, role model.Role) (*model.Session, error) {
	if !v.DemoEnabled {
		return nil, ErrDemoDisabled
	}
	s, err := session.NewDemoSession(role)
	if err != nil {
		return nil, err
	}
	if err := v.sessions.Login(ctx, v.tabID, s); err != nil {
		v.Error = apiclient.DefaultErrorMessage
		v.metrics.ObserveLogin(metrics.LoginDemo, metrics.OutcomeFailure)
		return nil, err
	}
	v.State = Authenticated
	v.metrics.ObserveLogin(metrics.LoginDemo, metrics.OutcomeSuccess)
	return s, nil
}

// loginErrorMessage shows the backend's message when it sent one; anything
// else, transport failures included, reads "Error occurred".
func loginErrorMessage(err error) string {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return apiclient.DefaultErrorMessage
}
