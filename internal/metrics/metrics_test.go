package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveAPI(t *testing.T) {
	m := NewWithRegistry(NewRegistry(false))

	m.ObserveAPI("GET", "/courses", 200, 10*time.Millisecond)
	m.ObserveAPI("GET", "/courses", 200, 20*time.Millisecond)
	m.ObserveAPI("POST", "/enrollments", 0, time.Millisecond)

	if got := testutil.ToFloat64(m.apiRequests.WithLabelValues("GET", "/courses", "200")); got != 2 {
		t.Errorf("GET /courses 200 = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.apiRequests.WithLabelValues("POST", "/enrollments", "error")); got != 1 {
		t.Errorf("transport failures = %v, want 1", got)
	}
}

func TestObserveLoginAndLogout(t *testing.T) {
	m := NewWithRegistry(NewRegistry(false))

	m.ObserveLogin(LoginDemo, OutcomeSuccess)
	m.ObserveLogin(LoginPassword, OutcomeFailure)
	m.ObserveLogout()

	if got := testutil.ToFloat64(m.logins.WithLabelValues(LoginDemo, OutcomeSuccess)); got != 1 {
		t.Errorf("demo logins = %v", got)
	}
	if got := testutil.ToFloat64(m.logouts); got != 1 {
		t.Errorf("logouts = %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/courses", 500, time.Second)
	m.ObserveLogin(LoginSignup, OutcomeSuccess)
	m.ObserveLogout()
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := NewWithRegistry(NewRegistry(false))
	m.ObserveLogout()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if !strings.Contains(rec.Body.String(), "miniuni_session_logouts_total 1") {
		t.Errorf("exposition missing logout counter:\n%s", rec.Body.String())
	}
}
