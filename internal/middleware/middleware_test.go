package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/miniuni/miniuni-web/internal/model"
)

var secret = []byte("test-secret")

func init() {
	gin.SetMode(gin.TestMode)
}

func tabEngine() *gin.Engine {
	r := gin.New()
	r.Use(Tab(TabConfig{CookieName: "miniuni_tab", Secret: secret}))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetTab(c)) })
	return r
}

func TestTabIssuesCookie(t *testing.T) {
	r := tabEngine()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "miniuni_tab" || !cookies[0].HttpOnly {
		t.Fatalf("cookies = %+v", cookies)
	}
	id, err := ParseTabToken(cookies[0].Value, secret)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id != w.Body.String() {
		t.Errorf("tab id %q, body %q", id, w.Body.String())
	}
}

func TestTabReusesValidCookie(t *testing.T) {
	token, err := IssueTabToken("7b0c8a52-2f4e-4e57-9d0a-1f3e2f1b6c11", secret, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "miniuni_tab", Value: token})
	w := httptest.NewRecorder()
	tabEngine().ServeHTTP(w, req)

	if w.Body.String() != "7b0c8a52-2f4e-4e57-9d0a-1f3e2f1b6c11" {
		t.Errorf("tab = %q", w.Body.String())
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("valid cookie should not be reissued")
	}
}

func TestTabRejectsForgedCookie(t *testing.T) {
	forged, _ := IssueTabToken("7b0c8a52-2f4e-4e57-9d0a-1f3e2f1b6c11", []byte("other"), time.Now())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "miniuni_tab", Value: forged})
	w := httptest.NewRecorder()
	tabEngine().ServeHTTP(w, req)

	if w.Body.String() == "7b0c8a52-2f4e-4e57-9d0a-1f3e2f1b6c11" {
		t.Error("forged tab id accepted")
	}
	if len(w.Result().Cookies()) != 1 {
		t.Error("expected a fresh cookie")
	}
}

func TestParseTabTokenRejectsBadID(t *testing.T) {
	token, _ := IssueTabToken("not-a-uuid", secret, time.Now())
	if _, err := ParseTabToken(token, secret); err == nil {
		t.Error("expected error for malformed id")
	}
}

type stubSessions map[string]*model.Session

func (s stubSessions) Current(_ context.Context, tab string) (*model.Session, error) {
	if tab == "broken" {
		return nil, errors.New("store down")
	}
	return s[tab], nil
}

func roleEngine(tab string, guard gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(ContextKeyTab, tab); c.Next() })
	r.Use(LoadSession(stubSessions{
		"admin":   {Token: "a", Role: model.RoleAdmin},
		"student": {Token: "s", Role: model.RoleStudent},
		"other":   {Token: "o", Role: "teacher"},
	}))
	r.POST("/", guard, func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func TestRoleGuards(t *testing.T) {
	cases := []struct {
		name  string
		tab   string
		guard gin.HandlerFunc
		want  int
	}{
		{"admin allowed", "admin", RequireAdmin(), http.StatusNoContent},
		{"student blocked from admin", "student", RequireAdmin(), http.StatusSeeOther},
		{"logged out blocked", "nobody", RequireSession(), http.StatusSeeOther},
		{"student allowed", "student", RequireStudent(), http.StatusNoContent},
		{"unknown role is a student", "other", RequireStudent(), http.StatusNoContent},
		{"admin blocked from student", "admin", RequireStudent(), http.StatusSeeOther},
		{"store failure", "broken", RequireSession(), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			roleEngine(tc.tab, tc.guard).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
			if w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestRoleGuardJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	roleEngine("student", RequireAdmin()).ServeHTTP(w, req)

	if w.Code != http.StatusForbidden || !strings.Contains(w.Body.String(), "ADMIN_ACCESS_ONLY") {
		t.Errorf("status = %d body = %s", w.Code, w.Body.String())
	}
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := NewRateLimiter(ctx, 2, time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.Allow("ip") || !rl.Allow("ip") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("ip") {
		t.Error("third request should be limited")
	}
	if !rl.Allow("other") {
		t.Error("limits are per key")
	}

	now = now.Add(time.Minute)
	if !rl.Allow("ip") {
		t.Error("bucket should refill after the interval")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := NewRateLimiter(ctx, 1, time.Minute)

	r := gin.New()
	r.POST("/login", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 2)
	for i := range codes {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes[i] = w.Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("codes = %v", codes)
	}
}

func TestBrotliCompressesLargeBodies(t *testing.T) {
	body := strings.Repeat("miniuni ", 512)
	r := gin.New()
	r.Use(BrotliWithConfig(BrotliConfig{Quality: 5, MinLength: 1024, Skipper: SkipPaths("/skip")}))
	r.GET("/big", func(c *gin.Context) { c.String(http.StatusOK, body) })
	r.GET("/small", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/skip", func(c *gin.Context) { c.String(http.StatusOK, body) })

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Accept-Encoding", "gzip, br")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := get("/big")
	if w.Header().Get("Content-Encoding") != "br" {
		t.Fatalf("encoding = %q", w.Header().Get("Content-Encoding"))
	}
	plain, err := io.ReadAll(brotli.NewReader(bytes.NewReader(w.Body.Bytes())))
	if err != nil {
		t.Fatal(err)
	}
	if string(plain) != body {
		t.Error("round trip mismatch")
	}

	if w := get("/small"); w.Header().Get("Content-Encoding") != "" || w.Body.String() != "ok" {
		t.Errorf("small body: encoding=%q body=%q", w.Header().Get("Content-Encoding"), w.Body.String())
	}
	if w := get("/skip"); w.Header().Get("Content-Encoding") != "" {
		t.Error("skipped path was compressed")
	}
}

func TestNoStore(t *testing.T) {
	r := gin.New()
	r.GET("/", NoStore(), func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("Cache-Control = %q", w.Header().Get("Cache-Control"))
	}
}
