package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/miniuni/miniuni-web/internal/fakeapi"
	"github.com/miniuni/miniuni-web/internal/metrics"
	"github.com/miniuni/miniuni-web/internal/model"
)

func TestLoginReturnsSessionVerbatim(t *testing.T) {
	api := fakeapi.New(t)
	id, token := api.AddUser("ana@uni.ge", "secret1", model.RoleAdmin)

	resp, err := New(api.URL()).Login(context.Background(), model.LoginRequest{Email: "ana@uni.ge", Password: "secret1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	s := resp.Session()
	if s.Token != token || s.Role != model.RoleAdmin || s.UserID != "1" || id != 1 {
		t.Errorf("session = %+v, want token %q role admin userId 1", s, token)
	}
}

func TestSignupSendsStudentRole(t *testing.T) {
	api := fakeapi.New(t)

	resp, err := New(api.URL()).Signup(context.Background(), model.LoginRequest{Email: "new@uni.ge", Password: "pw1234"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if resp.Role != model.RoleStudent {
		t.Errorf("role = %q", resp.Role)
	}
	call, ok := api.LastCall(http.MethodPost, "/auth/signup")
	if !ok {
		t.Fatal("signup not recorded")
	}
	if want := `{"email":"new@uni.ge","password":"pw1234","role":"student"}`; call.Body != want {
		t.Errorf("body = %s, want %s", call.Body, want)
	}
}

func TestErrorCarriesServerMessage(t *testing.T) {
	api := fakeapi.New(t)

	_, err := New(api.URL()).Login(context.Background(), model.LoginRequest{Email: "nobody@uni.ge", Password: "x"})

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %T %v, want *Error", err, err)
	}
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Errorf("status = %d", apiErr.Status)
	}
	if Message(err) != "Invalid email or password" {
		t.Errorf("message = %q", Message(err))
	}
}

func TestBearerTokenOnlyWhenSessionBound(t *testing.T) {
	api := fakeapi.New(t)
	_, token := api.AddUser("stu@uni.ge", "pw", model.RoleStudent)
	base := New(api.URL())

	if _, err := base.ListCourses(context.Background()); err != nil {
		t.Fatalf("list courses: %v", err)
	}
	if call, _ := api.LastCall(http.MethodGet, "/courses"); call.Auth != "" {
		t.Errorf("unbound client sent Authorization %q", call.Auth)
	}

	authed := base.WithSession(&model.Session{Token: token, Role: model.RoleStudent, UserID: "1"})
	if _, err := authed.MyCourses(context.Background()); err != nil {
		t.Fatalf("my courses: %v", err)
	}
	if call, _ := api.LastCall(http.MethodGet, "/enrollments/my-courses"); call.Auth != "Bearer "+token {
		t.Errorf("Authorization = %q", call.Auth)
	}

	if base.WithSession(nil).token != "" {
		t.Error("nil session must produce an unauthenticated client")
	}
}

func TestEnrollAndDuplicate(t *testing.T) {
	api := fakeapi.New(t)
	course := api.AddCourse("CS101", "Intro", "Dr. K")
	_, token := api.AddUser("stu@uni.ge", "pw", model.RoleStudent)
	c := New(api.URL()).WithSession(&model.Session{Token: token})

	e, err := c.Enroll(context.Background(), course.ID)
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if e.CourseID != course.ID || e.EnrollmentDate.IsZero() {
		t.Errorf("enrollment = %+v", e)
	}
	if call, _ := api.LastCall(http.MethodPost, "/enrollments"); call.Body != `{"courseId":1}` {
		t.Errorf("body = %s", call.Body)
	}

	_, err = c.Enroll(context.Background(), course.ID)
	if Message(err) != "Already enrolled in this course" {
		t.Errorf("duplicate enroll message = %q", Message(err))
	}
}

func TestDeleteCourseUsesIDPath(t *testing.T) {
	api := fakeapi.New(t)
	course := api.AddCourse("CS101", "Intro", "Dr. K")
	_, token := api.AddUser("admin@uni.ge", "pw", model.RoleAdmin)
	c := New(api.URL()).WithSession(&model.Session{Token: token})

	if err := c.DeleteCourse(context.Background(), course.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if api.Calls(http.MethodDelete, "/courses/1") != 1 {
		t.Error("expected exactly one DELETE /courses/1")
	}
	if len(api.CourseIDs()) != 0 {
		t.Error("course still present")
	}
}

func TestExtractMessage(t *testing.T) {
	cases := []struct {
		payload string
		want    string
	}{
		{`{"message":"Token required"}`, "Token required"},
		{`{"error":"boom"}`, "boom"},
		{`{"error":{"code":"X","message":"nested"}}`, "nested"},
		{`{"message":"","error":"second"}`, "second"},
		{`not json`, DefaultErrorMessage},
		{`{}`, DefaultErrorMessage},
		{`{"data":null,"error":{"code":"INTERNAL_ERROR"}}`, DefaultErrorMessage},
		{`{"message":"first","error":"ignored when present"}`, "first"},
	}
	for _, tc := range cases {
		if got := extractMessage([]byte(tc.payload)); got != tc.want {
			t.Errorf("extractMessage(%s) = %q, want %q", tc.payload, got, tc.want)
		}
	}
}

func TestTransportErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).ListCourses(context.Background())

	var tErr *TransportError
	if !errors.As(err, &tErr) {
		t.Fatalf("err = %T %v, want *TransportError", err, err)
	}
	if Message(err) != "Network Error" {
		t.Errorf("message = %q", Message(err))
	}
}

func TestCancelledContext(t *testing.T) {
	api := fakeapi.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(api.URL()).ListCourses(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if Message(err) != "Request cancelled" {
		t.Errorf("message = %q", Message(err))
	}
}

func TestHealth(t *testing.T) {
	api := fakeapi.New(t)
	m := metrics.NewWithRegistry(metrics.NewRegistry(false))

	if err := New(api.URL(), WithMetrics(m)).Health(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
}
