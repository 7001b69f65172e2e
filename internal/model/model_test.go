package model

import (
	"encoding/json"
	"testing"
)

func TestAuthResponseUserIDForms(t *testing.T) {
	cases := map[string]string{
		`{"token":"t","role":"admin","userId":7}`:     "7",
		`{"token":"t","role":"admin","userId":"u-9"}`: "u-9",
		`{"token":"t","role":"admin","userId":null}`:  "",
	}
	for body, want := range cases {
		var resp AuthResponse
		if err := json.Unmarshal([]byte(body), &resp); err != nil {
			t.Fatalf("unmarshal %s: %v", body, err)
		}
		if got := resp.Session().UserID; got != want {
			t.Errorf("%s: userId = %q, want %q", body, got, want)
		}
	}
}

func TestAuthResponseRejectsObjectUserID(t *testing.T) {
	var resp AuthResponse
	if err := json.Unmarshal([]byte(`{"userId":{"x":1}}`), &resp); err == nil {
		t.Fatal("expected error for object userId")
	}
}

func TestSessionHelpers(t *testing.T) {
	var nilSession *Session
	if nilSession.Authenticated() {
		t.Error("nil session must not be authenticated")
	}
	if (&Session{Role: RoleAdmin}).Authenticated() {
		t.Error("session without token must not be authenticated")
	}
	if !(&Session{Token: "x", Role: RoleAdmin}).IsAdmin() {
		t.Error("admin role not detected")
	}
	if Role("teacher").Valid() {
		t.Error("unknown role reported valid")
	}
}

func TestTimestampLayouts(t *testing.T) {
	var e Enrollment
	body := `{"id":1,"studentEmail":"a@b.c","courseId":3,"enrollmentDate":"2024-05-01T10:11:12.123456"}`
	if err := json.Unmarshal([]byte(body), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.EnrollmentDate.DateString() != "2024-05-01" {
		t.Errorf("date = %q", e.EnrollmentDate.DateString())
	}

	if err := json.Unmarshal([]byte(`{"enrollmentDate":"not a date"}`), &e); err != nil {
		t.Fatalf("bad date should not fail decoding: %v", err)
	}
	if e.EnrollmentDate.DateString() != "" {
		t.Errorf("bad date should render empty, got %q", e.EnrollmentDate.DateString())
	}
}
