package model

import (
	"strings"
	"time"
)

// Enrollment is a student's association with a course as listed for admins.
type Enrollment struct {
	ID             int       `json:"id"`
	StudentID      int       `json:"studentId,omitempty"`
	StudentEmail   string    `json:"studentEmail"`
	CourseID       int       `json:"courseId"`
	CourseName     string    `json:"courseName,omitempty"`
	EnrollmentDate Timestamp `json:"enrollmentDate"`
}

// MyEnrollment is an element of /enrollments/my-courses.
type MyEnrollment struct {
	ID             int       `json:"id"`
	CourseID       int       `json:"courseId"`
	Course         *Course   `json:"course,omitempty"`
	EnrollmentDate Timestamp `json:"enrollmentDate"`
}

// EnrollRequest is the POST /enrollments body.
type EnrollRequest struct {
	CourseID int `json:"courseId"`
}

// Timestamp parses the backend's ISO-8601 dates, which may lack a zone.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// UnmarshalJSON leaves the zero time for null, empty or unparseable values so
// that one odd date cannot fail a whole listing.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	t.Time = time.Time{}
	return nil
}

// MarshalJSON writes RFC 3339, or null for the zero time.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(time.RFC3339) + `"`), nil
}

// DateString renders the calendar date, or an empty string when unknown.
func (t Timestamp) DateString() string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
