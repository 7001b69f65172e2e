package export

import (
	"bytes"
	"testing"

	"github.com/miniuni/miniuni-web/internal/model"
	"github.com/miniuni/miniuni-web/internal/view"
	"github.com/xuri/excelize/v2"
)

func TestWriteEnrollments(t *testing.T) {
	enrollments := []view.EnrollmentRow{
		{Enrollment: model.Enrollment{ID: 1, StudentEmail: "a@uni.ge", CourseID: 1}, Course: "Math", Date: "2025-01-15"},
		{Enrollment: model.Enrollment{ID: 2, StudentEmail: "b@uni.ge", CourseID: 9}, Course: view.UnknownCourse, Date: "2025-01-16"},
	}
	courses := []view.CourseRow{
		{Course: model.Course{ID: 1, Name: "Math", Instructor: "Dr. A"}, Enrolled: 1},
	}

	var buf bytes.Buffer
	if err := WriteEnrollments(&buf, enrollments, courses); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(EnrollmentsSheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("enrollment rows = %d, want 3", len(rows))
	}
	if rows[0][0] != "Student" || rows[2][1] != view.UnknownCourse || rows[1][2] != "2025-01-15" {
		t.Errorf("rows = %v", rows)
	}

	rows, err = f.GetRows(CoursesSheet)
	if err != nil {
		t.Fatalf("course rows: %v", err)
	}
	if len(rows) != 2 || rows[1][1] != "Math" || rows[1][3] != "1" {
		t.Errorf("course rows = %v", rows)
	}
}

func TestWriteEnrollmentsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEnrollments(&buf, nil, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	if got := f.GetSheetList(); len(got) != 2 || got[0] != EnrollmentsSheet {
		t.Errorf("sheets = %v", got)
	}
}
