// Package export renders admin dashboard data as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/miniuni/miniuni-web/internal/view"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the enrollments workbook.
const (
	EnrollmentsSheet = "Enrollments"
	CoursesSheet     = "Courses"
)

var (
	enrollmentHeader = []interface{}{"Student", "Course", "Enrollment Date"}
	courseHeader     = []interface{}{"ID", "Course", "Instructor", "Enrolled"}
)

// WriteEnrollments writes an XLSX workbook with one sheet of enrollments and
// one sheet of courses with their enrollment counts.
func WriteEnrollments(w io.Writer, enrollments []view.EnrollmentRow, courses []view.CourseRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), EnrollmentsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeRows(f, EnrollmentsSheet, enrollmentHeader, len(enrollments), func(i int) []interface{} {
		e := enrollments[i]
		return []interface{}{e.StudentEmail, e.Course, e.Date}
	}); err != nil {
		return err
	}

	if _, err := f.NewSheet(CoursesSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := writeRows(f, CoursesSheet, courseHeader, len(courses), func(i int) []interface{} {
		c := courses[i]
		return []interface{}{c.ID, c.Name, c.Instructor, c.Enrolled}
	}); err != nil {
		return err
	}

	if err := f.SetColWidth(EnrollmentsSheet, "A", "B", 32); err != nil {
		return err
	}
	if err := f.SetColWidth(CoursesSheet, "B", "C", 32); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, header []interface{}, n int, row func(i int) []interface{}) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("%s header: %w", sheet, err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := row(i)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}
