package view

import (
	"context"
	"strconv"
	"sync"

	"github.com/miniuni/miniuni-web/internal/apiclient"
	"github.com/miniuni/miniuni-web/internal/model"
	"github.com/miniuni/miniuni-web/internal/validator"
)

// UnknownCourse labels an enrollment whose course is not in the catalog.
const UnknownCourse = "Unknown Course"

// AdminAPI is the part of the backend the admin dashboard needs.
type AdminAPI interface {
	ListCourses(ctx context.Context) ([]model.Course, error)
	ListEnrollments(ctx context.Context) ([]model.Enrollment, error)
	CreateCourse(ctx context.Context, req model.CreateCourseRequest) (*model.Course, error)
	DeleteCourse(ctx context.Context, id int) error
}

// CourseRow is a course with its enrollment count.
type CourseRow struct {
	model.Course
	Enrolled int
}

// EnrollmentRow is an enrollment joined to its course name.
type EnrollmentRow struct {
	model.Enrollment
	Course string
	Date   string
}

// AdminView is the admin dashboard.
type AdminView struct {
	api AdminAPI
	lt  *Lifetime

	Courses     []model.Course
	Enrollments []model.Enrollment
	Error       string
	Loaded      bool

	ShowForm  bool
	Form      model.CreateCourseRequest
	FormError string
}

// NewAdminView creates an unmounted admin dashboard.
func NewAdminView(api AdminAPI, lt *Lifetime) *AdminView {
	return &AdminView{api: api, lt: lt}
}

// Mount fetches all courses and all enrollments concurrently.
func (v *AdminView) Mount() {
	var (
		wg             sync.WaitGroup
		courses        []model.Course
		enrollments    []model.Enrollment
		coursesErr     error
		enrollmentsErr error
	)
	ctx := v.lt.Context()

	wg.Add(2)
	go func() {
		defer wg.Done()
		courses, coursesErr = v.api.ListCourses(ctx)
	}()
	go func() {
		defer wg.Done()
		enrollments, enrollmentsErr = v.api.ListEnrollments(ctx)
	}()
	wg.Wait()

	if !v.lt.Alive() {
		return
	}

	if coursesErr != nil {
		v.Error = "Failed to load courses: " + apiclient.Message(coursesErr)
	} else {
		v.Courses = courses
	}
	if enrollmentsErr != nil {
		if v.Error == "" {
			v.Error = "Failed to load enrollments: " + apiclient.Message(enrollmentsErr)
		}
	} else {
		v.Enrollments = enrollments
	}
	v.Loaded = true
}

// MountCourses fetches the catalog alone, for pages that only need course
// names.
func (v *AdminView) MountCourses() {
	courses, err := v.api.ListCourses(v.lt.Context())
	if !v.lt.Alive() {
		return
	}
	if err != nil {
		v.Error = "Failed to load courses: " + apiclient.Message(err)
	} else {
		v.Courses = courses
	}
	v.Loaded = true
}

// CreateCourse validates the form and, when complete, posts it once. A
// validation failure keeps the form open with its values and sends nothing.
// On success the form is cleared and hidden.
func (v *AdminView) CreateCourse(form model.CreateCourseRequest) Outcome {
	v.FormError = ""
	v.Form = form
	v.ShowForm = true

	if fields := validator.Struct(&form); fields != nil {
		v.FormError = "Please fill all fields"
		return Outcome{Invalid: true}
	}

	key := "create-course:" + form.Name + "\x00" + form.Description + "\x00" + form.Instructor
	_, err := v.lt.once(key, func(ctx context.Context) (any, error) {
		return v.api.CreateCourse(ctx, form)
	})
	if !v.lt.Alive() {
		return discarded(err)
	}
	if err != nil {
		v.FormError = "Failed to add course: " + apiclient.Message(err)
		return Outcome{Err: err}
	}

	v.Form = model.CreateCourseRequest{}
	v.ShowForm = false
	return success("Course added successfully!")
}

// DeleteCourse deletes id when confirmed. Declining sends nothing. The caller
// re-mounts afterwards because the backend cascades to enrollments.
func (v *AdminView) DeleteCourse(id int, confirmed bool) Outcome {
	if !confirmed {
		return Outcome{Cancelled: true}
	}

	_, err := v.lt.once("delete-course:"+strconv.Itoa(id), func(ctx context.Context) (any, error) {
		return nil, v.api.DeleteCourse(ctx, id)
	})
	if !v.lt.Alive() {
		return discarded(err)
	}
	if err != nil {
		return failure("Failed to delete course: "+apiclient.Message(err), err)
	}
	return success("Course deleted successfully!")
}

// Course looks a course up in the last fetched catalog.
func (v *AdminView) Course(id int) (model.Course, bool) {
	for _, c := range v.Courses {
		if c.ID == id {
			return c, true
		}
	}
	return model.Course{}, false
}

// CourseRows lists courses with the number of enrollments each has.
func (v *AdminView) CourseRows() []CourseRow {
	counts := make(map[int]int, len(v.Courses))
	for _, e := range v.Enrollments {
		counts[e.CourseID]++
	}
	rows := make([]CourseRow, 0, len(v.Courses))
	for _, c := range v.Courses {
		rows = append(rows, CourseRow{Course: c, Enrolled: counts[c.ID]})
	}
	return rows
}

// EnrollmentRows joins every enrollment to the course name from the last
// fetched catalog. Enrollments whose course is gone get UnknownCourse.
func (v *AdminView) EnrollmentRows() []EnrollmentRow {
	byID := make(map[int]model.Course, len(v.Courses))
	for _, c := range v.Courses {
		byID[c.ID] = c
	}
	rows := make([]EnrollmentRow, 0, len(v.Enrollments))
	for _, e := range v.Enrollments {
		name := UnknownCourse
		if c, ok := byID[e.CourseID]; ok {
			name = c.Name
		}
		rows = append(rows, EnrollmentRow{Enrollment: e, Course: name, Date: e.EnrollmentDate.DateString()})
	}
	return rows
}
