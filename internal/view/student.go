package view

import (
	"context"
	"strconv"
	"sync"

	"github.com/miniuni/miniuni-web/internal/apiclient"
	"github.com/miniuni/miniuni-web/internal/model"
)

// StudentAPI is the part of the backend the student dashboard needs.
type StudentAPI interface {
	ListCourses(ctx context.Context) ([]model.Course, error)
	MyCourses(ctx context.Context) ([]model.MyEnrollment, error)
	Enroll(ctx context.Context, courseID int) (*model.Enrollment, error)
}

// CourseCard is one catalog entry as the student sees it.
type CourseCard struct {
	model.Course
	Enrolled bool
}

// StudentView is the student dashboard.
type StudentView struct {
	api StudentAPI
	lt  *Lifetime

	Courses     []model.Course
	EnrolledIDs []int
	Error       string
	Loaded      bool
}

// NewStudentView creates an unmounted student dashboard.
func NewStudentView(api StudentAPI, lt *Lifetime) *StudentView {
	return &StudentView{api: api, lt: lt}
}

// Mount fetches the catalog and the caller's enrollments concurrently. The
// two reads are independent: either may fail without affecting the other.
// A course loading error takes precedence on the banner.
func (v *StudentView) Mount() {
	var (
		wg         sync.WaitGroup
		courses    []model.Course
		mine       []model.MyEnrollment
		coursesErr error
		mineErr    error
	)
	ctx := v.lt.Context()

	wg.Add(2)
	go func() {
		defer wg.Done()
		courses, coursesErr = v.api.ListCourses(ctx)
	}()
	go func() {
		defer wg.Done()
		mine, mineErr = v.api.MyCourses(ctx)
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

	if mineErr != nil {
		if v.Error == "" {
			v.Error = "Failed to load enrollments"
		}
	} else {
		v.EnrolledIDs = make([]int, 0, len(mine))
		for _, e := range mine {
			v.EnrolledIDs = append(v.EnrolledIDs, e.CourseID)
		}
	}
	v.Loaded = true
}

// IsEnrolled is a membership test against the last fetched enrollment list.
func (v *StudentView) IsEnrolled(courseID int) bool {
	for _, id := range v.EnrolledIDs {
		if id == courseID {
			return true
		}
	}
	return false
}

// Cards pairs every course with its enrolled flag.
func (v *StudentView) Cards() []CourseCard {
	cards := make([]CourseCard, 0, len(v.Courses))
	for _, c := range v.Courses {
		cards = append(cards, CourseCard{Course: c, Enrolled: v.IsEnrolled(c.ID)})
	}
	return cards
}

// EnrolledCount is the number of enrollments in the last fetch.
func (v *StudentView) EnrolledCount() int {
	return len(v.EnrolledIDs)
}

// Enroll posts an enrollment for courseID. Concurrent duplicate submissions
// from the same tab share one request. The refreshed "Enrolled" state comes
// from the next Mount; there is no optimistic update.
func (v *StudentView) Enroll(courseID int) Outcome {
	_, err := v.lt.once("enroll:"+strconv.Itoa(courseID), func(ctx context.Context) (any, error) {
		return v.api.Enroll(ctx, courseID)
	})
	if !v.lt.Alive() {
		return discarded(err)
	}
	if err != nil {
		return failure("Failed to enroll: "+apiclient.Message(err), err)
	}
	return success("Successfully enrolled!")
}
