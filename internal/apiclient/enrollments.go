package apiclient

import (
	"context"

	"github.com/miniuni/miniuni-web/internal/model"
)

// ListEnrollments returns every enrollment. Admin only on the backend.
func (c *Client) ListEnrollments(ctx context.Context) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	if err := c.Get(ctx, "/enrollments", &enrollments); err != nil {
		return nil, err
	}
	return enrollments, nil
}

// MyCourses returns the caller's enrollments.
func (c *Client) MyCourses(ctx context.Context) ([]model.MyEnrollment, error) {
	var mine []model.MyEnrollment
	if err := c.Get(ctx, "/enrollments/my-courses", &mine); err != nil {
		return nil, err
	}
	return mine, nil
}

// Enroll enrolls the caller in courseID.
func (c *Client) Enroll(ctx context.Context, courseID int) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	if err := c.Post(ctx, "/enrollments", model.EnrollRequest{CourseID: courseID}, &enrollment); err != nil {
		return nil, err
	}
	return &enrollment, nil
}
