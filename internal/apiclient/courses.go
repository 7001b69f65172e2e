package apiclient

import (
	"context"
	"strconv"

	"github.com/miniuni/miniuni-web/internal/model"
)

// ListCourses returns the full catalog.
func (c *Client) ListCourses(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	if err := c.Get(ctx, "/courses", &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// CreateCourse adds a course. Admin only on the backend.
func (c *Client) CreateCourse(ctx context.Context, req model.CreateCourseRequest) (*model.Course, error) {
	var course model.Course
	if err := c.Post(ctx, "/courses", req, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// DeleteCourse removes a course; the backend cascades its enrollments.
func (c *Client) DeleteCourse(ctx context.Context, id int) error {
	return c.Delete(ctx, "/courses/:id", "/courses/"+strconv.Itoa(id), nil)
}
