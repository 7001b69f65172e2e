package model

import "time"

// Course is an offering in the catalog.
type Course struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Instructor  string     `json:"instructor"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// CreateCourseRequest is the admin "Add Course" form and the POST /courses body.
type CreateCourseRequest struct {
	Name        string `json:"name" form:"name" binding:"required"`
	Description string `json:"description" form:"description" binding:"required"`
	Instructor  string `json:"instructor" form:"instructor" binding:"required"`
}
