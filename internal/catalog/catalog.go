// Package catalog holds the starter course catalog and the routine that
// loads it into an empty backend.
package catalog

import (
	"context"
	"fmt"

	"github.com/miniuni/miniuni-web/internal/model"
)

// Default is the starter catalog of the Georgian university demo.
var Default = []model.CreateCourseRequest{
	{
		Name:        "კალკულუსი",
		Description: "გამოთვლების საფუძველი - ლიმიტები, წარმოებულები, ინტეგრალები",
		Instructor:  "ა.გ. მათემატიკა",
	},
	{
		Name:        "წრფივი ალგებრა",
		Description: "ვექტორები, მატრიცები, სიმეტრიული სისტემები",
		Instructor:  "ბ.კ. ალგებრა",
	},
	{
		Name:        "დისკრეტული სტრუქტურები",
		Description: "სიმრავლეები, გრაფები, ლოგიკა, მთელი რიცხვები",
		Instructor:  "გ.მ. დისკრეტული მათემატიკა",
	},
	{
		Name:        "პითონის საწყისები",
		Description: "პითონის ენის საფუძვლები, ფუნქციები, მოდულები",
		Instructor:  "დ.ს. პროგრამირება",
	},
	{
		Name:        "ჯავას საწყისები",
		Description: "ობიექტ-ორიენტირებული პროგრამირება, კლასები, მიმოწერა",
		Instructor:  "ე.ი. ჯავა",
	},
}

// API is what seeding needs from an admin-authenticated client.
type API interface {
	ListCourses(ctx context.Context) ([]model.Course, error)
	CreateCourse(ctx context.Context, req model.CreateCourseRequest) (*model.Course, error)
}

// Seed creates courses when the catalog is empty and returns the created
// courses. A non-empty catalog is left untouched.
func Seed(ctx context.Context, api API, courses []model.CreateCourseRequest) ([]model.Course, error) {
	existing, err := api.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	if len(existing) > 0 {
		return nil, nil
	}

	created := make([]model.Course, 0, len(courses))
	for _, req := range courses {
		c, err := api.CreateCourse(ctx, req)
		if err != nil {
			return created, fmt.Errorf("create %q: %w", req.Name, err)
		}
		created = append(created, *c)
	}
	return created, nil
}
