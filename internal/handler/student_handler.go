package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/miniuni/miniuni-web/internal/apiclient"
	"github.com/miniuni/miniuni-web/internal/middleware"
	"github.com/miniuni/miniuni-web/internal/response"
	"github.com/miniuni/miniuni-web/internal/session"
	"github.com/miniuni/miniuni-web/internal/view"
	"github.com/rs/zerolog"
)

// StudentHandler handles student actions.
type StudentHandler struct {
	pages
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(api *apiclient.Client, sessions *session.Manager, guard *view.Guard, log zerolog.Logger) *StudentHandler {
	return &StudentHandler{pages: newPages(api, sessions, guard, log, "student_handler")}
}

// Enroll godoc
// POST /student/enroll/:id
func (h *StudentHandler) Enroll(c *gin.Context) {
	courseID, err := strconv.Atoi(c.Param("id"))
	if err != nil || courseID <= 0 {
		h.fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	s := middleware.GetSession(c)
	v := view.NewStudentView(h.api.WithSession(s), h.lifetime(c, s))
	h.finish(c, "enroll", v.Enroll(courseID))
}
