package handler

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/miniuni/miniuni-web/internal/apiclient"
	"github.com/miniuni/miniuni-web/internal/export"
	"github.com/miniuni/miniuni-web/internal/middleware"
	"github.com/miniuni/miniuni-web/internal/model"
	"github.com/miniuni/miniuni-web/internal/response"
	"github.com/miniuni/miniuni-web/internal/session"
	"github.com/miniuni/miniuni-web/internal/validator"
	"github.com/miniuni/miniuni-web/internal/view"
	"github.com/rs/zerolog"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminHandler handles course management and the enrollment export.
type AdminHandler struct {
	pages
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(api *apiclient.Client, sessions *session.Manager, guard *view.Guard, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{pages: newPages(api, sessions, guard, log, "admin_handler")}
}

func (h *AdminHandler) adminView(c *gin.Context) *view.AdminView {
	s := middleware.GetSession(c)
	return view.NewAdminView(h.api.WithSession(s), h.lifetime(c, s))
}

func courseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	return id, err == nil && id > 0
}

// CreateCourse godoc
// POST /admin/courses
// An incomplete or rejected form is re-rendered open with its values.
func (h *AdminHandler) CreateCourse(c *gin.Context) {
	var form model.CreateCourseRequest
	fields := validator.BindForm(c, &form)

	v := h.adminView(c)
	out := v.CreateCourse(form)
	if out.Discarded || out.Flash != nil {
		h.finish(c, "create_course", out)
		return
	}

	if out.Invalid && response.WantsJSON(c) {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}

	status := http.StatusUnprocessableEntity
	if out.Err != nil {
		h.logger(c).Warn().Err(out.Err).Str("course", form.Name).Msg("Create course failed")
		status = statusFor(out.Err)
	}
	v.Mount()
	pg := h.page(c, "Admin Dashboard")
	pg.Admin = v
	h.render(c, status, "admin.html", pg)
}

// ConfirmDelete godoc
// GET /admin/courses/:id/delete
func (h *AdminHandler) ConfirmDelete(c *gin.Context) {
	id, ok := courseID(c)
	if !ok {
		h.fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	v := h.adminView(c)
	v.MountCourses()
	if !v.Loaded {
		h.stale(c)
		return
	}
	name := view.UnknownCourse
	if course, found := v.Course(id); found {
		name = course.Name
	}

	pg := h.page(c, "Delete course")
	pg.CourseID = id
	pg.CourseName = name
	h.render(c, http.StatusOK, "confirm_delete.html", pg)
}

// DeleteCourse godoc
// POST /admin/courses/:id/delete
// Deletes only when confirm=yes.
func (h *AdminHandler) DeleteCourse(c *gin.Context) {
	id, ok := courseID(c)
	if !ok {
		h.fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	confirmed := c.PostForm("confirm") == "yes"
	h.finish(c, "delete_course", h.adminView(c).DeleteCourse(id, confirmed))
}

// ExportEnrollments godoc
// GET /admin/enrollments.xlsx
func (h *AdminHandler) ExportEnrollments(c *gin.Context) {
	v := h.adminView(c)
	v.Mount()
	if !v.Loaded {
		h.stale(c)
		return
	}
	if v.Error != "" {
		h.logger(c).Warn().Str("error", v.Error).Msg("Export aborted")
		h.fail(c, http.StatusBadGateway, response.ErrUpstream)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteEnrollments(&buf, v.EnrollmentRows(), v.CourseRows()); err != nil {
		h.logger(c).Error().Err(err).Msg("Failed to build workbook")
		h.fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="enrollments.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
