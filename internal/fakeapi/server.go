// Package fakeapi is an in-process stand-in for the MiniUni backend used by
// tests. It keeps users, courses and enrollments in memory, enforces the same
// rules as the real API (admin-only routes, one enrollment per student and
// course, cascade on course delete) and records every call it receives.
package fakeapi

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/miniuni/miniuni-web/internal/model"
)

// Call is one request received by the fake.
type Call struct {
	Method string
	Path   string
	Auth   string
	Body   string
}

type user struct {
	id       int
	email    string
	password string
	role     model.Role
	token    string
}

type enrollment struct {
	id        int
	studentID int
	courseID  int
	date      time.Time
}

type failure struct {
	status  int
	message string
}

// Server is a running fake backend.
type Server struct {
	srv *httptest.Server

	mu          sync.Mutex
	users       map[string]*user
	tokens      map[string]*user
	courses     []model.Course
	enrollments []enrollment
	seq         map[string]int
	calls       []Call
	failures    map[string]failure
	holds       map[string]chan struct{}
	cascade     bool
}

// New starts a fake backend that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		users:    make(map[string]*user),
		tokens:   make(map[string]*user),
		failures: make(map[string]failure),
		holds:    make(map[string]chan struct{}),
		seq:      make(map[string]int),
		cascade:  true,
	}

	r := gin.New()
	r.Use(s.record)
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
		api.POST("/auth/login", s.login)
		api.POST("/auth/signup", s.signup)
		api.GET("/courses", s.listCourses)
		api.POST("/courses", s.auth, s.createCourse)
		api.DELETE("/courses/:id", s.auth, s.deleteCourse)
		api.GET("/enrollments", s.auth, s.listEnrollments)
		api.GET("/enrollments/my-courses", s.auth, s.myCourses)
		api.POST("/enrollments", s.auth, s.enroll)
	}

	s.srv = httptest.NewServer(r)
	t.Cleanup(s.srv.Close)
	return s
}

// URL is the API base URL, including the /api prefix.
func (s *Server) URL() string {
	return s.srv.URL + "/api"
}

// AddUser registers a user and returns its id and a valid bearer token.
func (s *Server) AddUser(email, password string, role model.Role) (int, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.addUserLocked(email, password, role)
	return u.id, u.token
}

// AddCourse inserts a course directly, bypassing auth and call recording.
func (s *Server) AddCourse(name, description, instructor string) model.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addCourseLocked(name, description, instructor)
}

// AddEnrollment inserts an enrollment directly.
func (s *Server) AddEnrollment(studentID, courseID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enrollments = append(s.enrollments, enrollment{
		id: s.nextIDLocked("enrollments"), studentID: studentID, courseID: courseID, date: time.Now().UTC(),
	})
}

// SetCascade controls whether deleting a course removes its enrollments.
func (s *Server) SetCascade(on bool) {
	s.mu.Lock()
	s.cascade = on
	s.mu.Unlock()
}

// FailNext makes the next request to method+path answer status with message.
func (s *Server) FailNext(method, path string, status int, message string) {
	s.mu.Lock()
	s.failures[method+" "+path] = failure{status: status, message: message}
	s.mu.Unlock()
}

// Hold blocks requests to method+path until the returned release is called.
func (s *Server) Hold(method, path string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.holds[method+" "+path] = ch
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.holds, method+" "+path)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Calls counts recorded requests matching method and path.
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

// TotalCalls counts all recorded requests.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// LastCall returns the most recent request to method+path.
func (s *Server) LastCall(method, path string) (Call, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.calls) - 1; i >= 0; i-- {
		if s.calls[i].Method == method && s.calls[i].Path == path {
			return s.calls[i], true
		}
	}
	return Call{}, false
}

// ResetCalls forgets recorded requests.
func (s *Server) ResetCalls() {
	s.mu.Lock()
	s.calls = nil
	s.mu.Unlock()
}

// CourseIDs lists the ids currently in the catalog.
func (s *Server) CourseIDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int, 0, len(s.courses))
	for _, c := range s.courses {
		ids = append(ids, c.ID)
	}
	return ids
}

// ─── Middleware ────────────────────────────────────────────────────────────

func (s *Server) record(c *gin.Context) {
	var body []byte
	if c.Request.Body != nil {
		body, _ = io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(strings.NewReader(string(body)))
	}
	path := strings.TrimPrefix(c.Request.URL.Path, "/api")
	key := c.Request.Method + " " + path

	s.mu.Lock()
	s.calls = append(s.calls, Call{
		Method: c.Request.Method,
		Path:   path,
		Auth:   c.GetHeader("Authorization"),
		Body:   string(body),
	})
	f, failing := s.failures[key]
	delete(s.failures, key)
	hold := s.holds[key]
	s.mu.Unlock()

	if hold != nil {
		<-hold
	}
	if failing {
		c.AbortWithStatusJSON(f.status, gin.H{"message": f.message})
		return
	}
	c.Next()
}

const ctxUser = "fake_user"

func (s *Server) auth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token required"})
		return
	}
	token := strings.TrimPrefix(header, "Bearer ")

	s.mu.Lock()
	u := s.tokens[token]
	s.mu.Unlock()
	if u == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
		return
	}
	c.Set(ctxUser, u)
	c.Next()
}

func currentUser(c *gin.Context) *user {
	u, _ := c.Get(ctxUser)
	return u.(*user)
}

// ─── Handlers ──────────────────────────────────────────────────────────────

type credentials struct {
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
}

func (s *Server) login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password required"})
		return
	}
	s.mu.Lock()
	u := s.users[req.Email]
	s.mu.Unlock()
	if u == nil || u.password != req.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return
	}
	c.JSON(http.StatusOK, authBody(u))
}

func (s *Server) signup(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password required"})
		return
	}
	if req.Role == "" {
		req.Role = model.RoleStudent
	}
	s.mu.Lock()
	if s.users[req.Email] != nil {
		s.mu.Unlock()
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email already exists"})
		return
	}
	u := s.addUserLocked(req.Email, req.Password, req.Role)
	s.mu.Unlock()
	c.JSON(http.StatusCreated, authBody(u))
}

func (s *Server) listCourses(c *gin.Context) {
	s.mu.Lock()
	out := append([]model.Course{}, s.courses...)
	s.mu.Unlock()
	c.JSON(http.StatusOK, out)
}

func (s *Server) createCourse(c *gin.Context) {
	if currentUser(c).role != model.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"message": "Admin access required"})
		return
	}
	var req model.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Name, description, and instructor required"})
		return
	}
	s.mu.Lock()
	course := s.addCourseLocked(req.Name, req.Description, req.Instructor)
	s.mu.Unlock()
	c.JSON(http.StatusCreated, course)
}

func (s *Server) deleteCourse(c *gin.Context) {
	if currentUser(c).role != model.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"message": "Admin access required"})
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Course not found"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i, course := range s.courses {
		if course.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Course not found"})
		return
	}
	s.courses = append(s.courses[:idx], s.courses[idx+1:]...)
	if s.cascade {
		kept := s.enrollments[:0]
		for _, e := range s.enrollments {
			if e.courseID != id {
				kept = append(kept, e)
			}
		}
		s.enrollments = kept
	}
	c.JSON(http.StatusOK, gin.H{"message": "Course deleted"})
}

func (s *Server) listEnrollments(c *gin.Context) {
	if currentUser(c).role != model.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"message": "Admin access required"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]gin.H, 0, len(s.enrollments))
	for _, e := range s.enrollments {
		out = append(out, gin.H{
			"id":             e.id,
			"studentId":      e.studentID,
			"studentEmail":   s.emailLocked(e.studentID),
			"courseId":       e.courseID,
			"courseName":     s.courseNameLocked(e.courseID),
			"enrollmentDate": e.date.Format("2006-01-02T15:04:05.000000"),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) myCourses(c *gin.Context) {
	u := currentUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]gin.H, 0)
	for _, e := range s.enrollments {
		if e.studentID != u.id {
			continue
		}
		out = append(out, gin.H{
			"id":             e.id,
			"courseId":       e.courseID,
			"enrollmentDate": e.date.Format("2006-01-02T15:04:05.000000"),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) enroll(c *gin.Context) {
	var req model.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.CourseID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Course ID required"})
		return
	}
	u := currentUser(c)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.courseNameLocked(req.CourseID) == "" {
		c.JSON(http.StatusNotFound, gin.H{"message": "Course not found"})
		return
	}
	for _, e := range s.enrollments {
		if e.studentID == u.id && e.courseID == req.CourseID {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Already enrolled in this course"})
			return
		}
	}
	e := enrollment{id: s.nextIDLocked("enrollments"), studentID: u.id, courseID: req.CourseID, date: time.Now().UTC()}
	s.enrollments = append(s.enrollments, e)
	c.JSON(http.StatusCreated, gin.H{
		"id":             e.id,
		"studentId":      e.studentID,
		"courseId":       e.courseID,
		"enrollmentDate": e.date.Format("2006-01-02T15:04:05.000000"),
	})
}

// ─── Helpers (callers hold s.mu) ───────────────────────────────────────────

// nextIDLocked hands out 1-based ids per table, like a SERIAL column.
func (s *Server) nextIDLocked(table string) int {
	s.seq[table]++
	return s.seq[table]
}

func (s *Server) addUserLocked(email, password string, role model.Role) *user {
	id := s.nextIDLocked("users")
	u := &user{
		id:       id,
		email:    email,
		password: password,
		role:     role,
		token:    fmt.Sprintf("tok-%d", id),
	}
	s.users[email] = u
	s.tokens[u.token] = u
	return u
}

func (s *Server) addCourseLocked(name, description, instructor string) model.Course {
	now := time.Now().UTC()
	course := model.Course{
		ID:          s.nextIDLocked("courses"),
		Name:        name,
		Description: description,
		Instructor:  instructor,
		CreatedAt:   &now,
	}
	s.courses = append(s.courses, course)
	return course
}

func (s *Server) emailLocked(userID int) string {
	for _, u := range s.users {
		if u.id == userID {
			return u.email
		}
	}
	return ""
}

func (s *Server) courseNameLocked(courseID int) string {
	for _, course := range s.courses {
		if course.ID == courseID {
			return course.Name
		}
	}
	return ""
}

func authBody(u *user) gin.H {
	return gin.H{
		"token":  u.token,
		"userId": u.id,
		"role":   u.role,
		"email":  u.email,
	}
}
