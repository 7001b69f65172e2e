// Command miniuni drives the MiniUni views from a terminal. The session lives
// in the configured backend under MINIUNI_TAB, so a terminal behaves like one
// browser tab.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/miniuni/miniuni-web/internal/apiclient"
	"github.com/miniuni/miniuni-web/internal/config"
	"github.com/miniuni/miniuni-web/internal/logger"
	"github.com/miniuni/miniuni-web/internal/metrics"
	"github.com/miniuni/miniuni-web/internal/model"
	"github.com/miniuni/miniuni-web/internal/session"
	"github.com/miniuni/miniuni-web/internal/validator"
	"github.com/miniuni/miniuni-web/internal/view"
	"golang.org/x/term"
)

const usage = `usage: miniuni <command>

  login             sign in with email and password
  signup            create a student account
  demo <role>       demo session (student or admin)
  whoami            show the current session
  courses           list courses (students see enrollment marks)
  enroll <id>       enroll in a course
  logout            clear the session`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(2)
	}

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Component(logger.Setup(cfg.LogLevel, cfg.LogFormat), "cli")
	validator.Setup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// ─── Session Backend ───────────────────────────────────────────────
	backend, closeBackend, err := session.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open session backend")
	}
	defer closeBackend()

	m := metrics.New()
	api := apiclient.New(cfg.APIBaseURL, apiclient.WithLogger(log))
	sessions := session.NewManager(backend, cfg.FlashTTL, m, log)

	tabID := os.Getenv("MINIUNI_TAB")
	if tabID == "" {
		tabID = "cli"
	}

	c := &cli{api: api, sessions: sessions, tabID: tabID, demo: cfg.DemoLoginEnabled, metrics: m}
	if err := c.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

type cli struct {
	api      *apiclient.Client
	sessions *session.Manager
	tabID    string
	demo     bool
	metrics  *metrics.Metrics
}

func (c *cli) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login", "signup":
		return c.login(ctx, cmd == "signup")
	case "demo":
		if len(args) != 1 {
			return fmt.Errorf("demo needs a role")
		}
		return c.demoLogin(ctx, model.Role(args[0]))
	case "whoami":
		return c.whoami(ctx)
	case "courses":
		return c.courses(ctx)
	case "enroll":
		if len(args) != 1 {
			return fmt.Errorf("enroll needs a course id")
		}
		id, err := strconv.Atoi(args[0])
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid course id %q", args[0])
		}
		return c.enroll(ctx, id)
	case "logout":
		if err := c.sessions.Logout(ctx, c.tabID); err != nil {
			return err
		}
		fmt.Println("Logged out")
		return nil
	default:
		fmt.Println(usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (c *cli) login(ctx context.Context, signUp bool) error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)

	fmt.Print("Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	v := view.NewLoginView(c.api, c.sessions, c.tabID, c.demo, c.metrics)
	v.SetSignUp(signUp)
	s, err := v.Submit(ctx, model.LoginRequest{Email: email, Password: string(bytePassword)})
	if err != nil {
		return fmt.Errorf("%s", v.Error)
	}
	fmt.Printf("Signed in as %s (%s)\n", email, s.Role)
	return nil
}

func (c *cli) demoLogin(ctx context.Context, role model.Role) error {
	v := view.NewLoginView(c.api, c.sessions, c.tabID, c.demo, c.metrics)
	s, err := v.Demo(ctx, role)
	if err != nil {
		return err
	}
	fmt.Printf("Demo %s session started\n", s.Role)
	return nil
}

func (c *cli) current(ctx context.Context) (*model.Session, error) {
	s, err := c.sessions.Current(ctx, c.tabID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("not logged in")
	}
	return s, nil
}

func (c *cli) whoami(ctx context.Context) error {
	s, err := c.current(ctx)
	if err != nil {
		return err
	}
	demo := ""
	if session.IsDemo(s) {
		demo = " [demo]"
	}
	fmt.Printf("tab=%s role=%s user=%s%s\n", c.tabID, s.Role, s.UserID, demo)
	return nil
}

func (c *cli) lifetime(ctx context.Context, s *model.Session) *view.Lifetime {
	return view.NewLifetime(ctx, c.tabID, func(ctx context.Context) bool {
		return c.sessions.StillCurrent(ctx, c.tabID, s.Token)
	}, nil)
}

func (c *cli) courses(ctx context.Context) error {
	s, err := c.current(ctx)
	if err != nil {
		return err
	}
	api := c.api.WithSession(s)

	if s.IsAdmin() {
		v := view.NewAdminView(api, c.lifetime(ctx, s))
		v.Mount()
		if v.Error != "" {
			return fmt.Errorf("%s", v.Error)
		}
		for _, row := range v.CourseRows() {
			fmt.Printf("%4d  %-30s %-24s %d enrolled\n", row.ID, row.Name, row.Instructor, row.Enrolled)
		}
		return nil
	}

	v := view.NewStudentView(api, c.lifetime(ctx, s))
	v.Mount()
	if v.Error != "" {
		return fmt.Errorf("%s", v.Error)
	}
	for _, card := range v.Cards() {
		mark := " "
		if card.Enrolled {
			mark = "✓"
		}
		fmt.Printf("%s %4d  %-30s %s\n", mark, card.ID, card.Name, card.Instructor)
	}
	fmt.Printf("My Enrollments (%d)\n", v.EnrolledCount())
	return nil
}

func (c *cli) enroll(ctx context.Context, courseID int) error {
	s, err := c.current(ctx)
	if err != nil {
		return err
	}
	if s.IsAdmin() {
		return fmt.Errorf("student access only")
	}

	v := view.NewStudentView(c.api.WithSession(s), c.lifetime(ctx, s))
	out := v.Enroll(courseID)
	if out.Flash != nil {
		fmt.Println(out.Flash.Text)
	}
	return out.Err
}
