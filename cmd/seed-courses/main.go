package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/miniuni/miniuni-web/internal/apiclient"
	"github.com/miniuni/miniuni-web/internal/catalog"
	"github.com/miniuni/miniuni-web/internal/config"
	"github.com/miniuni/miniuni-web/internal/logger"
	"github.com/miniuni/miniuni-web/internal/model"
	"golang.org/x/term"
)

// Seeds the starter catalog through the API as an admin. Does nothing when
// courses already exist.
func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Component(logger.Setup(cfg.LogLevel, cfg.LogFormat), "seed_courses")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// ─── Admin Credentials ─────────────────────────────────────────────
	email := os.Getenv("SEED_ADMIN_EMAIL")
	password := os.Getenv("SEED_ADMIN_PASSWORD")

	if email == "" {
		reader := bufio.NewReader(os.Stdin)
		fmt.Print("Admin Email: ")
		email, _ = reader.ReadString('\n')
		email = strings.TrimSpace(email)
	}
	if password == "" {
		fmt.Print("Admin Password: ")
		bytePassword, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read password")
		}
		password = string(bytePassword)
	}

	api := apiclient.New(cfg.APIBaseURL, apiclient.WithLogger(log))

	resp, err := api.Login(ctx, model.LoginRequest{Email: email, Password: password})
	if err != nil {
		log.Fatal().Err(err).Str("email", email).Msg("Admin login failed")
	}
	if resp.Role != model.RoleAdmin {
		log.Fatal().Str("email", email).Str("role", string(resp.Role)).Msg("Account is not an admin")
	}

	// ─── Seed ──────────────────────────────────────────────────────────
	created, err := catalog.Seed(ctx, api.WithSession(resp.Session()), catalog.Default)
	if err != nil {
		log.Fatal().Err(err).Int("created", len(created)).Msg("Seeding failed")
	}
	if len(created) == 0 {
		log.Info().Msg("Catalog already has courses, nothing to seed")
		return
	}
	for _, c := range created {
		log.Info().Int("id", c.ID).Str("name", c.Name).Msg("Course created")
	}
	log.Info().Int("count", len(created)).Msg("Seeding complete")
}
