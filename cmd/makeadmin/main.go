// makeadmin promotes a registered account to administrator:
//
//	makeadmin --email someone@example.com
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	usersvc "scrapmarket-backend/internal/application/user"
	"scrapmarket-backend/internal/config"
	"scrapmarket-backend/internal/infrastructure/database"
	"scrapmarket-backend/internal/middleware"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

var errNoEmail = errors.New("--email is required")

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	email, err := parseArgs(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
	if err := run(context.Background(), email); err != nil {
		log.Fatal().Err(err).Str("email", email).Msg("promotion failed")
	}
}

func parseArgs(args []string) (string, error) {
	var email string
	fs := pflag.NewFlagSet("makeadmin", pflag.ContinueOnError)
	fs.StringVar(&email, "email", "", "email of the account to promote")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if email == "" {
		return "", errNoEmail
	}
	return email, nil
}

func run(ctx context.Context, email string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errors.New("no database configured for APP_ENV=" + cfg.Env)
	}
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	svc := &usersvc.Service{DB: db}
	u, err := svc.MakeAdmin(ctx, email)
	if err != nil {
		return err
	}
	log.Info().Str("user_id", u.UserID.String()).Str("username", u.Username).Msg("account is now an admin")

	if cfg.RedisURL == "" {
		log.Warn().Msg("REDIS_URL not set, existing sessions keep is_admin=false until next login")
		return nil
	}
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return err
	}
	rdb := redis.NewClient(opt)
	defer rdb.Close()
	n, err := middleware.DestroyUserSessions(ctx, rdb, u.UserID.String())
	if err != nil {
		return fmt.Errorf("destroy sessions: %w", err)
	}
	log.Info().Int("sessions", n).Msg("existing sessions destroyed")
	return nil
}
