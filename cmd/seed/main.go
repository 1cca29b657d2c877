// Command seed provisions a user and an API token for local development.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"resume-tailor/internal/adapter/repository"
	"resume-tailor/internal/config"
	"resume-tailor/internal/infrastructure/migration"
	infra "resume-tailor/pkg/infrastructure"
	"resume-tailor/pkg/logger"

	"github.com/google/uuid"
)

func main() {
	userFlag := flag.String("user", "", "existing user id to issue a token for (default: new user)")
	flag.Parse()

	log := logger.New("resume-tailor-seed")

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("load configuration")
	}

	ctx := context.Background()
	pool, err := infra.NewProfilePool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect profile database")
	}
	defer pool.Close()

	if err := migration.RunMigrations(ctx, pool, log); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}

	userID := uuid.New()
	if *userFlag != "" {
		userID, err = uuid.Parse(*userFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("parse user id")
		}
	}

	token, err := newToken()
	if err != nil {
		log.Fatal().Err(err).Msg("generate token")
	}

	if err := repository.NewTokenRepo(pool).Issue(ctx, userID, token); err != nil {
		log.Fatal().Err(err).Msg("issue token")
	}

	fmt.Fprintf(os.Stdout, "user:  %s\ntoken: %s\n", userID, token)
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
