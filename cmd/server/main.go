package main // Entry point package

import (
	"os"

	"github.com/joho/godotenv" // .env loading for local development
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/armanhn/elearning-marketplace/internal/config"
	"github.com/armanhn/elearning-marketplace/internal/database"
	"github.com/armanhn/elearning-marketplace/internal/handler"
	"github.com/armanhn/elearning-marketplace/internal/queue"
	"github.com/armanhn/elearning-marketplace/internal/repository"
	"github.com/armanhn/elearning-marketplace/internal/router"
)

func main() {
	_ = godotenv.Load() // optional; real deployments set env vars directly

	cfg := config.Load()
	if cfg.Env == "dev" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("mysql connect failed")
	}

	rdb, err := config.NewRedisClient()
	if err != nil {
		// Redis holds the revocation markers; without it logout cannot be
		// honored, so refuse to start.
		log.Fatal().Err(err).Msg("redis connect failed")
	}

	users := repository.NewUserRepo(db)
	revoked := repository.NewRevocationRepo(rdb)
	auth := handler.NewAuthHandler(cfg, users, revoked, queue.NewPublisher())

	go queue.StartRegistrationConsumer()

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterAuth(e, auth, revoked, rdb)

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
	if err := e.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
