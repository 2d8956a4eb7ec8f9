package main

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"golift/adapters/excel"
	"golift/adapters/postgres"
	"golift/adapters/rng"
	"golift/internal"
	"golift/internal/config"
	"golift/ports"
	"golift/ui"
)

func main() {
	// .env is optional; environment variables win
	_ = godotenv.Load()

	logger := internal.NewDefaultLogger()
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration: %v", err)
		return
	}

	var repo ports.ExperimentRepository
	if cfg.Database.URL != "" {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			logger.Error("failed to connect to database: %v", err)
			return
		}
		defer db.Close()

		pgRepo := postgres.NewExperimentRepository(db).(*postgres.ExperimentRepositoryImpl)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := pgRepo.EnsureSchema(ctx); err != nil {
			logger.Error("failed to ensure schema: %v", err)
			return
		}
		repo = pgRepo
		logger.Info("experiment repository connected")
	} else {
		logger.Warn("DATABASE_URL not set; serving demo data only")
	}

	app := ui.NewApp(ui.Options{
		Engine:   cfg.Engine,
		Import:   cfg.Import,
		RNG:      rng.NewSeededSource(),
		Repo:     repo,
		Importer: excel.NewResultsReader(),
		Logger:   logger,
	})

	addr := ":" + cfg.Server.Port
	logger.Info("listening on %s", addr)
	if err := http.ListenAndServe(addr, app.Handler()); err != nil {
		logger.Error("server failed: %v", err)
	}
}
