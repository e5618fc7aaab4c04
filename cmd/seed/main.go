package main

import (
	"context"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"hr_reviews/internal/adapters/observability"
	"hr_reviews/internal/seed"
	"hr_reviews/internal/shared"
	"hr_reviews/internal/storage/sqlstore"
)

func main() {
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("driver", cfg.DBDriver).
		Str("file", cfg.SeedFile).
		Bool("reset", cfg.SeedReset).
		Msg("seeder starting")

	dialect, err := sqlstore.ParseDialect(cfg.DBDriver)
	if err != nil {
		log.Fatal().Err(err).Msg("bad DB_DRIVER")
	}
	db, err := sqlstore.Open(dialect, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	ds := seed.Default()
	if cfg.SeedFile != "" {
		f, err := os.Open(cfg.SeedFile)
		if err != nil {
			log.Fatal().Err(err).Msg("open seed file failed")
		}
		ds, err = seed.Decode(f)
		_ = f.Close()
		if err != nil {
			log.Fatal().Err(err).Msg("seed file is invalid")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store := sqlstore.New(db, dialect, sqlstore.WithLogger(log.Logger))
	n, err := seed.Apply(ctx, store, ds, cfg.SeedReset)
	if err != nil {
		log.Fatal().Err(err).
			Int("departments", n.Departments).
			Int("employees", n.Employees).
			Int("reviews", n.Reviews).
			Msg("seeding failed")
	}
	log.Info().
		Int("departments", n.Departments).
		Int("employees", n.Employees).
		Int("reviews", n.Reviews).
		Msg("seeding completed")
}
