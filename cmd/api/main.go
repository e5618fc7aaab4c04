package main

import (
	"context"
	"net/http"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	server "hr_reviews/internal/adapters/http_server"
	"hr_reviews/internal/adapters/observability"
	redisad "hr_reviews/internal/adapters/redis"
	"hr_reviews/internal/app"
	"hr_reviews/internal/domain"
	"hr_reviews/internal/shared"
	"hr_reviews/internal/storage/sqlstore"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(reg)

	// db
	dialect, err := sqlstore.ParseDialect(cfg.DBDriver)
	if err != nil {
		log.Fatal().Err(err).Msg("bad DB_DRIVER")
	}
	policy, err := sqlstore.ParseStaleRefPolicy(cfg.StaleRefs)
	if err != nil {
		log.Fatal().Err(err).Msg("bad STALE_REFS")
	}
	db, err := sqlstore.Open(dialect, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Str("driver", string(dialect)).Msg("database connection ok")

	store := sqlstore.New(db, dialect, sqlstore.WithLogger(log.Logger), sqlstore.WithStaleRefs(policy))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := store.CreateSchema(ctx); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("create schema failed")
	}
	cancel()

	// cache is optional: run without it when redis is unreachable
	var cache domain.Cache
	rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := rc.Ping(pingCtx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, serving without cache")
		_ = rc.Close()
	} else {
		cache = rc
		defer rc.Close()
	}
	pingCancel()

	svc := app.NewReviewService(store.Reviews(), cache, cfg.CacheTTL)

	// http
	srv := server.New(cfg.RateRPS)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Reviews: svc})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
