// Command server wires the authentication core into a runnable HTTP
// service: configuration from the environment, a Postgres-backed or
// in-memory user store, periodic background sweeps, and the auth module
// mounted on a chi router.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	authmodule "github.com/toolsite/server/modules/auth"
	"github.com/toolsite/server/pkg/background"
	"github.com/toolsite/server/pkg/config"
	"github.com/toolsite/server/pkg/httpserver"
	"github.com/toolsite/server/pkg/logger"
	"github.com/toolsite/server/pkg/pg"
	"github.com/toolsite/server/svc/auth"
)

type appConfig struct {
	Logger logger.Config
	HTTP   httpserver.Config
	Auth   auth.Config

	// DatabaseURL selects the durable store: set it to use Postgres,
	// leave it empty for the in-memory store (single-binary runs, demos).
	DatabaseURL string `env:"PG_CONN_URL"`

	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"5s"`
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.FromConfig(cfg.Logger, logger.WithAttrs(logger.Component("server")))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	repo, cleanup, err := buildRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	svc := auth.NewService(cfg.Auth, repo, auth.WithLogger(log))

	// Expired sessions and stale permission entries are collected by the
	// background store on a fixed cadence.
	tasks := background.New(background.WithLogger(log))
	defer tasks.Close()
	tasks.AddSweeper(svc.Sessions())
	tasks.AddSweeper(background.SweeperFunc(svc.SweepPermissionCache))
	go tasks.Run(ctx, cfg.SweepInterval)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Mount("/api/auth", authmodule.Router(svc))

	log.Info("starting http server", slog.String("addr", cfg.HTTP.Addr))
	return httpserver.New(cfg.HTTP, httpserver.WithLogger(log)).Run(ctx, r)
}

// buildRepository picks the durable store. With PG_CONN_URL set it connects
// to Postgres and applies pending migrations; otherwise an in-memory store
// backs the process, losing all accounts on restart.
func buildRepository(ctx context.Context, cfg appConfig, log *slog.Logger) (auth.Repository, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Warn("no database configured, using the in-memory user store")
		return auth.NewMemoryRepository(), func() {}, nil
	}

	var pgCfg pg.Config
	if err := config.Load(&pgCfg); err != nil {
		return nil, nil, err
	}

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return nil, nil, err
	}
	if err := pg.Migrate(ctx, pool, pgCfg.MigrationsPath); err != nil {
		pool.Close()
		return nil, nil, err
	}

	log.Info("connected to postgres")
	return auth.NewPGRepository(pool), pool.Close, nil
}
