package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backend-drivemate/internal/config"
	"backend-drivemate/internal/db"
	"backend-drivemate/internal/logging"
	"backend-drivemate/internal/server"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

var mainDepsProvider = defaultDeps
var mainRunner = realMain

func main() {
	mainRunner(mainDepsProvider())
}

// Connections are the backends opened at startup; nil fields are not configured.
type Connections struct {
	Postgres *pgxpool.Pool
	Redis    *redis.Client
	SQLite   *sql.DB
}

type mainDeps struct {
	loadConfig      func() config.Config
	connectPostgres func(config.Config) (*pgxpool.Pool, error)
	connectRedis    func(config.Config) *redis.Client
	connectSQLite   func(config.Config) (*sql.DB, error)
	notify          func(chan<- os.Signal, ...os.Signal)
	run             func(context.Context, config.Config, Connections, <-chan os.Signal, ListenFunc) error
}

func defaultDeps() mainDeps {
	return mainDeps{
		loadConfig:      config.Load,
		connectPostgres: db.ConnectPostgres,
		connectRedis:    db.ConnectRedis,
		connectSQLite:   db.ConnectSQLite,
		notify:          signal.Notify,
		run:             Run,
	}
}

func realMain(deps mainDeps) {
	cfg := deps.loadConfig()
	logger := logging.NewStructuredLogger(os.Stdout, logging.ParseLevel(cfg.LogLevel))
	slog.SetDefault(logger)

	var conns Connections
	if cfg.PostgresURL != "" {
		pg, err := deps.connectPostgres(cfg)
		if err != nil {
			logging.LogError(logger, "postgres connection failed", err, slog.String("component", "startup"))
		}
		conns.Postgres = pg
	}

	conns.Redis = deps.connectRedis(cfg)

	if cfg.SQLitePath != "" {
		conn, err := deps.connectSQLite(cfg)
		if err != nil {
			logging.LogError(logger, "sqlite open failed", err, slog.String("component", "startup"))
		}
		conns.SQLite = conn
	}

	signals := make(chan os.Signal, 1)
	deps.notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if err := deps.run(context.Background(), cfg, conns, signals, nil); err != nil {
		logging.LogError(logger, "server exited with error", err, slog.String("component", "startup"))
	}
}

type ListenFunc func(app *fiber.App, addr string) error

var defaultListen ListenFunc = func(app *fiber.App, addr string) error {
	return app.Listen(addr)
}

var shutdownFn = func(app *fiber.App, ctx context.Context) error {
	return app.ShutdownWithContext(ctx)
}

// Run starts the HTTP server and waits for termination signals. On the way out it
// abandons running trips and closes every connection it was given.
func Run(ctx context.Context, cfg config.Config, conns Connections, signals <-chan os.Signal, listen ListenFunc) error {
	logger := slog.Default()
	defer closeConnections(conns, logger)

	deps := server.Deps{Redis: conns.Redis, SQLite: conns.SQLite, Logger: logger}
	if conns.Postgres != nil {
		deps.Postgres = conns.Postgres
	}
	srv, err := server.NewServer(context.WithoutCancel(ctx), cfg, deps)
	if err != nil {
		return err
	}
	defer logging.SafeCloseWithLogging(srv, logger, "server")

	if listen == nil {
		listen = defaultListen
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- listen(srv.App, cfg.ServerPort)
	}()

	select {
	case <-signals:
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return shutdownFn(srv.App, shutdownCtx)
}

func closeConnections(conns Connections, logger *slog.Logger) {
	if conns.Postgres != nil {
		conns.Postgres.Close()
	}
	if conns.Redis != nil {
		logging.SafeCloseWithLogging(conns.Redis, logger, "redis")
	}
	if conns.SQLite != nil {
		logging.SafeCloseWithLogging(conns.SQLite, logger, "sqlite")
	}
}
