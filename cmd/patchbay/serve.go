package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	httpapi "github.com/patchbay/patchbay/internal/adapters/http"
	"github.com/patchbay/patchbay/internal/adapters/repository/memory"
	"github.com/patchbay/patchbay/internal/adapters/repository/postgres"
	"github.com/patchbay/patchbay/internal/adapters/repository/redis"
	"github.com/patchbay/patchbay/internal/adapters/repository/sqlite"
	"github.com/patchbay/patchbay/internal/config"
	"github.com/patchbay/patchbay/internal/logging"
	"github.com/patchbay/patchbay/internal/ui"
	"github.com/patchbay/patchbay/pkg/patchbay"

	"github.com/jackc/pgx/v5/pgxpool"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the patchbay HTTP server",
	Long: `Starts the patch runtime and exposes it over the JSON API, including
the SSE event stream, the metrics endpoint, and the snapshot store
selected by STORE_BACKEND. Configuration comes from the environment,
optionally seeded from a .env file.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			ui.Bad.Fprintln(os.Stderr, "patchbay:", err)
			os.Exit(1)
		}
		log := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)

		store, closeStore, err := openStore(cfg)
		if err != nil {
			ui.Bad.Fprintln(os.Stderr, "patchbay:", err)
			os.Exit(1)
		}
		defer closeStore()

		hub := httpapi.NewEventHub()
		patch := patchbay.New(
			patchbay.WithLogger(log),
			patchbay.WithNotifier(hub),
		)
		api := httpapi.NewServer(patch,
			httpapi.WithStore(store),
			httpapi.WithHub(hub),
			httpapi.WithLogger(log),
		)

		srv := &http.Server{
			Addr:        cfg.HTTP.Addr,
			Handler:     api.Router(),
			ReadTimeout: cfg.HTTP.ReadTimeout,
		}

		serverErrors := make(chan error, 1)
		go func() {
			log.Info("starting patchbay server",
				"addr", cfg.HTTP.Addr,
				"backend", cfg.Store.Backend,
				"version", version)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			ui.Bad.Fprintln(os.Stderr, "patchbay: server error:", err)
			os.Exit(1)
		case sig := <-shutdown:
			log.Info("shutdown started", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				log.Warn("graceful shutdown incomplete, closing", "error", err)
				_ = srv.Close()
			}
			log.Info("server stopped")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// openStore builds the snapshot store named by STORE_BACKEND. The returned
// close function releases whatever connections the backend holds.
func openStore(cfg *config.Config) (patchbay.Store, func(), error) {
	ctx := context.Background()

	switch cfg.Store.Backend {
	case config.BackendMemory:
		st := memory.Default()
		return st, func() { _ = st.Close() }, nil

	case config.BackendSQLite:
		db, err := sql.Open("sqlite", cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite database: %w", err)
		}
		st := sqlite.New(db, nil).WithTableName(cfg.Store.TableName)
		if err := st.CreateTables(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("create snapshot tables: %w", err)
		}
		return st, func() { _ = st.Close() }, nil

	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.Store.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		st := postgres.New(pool, nil).WithTableName(cfg.Store.TableName)
		if err := st.CreateTables(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("create snapshot tables: %w", err)
		}
		return st, func() { st.Close() }, nil

	case config.BackendRedis:
		opts := []redis.Option{redis.WithPrefix(cfg.Store.KeyPrefix)}
		if cfg.Store.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.Store.TTL))
		}
		st := redis.New(cfg.Store.RedisAddr, cfg.Store.RedisPassword, cfg.Store.RedisDB, opts...)
		return st, func() { _ = st.Close() }, nil
	}

	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}
