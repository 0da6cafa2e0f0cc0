package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/flagkeep/flagkeep/pkg/auth"
	"github.com/flagkeep/flagkeep/pkg/config"
	"github.com/flagkeep/flagkeep/pkg/server"
	"github.com/flagkeep/flagkeep/pkg/server/endpoints"
)

const shutdownTimeout = 15 * time.Second

func defaultBindAddress() string {
	if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
		return addr
	}
	return "0.0.0.0"
}

func defaultPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "4242"
}

func defaultPortInt() int {
	if p, err := strconv.Atoi(defaultPort()); err == nil {
		return p
	}
	return 4242
}

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the flagkeep admin API server",
	Long: `Run the flagkeep admin API server.

The server requires the environment variables DATABASE_URL and
FLAGKEEP_AUTH_SECRET.

By default, database migrations are run on startup. Use --no-migrate to skip.
The configuration file is watched and reloaded on change or on SIGHUP.`,
	Run: func(cmd *cobra.Command, args []string) {
		host, _ := cmd.Flags().GetString("bind-address")
		port, _ := cmd.Flags().GetString("port")
		noMigrate, _ := cmd.Flags().GetBool("no-migrate")

		if err := runServer(host, port, noMigrate); err != nil {
			fail("Server failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", defaultPort(), "server listen port")
	serverCmd.Flags().StringP("bind-address", "b", defaultBindAddress(), "server bind address")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
}

func runServer(host, port string, noMigrate bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// Fail fast on missing secrets before touching the database.
	issuer, err := auth.NewIssuerFromEnv(cfg.SessionDuration())
	if err != nil {
		return err
	}

	if !noMigrate {
		logger.Info("running database migrations")
		if err := runMigrations(); err != nil {
			return err
		}
	}

	database, err := connect(cfg, logger)
	if err != nil {
		return err
	}
	auditor, err := newAuditor(database, logger)
	if err != nil {
		return err
	}

	s, err := server.NewServer(server.Options{
		DB:      database,
		Config:  config.Get,
		Issuer:  issuer,
		Auditor: auditor,
		Logger:  logger,
		Version: version,
		Host:    host,
		Port:    port,
	})
	if err != nil {
		return err
	}
	endpoints.RegisterAll(s)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go watchConfig(ctx, logger)

	errc := make(chan error, 1)
	go func() { errc <- s.Start() }()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(signals)

	for {
		select {
		case err := <-errc:
			return err
		case sig := <-signals:
			if sig == syscall.SIGHUP {
				reloadConfig(logger)
				continue
			}
			logger.Info("shutting down", zap.String("signal", sig.String()))
			shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
			defer stop()
			return s.Shutdown(shutdownCtx)
		}
	}
}

func reloadConfig(logger *zap.Logger) {
	if err := config.Reload(); err != nil {
		logger.Error("failed to reload configuration", zap.Error(err))
		return
	}
	logger.Info("configuration reloaded", zap.Any("flags", config.Get().EnabledFlags()))
}

// watchConfig reloads the configuration when its file changes. CORS
// origins and the log settings only apply on restart.
func watchConfig(ctx context.Context, logger *zap.Logger) {
	err := config.Watch(ctx,
		func(cfg *config.FlagkeepConfig) {
			logger.Info("configuration reloaded", zap.Any("flags", cfg.EnabledFlags()))
		},
		func(err error) {
			logger.Error("failed to reload configuration", zap.Error(err))
		},
	)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("not watching configuration file", zap.Error(err))
	}
}
