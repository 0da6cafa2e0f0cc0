package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/flagkeep/flagkeep/pkg/audit"
	"github.com/flagkeep/flagkeep/pkg/config"
	"github.com/flagkeep/flagkeep/pkg/db"
	"github.com/flagkeep/flagkeep/pkg/logging"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "flagkeepctl",
	Short:   "Run and administer a flagkeep server",
	Long:    `Run the flagkeep admin API server and manage its database, configuration, users and state.`,
	Version: version,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// loadConfig loads and validates the configuration and makes it the
// global one.
func loadConfig() (*config.FlagkeepConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	config.Set(cfg)
	return cfg, nil
}

func newLogger(cfg *config.FlagkeepConfig) (*zap.Logger, error) {
	return logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
}

func connect(cfg *config.FlagkeepConfig, logger *zap.Logger) (*gorm.DB, error) {
	return db.Connect(db.Config{LogLevel: cfg.LogLevel, Logger: logger})
}

// newAuditor writes audit events to stdout and the events table.
// Whether it is enabled is read on every event.
func newAuditor(database *gorm.DB, logger *zap.Logger) (*audit.Auditor, error) {
	sqlDB, err := database.DB()
	if err != nil {
		return nil, err
	}
	return audit.NewAuditor(
		audit.NewLogger(),
		audit.NewStoreWithDB(sqlDB),
		func() bool { return config.Get().AuditEnabled },
		logger,
	), nil
}

// fail prints the error and exits.
func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
