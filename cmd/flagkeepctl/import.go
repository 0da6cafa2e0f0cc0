package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/flagkeep/flagkeep/pkg/config"
	"github.com/flagkeep/flagkeep/pkg/identity"
	"github.com/flagkeep/flagkeep/pkg/importer"
	"github.com/flagkeep/flagkeep/pkg/permissions"
)

// cliUser is recorded as the author of changes made from the command line.
const cliUser = "flagkeepctl"

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Apply a YAML state file",
	Long: `Apply a YAML state file of projects, roles, groups and segments.

Missing entities are created and existing ones updated; nothing is
deleted. The whole file is applied in one transaction. With --dry-run the
changes are computed and rolled back. With --watch the file is applied
again whenever it changes.

Example:
  flagkeepctl import state.yml
  flagkeepctl import state.yml --dry-run
  flagkeepctl import /run/flagkeep/state.yml --watch`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		watch, _ := cmd.Flags().GetBool("watch")

		if err := runImport(args[0], dryRun, watch); err != nil {
			fail("Failed to import state: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().Bool("dry-run", false, "validate and report changes without applying them")
	importCmd.Flags().Bool("watch", false, "apply the file again whenever it changes")
}

// cliContext carries an admin identity so that changes pass permission
// checks and are attributed in the event log.
func cliContext(ctx context.Context) context.Context {
	id := identity.New(0, cliUser).WithRootPermissions([]permissions.Permission{permissions.Admin})
	return identity.Set(ctx, id)
}

func newImporter() (*importer.Importer, *zap.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	database, err := connect(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	auditor, err := newAuditor(database, logger)
	if err != nil {
		return nil, nil, err
	}
	tx := importer.NewGormTransactor(database, config.Get, auditor, logger)
	return importer.New(tx, logger), logger, nil
}

func runImport(filename string, dryRun, watch bool) error {
	imp, logger, err := newImporter()
	if err != nil {
		return err
	}
	imp.WithDryRun(dryRun)
	ctx := cliContext(context.Background())

	if !watch {
		return importFile(ctx, imp, filename)
	}

	if err := importFile(ctx, imp, filename); err != nil {
		logger.Error("failed to import state", zap.String("file", filename), zap.Error(err))
	}
	return watchFile(filename, logger, func() {
		if err := importFile(ctx, imp, filename); err != nil {
			logger.Error("failed to import state", zap.String("file", filename), zap.Error(err))
		}
	})
}

func importFile(ctx context.Context, imp *importer.Importer, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open state file: %w", err)
	}
	defer func() { _ = file.Close() }()

	result, err := imp.LoadFromReader(ctx, file)
	if err != nil {
		return err
	}

	output, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(output))
	return nil
}

// watchFile calls apply whenever filename is written or replaced, until
// SIGINT or SIGTERM. The directory is watched so that files replaced by
// editors or by ConfigMap updates are picked up.
func watchFile(filename string, logger *zap.Logger, apply func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(filename)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	logger.Info("watching state file", zap.String("file", filename))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	target := filepath.Clean(filename)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				logger.Info("state file changed, applying", zap.String("file", filename))
				apply()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", zap.Error(err))
		case <-sigChan:
			logger.Info("shutting down")
			return nil
		}
	}
}
