package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export projects, roles, groups and segments as YAML",
	Long: `Export the current projects, custom roles, groups and segments as a
YAML state file that "flagkeepctl import" accepts.

Built-in roles and group members are not exported.

Example:
  flagkeepctl export
  flagkeepctl export -o state.yml`,
	Run: func(cmd *cobra.Command, args []string) {
		out, _ := cmd.Flags().GetString("output")

		if err := runExport(out); err != nil {
			fail("Export failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
}

func runExport(out string) error {
	imp, _, err := newImporter()
	if err != nil {
		return err
	}

	state, err := imp.Export(cliContext(context.Background()))
	if err != nil {
		return err
	}
	data, err := state.Marshal()
	if err != nil {
		return err
	}

	if out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	fmt.Fprintf(os.Stderr, "Exported state to %s\n", out)
	return nil
}
