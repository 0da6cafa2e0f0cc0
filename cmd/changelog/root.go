// Command changelog checks flagkeep's CHANGELOG.md and extracts release
// notes from it.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "changelog",
	Short: "Validate CHANGELOG.md and extract release notes",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
