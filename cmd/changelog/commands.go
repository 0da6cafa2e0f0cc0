package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func readChangelog(cmd *cobra.Command) (*Changelog, error) {
	file, _ := cmd.Flags().GetString("file")
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return Parse(content), nil
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate that the changelog follows Keep a Changelog",
	Long: `Validate that a changelog file follows Keep a Changelog.

Checks include:
- File has a title (# Changelog)
- An [Unreleased] section comes first
- Version entries use the format ## [X.Y.Z] - YYYY-MM-DD, newest first
- Change types are valid (Added, Changed, Deprecated, Removed, Fixed, Security)
- Link definitions exist for all versions`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cl, err := readChangelog(cmd)
		if err != nil {
			return err
		}

		problems := Validate(cl)
		if len(problems) == 0 {
			fmt.Println("✓ Changelog is valid")
			return nil
		}

		fmt.Printf("Found %d issue(s):\n\n", len(problems))
		for _, p := range problems {
			fmt.Printf("  %s\n", p)
		}
		os.Exit(1)
		return nil
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Print the release notes of a version",
	Long: `Print the release notes of a version, as markdown or as HTML for
release pages.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		version, _ := cmd.Flags().GetString("version")
		html, _ := cmd.Flags().GetBool("html")

		cl, err := readChangelog(cmd)
		if err != nil {
			return err
		}
		r := cl.Release(version)
		if r == nil {
			return fmt.Errorf("version %s not found in changelog", version)
		}

		if html {
			out, err := r.HTML()
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		}

		if r.Date != "" {
			fmt.Printf("## [%s] - %s\n\n", r.Version, r.Date)
		} else {
			fmt.Printf("## [%s]\n\n", r.Version)
		}
		fmt.Print(r.Markdown)
		if url, ok := cl.Links[r.Version]; ok {
			fmt.Printf("\n\n[%s]: %s\n", r.Version, url)
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all versions in the changelog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cl, err := readChangelog(cmd)
		if err != nil {
			return err
		}
		for _, r := range cl.Releases {
			if r.Date != "" {
				fmt.Printf("%s (%s)\n", r.Version, r.Date)
			} else {
				fmt.Println(r.Version)
			}
		}
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{validateCmd, extractCmd, listCmd} {
		cmd.Flags().StringP("file", "f", "CHANGELOG.md", "Path to the changelog file")
		rootCmd.AddCommand(cmd)
	}
	extractCmd.Flags().StringP("version", "v", "", "Version to extract (with or without 'v' prefix)")
	extractCmd.Flags().Bool("html", false, "Render the release notes as HTML")
	_ = extractCmd.MarkFlagRequired("version")
}
