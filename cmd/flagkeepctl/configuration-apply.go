package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/flagkeep/flagkeep/pkg/config"
)

// restartOnly are the attributes a running server reads once at startup.
var restartOnly = map[string]bool{
	"session_ttl":  true,
	"log_level":    true,
	"log_format":   true,
	"cors_origins": true,
}

var configurationApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Reload flags and limits in running flagkeep servers",
	Long: `Check flagkeep.yml and send SIGHUP to running flagkeep servers.

Flags, edition, the segment values limit and audit_enabled take effect
immediately. session_ttl, log settings and cors_origins need a restart;
they are listed when they do not come from their defaults.

Example:
  flagkeepctl configuration apply
  flagkeepctl configuration apply --pid 4711
  flagkeepctl configuration apply --check`,
	Run: func(cmd *cobra.Command, args []string) {
		check, _ := cmd.Flags().GetBool("check")
		pid, _ := cmd.Flags().GetInt("pid")

		cfg, err := config.Load()
		if err != nil {
			fail("Failed to load configuration: %v", err)
		}
		if err := cfg.Validate(); err != nil {
			fail("Invalid configuration in %s: %v", cfg.ConfigFilePath(), err)
		}
		describeReload(os.Stdout, cfg)
		if check {
			return
		}

		pids := []int{pid}
		if pid == 0 {
			if pids, err = findServers(); err != nil {
				fail("%v", err)
			}
		}
		for _, p := range pids {
			if err := syscall.Kill(p, syscall.SIGHUP); err != nil {
				fail("Failed to signal server %d: %v", p, err)
			}
			fmt.Printf("Reloaded server %d\n", p)
		}
	},
}

func init() {
	configurationCmd.AddCommand(configurationApplyCmd)
	configurationApplyCmd.Flags().Bool("check", false, "Only check the configuration")
	configurationApplyCmd.Flags().Int("pid", 0, "Signal this server process instead of every running server")
}

// describeReload prints what a reload changes and what it cannot.
func describeReload(w io.Writer, cfg *config.FlagkeepConfig) {
	fmt.Fprintf(w, "Configuration %s is valid.\n", cfg.ConfigFilePath())

	var live, pending []string
	for _, attr := range cfg.Attributes() {
		if restartOnly[attr.Name] {
			if attr.Source != "default" {
				pending = append(pending, attr.Name+"="+attr.Value)
			}
			continue
		}
		live = append(live, attr.Name+"="+attr.Value)
	}
	fmt.Fprintf(w, "Applied on reload: %s\n", strings.Join(live, " "))
	if len(pending) > 0 {
		fmt.Fprintf(w, "Needs a restart: %s\n", strings.Join(pending, " "))
	}
}

func findServers() ([]int, error) {
	out, err := exec.Command("pgrep", "-f", "flagkeepctl server").Output()
	if err != nil {
		return nil, fmt.Errorf("no running flagkeepctl server found")
	}
	return parsePIDs(string(out))
}

// parsePIDs reads pgrep output, one process id per line.
func parsePIDs(out string) ([]int, error) {
	var pids []int
	for _, field := range strings.Fields(out) {
		pid, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("unexpected pgrep output %q", field)
		}
		if pid != os.Getpid() {
			pids = append(pids, pid)
		}
	}
	if len(pids) == 0 {
		return nil, fmt.Errorf("no running flagkeepctl server found")
	}
	return pids, nil
}
