package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	pkgdb "github.com/flagkeep/flagkeep/pkg/db"
)

// waitCmd represents the wait command
var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for the flagkeep server or its database to be ready",
	Long: `Wait for the flagkeep server to be ready by polling its health endpoint.

With --database, wait for DATABASE_URL to accept connections instead.
This is useful before "flagkeepctl db migrate" in container entrypoints.

Example:
  flagkeepctl wait
  flagkeepctl wait --port 3000 --retries 60
  flagkeepctl wait --database`,
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetInt("port")
		retries, _ := cmd.Flags().GetInt("retries")
		database, _ := cmd.Flags().GetBool("database")

		check := healthCheck(fmt.Sprintf("http://localhost:%d/health", port))
		what := "flagkeep server"
		if database {
			check = databaseCheck(pkgdb.URL())
			what = "database"
		}

		fmt.Printf("Waiting for the %s to be ready...\n", what)
		if err := waitFor(check, retries, time.Second); err != nil {
			fail("The %s did not become ready: %v", what, err)
		}
		fmt.Printf("The %s is ready\n", what)
	},
}

func init() {
	rootCmd.AddCommand(waitCmd)
	waitCmd.Flags().IntP("port", "p", defaultPortInt(), "Server port to check")
	waitCmd.Flags().IntP("retries", "r", 90, "Number of retries")
	waitCmd.Flags().Bool("database", false, "Wait for the database instead of the server")
}

func healthCheck(url string) func() error {
	client := &http.Client{Timeout: 2 * time.Second}
	return func() error {
		resp, err := client.Get(url)
		if err != nil {
			return err
		}
		_ = resp.Body.Close()
		if resp.StatusCode >= 300 {
			return fmt.Errorf("health check returned %d", resp.StatusCode)
		}
		return nil
	}
}

func databaseCheck(dbURL string) func() error {
	return func() error {
		if dbURL == "" {
			return errors.New("DATABASE_URL environment variable is required")
		}
		conn, err := sql.Open("postgres", dbURL)
		if err != nil {
			return err
		}
		defer func() { _ = conn.Close() }()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return conn.PingContext(ctx)
	}
}

// waitFor calls check until it succeeds or retries run out.
func waitFor(check func() error, retries int, interval time.Duration) error {
	var err error
	for i := 0; i < retries; i++ {
		if err = check(); err == nil {
			fmt.Println()
			return nil
		}
		fmt.Print(".")
		time.Sleep(interval)
	}
	fmt.Println()
	return fmt.Errorf("not ready after %d attempts: %w", retries, err)
}
