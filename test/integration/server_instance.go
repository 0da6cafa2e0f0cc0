package integration

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/flagkeep/flagkeep/pkg/audit"
	"github.com/flagkeep/flagkeep/pkg/auth"
	"github.com/flagkeep/flagkeep/pkg/config"
	"github.com/flagkeep/flagkeep/pkg/server"
	"github.com/flagkeep/flagkeep/pkg/server/endpoints"
)

// portCounter is used to allocate unique ports for each test server
var portCounter int32 = 19000

// ServerConfig holds configuration for a test flagkeep server instance
type ServerConfig struct {
	// Flags are the UI flags turned on, like "doraMetrics".
	Flags []string
}

// DefaultServerConfig returns the default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{}
}

// ServerInstance represents a running flagkeep server
type ServerInstance struct {
	Server        *server.Server
	ServerURL     string
	Port          int
	Config        ServerConfig
	serverProcess *exec.Cmd // For binary mode
	cancel        context.CancelFunc
}

// StartServer starts a server against the test database, in-process or
// from the binary depending on how the suite was started.
func StartServer(tc *TestContext, cfg ServerConfig) (*ServerInstance, error) {
	if tc.InlineMode {
		return startInlineServerInstance(tc.DatabaseURL, cfg)
	}
	return startBinaryServerInstance(tc.BinaryPath, tc.DatabaseURL, cfg)
}

func nextPort() int {
	return int(atomic.AddInt32(&portCounter, 1))
}

// startInlineServerInstance starts an in-process server
func startInlineServerInstance(dbURL string, cfg ServerConfig) (*ServerInstance, error) {
	port := nextPort()

	flagkeepConfig := config.Default()
	for _, flag := range cfg.Flags {
		flagkeepConfig.Flags[flag] = true
	}
	flagkeepConfig.AuditEnabled = true
	// Each instance reads its own config so that scenarios with different
	// flags do not see each other's.
	configSource := func() *config.FlagkeepConfig { return flagkeepConfig }

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dbURL,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	issuer, err := auth.NewIssuer([]byte(authSecret), flagkeepConfig.SessionDuration())
	if err != nil {
		return nil, err
	}
	auditLogger := audit.NewLogger()
	auditLogger.SetWriter(os.Stderr)

	s, err := server.NewServer(server.Options{
		DB:      db,
		Config:  configSource,
		Issuer:  issuer,
		Auditor: audit.NewAuditor(auditLogger, audit.NewStoreWithDB(sqlDB), nil, zap.NewNop()),
		Logger:  zap.NewNop(),
		Version: "integration",
		Host:    "127.0.0.1",
		Port:    strconv.Itoa(port),
	})
	if err != nil {
		return nil, err
	}
	endpoints.RegisterAll(s)

	instance := &ServerInstance{
		Server:    s,
		ServerURL: fmt.Sprintf("http://127.0.0.1:%d", port),
		Port:      port,
		Config:    cfg,
	}

	go func() {
		_ = s.Start()
	}()

	if err := waitForServer(instance.ServerURL, 10*time.Second); err != nil {
		instance.Stop()
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}
	return instance, nil
}

// startBinaryServerInstance starts a server using the flagkeepctl binary
func startBinaryServerInstance(binaryPath, dbURL string, cfg ServerConfig) (*ServerInstance, error) {
	port := nextPort()
	portStr := strconv.Itoa(port)

	ctx, cancel := context.WithCancel(context.Background())

	cmd := exec.CommandContext(ctx, binaryPath, "server", "--no-migrate", "-b", "127.0.0.1", "-p", portStr)
	cmd.Env = append(os.Environ(),
		"DATABASE_URL="+dbURL,
		"FLAGKEEP_AUTH_SECRET="+authSecret,
		"FLAGKEEP_FLAGS="+strings.Join(cfg.Flags, ","),
		"FLAGKEEP_CONFIG_PATH="+os.TempDir(),
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start binary: %w", err)
	}

	instance := &ServerInstance{
		ServerURL:     fmt.Sprintf("http://127.0.0.1:%d", port),
		Port:          port,
		Config:        cfg,
		cancel:        cancel,
		serverProcess: cmd,
	}

	if err := waitForServer(instance.ServerURL, 30*time.Second); err != nil {
		instance.Stop()
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}
	return instance, nil
}

// Stop shuts down the server instance
func (si *ServerInstance) Stop() {
	if si.Server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = si.Server.Shutdown(ctx)
	}
	if si.cancel != nil {
		si.cancel()
	}
	if si.serverProcess != nil && si.serverProcess.Process != nil {
		_ = si.serverProcess.Process.Kill()
		_ = si.serverProcess.Wait()
	}
}
