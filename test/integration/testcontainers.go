package integration

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/ctrack/pkg/advisor"
	"github.com/doodlesbykumbi/ctrack/pkg/config"
	"github.com/doodlesbykumbi/ctrack/pkg/db"
	"github.com/doodlesbykumbi/ctrack/pkg/seed"
	"github.com/doodlesbykumbi/ctrack/pkg/server"
	"github.com/doodlesbykumbi/ctrack/pkg/server/endpoints"
)

const (
	testModel = "llama3"
	testYear  = 2026
)

const catalogCSV = `identifier,name,control_text,discussion,related
AC-1,Policy and Procedures,Develop and document an access control policy.,Access control policy addresses controls in the AC family.,"PM-9, PS-8"
AC-2,Account Management,Define and document the types of accounts allowed.,,AC-3
AC-2(1),Automated System Account Management,Support the management of system accounts using automated mechanisms.,,
SI-4,System Monitoring,Monitor the system to detect attacks.,,"AC-2, AU-2"
`

// TestContext holds all the resources needed for integration tests
type TestContext struct {
	DB          *gorm.DB
	Container   testcontainers.Container
	ServerURL   string
	DatabaseURL string
	WorkDir     string
	Ollama      *FakeOllama
	HTTPClient  *http.Client

	ServerProcess *exec.Cmd
	InlineServer  *server.Server
	cancel        context.CancelFunc
}

// NewTestContext prepares a database, a fake Ollama and a running server.
// Modes:
//   - Inline mode (default): the server runs in-process
//   - Binary mode: set CTRACK_BINARY to the path of the ctrackctl binary
//
// The database is a temporary SQLite file unless INTEGRATION_POSTGRES=1, in
// which case a PostgreSQL testcontainer is started.
func NewTestContext(ctx context.Context) (*TestContext, error) {
	workDir, err := os.MkdirTemp("", "ctrack-integration-")
	if err != nil {
		return nil, err
	}

	tc := &TestContext{
		WorkDir:    workDir,
		Ollama:     NewFakeOllama(),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}

	if err := tc.setup(ctx); err != nil {
		tc.Close(ctx)
		return nil, err
	}
	return tc, nil
}

func (tc *TestContext) setup(ctx context.Context) error {
	seedFile := filepath.Join(tc.WorkDir, "catalog.csv")
	if err := os.WriteFile(seedFile, []byte(catalogCSV), 0o600); err != nil {
		return err
	}

	if os.Getenv("INTEGRATION_POSTGRES") == "1" {
		if err := tc.startPostgres(ctx); err != nil {
			return err
		}
	} else {
		tc.DatabaseURL = filepath.Join(tc.WorkDir, "compliance.db")
	}

	database, err := db.Connect(db.Config{URL: tc.DatabaseURL})
	if err != nil {
		return err
	}
	tc.DB = database
	if err := db.Migrate(database, tc.DatabaseURL); err != nil {
		return err
	}

	port, err := freePort()
	if err != nil {
		return err
	}
	tc.ServerURL = fmt.Sprintf("http://127.0.0.1:%s", port)

	env := map[string]string{
		"CTRACK_CONFIG_PATH":        tc.WorkDir,
		"DATABASE_URL":              tc.DatabaseURL,
		"CTRACK_SEED_FILE":          seedFile,
		"CTRACK_ADVISOR_PROVIDER":   "ollama",
		"CTRACK_ADVISOR_ENDPOINT":   tc.Ollama.URL,
		"CTRACK_ADVISOR_MODEL":      testModel,
		"CTRACK_ADVISOR_TIMEOUT":    "10",
		"CTRACK_DEFAULT_AUDIT_YEAR": fmt.Sprint(testYear),
		"CTRACK_LOG_LEVEL":          "warn",
	}

	if binaryPath := os.Getenv("CTRACK_BINARY"); binaryPath != "" {
		if _, err := os.Stat(binaryPath); err != nil {
			return fmt.Errorf("CTRACK_BINARY path does not exist: %s", binaryPath)
		}
		log.Printf("Using binary: %s", binaryPath)
		if err := tc.startBinary(binaryPath, env, port); err != nil {
			return err
		}
	} else {
		log.Println("Using inline server mode")
		if err := tc.startInlineServer(env, port); err != nil {
			return err
		}
	}

	return waitForServer(tc.ServerURL, 30*time.Second)
}

func (tc *TestContext) startPostgres(ctx context.Context) error {
	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ctrack_test"),
		tcpostgres.WithUsername("ctrack"),
		tcpostgres.WithPassword("ctrack"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to start postgres container: %w", err)
	}
	tc.Container = pgContainer

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return fmt.Errorf("failed to get connection string: %w", err)
	}
	tc.DatabaseURL = connStr
	return nil
}

// startInlineServer runs the server in-process (no binary needed)
func (tc *TestContext) startInlineServer(env map[string]string, port string) error {
	for k, v := range env {
		if err := os.Setenv(k, v); err != nil {
			return err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	client := advisor.NewOllamaClient(cfg.AdvisorEndpoint, cfg.AdvisorModel)
	s := server.NewServer(cfg, tc.DB, client, nil, "127.0.0.1", port)
	endpoints.RegisterAll(s)

	if _, err := seed.New(s.LibraryStore, cfg.SeedFile, nil).Run(); err != nil {
		return fmt.Errorf("failed to seed reference library: %w", err)
	}

	l, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return err
	}
	go func() {
		_ = s.Serve(l)
	}()

	tc.InlineServer = s
	return nil
}

// startBinary starts the ctrackctl server binary
func (tc *TestContext) startBinary(binaryPath string, env map[string]string, port string) error {
	ctx, cancel := context.WithCancel(context.Background())

	// Migrations already ran against this database
	cmd := exec.CommandContext(ctx, binaryPath, "server", "--no-migrate", "-b", "127.0.0.1", "-p", port)
	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("failed to start binary: %w", err)
	}

	tc.ServerProcess = cmd
	tc.cancel = cancel
	return nil
}

// ResetData clears assessments and the recorded advisor prompts. The
// reference library is left as seeded.
func (tc *TestContext) ResetData() error {
	tc.Ollama.Reset()
	return tc.DB.Exec("DELETE FROM assessments").Error
}

func freePort() (string, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	defer func() { _ = l.Close() }()
	_, port, err := net.SplitHostPort(l.Addr().String())
	return port, err
}

// waitForServer polls /health until the database is reachable or times out
func waitForServer(serverURL string, timeout time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		resp, err := client.Get(serverURL + "/health")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("server did not become ready within %v", timeout)
}

// Close cleans up all test resources
func (tc *TestContext) Close(ctx context.Context) {
	if tc.InlineServer != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_ = tc.InlineServer.Shutdown(shutdownCtx)
		cancel()
	}
	if tc.cancel != nil {
		tc.cancel()
	}
	if tc.ServerProcess != nil && tc.ServerProcess.Process != nil {
		_ = tc.ServerProcess.Process.Kill()
		_ = tc.ServerProcess.Wait()
	}
	if tc.DB != nil {
		if sqlDB, err := tc.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if tc.Container != nil {
		_ = tc.Container.Terminate(ctx)
	}
	if tc.Ollama != nil {
		tc.Ollama.Close()
	}
	_ = os.RemoveAll(tc.WorkDir)
}
