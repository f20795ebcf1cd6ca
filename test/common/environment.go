// Package common provides shared test infrastructure
package common

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/fundmix/internal/app"
	"github.com/bobmcallan/fundmix/internal/server"
)

// TestEnvironment runs a full fundmix server behind httptest.
type TestEnvironment struct {
	t       *testing.T
	App     *app.App
	Server  *httptest.Server
	DataDir string
	cleanup []func()
}

// SetupTestEnvironment creates a new test environment. extraConfig is
// appended to a config that silences logging and disables upload limiting.
func SetupTestEnvironment(t *testing.T, extraConfig string) *TestEnvironment {
	t.Helper()

	dataDir := t.TempDir()
	configPath := filepath.Join(dataDir, "fundmix.toml")
	config := "environment = \"test\"\n\n[logging]\nlevel = \"error\"\n\n[ingest]\nrate_limit = 0.0\n\n" + extraConfig
	if err := os.WriteFile(configPath, []byte(config), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	a, err := app.NewApp(configPath)
	if err != nil {
		t.Fatalf("Failed to initialize app: %v", err)
	}

	ts := httptest.NewServer(server.NewServer(a).Handler())

	env := &TestEnvironment{
		t:       t,
		App:     a,
		Server:  ts,
		DataDir: dataDir,
	}
	env.AddCleanup(ts.Close)
	t.Cleanup(env.Cleanup)
	return env
}

// Cleanup releases all test resources
func (e *TestEnvironment) Cleanup() {
	for i := len(e.cleanup) - 1; i >= 0; i-- {
		e.cleanup[i]()
	}
	e.cleanup = nil
}

// AddCleanup registers a cleanup function
func (e *TestEnvironment) AddCleanup(fn func()) {
	e.cleanup = append(e.cleanup, fn)
}

// Context returns a test context with timeout
func (e *TestEnvironment) Context() context.Context {
	timeout := 30 * time.Second
	if envTimeout := os.Getenv("FUNDMIX_TEST_TIMEOUT"); envTimeout != "" {
		if d, err := time.ParseDuration(envTimeout); err == nil {
			timeout = d
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	e.AddCleanup(cancel)
	return ctx
}

// Do sends a request to the server and returns status and body.
func (e *TestEnvironment) Do(method, path, contentType, body string) (int, string) {
	e.t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(e.Context(), method, e.Server.URL+path, reader)
	if err != nil {
		e.t.Fatalf("Failed to build request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := e.Server.Client().Do(req)
	if err != nil {
		e.t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		e.t.Fatalf("Failed to read response: %v", err)
	}
	return resp.StatusCode, string(data)
}

// Upload posts CSV text to /api/ingest.
func (e *TestEnvironment) Upload(source, csv string) (int, string) {
	e.t.Helper()
	return e.Do(http.MethodPost, "/api/ingest?source="+source, "text/csv", csv)
}

// TestOutputGuard validates test outputs
type TestOutputGuard struct {
	t *testing.T
}

// NewTestOutputGuard creates a new output guard
func NewTestOutputGuard(t *testing.T) *TestOutputGuard {
	return &TestOutputGuard{t: t}
}

// AssertContains checks if output contains expected text
func (g *TestOutputGuard) AssertContains(output, expected string) {
	g.t.Helper()
	if !strings.Contains(output, expected) {
		g.t.Errorf("Expected output to contain %q, but it didn't.\nOutput: %s", expected, truncate(output, 500))
	}
}

// AssertNotContains checks if output does not contain text
func (g *TestOutputGuard) AssertNotContains(output, unexpected string) {
	g.t.Helper()
	if strings.Contains(output, unexpected) {
		g.t.Errorf("Expected output NOT to contain %q, but it did.\nOutput: %s", unexpected, truncate(output, 500))
	}
}

// AssertOrder checks that the given fragments appear in order.
func (g *TestOutputGuard) AssertOrder(output string, fragments ...string) {
	g.t.Helper()
	pos := 0
	for _, f := range fragments {
		idx := strings.Index(output[pos:], f)
		if idx < 0 {
			g.t.Errorf("Expected %q after offset %d.\nOutput: %s", f, pos, truncate(output, 500))
			return
		}
		pos += idx + len(f)
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
