// Package helpers provides shared fixtures for the integration tests.
package helpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yourusername/racehorse-ledger/internal/config"
)

// fixturesDir returns test/fixtures regardless of the package under test
func fixturesDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "fixtures")
}

// LoadFixture reads a file from test/fixtures.
func LoadFixture(t *testing.T, filename string) []byte {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(fixturesDir(), filename))
	require.NoError(t, err, "failed to read fixture file: %s", filename)
	return data
}

// SetupWorkspace creates a project root in a temp dir with the candidates
// template and a prompt file, and returns a config pointing at it.
func SetupWorkspace(t *testing.T, modelURL string) *config.Config {
	t.Helper()

	cfg := &config.Config{
		App: config.AppConfig{Name: "racehorse-ledger", Environment: "development", LogLevel: "error"},
		Paths: config.PathsConfig{
			Root:           t.TempDir(),
			RacecardsDir:   "data/raw/racecards",
			TemplateFile:   "example_candidates.json",
			PredictionsDir: "data/predictions",
			ResultsDir:     "data/results",
			LedgerFile:     "data/metrics/summary.csv",
		},
		Model: config.ModelConfig{
			BaseURL:               modelURL,
			ModelName:             "gpt-4o-mini",
			APIKey:                "sk-integration",
			PromptFile:            "prompts/value_bet.txt",
			Temperature:           0.2,
			MaxTokens:             600,
			RequestTimeoutSeconds: 5,
			RequestsPerSecond:     50,
		},
	}

	require.NoError(t, os.MkdirAll(cfg.RacecardsDir(), 0o755))
	require.NoError(t, os.WriteFile(cfg.TemplatePath(), LoadFixture(t, "candidates.json"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.PromptPath()), 0o755))
	require.NoError(t, os.WriteFile(cfg.PromptPath(), []byte("Pick the value bet.\n"), 0o644))

	return cfg
}

// MockModelServer answers chat completions with the given selection JSON
// and counts the requests it receives.
func MockModelServer(t *testing.T, content string) (*httptest.Server, *int32) {
	t.Helper()

	var calls int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/chat/completions":
			atomic.AddInt32(&calls, 1)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"model": "gpt-4o-mini-mock",
				"choices": []map[string]interface{}{
					{"message": map[string]string{"role": "assistant", "content": content}},
				},
			})

		case "/models":
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"data":[]}`))

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, &calls
}
