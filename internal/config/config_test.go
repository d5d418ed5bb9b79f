package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir changes into dir for the duration of the test, restoring the
// previous working directory on cleanup. (testing.T.Chdir needs Go 1.24.)
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	// Run from an empty directory so no .env or config/ is picked up.
	chdir(t, t.TempDir())

	cfg := Load()
	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 3001, cfg.Gateway.StandalonePort)
	assert.Equal(t, 10000, cfg.Gateway.MaxConnections)
	assert.Equal(t, 256, cfg.Gateway.SendBufferSize)
	assert.Equal(t, 20, cfg.DBMaxConnections())
	assert.Equal(t, "*", cfg.CORSAllowedOrigins)
	assert.Equal(t, "redis://localhost:6379", cfg.Redis.URL)
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "gateway.yaml"), []byte(
		"server_addr: \":9000\"\ngateway_standalone_port: 4001\ncors_allowed_origins: \"https://app.example.com\"\n",
	), 0o644))

	t.Setenv("GATEWAY_STANDALONE_PORT", "5001")

	cfg := Load()
	assert.Equal(t, ":9000", cfg.ServerAddr, "yaml value applies when env is unset")
	assert.Equal(t, 5001, cfg.Gateway.StandalonePort, "env var wins over yaml")
	assert.Equal(t, "https://app.example.com", cfg.CORSAllowedOrigins)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(
		"# dev settings\nSERVER_ADDR=\":7070\"\nGATEWAY_MAX_CONNECTIONS=500\nBROKEN LINE\n",
	), 0o644))

	// loadEnv writes into the process environment; scope the keys to this test.
	t.Setenv("SERVER_ADDR", "")
	t.Setenv("GATEWAY_MAX_CONNECTIONS", "")

	cfg := Load()
	assert.Equal(t, ":7070", cfg.ServerAddr)
	assert.Equal(t, 500, cfg.Gateway.MaxConnections)
}

func TestEnvInt(t *testing.T) {
	t.Setenv("SOME_INT", "42")
	assert.Equal(t, 42, envInt("SOME_INT", 7))
	t.Setenv("SOME_INT", "not-a-number")
	assert.Equal(t, 7, envInt("SOME_INT", 7))
	assert.Equal(t, 7, envInt("SOME_INT_UNSET", 7))
}
