package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_PATH", path)
}

func TestLoadConfigDefaults(t *testing.T) {
	writeConfig(t, `
api:
  baseUrl: "http://127.0.0.1:8000/api/"
ws:
  baseUrl: "ws://127.0.0.1:8000/ws/"
`)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8000/api", cfg.API.BaseURL, "trailing slash trimmed")
	assert.Equal(t, "ws://127.0.0.1:8000/ws", cfg.WS.BaseURL)
	assert.Equal(t, "chat-client", cfg.Logging.Service)
	assert.Equal(t, "dev", cfg.Logging.Env)
	assert.Equal(t, "std", cfg.Logging.Backend)
}

func TestLoadConfigRequiresURLs(t *testing.T) {
	writeConfig(t, `
ws:
  baseUrl: "ws://x/ws"
`)
	_, err := LoadConfig()
	assert.Error(t, err)

	writeConfig(t, `
api:
  baseUrl: "http://x/api"
`)
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigTokenFromEnv(t *testing.T) {
	writeConfig(t, `
api:
  baseUrl: "http://x/api"
ws:
  baseUrl: "ws://x/ws"
auth:
  token: "from-file"
`)
	t.Setenv("CHAT_ACCESS_TOKEN", "from-env")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.Token, "env overrides file")
}
