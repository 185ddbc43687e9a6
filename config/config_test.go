package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("LOCALAPPDATA", "")
	t.Setenv("FARCHAT_ENDPOINT", "")
	t.Setenv("FARCHAT_DATA_DIR", "")
	t.Setenv("FARCHAT_BENCH_HOST", "")
	return home
}

func TestLoadCreatesDefaults(t *testing.T) {
	home := setupHome(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000/api/chat", cfg.ChatURL())
	assert.Equal(t, []string{"Sum", "Average", "LinearRegression"}, cfg.Functions)
	assert.False(t, cfg.UseFAR)
	assert.False(t, cfg.ShowErrors)
	assert.Equal(t, "deepseek-r1:32b", cfg.BenchModel)
	assert.Equal(t, 100, cfg.BenchNumPredict)
	require.NotNil(t, cfg.Keybindings)

	assert.FileExists(t, filepath.Join(home, ".config", "farchat", "settings.toml"))
	assert.FileExists(t, filepath.Join(cfg.DataDir(), "config.toml"))
	assert.FileExists(t, filepath.Join(cfg.DataDir(), "keybindings.toml"))

	info, err := os.Stat(cfg.DataDir())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestLoadUserConfigOverrides(t *testing.T) {
	setupHome(t)
	dataDir := t.TempDir()
	t.Setenv("FARCHAT_DATA_DIR", dataDir)

	userToml := `
[endpoint]
host = "http://chat.internal:8080/"
path = "v2/chat"

[chat]
functions = ["Sum", " Median ", "Sum", ""]
use_far = true
show_errors = true
`
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "config.toml"), []byte(userToml), 0600))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://chat.internal:8080/v2/chat", cfg.ChatURL())
	assert.Equal(t, []string{"Sum", "Median"}, cfg.Functions)
	assert.True(t, cfg.UseFAR)
	assert.True(t, cfg.ShowErrors)
	// bench section absent: defaults survive
	assert.Equal(t, "http://localhost:11434", cfg.BenchHost)
}

func TestLoadEnvOverrides(t *testing.T) {
	setupHome(t)
	t.Setenv("FARCHAT_DATA_DIR", t.TempDir())
	t.Setenv("FARCHAT_ENDPOINT", "http://override:9000")
	t.Setenv("FARCHAT_BENCH_HOST", "http://gpu-box:11434")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://override:9000/api/chat", cfg.ChatURL())
	assert.Equal(t, "http://gpu-box:11434", cfg.BenchHost)
}

func TestLoadRejectsMalformedUserConfig(t *testing.T) {
	setupHome(t)
	dataDir := t.TempDir()
	t.Setenv("FARCHAT_DATA_DIR", dataDir)
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "config.toml"), []byte("[endpoint\nhost="), 0600))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load user config")
}

func TestChatURL(t *testing.T) {
	tests := []struct {
		host, path, want string
	}{
		{"http://localhost:3000", "/api/chat", "http://localhost:3000/api/chat"},
		{"http://localhost:3000/", "/api/chat", "http://localhost:3000/api/chat"},
		{"http://localhost:3000", "", "http://localhost:3000/api/chat"},
		{"http://localhost:3000", "chat", "http://localhost:3000/chat"},
	}
	for _, tt := range tests {
		cfg := &Config{EndpointHost: tt.host, EndpointPath: tt.path}
		assert.Equal(t, tt.want, cfg.ChatURL())
	}
}

func TestExpandPath(t *testing.T) {
	home := setupHome(t)
	t.Setenv("FARCHAT_TEST_DIR", "/srv/data")

	assert.Equal(t, filepath.Join(home, "chats"), ExpandPath("~/chats"))
	assert.Equal(t, filepath.Clean("/srv/data/x"), ExpandPath("$FARCHAT_TEST_DIR/x"))
	assert.Equal(t, "", ExpandPath(""))
}
