package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultChatPath is the fixed path of the chat endpoint on the backend host.
const DefaultChatPath = "/api/chat"

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type EndpointConfig struct {
	Host string `toml:"host"`
	Path string `toml:"path"`
}

type ChatConfig struct {
	Functions  []string `toml:"functions"`
	UseFAR     bool     `toml:"use_far"`
	ShowErrors bool     `toml:"show_errors"`
}

type BenchConfig struct {
	Host       string `toml:"host"`
	Model      string `toml:"model"`
	NumPredict int    `toml:"num_predict"`
}

type UserConfig struct {
	Endpoint EndpointConfig `toml:"endpoint"`
	Chat     ChatConfig     `toml:"chat"`
	Bench    BenchConfig    `toml:"bench"`
}

type Config struct {
	DataDirectory string
	EndpointHost  string
	EndpointPath  string

	// Functions is the catalog of backend function names the user may enable.
	Functions  []string
	UseFAR     bool
	ShowErrors bool

	BenchHost       string
	BenchModel      string
	BenchNumPredict int

	Keybindings *KeyBindingsConfig
}

var Debug = false

// DebugLog is nil unless FARCHAT_DEBUG is set. Callers must nil-check.
var DebugLog *zap.SugaredLogger

// ChatURL joins the endpoint host and path.
func (c *Config) ChatURL() string {
	path := c.EndpointPath
	if path == "" {
		path = DefaultChatPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(c.EndpointHost, "/") + path
}

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) applyUserConfig(userCfg *UserConfig) {
	c.EndpointHost = userCfg.Endpoint.Host
	c.EndpointPath = userCfg.Endpoint.Path
	c.UseFAR = userCfg.Chat.UseFAR
	c.ShowErrors = userCfg.Chat.ShowErrors
	if len(userCfg.Chat.Functions) > 0 {
		c.Functions = normalizeCatalog(userCfg.Chat.Functions)
	}
	if userCfg.Bench.Host != "" {
		c.BenchHost = userCfg.Bench.Host
	}
	if userCfg.Bench.Model != "" {
		c.BenchModel = userCfg.Bench.Model
	}
	if userCfg.Bench.NumPredict > 0 {
		c.BenchNumPredict = userCfg.Bench.NumPredict
	}
}

func (c *Config) applyEnvOverrides() {
	if endpoint := os.Getenv("FARCHAT_ENDPOINT"); endpoint != "" {
		c.EndpointHost = endpoint
	}
	if dataDir := os.Getenv("FARCHAT_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if host := os.Getenv("FARCHAT_BENCH_HOST"); host != "" {
		c.BenchHost = host
	}
}

// normalizeCatalog trims names and drops blanks and duplicates, keeping order.
func normalizeCatalog(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func CheckDebug() bool {
	debug := os.Getenv("FARCHAT_DEBUG")
	return debug == "true" || debug == "1"
}

func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// 0600: the log holds request bodies
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05.000000")
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(f), zapcore.DebugLevel)
	DebugLog = zap.New(core, zap.AddCaller()).Sugar()
	DebugLog.Infof("=== Debug logging started (FARCHAT_DEBUG=%s) ===", os.Getenv("FARCHAT_DEBUG"))
	DebugLog.Infof("Log path: %s", logPath)
}

// CloseDebugLog flushes the debug log if it was opened.
func CloseDebugLog() {
	if DebugLog != nil {
		_ = DebugLog.Sync()
	}
}

func Load() (*Config, error) {
	cfg := &Config{
		DataDirectory:   GetDefaultDataDir(),
		EndpointHost:    "http://localhost:3000",
		EndpointPath:    DefaultChatPath,
		Functions:       DefaultFunctions(),
		BenchHost:       "http://localhost:11434",
		BenchModel:      "deepseek-r1:32b",
		BenchNumPredict: 100,
	}

	systemCfg, err := LoadSystemConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load system config: %w", err)
	}
	cfg.DataDirectory = systemCfg.DataDirectory

	// FARCHAT_DATA_DIR must win before the user config is located
	if dataDir := os.Getenv("FARCHAT_DATA_DIR"); dataDir != "" {
		cfg.DataDirectory = dataDir
	}

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	userCfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	cfg.applyUserConfig(userCfg)
	cfg.applyEnvOverrides()

	if cfg.EndpointHost == "" {
		return nil, fmt.Errorf("endpoint host is not configured")
	}

	kb, err := LoadKeybindings(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load keybindings: %w", err)
	}
	cfg.Keybindings = kb

	return cfg, nil
}
