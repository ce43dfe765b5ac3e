package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"time"

	cenv "github.com/caarlos0/env/v9"
	"github.com/chasedut/docchat/internal/env"
)

const (
	appName = "docchat"
	// FileName is the config file kept in the data directory.
	FileName = "docchat.json"

	DefaultServerURL      = "http://localhost:5000"
	DefaultRequestTimeout = 60 * time.Second

	envPrefix  = "DOCCHAT_"
	envDataDir = envPrefix + "DATA_DIR"
)

// Duration is a time.Duration that reads and writes as "30s" in both JSON
// and the environment.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	if d == 0 {
		return []byte(""), nil
	}
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", b, err)
	}
	if v < 0 {
		return fmt.Errorf("invalid duration %q: must not be negative", b)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type Config struct {
	// ServerURL is the root of the document-question-answering service.
	ServerURL string `json:"server_url,omitempty" env:"SERVER_URL" jsonschema:"description=Root URL of the service,default=http://localhost:5000"`
	// RequestTimeout bounds each HTTP call. Zero waits forever.
	RequestTimeout Duration `json:"request_timeout,omitempty" env:"REQUEST_TIMEOUT" jsonschema:"description=Per-request timeout such as 30s; 0s for none,default=60s"`
	// RenderMarkdown renders answers as markdown instead of stripping it.
	RenderMarkdown bool `json:"render_markdown,omitempty" env:"RENDER_MARKDOWN" jsonschema:"description=Render answers as markdown,default=false"`
	Debug          bool `json:"debug,omitempty" env:"DEBUG" jsonschema:"description=Enable debug logging,default=false"`

	// DataDirectory holds the database, log and config file. It is chosen
	// before the config file is read, so it is never stored in it.
	DataDirectory string `json:"-"`
}

// Init loads the configuration from the process environment. debug forces
// debug logging on.
func Init(dataDir string, debug bool) (*Config, error) {
	cfg, err := Load(dataDir, env.New())
	if err != nil {
		return nil, err
	}
	if debug {
		cfg.Debug = true
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		ServerURL:      DefaultServerURL,
		RequestTimeout: Duration(DefaultRequestTimeout),
	}
}

// Load builds the configuration from defaults, the config file in the data
// directory and the environment, in increasing precedence. An empty dataDir
// falls back to DOCCHAT_DATA_DIR and then the platform default.
func Load(dataDir string, e env.Env) (*Config, error) {
	if dataDir == "" {
		dataDir = e.Get(envDataDir)
	}
	if dataDir == "" {
		dataDir = DefaultDataDir(e)
	}

	cfg := defaults()
	if err := readFile(filepath.Join(dataDir, FileName), cfg); err != nil {
		return nil, err
	}
	if err := cenv.ParseWithOptions(cfg, cenv.Options{
		Environment: e.Map(),
		Prefix:      envPrefix,
	}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	cfg.DataDirectory = dataDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields that would otherwise fail late.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid server url %q", c.ServerURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid server url %q: scheme must be http or https", c.ServerURL)
	}
	return nil
}

// ConfigPath returns the config file location for this configuration.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.DataDirectory, FileName)
}

// DefaultDataDir returns the per-user data directory.
func DefaultDataDir(e env.Env) string {
	if xdg := e.Get("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	if runtime.GOOS == "windows" {
		if local := e.Get("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, appName)
		}
	}
	home := e.Get("HOME")
	if home == "" {
		if h, err := os.UserHomeDir(); err == nil {
			home = h
		}
	}
	return filepath.Join(home, ".local", "share", appName)
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}
