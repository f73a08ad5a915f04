package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// Thresholds are the alert limits for pushed metric samples, in percent.
type Thresholds struct {
	CPU    float64 `yaml:"cpu"`
	Memory float64 `yaml:"memory"`
	Disk   float64 `yaml:"disk"`
}

// Config carries runtime options for procdash.
type Config struct {
	BaseURL         string        `yaml:"base_url"`
	WSPath          string        `yaml:"ws_path"`
	Local           bool          `yaml:"local"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	SearchDebounce  time.Duration `yaml:"search_debounce"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	AnalysisTimeout time.Duration `yaml:"analysis_timeout"`
	Thresholds      Thresholds    `yaml:"thresholds"`
	ExportDir       string        `yaml:"export_dir"`
	StateFile       string        `yaml:"state_file"`
	LogFile         string        `yaml:"log_file"`
	LogLevel        string        `yaml:"log_level"`
	MuteAlerts      bool          `yaml:"mute_alerts"`
	JSON            bool          `yaml:"-"`

	// ConfigFile is where the YAML options were read from, if anywhere.
	ConfigFile string `yaml:"-"`
}

func Default() Config {
	return Config{
		BaseURL:         "http://localhost:5000",
		WSPath:          "/ws",
		RefreshInterval: 2 * time.Second,
		SearchDebounce:  200 * time.Millisecond,
		RequestTimeout:  10 * time.Second,
		AnalysisTimeout: 2 * time.Minute,
		Thresholds:      Thresholds{CPU: 80, Memory: 80, Disk: 90},
		ExportDir:       ".",
		StateFile:       filepath.Join(stateDir(), "state.yaml"),
		LogFile:         filepath.Join(stateDir(), "procdash.log"),
		LogLevel:        "info",
	}
}

// FromFlags parses flags, the optional YAML file they name, and environment
// overrides. Precedence is default < file < flags < environment.
func FromFlags(args []string) (Config, error) {
	cfg := Default()
	fs := flag.NewFlagSet("procdash", flag.ContinueOnError)
	configFile := fs.String("config", defaultConfigFile(), "YAML config file")
	fs.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "monitoring backend base URL")
	fs.StringVar(&cfg.WSPath, "ws-path", cfg.WSPath, "push channel path under the base URL")
	fs.BoolVar(&cfg.Local, "local", cfg.Local, "monitor this host instead of a backend")
	fs.DurationVar(&cfg.RefreshInterval, "interval", cfg.RefreshInterval, "process list refresh interval")
	fs.DurationVar(&cfg.SearchDebounce, "debounce", cfg.SearchDebounce, "search input debounce")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "timeout for refresh and process actions")
	fs.DurationVar(&cfg.AnalysisTimeout, "analysis-timeout", cfg.AnalysisTimeout, "timeout for analysis requests")
	fs.Float64Var(&cfg.Thresholds.CPU, "cpu-threshold", cfg.Thresholds.CPU, "CPU alert threshold (%)")
	fs.Float64Var(&cfg.Thresholds.Memory, "mem-threshold", cfg.Thresholds.Memory, "memory alert threshold (%)")
	fs.Float64Var(&cfg.Thresholds.Disk, "disk-threshold", cfg.Thresholds.Disk, "disk alert threshold (%)")
	fs.StringVar(&cfg.ExportDir, "export-dir", cfg.ExportDir, "directory for CSV exports")
	fs.StringVar(&cfg.StateFile, "state-file", cfg.StateFile, "file holding the theme preference")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "log file path")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug|info|warn|error")
	fs.BoolVar(&cfg.MuteAlerts, "mute", cfg.MuteAlerts, "start with alerts muted")
	fs.BoolVar(&cfg.JSON, "json", cfg.JSON, "print the process list as JSON and exit")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if *configFile != "" {
		if err := cfg.mergeFile(*configFile); err != nil {
			return cfg, err
		}
		// parse again so explicit flags win over the file
		if err := fs.Parse(args); err != nil {
			return cfg, err
		}
	}

	cfg.applyEnv()
	cfg.Thresholds = cfg.Thresholds.Clamp()
	return cfg, cfg.Validate()
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && path == defaultConfigFile() {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err = yaml.UnmarshalStrict(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	c.ConfigFile = path
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PROCDASH_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("PROCDASH_WS_PATH"); v != "" {
		c.WSPath = v
	}
	if v := os.Getenv("PROCDASH_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			c.RefreshInterval = parsed
		} else if parsed, err2 := time.ParseDuration(v + "s"); err2 == nil {
			c.RefreshInterval = parsed
		}
	}
	if v := os.Getenv("PROCDASH_LOCAL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Local = b
		}
	}
	if v := os.Getenv("PROCDASH_MUTE"); v == "1" {
		c.MuteAlerts = true
	}
	if v := os.Getenv("PROCDASH_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate rejects options the dashboard cannot run with.
func (c Config) Validate() error {
	if !c.Local {
		u, err := url.Parse(c.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("base url %q must be an absolute http(s) URL", c.BaseURL)
		}
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", c.RefreshInterval)
	}
	if c.SearchDebounce < 0 {
		return fmt.Errorf("search debounce must not be negative, got %s", c.SearchDebounce)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return lvl, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// Clamp keeps every threshold within [1, 100].
func (t Thresholds) Clamp() Thresholds {
	clamp := func(v float64) float64 { return max(1, min(100, v)) }
	return Thresholds{CPU: clamp(t.CPU), Memory: clamp(t.Memory), Disk: clamp(t.Disk)}
}

func configDir() string {
	if d, err := os.UserConfigDir(); err == nil {
		return filepath.Join(d, "procdash")
	}
	return ".procdash"
}

func stateDir() string {
	if d := os.Getenv("XDG_STATE_HOME"); d != "" {
		return filepath.Join(d, "procdash")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", "procdash")
	}
	return ".procdash"
}

func defaultConfigFile() string {
	return filepath.Join(configDir(), "config.yaml")
}
