package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the startup configuration. The sampling period and alert
// threshold are fixed at build time and deliberately not configurable here.
type Config struct {
	// Listen is the address the HTTP server binds to.
	Listen string `yaml:"listen"`

	// AllowedOrigins restricts browser origins for CORS. Empty allows any
	// non-empty origin, matching local-only use.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// HistoryDB is the SQLite file snapshots are persisted to.
	HistoryDB string `yaml:"history_db"`

	// HistoryRetention is how long history points are kept.
	HistoryRetention Duration `yaml:"history_retention"`

	// SettingsPath overrides the OS-specific editor settings location.
	SettingsPath string `yaml:"settings_path"`

	// Gemini configures the recommendation provider. The API key is never
	// read from this file; it comes from the GEMINI_API_KEY environment
	// variable (a .env file is honored).
	Gemini GeminiConfig `yaml:"gemini"`
}

// GeminiConfig holds non-secret generative AI settings.
type GeminiConfig struct {
	Model  string `yaml:"model"`
	APIKey string `yaml:"-"`
}

// Duration wraps time.Duration for yaml decoding of values like "24h".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Listen:           "localhost:8080",
		HistoryDB:        "devmon.db",
		HistoryRetention: Duration(24 * time.Hour),
		Gemini: GeminiConfig{
			Model: "gemini-1.5-flash-002",
		},
	}
}

// Load reads the yaml config at path, overlaying it on the defaults, then
// pulls secrets from the environment. A missing file is not an error; a
// malformed one is. An existing .env file is loaded first so GEMINI_API_KEY
// can live there.
func Load(path string) (*Config, error) {
	// Ignore a missing .env; environment variables still apply.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if cfg.Listen == "" {
		cfg.Listen = "localhost:8080"
	}
	if cfg.HistoryDB == "" {
		cfg.HistoryDB = "devmon.db"
	}
	if cfg.HistoryRetention <= 0 {
		cfg.HistoryRetention = Duration(24 * time.Hour)
	}
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = "gemini-1.5-flash-002"
	}

	cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")

	return cfg, nil
}
