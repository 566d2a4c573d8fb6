package app

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries everything the client core needs: endpoint, identity, the
// timing knobs for animation/polling/flushing, and defaults for generation
// requests. Intervals are stored in milliseconds so the YAML stays plain
// integers.
type Config struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
	UserID  string `yaml:"user_id"`

	DefaultWordCount int      `yaml:"default_word_count"`
	DefaultSections  []string `yaml:"default_sections"`

	AnimateIntervalMS int `yaml:"animate_interval_ms"`
	PollIntervalMS    int `yaml:"poll_interval_ms"`
	// MaxPollAttempts bounds remote polling; 0 polls until the job resolves.
	MaxPollAttempts int `yaml:"max_poll_attempts"`
	FlushIntervalMS int `yaml:"flush_interval_ms"`
	BatchThreshold  int `yaml:"batch_threshold"`

	Theme   string `yaml:"theme"`
	DataDir string `yaml:"data_dir"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:           "https://api.vakya.ai/api",
		DefaultWordCount:  3000,
		DefaultSections:   DefaultSections(),
		AnimateIntervalMS: 2000,
		PollIntervalMS:    5000,
		MaxPollAttempts:   120,
		FlushIntervalMS:   10000,
		BatchThreshold:    5,
		Theme:             "dark",
	}
}

// DefaultSections is the canonical paper outline the backend generates when
// the caller does not narrow it.
func DefaultSections() []string {
	return []string{
		"abstract",
		"introduction",
		"methodology",
		"results",
		"discussion",
		"conclusion",
		"references",
	}
}

func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return applyEnv(cfg), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return applyEnv(cfg), nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.vakya.ai/api"
	}
	if cfg.DefaultWordCount <= 0 {
		cfg.DefaultWordCount = 3000
	}
	if len(cfg.DefaultSections) == 0 {
		cfg.DefaultSections = DefaultSections()
	}
	if cfg.AnimateIntervalMS <= 0 {
		cfg.AnimateIntervalMS = 2000
	}
	if cfg.PollIntervalMS <= 0 {
		cfg.PollIntervalMS = 5000
	}
	if cfg.MaxPollAttempts < 0 {
		cfg.MaxPollAttempts = 0
	}
	if cfg.FlushIntervalMS <= 0 {
		cfg.FlushIntervalMS = 10000
	}
	if cfg.BatchThreshold <= 0 {
		cfg.BatchThreshold = 5
	}
	if cfg.Theme == "" {
		cfg.Theme = "dark"
	}
	return applyEnv(cfg), nil
}

func applyEnv(cfg Config) Config {
	if cfg.Token == "" {
		cfg.Token = os.Getenv("ANUSHANDHAN_TOKEN")
	}
	if v := os.Getenv("ANUSHANDHAN_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if cfg.UserID == "" {
		cfg.UserID = os.Getenv("ANUSHANDHAN_USER_ID")
	}
	return cfg
}

func SaveConfig(cfg Config, path string) error {
	if path == "" {
		return errors.New("no path provided for config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func DefaultConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "anushandhan", "config.yml")
}

func (c Config) AnimateInterval() time.Duration {
	return time.Duration(c.AnimateIntervalMS) * time.Millisecond
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

func (c Config) FlushInterval() time.Duration {
	return time.Duration(c.FlushIntervalMS) * time.Millisecond
}
