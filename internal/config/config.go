package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/bubbleseg/internal/detection"
)

// Environment variables that override the configuration file.
const (
	EnvLogLevel = "BUBBLESEG_LOG_LEVEL"
	EnvDebugDir = "BUBBLESEG_DEBUG_DIR"
)

// Config holds everything bubbleseg reads from its YAML file.
type Config struct {
	LogLevel  string           `yaml:"log_level"`
	Detection detection.Params `yaml:"detection"`
	Overlay   OverlayConfig    `yaml:"overlay"`
	Debug     DebugConfig      `yaml:"debug"`
}

// OverlayConfig controls the full-scan overlay image.
type OverlayConfig struct {
	Color  string `yaml:"color"`
	Labels bool   `yaml:"labels"`
	Output string `yaml:"output"`
}

// DebugConfig controls per-stage debug image dumps.
type DebugConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
	Scale   int    `yaml:"scale"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		LogLevel:  "info",
		Detection: detection.DefaultParams(),
		Overlay: OverlayConfig{
			Color:  "#00FF00",
			Output: "final_img.png",
		},
		Debug: DebugConfig{
			Dir:   "debug",
			Scale: 1,
		},
	}
}

// Load reads the YAML file at path on top of the defaults, applies
// environment overrides and validates the result. An empty path skips the
// file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		cfg.LogLevel = lvl
	}
	if dir := os.Getenv(EnvDebugDir); dir != "" {
		cfg.Debug.Enabled = true
		cfg.Debug.Dir = dir
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every inconsistent setting at once.
func (c Config) Validate() error {
	var errs []error
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if err := c.Detection.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("detection: %w", err))
	}
	if c.Overlay.Output == "" {
		errs = append(errs, errors.New("overlay.output must not be empty"))
	}
	if c.Debug.Enabled && c.Debug.Dir == "" {
		errs = append(errs, errors.New("debug.dir must be set when debug is enabled"))
	}
	if c.Debug.Scale < 0 {
		errs = append(errs, fmt.Errorf("debug.scale must not be negative, got %d", c.Debug.Scale))
	}
	return errors.Join(errs...)
}

// NewLogger builds a stderr logger at the configured level. Stdout stays
// free for results.
func (c Config) NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if lvl, err := logrus.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	return log
}
