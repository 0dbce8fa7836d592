package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration parsed from YAML.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Generation GenerationConfig `yaml:"generation"`
	Stream     StreamConfig     `yaml:"stream"`
}

// ServerConfig defines listener and static-asset configuration.
type ServerConfig struct {
	Port      int    `yaml:"port"`
	StaticDir string `yaml:"static_dir"`
}

// GenerationConfig carries the request defaults sent to every provider.
type GenerationConfig struct {
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// StreamConfig bounds a single generation stream. Zero values disable
// the corresponding limit.
type StreamConfig struct {
	MaxBytes    int64         `yaml:"max_bytes"`
	MaxDuration time.Duration `yaml:"max_duration"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:      5173,
			StaticDir: "dist",
		},
		Generation: GenerationConfig{
			Temperature: 0.7,
			MaxTokens:   16384,
		},
		Stream: StreamConfig{
			MaxBytes:    8 << 20,
			MaxDuration: 5 * time.Minute,
		},
	}
}

// Load reads YAML configuration from disk and validates the result.
// An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return Config{}, fmt.Errorf("resolve config path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return Config{}, fmt.Errorf("read config file %q: %w", absPath, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file %q: %w", absPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate performs strict sanity checks on the configuration.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be a valid TCP port, got %d", c.Server.Port)
	}
	if c.Generation.Temperature < 0 || c.Generation.Temperature > 2 {
		return fmt.Errorf("generation.temperature must be within [0, 2], got %v", c.Generation.Temperature)
	}
	if c.Generation.MaxTokens <= 0 {
		return fmt.Errorf("generation.max_tokens must be positive, got %d", c.Generation.MaxTokens)
	}
	if c.Stream.MaxBytes < 0 {
		return fmt.Errorf("stream.max_bytes must not be negative, got %d", c.Stream.MaxBytes)
	}
	if c.Stream.MaxDuration < 0 {
		return fmt.Errorf("stream.max_duration must not be negative, got %v", c.Stream.MaxDuration)
	}
	return nil
}

// LoadEnv loads credentials from a .env file in the working directory,
// if one exists. Missing files are not an error for the caller to act
// on; variables already set in the environment take precedence.
func LoadEnv() error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	return godotenv.Load(filepath.Join(wd, ".env"))
}
