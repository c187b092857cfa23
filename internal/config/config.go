// Package config loads application settings from the environment, with an
// optional .env file for local development. Availability of the item store
// and the generation providers is exposed as functions over current config so
// callers re-check on every operation instead of caching the answer.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "ARCANUM"

type Config struct {
	v *viper.Viper
}

// Load reads the .env file (best effort) and binds environment variables
// under the ARCANUM_ prefix with sensible defaults.
func Load() *Config {
	_ = LoadEnv()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("server.port", "8080")
	v.SetDefault("database.path", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("image.api_key", "")
	v.SetDefault("image.model", "gemini-2.5-flash-image-preview")
	v.SetDefault("generation.timeout_seconds", 120)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.development", false)

	return &Config{v: v}
}

func (c *Config) ServerPort() string { return c.v.GetString("server.port") }

func (c *Config) DatabasePath() string { return c.v.GetString("database.path") }

// StoreConfigured reports whether the persistent store can be used. Empty or
// placeholder connection parameters mean every store operation no-ops.
func (c *Config) StoreConfigured() bool {
	return !isPlaceholder(c.DatabasePath())
}

func (c *Config) RedisAddr() string     { return c.v.GetString("redis.addr") }
func (c *Config) RedisPassword() string { return c.v.GetString("redis.password") }
func (c *Config) RedisDB() int          { return c.v.GetInt("redis.db") }

func (c *Config) LLMProvider() string { return c.v.GetString("llm.provider") }
func (c *Config) LLMAPIKey() string   { return c.v.GetString("llm.api_key") }
func (c *Config) LLMModel() string    { return c.v.GetString("llm.model") }

// GenerationConfigured reports whether text generation credentials are set.
func (c *Config) GenerationConfigured() bool {
	return !isPlaceholder(c.LLMAPIKey())
}

func (c *Config) ImageAPIKey() string { return c.v.GetString("image.api_key") }
func (c *Config) ImageModel() string  { return c.v.GetString("image.model") }

// ImageConfigured reports whether image generation credentials are set.
func (c *Config) ImageConfigured() bool {
	return !isPlaceholder(c.ImageAPIKey())
}

// GenerationTimeout bounds each outbound generation call.
func (c *Config) GenerationTimeout() time.Duration {
	secs := c.v.GetInt("generation.timeout_seconds")
	if secs <= 0 {
		secs = 120
	}
	return time.Duration(secs) * time.Second
}

func (c *Config) LogLevel() string     { return c.v.GetString("log.level") }
func (c *Config) LogFormat() string    { return c.v.GetString("log.format") }
func (c *Config) LogDevelopment() bool { return c.v.GetBool("log.development") }

func isPlaceholder(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return true
	}
	lower := strings.ToLower(value)
	return lower == "changeme" || strings.HasPrefix(lower, "your-") || strings.HasPrefix(lower, "your_")
}

// FindProjectRoot walks up from the working directory to the nearest go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

// LoadEnv loads the project-root .env file if one exists.
func LoadEnv() error {
	root, err := FindProjectRoot()
	if err != nil {
		return err
	}
	return godotenv.Load(filepath.Join(root, ".env"))
}
