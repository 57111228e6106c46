package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata" // challenge.timezone must resolve on hosts without zoneinfo

	"github.com/spf13/viper"
)

// HomeEnv overrides the directory holding config.yaml and the database
const HomeEnv = "JOBSEEKER_HOME"

// Config holds the application configuration
type Config struct {
	DatabasePath string          `mapstructure:"database_path"`
	CurrentUser  string          `mapstructure:"current_user"`
	Server       ServerConfig    `mapstructure:"server"`
	Auth         AuthConfig      `mapstructure:"auth"`
	Log          LogConfig       `mapstructure:"log"`
	Challenge    ChallengeConfig `mapstructure:"challenge"`
	Import       ImportConfig    `mapstructure:"import"`
}

type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type ChallengeConfig struct {
	// Timezone is an IANA name; its midnight separates challenge days
	Timezone string `mapstructure:"timezone"`
}

type ImportConfig struct {
	UseBrowser bool          `mapstructure:"use_browser"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// Location resolves the challenge timezone
func (c *Config) Location() (*time.Location, error) {
	if c.Challenge.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Challenge.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid challenge.timezone %q: %w", c.Challenge.Timezone, err)
	}
	return loc, nil
}

var AppConfig *Config

// secretKeys are never printed by the CLI
var secretKeys = map[string]bool{"auth.jwt_secret": true}

// IsSecret reports whether key holds a credential
func IsSecret(key string) bool {
	return secretKeys[key]
}

// Home returns $JOBSEEKER_HOME, or ~/.jobseeker when unset
func Home() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".jobseeker"), nil
}

// Initialize loads or creates the configuration file
func Initialize() error {
	configDir, err := Home()
	if err != nil {
		return err
	}
	configFile := filepath.Join(configDir, "config.yaml")

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Create default config if it doesn't exist
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err := createDefaultConfig(configFile); err != nil {
			return err
		}
	}

	viper.SetConfigFile(configFile)
	viper.SetConfigType("yaml")

	// Set defaults
	viper.SetDefault("database_path", filepath.Join(configDir, "jobseeker.db"))
	viper.SetDefault("current_user", "")
	viper.SetDefault("server.addr", ":8888")
	viper.SetDefault("server.request_timeout", "15s")
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:8888"})
	viper.SetDefault("auth.jwt_secret", "")
	viper.SetDefault("auth.token_ttl", "168h")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.development", false)
	viper.SetDefault("challenge.timezone", "UTC")
	viper.SetDefault("import.use_browser", false)
	viper.SetDefault("import.timeout", "30s")

	// JOBSEEKER_AUTH_JWT_SECRET overrides auth.jwt_secret
	viper.SetEnvPrefix("JOBSEEKER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	// Unmarshal into struct
	AppConfig = &Config{}
	if err := viper.Unmarshal(AppConfig); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return nil
}

// createDefaultConfig creates a default config file with a fresh signing secret
func createDefaultConfig(path string) error {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return fmt.Errorf("failed to generate jwt secret: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# Jobseeker Configuration
server:
  addr: ":8888"
  request_timeout: 15s
  allowed_origins:
    - http://localhost:8888

# Session tokens (keep this file secure!)
auth:
  jwt_secret: "%s"
  token_ttl: 168h

log:
  level: info
  development: false

# Daily challenges reset at midnight in this zone
challenge:
  timezone: UTC

# Fetching postings for "job add --url"
import:
  use_browser: false
  timeout: 30s
`, hex.EncodeToString(secret))
	return os.WriteFile(path, []byte(defaultConfig), 0600)
}

// Set updates a configuration value
func Set(key, value string) error {
	viper.Set(key, value)
	if err := viper.WriteConfig(); err != nil {
		return err
	}
	if AppConfig != nil {
		return viper.Unmarshal(AppConfig)
	}
	return nil
}

// Get retrieves a configuration value
func Get(key string) string {
	return viper.GetString(key)
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	dir, _ := Home()
	return filepath.Join(dir, "config.yaml")
}
