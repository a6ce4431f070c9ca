// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like GROQ_API_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, optional.
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if cfg.Groq.APIKey == "" {
		cfg.Groq.APIKey = os.Getenv("GROQ_API_KEY")
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile tries .env from the working directory upward so tests and the
// binary behave the same regardless of where they are launched.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "logistics-intake"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Groq.BaseURL == "" {
		cfg.Groq.BaseURL = "https://api.groq.com/openai/v1"
	}
	if len(cfg.Groq.Models) == 0 {
		cfg.Groq.Models = []string{"qwen/qwen3-32b", "llama-3.3-70b-versatile"}
	}
	if cfg.Groq.RequestTimeout == 0 {
		cfg.Groq.RequestTimeout = 60
	}
	if cfg.Groq.ConnectTimeout == 0 {
		cfg.Groq.ConnectTimeout = 30
	}
	if cfg.Groq.MaxConcurrent == 0 {
		cfg.Groq.MaxConcurrent = 2
	}
	if cfg.Groq.QueueTimeout == 0 {
		cfg.Groq.QueueTimeout = 60
	}
	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Memory.Backend == "" {
		cfg.Memory.Backend = "inmem"
	}
	if cfg.Memory.TTL == 0 {
		cfg.Memory.TTL = 86400
	}
	if cfg.Whatsapp.APIURL == "" {
		cfg.Whatsapp.APIURL = "http://whatsapp-service:3000"
	}
	if cfg.Whatsapp.Timeout == 0 {
		cfg.Whatsapp.Timeout = 5
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if !viper.IsSet("app.bot_enabled") {
		cfg.App.BotEnabled = true
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Groq.MaxConcurrent < 1 {
		return fmt.Errorf("groq.max_concurrent must be at least 1")
	}
	if len(cfg.Groq.Models) == 0 {
		return fmt.Errorf("groq.models must list at least one model")
	}
	if cfg.Memory.Backend != "inmem" && cfg.Memory.Backend != "redis" {
		return fmt.Errorf("memory.backend must be inmem or redis, got %q", cfg.Memory.Backend)
	}
	return nil
}
