// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Server        ServerConfig       `mapstructure:"server"`
	Groq          GroqConfig         `mapstructure:"groq"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Memory        MemoryConfig       `mapstructure:"memory"`
	Whatsapp      WhatsappConfig     `mapstructure:"whatsapp"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	// BotEnabled is the startup value of the global bot switch. Runtime
	// toggling happens through the conversation engine, not here.
	BotEnabled bool `mapstructure:"bot_enabled"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// GroqConfig drives the AI provider chain. Models are tried in order, one
// attempt each.
type GroqConfig struct {
	APIKey         string   `mapstructure:"api_key"`
	BaseURL        string   `mapstructure:"base_url"`
	Models         []string `mapstructure:"models"`
	RequestTimeout int      `mapstructure:"request_timeout"` // seconds
	ConnectTimeout int      `mapstructure:"connect_timeout"` // seconds
	MaxConcurrent  int      `mapstructure:"max_concurrent"`
	QueueTimeout   int      `mapstructure:"queue_timeout"` // seconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// MemoryConfig selects the backing for the fallback conversation memory.
type MemoryConfig struct {
	Backend string `mapstructure:"backend"` // "inmem" or "redis"
	TTL     int    `mapstructure:"ttl"`     // seconds, redis backend only
}

// WhatsappConfig points at the Node session service the server proxies to.
type WhatsappConfig struct {
	APIURL  string `mapstructure:"api_url"`
	Timeout int    `mapstructure:"timeout"` // seconds
}

// NotificationConfig holds settings for dispatch notifications.
type NotificationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
		SES    struct {
			Enabled   bool   `mapstructure:"enabled"`
			FromEmail string `mapstructure:"from_email"`
			FleetDesk string `mapstructure:"fleet_desk"`
		} `mapstructure:"ses"`
		SNS struct {
			Enabled            bool   `mapstructure:"enabled"`
			TopicARN           string `mapstructure:"topic_arn"`
			DefaultSMSSenderID string `mapstructure:"default_sms_sender_id"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
