package config

import (
	"fmt"
	"time"
)

// Delivery scopes for freshly persisted messages.
const (
	DeliveryScopeParticipants = "participants"
	DeliveryScopeSender       = "sender"
)

// Chat definition chat_service YAML structure
type Chat struct {
	Port string `mapstructure:"port"`

	PostgreSQL DatabaseConfig `mapstructure:"pg"`
	Redis      RedisConfig    `mapstructure:"redis"`
	Kafka      KafkaConfig    `mapstructure:"kafka"`

	Token      TokenConfig   `mapstructure:"token"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`

	WebSocket     WebSocketConfig `mapstructure:"websocket"`
	DeliveryScope string          `mapstructure:"delivery_scope"`
	History       HistoryConfig   `mapstructure:"history"`
	Pprof         PprofConfig     `mapstructure:"pprof"`
}

// RedisConfig definition redis setting; Addr wins over sentinels.
type RedisConfig struct {
	Addr       string   `mapstructure:"addr"`
	MasterName string   `mapstructure:"master_name"`
	Sentinels  []string `mapstructure:"sentinels"`
	RedisDB    int      `mapstructure:"redis_db"`
	Password   string   `mapstructure:"password"`
}

// Enabled reports whether any redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != "" || len(r.Sentinels) > 0
}

// KafkaConfig definition kafka setting
type KafkaConfig struct {
	Brokers       []string `mapstructure:"brokers"`
	Topic         string   `mapstructure:"topic"`
	RetryInterval int      `mapstructure:"retry_interval"`
	RetryCount    int      `mapstructure:"retry_count"`
}

// TokenConfig definition jwt setting
type TokenConfig struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// WebSocketConfig definition persistent channel setting
type WebSocketConfig struct {
	PingInterval time.Duration `mapstructure:"ping_interval"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// HistoryConfig definition history paging
type HistoryConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

// PprofConfig definition pprof server
type PprofConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	SSLMode       string `mapstructure:"ssl_mode"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// DSN builds a postgres connection string usable by both pgx and gorm.
func (d DatabaseConfig) DSN() string {
	ssl := d.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s", d.User, d.Password, d.Host, d.Port, d.Database, ssl)
}

// Normalize fills defaults for everything left empty in yaml.
func (c *Chat) Normalize() {
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.PostgreSQL.RetryCount <= 0 {
		c.PostgreSQL.RetryCount = 5
	}
	if c.PostgreSQL.RetryInterval <= 0 {
		c.PostgreSQL.RetryInterval = 2
	}
	if c.Kafka.RetryCount <= 0 {
		c.Kafka.RetryCount = 3
	}
	if c.Kafka.RetryInterval <= 0 {
		c.Kafka.RetryInterval = 2
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "chat.messages"
	}
	if c.Token.Issuer == "" {
		c.Token.Issuer = "chat_service"
	}
	if c.Token.TTL <= 0 {
		c.Token.TTL = 60 * time.Minute
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = c.Token.TTL
	}
	if c.WebSocket.PingInterval <= 0 {
		c.WebSocket.PingInterval = 30 * time.Second
	}
	if c.WebSocket.WriteTimeout <= 0 {
		c.WebSocket.WriteTimeout = 10 * time.Second
	}
	if c.DeliveryScope != DeliveryScopeSender {
		c.DeliveryScope = DeliveryScopeParticipants
	}
	if c.History.DefaultLimit <= 0 {
		c.History.DefaultLimit = 100
	}
	if c.History.MaxLimit < c.History.DefaultLimit {
		c.History.MaxLimit = 500
		if c.History.MaxLimit < c.History.DefaultLimit {
			c.History.MaxLimit = c.History.DefaultLimit
		}
	}
	if c.Pprof.Addr == "" {
		c.Pprof.Addr = "127.0.0.1:6060"
	}
}
