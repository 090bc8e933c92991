package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App      AppSettings      `mapstructure:"app"`
	StaffAPI StaffAPISettings `mapstructure:"staff_api"`
	Session  SessionSettings  `mapstructure:"session"`
	Lockout  LockoutSettings  `mapstructure:"lockout"`
	Store    StoreSettings    `mapstructure:"store"`
	Redis    RedisSettings    `mapstructure:"redis"`
	Kafka    KafkaSettings    `mapstructure:"kafka"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// StaffAPISettings configures the remote staff REST API boundary.
type StaffAPISettings struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SessionSettings configures session lifetime rules.
type SessionSettings struct {
	InactivityTimeout time.Duration `mapstructure:"inactivity_timeout"`
	VerifyInterval    time.Duration `mapstructure:"verify_interval"`
	SweepInterval     time.Duration `mapstructure:"sweep_interval"`
}

// LockoutSettings configures the client-side login throttle.
type LockoutSettings struct {
	MaxAttempts   int           `mapstructure:"max_attempts"`
	BlockDuration time.Duration `mapstructure:"block_duration"`
}

// StoreSettings selects and configures the persisted session backend.
type StoreSettings struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

// RedisSettings configures the Redis connection used by the redis store backend.
type RedisSettings struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	DB         int    `mapstructure:"db"`
	Password   string `mapstructure:"password"`
	TLSEnabled bool   `mapstructure:"tls_enabled"`
	KeyPrefix  string `mapstructure:"key_prefix"`
}

// KafkaSettings configures the audit event producer. Empty brokers disable
// Kafka and fall back to the logging stub publisher.
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("GATEWAY")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"staff_api.base_url",
		"staff_api.timeout",
		"session.inactivity_timeout",
		"session.verify_interval",
		"session.sweep_interval",
		"lockout.max_attempts",
		"lockout.block_duration",
		"store.backend",
		"store.path",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"redis.key_prefix",
		"kafka.brokers",
		"kafka.topic_prefix",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "admin-gateway")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8090)

	v.SetDefault("staff_api.base_url", "http://localhost:5000")
	v.SetDefault("staff_api.timeout", "30s")

	v.SetDefault("session.inactivity_timeout", "30m")
	v.SetDefault("session.verify_interval", "5m")
	v.SetDefault("session.sweep_interval", "1m")

	v.SetDefault("lockout.max_attempts", 5)
	v.SetDefault("lockout.block_duration", "15m")

	v.SetDefault("store.backend", "file")
	v.SetDefault("store.path", "./data/session.json")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)
	v.SetDefault("redis.key_prefix", "gateway:session")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic_prefix", "staff")
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "GATEWAY_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
