package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Gateway  GatewayConfig  `yaml:"gateway"`
	Worker   WorkerConfig   `yaml:"worker"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
}

const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

type StorageConfig struct {
	Driver                  string `yaml:"driver"`
	PendingSearchTTLSeconds int    `yaml:"pending_search_ttl_seconds"`
	SessionTTLHours         int    `yaml:"session_ttl_hours"`
	LockTTLSeconds          int    `yaml:"lock_ttl_seconds"`
}

func (s StorageConfig) PendingSearchTTL() time.Duration {
	return time.Duration(s.PendingSearchTTLSeconds) * time.Second
}

func (s StorageConfig) SessionTTL() time.Duration {
	return time.Duration(s.SessionTTLHours) * time.Hour
}

func (s StorageConfig) LockTTL() time.Duration {
	return time.Duration(s.LockTTLSeconds) * time.Second
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers     []string `yaml:"brokers"`
	EventsTopic string   `yaml:"events_topic"`
	GroupID     string   `yaml:"group_id"`
}

const (
	GatewayREST   = "rest"
	GatewaySample = "sample"
)

type GatewayConfig struct {
	Mode                  string `yaml:"mode"`
	BaseURL               string `yaml:"base_url"`
	TimeoutSeconds        int    `yaml:"timeout_seconds"`
	SampleDelayMillis     int    `yaml:"sample_delay_ms"`
	SearchCacheTTLSeconds int    `yaml:"search_cache_ttl_seconds"`
}

func (g GatewayConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

func (g GatewayConfig) SampleDelay() time.Duration {
	return time.Duration(g.SampleDelayMillis) * time.Millisecond
}

func (g GatewayConfig) SearchCacheTTL() time.Duration {
	return time.Duration(g.SearchCacheTTLSeconds) * time.Second
}

type WorkerConfig struct {
	PurgeSweepMinutes int `yaml:"purge_sweep_minutes"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Default returns the settings used for keys the config file leaves out.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{Address: ":8080"},
		Storage: StorageConfig{
			Driver:                  StorageMemory,
			PendingSearchTTLSeconds: 1800,
			LockTTLSeconds:          30,
		},
		Gateway: GatewayConfig{
			Mode:                  GatewaySample,
			TimeoutSeconds:        10,
			SampleDelayMillis:     800,
			SearchCacheTTLSeconds: 60,
		},
		Worker: WorkerConfig{PurgeSweepMinutes: 10},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageMemory, StorageRedis, StoragePostgres:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Gateway.Mode {
	case GatewaySample:
	case GatewayREST:
		if c.Gateway.BaseURL == "" {
			return fmt.Errorf("gateway.base_url is required in %s mode", GatewayREST)
		}
	default:
		return fmt.Errorf("unknown gateway mode %q", c.Gateway.Mode)
	}
	return nil
}
