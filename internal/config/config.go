package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Storage     StorageConfig     `yaml:"storage"`
	Database    DatabaseConfig    `yaml:"database"`
	RabbitMQ    RabbitMQConfig    `yaml:"rabbitmq"`
	Redis       RedisConfig       `yaml:"redis"`
	Kitchen     KitchenConfig     `yaml:"kitchen"`
	Log         LogConfig         `yaml:"log"`
	Maintenance MaintenanceConfig `yaml:"maintenance"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
}

type DatabaseConfig struct {
	// URL, when set, wins over the individual fields.
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int    `yaml:"max_conns"`
}

// ConnString builds a postgres URL understood by pgx.
func (c DatabaseConfig) ConnString() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.Name,
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{c.SSLMode}}.Encode()
	}
	return u.String()
}

type RabbitMQConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

func (c RabbitMQConfig) URL() string {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/",
	}
	return u.String()
}

type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type KitchenConfig struct {
	WorkerName string        `yaml:"worker_name"`
	Prefetch   int           `yaml:"prefetch"`
	PrepTime   time.Duration `yaml:"prep_time"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type MaintenanceConfig struct {
	StaleAfter time.Duration `yaml:"stale_after"`
	PurgeAfter time.Duration `yaml:"purge_after"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            3000,
			RequestTimeout:  5 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{Driver: StorageMemory},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "theo",
			Password: "theo",
			Name:     "theo_eats",
			SSLMode:  "disable",
			MaxConns: 10,
		},
		RabbitMQ: RabbitMQConfig{
			Host:     "localhost",
			Port:     5672,
			User:     "guest",
			Password: "guest",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
			TTL:  5 * time.Minute,
		},
		Kitchen: KitchenConfig{
			WorkerName: "kitchen-1",
			Prefetch:   1,
			PrepTime:   5 * time.Second,
		},
		Log: LogConfig{Level: "info"},
		Maintenance: MaintenanceConfig{
			StaleAfter: time.Hour,
			PurgeAfter: 30 * 24 * time.Hour,
		},
	}
}

// Load reads an optional .env file, then path when it exists, then the
// environment. Later sources win.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse yaml: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Storage.Driver, "STORAGE")
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.Database.Host, "DB_HOST")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.Name, "DB_NAME")
	setString(&c.RabbitMQ.Host, "RABBITMQ_HOST")
	setString(&c.RabbitMQ.User, "RABBITMQ_USER")
	setString(&c.RabbitMQ.Password, "RABBITMQ_PASSWORD")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Log.Level, "LOG_LEVEL")

	for name, dst := range map[string]*int{
		"PORT":          &c.Server.Port,
		"DB_PORT":       &c.Database.Port,
		"RABBITMQ_PORT": &c.RabbitMQ.Port,
	} {
		if err := setInt(dst, name); err != nil {
			return err
		}
	}

	for name, dst := range map[string]*bool{
		"RABBITMQ_ENABLED": &c.RabbitMQ.Enabled,
		"REDIS_ENABLED":    &c.Redis.Enabled,
	} {
		if err := setBool(dst, name); err != nil {
			return err
		}
	}
	return nil
}

func setString(dst *string, name string) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, name string) error {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, name string) error {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	*dst = b
	return nil
}

func (c *Config) Validate() error {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch c.Storage.Driver {
	case StorageMemory, StoragePostgres:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Storage.Driver == StoragePostgres && c.Database.URL == "" && (c.Database.Host == "" || c.Database.Name == "") {
		return fmt.Errorf("database host and name are required for postgres storage")
	}
	if c.Kitchen.Prefetch <= 0 {
		return fmt.Errorf("kitchen prefetch must be positive")
	}
	if c.Kitchen.PrepTime < 0 {
		return fmt.Errorf("kitchen prep_time must not be negative")
	}
	return nil
}
