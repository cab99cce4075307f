package app

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vladislavdragonenkov/whiskies/internal/health"
	"github.com/vladislavdragonenkov/whiskies/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/whiskies/internal/storage/sqlite"
)

// Поддерживаемые хранилища.
const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
	StorageDriverSQLite   = "sqlite"
)

// Переменные окружения, переопределяющие файл конфигурации.
const (
	EnvConfigPath    = "WHISKY_CONFIG"
	EnvHTTPAddr      = "WHISKY_HTTP_ADDR"
	EnvStorageDriver = "WHISKY_STORAGE_DRIVER"
	EnvPostgresDSN   = "WHISKY_POSTGRES_DSN"
	EnvSQLitePath    = "WHISKY_SQLITE_PATH"
	EnvKafkaBrokers  = "WHISKY_KAFKA_BROKERS"
	EnvLogLevel      = "WHISKY_LOG_LEVEL"
	EnvPort          = "PORT"
)

// Config описывает настройки запуска сервиса каталога.
type Config struct {
	HTTPAddr        string        `yaml:"http_addr"`
	AssetsDir       string        `yaml:"assets_dir"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	StorageDriver string         `yaml:"storage_driver"`
	Postgres      PostgresConfig `yaml:"postgres"`
	SQLite        SQLiteConfig   `yaml:"sqlite"`
	// SeedOnStartup включает заполнение пустого каталога при старте.
	SeedOnStartup bool `yaml:"seed_on_startup"`

	API    APIConfig    `yaml:"api"`
	Health HealthConfig `yaml:"health"`
	Kafka  KafkaConfig  `yaml:"kafka"`
	Log    LogConfig    `yaml:"log"`
}

// PostgresConfig задаёт подключение и пул PostgreSQL.
type PostgresConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

// SQLiteConfig задаёт файл и пул SQLite.
type SQLiteConfig struct {
	Path         string `yaml:"path"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// APIConfig настраивает REST API.
type APIConfig struct {
	// StoreFailureStatus задаёт HTTP-статус для ошибок хранилища.
	StoreFailureStatus int `yaml:"store_failure_status"`
}

// HealthConfig настраивает проверки /healthz и /readyz.
type HealthConfig struct {
	CheckTimeout time.Duration `yaml:"check_timeout"`
}

// KafkaConfig настраивает публикацию изменений каталога. Пустой список брокеров отключает Kafka.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// LogConfig задаёт уровень и формат логов, а также ротацию файла.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// DefaultConfig возвращает настройки для локального запуска без внешних зависимостей.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:        ":8080",
		AssetsDir:       "assets",
		ShutdownTimeout: 5 * time.Second,
		StorageDriver:   StorageDriverMemory,
		SQLite: SQLiteConfig{
			Path: "whisky.db",
		},
		SeedOnStartup: true,
		API: APIConfig{
			StoreFailureStatus: http.StatusNotFound,
		},
		Health: HealthConfig{
			CheckTimeout: health.DefaultCheckTimeout,
		},
		Kafka: KafkaConfig{
			Topic: kafka.TopicCatalogEvents,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  50,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
	}
}

// LoadConfig собирает конфигурацию: значения по умолчанию, затем YAML-файл
// (если path не пуст), затем переменные окружения. Результат проверяется Validate.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path = strings.TrimSpace(path); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if port := strings.TrimSpace(getenv(EnvPort)); port != "" {
		c.HTTPAddr = ":" + port
	}
	if v := strings.TrimSpace(getenv(EnvHTTPAddr)); v != "" {
		c.HTTPAddr = v
	}
	if v := strings.TrimSpace(getenv(EnvStorageDriver)); v != "" {
		c.StorageDriver = strings.ToLower(v)
	}
	if v := strings.TrimSpace(getenv(EnvPostgresDSN)); v != "" {
		c.Postgres.DSN = v
	}
	if v := strings.TrimSpace(getenv(EnvSQLitePath)); v != "" {
		c.SQLite.Path = v
	}
	if v := strings.TrimSpace(getenv(EnvKafkaBrokers)); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.Log.Level = v
	}
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.HTTPAddr) == "" {
		errs = append(errs, errors.New("http_addr is required"))
	}
	switch c.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			errs = append(errs, errors.New("postgres.dsn is required for postgres storage"))
		}
	case StorageDriverSQLite:
		if strings.TrimSpace(c.SQLite.Path) == "" {
			errs = append(errs, errors.New("sqlite.path is required for sqlite storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported storage driver %q", c.StorageDriver))
	}
	if s := c.API.StoreFailureStatus; s < 400 || s > 599 {
		errs = append(errs, fmt.Errorf("api.store_failure_status must be a 4xx or 5xx status, got %d", s))
	}
	if c.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("shutdown_timeout must not be negative"))
	}
	if c.Health.CheckTimeout < 0 {
		errs = append(errs, errors.New("health.check_timeout must not be negative"))
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

func (c Config) sqliteOptions() sqlite.Options {
	return sqlite.Options{MaxOpenConns: c.SQLite.MaxOpenConns, MaxIdleConns: c.SQLite.MaxOpenConns}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
