package config

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvLocal      = "local"
	EnvProduction = "production"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Env        string     `yaml:"env" env:"VIDEOS_ENV" env-default:"production"`
	HTTPServer HTTPServer `yaml:"http_server"`
	Storage    Storage    `yaml:"storage"`
	PGSQL      PQSQL      `yaml:"pgsql"`
	Redis      Redis      `yaml:"redis"`
	RateLimit  RateLimit  `yaml:"rate_limit"`
}

type HTTPServer struct {
	Address string `yaml:"address" env:"VIDEOS_HTTP_ADDRESS" env-default:"localhost:8080"`
}

type Storage struct {
	Driver           string `yaml:"driver" env:"VIDEOS_STORAGE_DRIVER" env-default:"sqlite"`
	SQLitePath       string `yaml:"sqlite_path" env:"VIDEOS_SQLITE_PATH" env-default:"database.db"`
	AutoCreateSchema bool   `yaml:"auto_create_schema" env:"VIDEOS_AUTO_CREATE_SCHEMA" env-default:"false"`
}

type PQSQL struct {
	Host     string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"PGPORT" env-default:"5432"`
	User     string `yaml:"user" env:"PGUSER" env-default:"postgres"`
	Password string `yaml:"password" env:"PGPASSWORD" env-default:"password"`
	DBName   string `yaml:"dbname" env:"PGDATABASE" env-default:"videos_db"`
	SSLMode  string `yaml:"sslmode" env:"PGSSLMODE" env-default:"disable"`
}

// DSN returns the lib/pq keyword/value connection string.
func (p PQSQL) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// Redis backs the rate limiter. An empty address disables rate limiting.
type Redis struct {
	Address  string `yaml:"address" env:"VIDEOS_REDIS_ADDRESS"`
	Password string `yaml:"password" env:"VIDEOS_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"VIDEOS_REDIS_DB" env-default:"0"`
}

type RateLimit struct {
	WritesPerMinute int64 `yaml:"writes_per_minute" env:"VIDEOS_WRITES_PER_MINUTE" env-default:"60"`
}

// Load reads the config file at path and applies environment overrides.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist at path: %s", path)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}

	if c.RateLimit.WritesPerMinute <= 0 {
		return fmt.Errorf("rate_limit.writes_per_minute must be positive, got %d", c.RateLimit.WritesPerMinute)
	}

	return nil
}

func MustLoad() *Config {
	var configPath string

	configPath = os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to config file")
		flag.Parse()
		configPath = *flags

		if configPath == "" {
			log.Fatal("config path must be provided")
		}
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	return cfg
}
