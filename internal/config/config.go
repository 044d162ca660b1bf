package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile        = ".env"
	defaultAppPort        = "8000"
	defaultLogLevel       = "info"
	defaultPasswordCodec  = "plain"
	defaultRequestTimeout = 10 * time.Second
	defaultShutdownGrace  = 10 * time.Second
	defaultMongoTimeout   = 10 * time.Second
)

type Config struct {
	DatabaseURL string

	MongoURI            string
	MongoDBName         string
	MongoCollectionName string
	MongoConnectTimeout time.Duration

	NatsURL      string
	AppPort      string
	LogLevel     string
	OtelEndpoint string

	PasswordEncoder string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// Load reads the optional env file (ENV_FILE, default .env) and then the
// process environment. It is called once at startup.
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	return FromEnv()
}

// LoadForMigrations is Load for the migrate subcommand, which only talks to
// Postgres and so only requires the database URL.
func LoadForMigrations() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	cfg, err := readEnv()
	if err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("missing required configuration: DATABASE_URL")
	}

	return cfg, nil
}

func FromEnv() (*Config, error) {
	cfg, err := readEnv()
	if err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadEnvFile() error {
	envFile := lookupEnv("ENV_FILE", defaultEnvFile)
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}

	return nil
}

func readEnv() (*Config, error) {
	cfg := &Config{
		DatabaseURL:         lookupEnv("DATABASE_URL", buildDatabaseURL()),
		MongoURI:            os.Getenv("MONGO_CONNECTION_STRING"),
		MongoDBName:         os.Getenv("MONGO_DB_NAME"),
		MongoCollectionName: os.Getenv("MONGO_COLLECTION_NAME"),
		NatsURL:             os.Getenv("NATS_URL"),
		AppPort:             lookupEnv("APP_PORT", defaultAppPort),
		LogLevel:            lookupEnv("LOG_LEVEL", defaultLogLevel),
		OtelEndpoint:        os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		PasswordEncoder:     lookupEnv("PASSWORD_ENCODER", defaultPasswordCodec),
	}

	var err error
	if cfg.RequestTimeout, err = lookupEnvDuration("REQUEST_TIMEOUT", defaultRequestTimeout); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = lookupEnvDuration("SHUTDOWN_TIMEOUT", defaultShutdownGrace); err != nil {
		return nil, err
	}
	if cfg.MongoConnectTimeout, err = lookupEnvDuration("MONGO_CONNECT_TIMEOUT", defaultMongoTimeout); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string

	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.MongoURI == "" {
		missing = append(missing, "MONGO_CONNECTION_STRING")
	}
	if c.MongoDBName == "" {
		missing = append(missing, "MONGO_DB_NAME")
	}
	if c.MongoCollectionName == "" {
		missing = append(missing, "MONGO_COLLECTION_NAME")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return nil
}

// buildDatabaseURL assembles a Postgres URL from the DB_* variables when all
// of them are present.
func buildDatabaseURL() string {
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbName := os.Getenv("DB_NAME")

	if dbUser == "" || dbHost == "" || dbName == "" {
		return ""
	}
	if dbPort == "" {
		dbPort = "5432"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPassword, dbHost, dbPort, dbName,
	)
}

func lookupEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func lookupEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}

	return d, nil
}
