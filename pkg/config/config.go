package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/aryan0dhankhar/tasktracker/pkg/database"
)

// DevJWTSecret is the signing key used when none is configured.
// It is refused in production.
const DevJWTSecret = "tasktracker-dev-secret"

// Store drivers accepted by STORE_DRIVER
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Config holds the application configuration
type Config struct {
	Environment        string
	ServerPort         int
	LogLevel           string
	JWTSecret          string
	JWTIssuer          string
	TokenTTL           time.Duration
	BcryptCost         int
	StoreDriver        string
	DB                 database.Config
	MongoURI           string
	MongoDatabase      string
	RedisURL           string
	ProfileCacheTTL    time.Duration
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration
	OTLPEndpoint       string
}

// IsProduction reports whether ENVIRONMENT is production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// UsesDevSecret reports whether tokens are signed with the built-in development key
func (c *Config) UsesDevSecret() bool {
	return c.JWTSecret == DevJWTSecret
}

// Load reads configuration from defaults, an optional CONFIG_FILE and
// environment variables, in increasing precedence.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	dbDefaults := database.DefaultConfig()
	cfg := &Config{
		Environment: v.GetString("environment"),
		ServerPort:  v.GetInt("server_port"),
		LogLevel:    v.GetString("log_level"),
		JWTSecret:   v.GetString("jwt_secret"),
		JWTIssuer:   v.GetString("jwt_issuer"),
		TokenTTL:    v.GetDuration("token_ttl"),
		BcryptCost:  v.GetInt("bcrypt_cost"),
		StoreDriver: strings.ToLower(v.GetString("store_driver")),
		DB: database.Config{
			Host:            v.GetString("db_host"),
			Port:            v.GetInt("db_port"),
			User:            v.GetString("db_user"),
			Password:        v.GetString("db_password"),
			Database:        v.GetString("db_name"),
			SSLMode:         v.GetString("db_sslmode"),
			MaxOpenConns:    dbDefaults.MaxOpenConns,
			MaxIdleConns:    dbDefaults.MaxIdleConns,
			ConnMaxLifetime: dbDefaults.ConnMaxLifetime,
		},
		MongoURI:           v.GetString("mongo_uri"),
		MongoDatabase:      v.GetString("mongo_database"),
		RedisURL:           v.GetString("redis_url"),
		ProfileCacheTTL:    v.GetDuration("profile_cache_ttl"),
		CORSAllowedOrigins: parseCSV(v.GetString("cors_allowed_origins")),
		ShutdownTimeout:    v.GetDuration("shutdown_timeout"),
		OTLPEndpoint:       v.GetString("otel_exporter_otlp_endpoint"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and refuses unsafe production settings
func (c *Config) Validate() error {
	var errs []error
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid SERVER_PORT: %d", c.ServerPort))
	}
	switch c.StoreDriver {
	case DriverMemory, DriverPostgres, DriverMongo:
	default:
		errs = append(errs, fmt.Errorf("invalid STORE_DRIVER %q: must be memory, postgres or mongo", c.StoreDriver))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("invalid BCRYPT_COST: %d", c.BcryptCost))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	} else if c.UsesDevSecret() && (c.IsProduction() || c.StoreDriver != DriverMemory) {
		errs = append(errs, errors.New("JWT_SECRET must be set in production and for persistent stores"))
	}
	if c.StoreDriver == DriverMongo && c.MongoURI == "" {
		errs = append(errs, errors.New("MONGO_URI is required for the mongo driver"))
	}
	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	db := database.DefaultConfig()
	v.SetDefault("environment", "development")
	v.SetDefault("server_port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("jwt_secret", DevJWTSecret)
	v.SetDefault("jwt_issuer", "tasktracker")
	v.SetDefault("token_ttl", 7*24*time.Hour)
	v.SetDefault("bcrypt_cost", 10)
	v.SetDefault("store_driver", DriverMemory)
	v.SetDefault("db_host", db.Host)
	v.SetDefault("db_port", db.Port)
	v.SetDefault("db_user", db.User)
	v.SetDefault("db_password", db.Password)
	v.SetDefault("db_name", db.Database)
	v.SetDefault("db_sslmode", db.SSLMode)
	v.SetDefault("mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("mongo_database", "tasktracker")
	v.SetDefault("redis_url", "")
	v.SetDefault("profile_cache_ttl", 5*time.Minute)
	v.SetDefault("cors_allowed_origins", "http://localhost:5173,http://localhost:3000")
	v.SetDefault("shutdown_timeout", 30*time.Second)
	v.SetDefault("otel_exporter_otlp_endpoint", "")
}

func parseCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
