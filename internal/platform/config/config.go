// Package config loads the server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full server configuration. Every field comes from the
// environment; unset optional fields fall back to their defaults.
type Config struct {
	// Addr is the listen address of the HTTP server.
	Addr string `env:"ADDR" envDefault:":8080"`

	// AdminPassword gates the staff dashboard. When empty, admin login
	// is disabled.
	AdminPassword string `env:"ADMIN_PASSWORD"`

	// RunMigrations enables schema auto-migration on startup.
	RunMigrations bool `env:"RUN_MIGRATIONS" envDefault:"false"`

	JWT       JWT       `envPrefix:"JWT_"`
	DB        Database  `envPrefix:"DB_"`
	Redis     Redis     `envPrefix:"REDIS_"`
	RateLimit RateLimit `envPrefix:"RATE_LIMIT_"`
}

// JWT configures admin token signing.
type JWT struct {
	Secret string        `env:"SECRET"`
	TTL    time.Duration `env:"TTL" envDefault:"12h"`
}

// Database configures the MySQL connection.
type Database struct {
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	Host     string `env:"HOST" envDefault:"127.0.0.1"`
	Port     string `env:"PORT" envDefault:"3306"`
	Name     string `env:"NAME"`

	// Instance is the Cloud SQL instance connection name. When set, the
	// connection goes through the unix socket instead of TCP.
	Instance string `env:"INSTANCE"`
}

// DSN builds the MySQL connection string.
func (d Database) DSN() string {
	if d.Instance != "" {
		return fmt.Sprintf("%s:%s@unix(/cloudsql/%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
			d.User, d.Password, d.Instance, d.Name)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// Redis configures the summary cache connection.
type Redis struct {
	Host     string `env:"HOST" envDefault:"127.0.0.1"`
	Port     string `env:"PORT" envDefault:"6379"`
	Password string `env:"PASSWORD"`
}

// Addr returns the host:port address of the Redis server.
func (r Redis) Addr() string {
	return r.Host + ":" + r.Port
}

// RateLimit configures the per-IP limiter on the lookup endpoints.
type RateLimit struct {
	Limit  int           `env:"LIMIT" envDefault:"10"`
	Window time.Duration `env:"WINDOW" envDefault:"60s"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	return &cfg, nil
}
