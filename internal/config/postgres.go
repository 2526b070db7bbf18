package config

import (
	"fmt"
	"time"
)

type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	Username        string        `yaml:"username"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
}

func loadPostgresConfig() *PostgresConfig {
	return &PostgresConfig{
		Host:            getEnv("POSTGRES_HOST", "localhost"),
		Port:            getEnvAsInt("POSTGRES_PORT", 5432),
		Database:        getEnv("POSTGRES_DATABASE", "ecoride"),
		Username:        getEnv("POSTGRES_USERNAME", "ecoride"),
		Password:        getEnv("POSTGRES_PASSWORD", ""),
		SSLMode:         getEnv("POSTGRES_SSL_MODE", "disable"),
		MaxOpenConns:    getEnvAsInt("POSTGRES_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvAsInt("POSTGRES_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvAsDuration("POSTGRES_CONN_MAX_LIFETIME", 30*time.Minute),
		ConnectTimeout:  getEnvAsDuration("POSTGRES_CONNECT_TIMEOUT", 10*time.Second),
	}
}

func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.Password, c.Database, c.SSLMode)
}
