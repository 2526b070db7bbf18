package config

import (
	"fmt"
	"time"
)

type RedisConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Password        string        `yaml:"password"`
	DB              int           `yaml:"db"`
	PoolSize        int           `yaml:"pool_size"`
	MinIdleConns    int           `yaml:"min_idle_conns"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	DialTimeout     time.Duration `yaml:"dial_timeout"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
}

func loadRedisConfig() *RedisConfig {
	return &RedisConfig{
		Host:            getEnv("REDIS_HOST", "localhost"),
		Port:            getEnvAsInt("REDIS_PORT", 6379),
		Password:        getEnv("REDIS_PASSWORD", ""),
		DB:              getEnvAsInt("REDIS_DB", 0),
		PoolSize:        getEnvAsInt("REDIS_POOL_SIZE", 10),
		MinIdleConns:    getEnvAsInt("REDIS_MIN_IDLE_CONNS", 3),
		ConnMaxIdleTime: getEnvAsDuration("REDIS_CONN_MAX_IDLE_TIME", 5*time.Minute),
		DialTimeout:     getEnvAsDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:     getEnvAsDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout:    getEnvAsDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
	}
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
