package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

type (
	Config struct {
		Server  ServerConfig  `yaml:"server"`
		Mongo   MongoConfig   `yaml:"mongo"`
		Redis   RedisConfig   `yaml:"redis"`
		Auth    AuthConfig    `yaml:"auth"`
		Logging LoggingConfig `yaml:"logging"`
	}

	ServerConfig struct {
		Addr string `yaml:"addr"`
	}

	MongoConfig struct {
		URI      string `yaml:"uri"`
		Database string `yaml:"database"`
	}

	RedisConfig struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	}

	AuthConfig struct {
		JWTSecret string `yaml:"jwt_secret"`
	}

	LoggingConfig struct {
		Level string `yaml:"level"`
	}
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads a YAML configuration file. Values in the form ${VAR} are
// expanded from the environment before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		name := envVarPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(name)))
	})

	cfg := Default()
	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret must be set")
	}
	return cfg, nil
}

// Default returns a configuration suitable for local development, except
// for the JWT secret which has no default.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: "localhost:9090"},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "chat",
		},
		Redis:   RedisConfig{Addr: "localhost:6379"},
		Logging: LoggingConfig{Level: "info"},
	}
}
