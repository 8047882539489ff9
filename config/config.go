package config

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type HTTP struct {
	Addr string `yaml:"addr"`
}

type Postgres struct {
	DSN string `yaml:"dsn"`
}

type Logging struct {
	Env       string `yaml:"env"`       // dev|prod
	Service   string `yaml:"service"`   // speak-to-me
	Version   string `yaml:"version"`   // v0.1.0
	Backend   string `yaml:"backend"`   // std|zap
	AddSource bool   `yaml:"addSource"` // false|true
	Debug     bool   `yaml:"debug"`     // false|true
}

type AdminBootstrap struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type Auth struct {
	JWTSecret string         `yaml:"jwtSecret"`
	TokenTTL  string         `yaml:"tokenTTL"` // duration, default 720h
	Admin     AdminBootstrap `yaml:"admin"`
}

type Rooms struct {
	MaxParticipants int    `yaml:"maxParticipants"` // default 2
	CleanupInterval string `yaml:"cleanupInterval"` // default 30s
	IdleTimeout     string `yaml:"idleTimeout"`     // default 10m
}

type ICEServer struct {
	URLs       string `yaml:"urls"`
	Username   string `yaml:"username"`
	Credential string `yaml:"credential"`
}

type TURN struct {
	ICEServers []ICEServer `yaml:"iceServers"`
}

type CORS struct {
	AllowedOrigin string `yaml:"allowedOrigin"`
}

type Config struct {
	HTTP     HTTP     `yaml:"http"`
	Postgres Postgres `yaml:"postgres"`
	Logging  Logging  `yaml:"logging"`
	Auth     Auth     `yaml:"auth"`
	Rooms    Rooms    `yaml:"rooms"`
	TURN     TURN     `yaml:"turn"`
	CORS     CORS     `yaml:"cors"`
}

func LoadConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	if c.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwtSecret is required")
	}
	// установка дефолтов, если значения не указаны
	if c.Logging.Service == "" {
		c.Logging.Service = "speak-to-me"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
	if c.Logging.Version == "" {
		c.Logging.Version = "v0.1.0"
	}
	if c.Logging.Backend == "" {
		c.Logging.Backend = "std"
	}
	if c.Auth.Admin.Username == "" {
		c.Auth.Admin.Username = "admin"
	}
	if c.Rooms.MaxParticipants == 0 {
		c.Rooms.MaxParticipants = 2
	}
	if c.CORS.AllowedOrigin == "" {
		c.CORS.AllowedOrigin = "http://localhost:3000"
	}
	return nil
}

func (c *Config) TokenTTL() time.Duration {
	return parseDurationOr(30*24*time.Hour, c.Auth.TokenTTL)
}

func (c *Config) CleanupInterval() time.Duration {
	return parseDurationOr(30*time.Second, c.Rooms.CleanupInterval)
}

func (c *Config) IdleTimeout() time.Duration {
	return parseDurationOr(10*time.Minute, c.Rooms.IdleTimeout)
}

// helper для парсинга timeout-ов
func parseDurationOr(def time.Duration, s string) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}
