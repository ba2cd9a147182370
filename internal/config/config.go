package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port          string `yaml:"port"`
		AllowedOrigin string `yaml:"allowed_origin"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Quiz struct {
		BankPath string `yaml:"bank_path"`
		MaxWeek  int    `yaml:"max_week"`
		SeenTTL  string `yaml:"seen_ttl"`
	} `yaml:"quiz"`
	Auth struct {
		EmailDomain  string `yaml:"email_domain"`
		CookieName   string `yaml:"cookie_name"`
		CookieSecure bool   `yaml:"cookie_secure"`
	} `yaml:"auth"`
	Audit struct {
		Dir string `yaml:"dir"`
	} `yaml:"audit"`
}

// Default returns the settings used when no config file is present.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Server.AllowedOrigin = "http://localhost:5173"
	cfg.Redis.TTL = "12h"
	cfg.Quiz.MaxWeek = 16
	cfg.Quiz.SeenTTL = "10m"
	cfg.Auth.EmailDomain = "uniandes.edu.co"
	cfg.Auth.CookieName = "quiz_session"
	return cfg
}

// Load reads YAML config from path on top of Default. A missing file is not an
// error. Environment variables win over the file.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.AllowedOrigin, "ALLOWED_ORIGIN")
	setString(&cfg.Postgres.URL, "DATABASE_URL")
	setString(&cfg.SQLite.Path, "SQLITE_PATH")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Quiz.BankPath, "QUIZ_BANK_PATH")
	setString(&cfg.Audit.Dir, "AUDIT_DIR")
	setString(&cfg.Auth.EmailDomain, "EMAIL_DOMAIN")
	if v, err := strconv.Atoi(os.Getenv("QUIZ_MAX_WEEK")); err == nil && v > 0 {
		cfg.Quiz.MaxWeek = v
	}
	if v, err := strconv.ParseBool(os.Getenv("COOKIE_SECURE")); err == nil {
		cfg.Auth.CookieSecure = v
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
