// Package config loads runtime configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime settings. The signing secret is loaded once
// here and never mutated afterwards; there is no runtime rotation.
type Config struct {
	Env            string // application environment (dev/test/prod)
	Port           string // HTTP port to listen on
	DBUser         string
	DBPass         string // optional
	DBHost         string
	DBPort         string
	DBName         string
	JWTSecret      string // HS256 signing secret, process-wide
	AccessTTL      time.Duration
	RefreshTTL     time.Duration
	BcryptCost     int
	CookieSecure   bool   // Secure attribute on auth cookies
	CookieDomain   string // optional cookie domain
	AMQPURL        string // optional; empty disables event publishing
}

// Load reads configuration from the environment. Required variables abort
// startup when missing; the rest default to 5m access tokens and 7d
// refresh tokens.
func Load() Config {
	return Config{
		Env:          envStr("APP_ENV", "dev"),
		Port:         must("APP_PORT"),
		DBUser:       must("DB_USER"),
		DBPass:       os.Getenv("DB_PASS"),
		DBHost:       must("DB_HOST"),
		DBPort:       must("DB_PORT"),
		DBName:       must("DB_NAME"),
		JWTSecret:    must("JWT_SECRET"),
		AccessTTL:    envDur("ACCESS_TOKEN_TTL", 5*time.Minute),
		RefreshTTL:   envDur("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		BcryptCost:   envInt("BCRYPT_COST", 12),
		CookieSecure: envBool("COOKIE_SECURE", false),
		CookieDomain: os.Getenv("COOKIE_DOMAIN"),
		AMQPURL:      os.Getenv("RABBITMQ_URL"),
	}
}

// must retrieves a required environment variable or aborts startup.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", k, v)
	}
	return n
}

func envBool(k string, d bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	dur, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("invalid duration for %s: %q", k, v)
	}
	return dur
}
