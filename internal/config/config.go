// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. Policy parameters (operating hours, quotas,
// grace period) do NOT live here: they come from the settings table via
// the settings cache so admins can change them at runtime.
type Config struct {
	Env             string         // application environment (e.g. "dev", "prod")
	Port            string         // HTTP port to listen on
	DBUser          string         // database username
	DBPass          string         // database password (optional)
	DBHost          string         // database host address
	DBPort          string         // database port number
	DBName          string         // database name
	JWTSecret       string         // secret used to sign JWTs
	AccessTTLMin    int            // access token time-to-live in minutes
	RefreshTTLDays  int            // refresh token time-to-live in days
	BcryptCost      int            // bcrypt cost for password hashing
	Location        *time.Location // operating timezone for dates, slots and deadlines
	AMQPURL         string         // message broker URL (empty disables events)
	ReclaimInterval time.Duration  // period of the no-show reclamation sweep
	LogLevel        string         // zerolog level (debug, info, warn, ...)
	LogFormat       string         // "json" or "console"
}

// Load reads configuration from environment variables. Required variables
// are enforced by must(); missing values cause the program to exit with a
// fatal log message.
func Load() Config {
	return Config{
		Env:             must("APP_ENV"),
		Port:            must("APP_PORT"),
		DBUser:          must("DB_USER"),
		DBPass:          os.Getenv("DB_PASS"), // empty allowed
		DBHost:          must("DB_HOST"),
		DBPort:          must("DB_PORT"),
		DBName:          must("DB_NAME"),
		JWTSecret:       must("JWT_SECRET"),
		AccessTTLMin:    mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays:  mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:      mustInt("BCRYPT_COST"),
		Location:        mustLocation(envStr("APP_TZ", "Asia/Seoul")),
		AMQPURL:         os.Getenv("AMQP_URL"), // empty disables the broker
		ReclaimInterval: envDur("RECLAIM_INTERVAL", time.Minute),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		LogFormat:       envStr("LOG_FORMAT", "json"),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string to an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Fatalf("invalid timezone %q: %v", name, err)
	}
	return loc
}

// envStr returns the variable's value or def when unset.
func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envBool parses common truthy/falsy spellings. Unset or unrecognized
// values fall back to def; unrecognized ones are logged so a typo in a
// tunable does not silently disable it.
func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	if v != "" {
		log.Printf("invalid bool for %s: %q, using default %v", key, v, def)
	}
	return def
}

// envInt parses an integer variable, returning def when unset. Invalid
// values are logged and fall back to def.
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid int for %s: %q, using default %d", key, v, def)
		return def
	}
	return n
}

// envDur parses a duration variable, returning def when unset. Invalid
// values are logged and fall back to def.
func envDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid duration for %s: %q, using default %s", key, v, def)
		return def
	}
	return d
}
