package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time provides the request timeout constant
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. The types reflect how the values are used in the
// application: strings for identifiers and secrets, ints for durations and
// costs.
type Config struct {
	Env              string // application environment (e.g. "dev", "prod")
	Port             string // HTTP port to listen on
	DBUser           string // database username
	DBPass           string // database password (optional)
	DBHost           string // database host address
	DBPort           string // database port number
	DBName           string // database name
	JWTSecret        string // secret used to sign JWTs
	AccessTTLSec     int    // access token time-to-live in seconds
	RefreshTTLSec    int    // refresh token time-to-live in seconds
	RevocationTTLMin int    // lifetime of revocation markers in minutes
	BcryptCost       int    // bcrypt cost for password hashing
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values cause
// the program to exit with a fatal log message. Token lifetimes fall back to
// defaults (1h access, 7d refresh, 60m revocation window) when unset.
func Load() Config {
	return Config{
		Env:              must("APP_ENV"),      // environment (dev/test/prod)
		Port:             must("APP_PORT"),     // port to bind the HTTP server
		DBUser:           must("DB_USER"),      // database user
		DBPass:           os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:           must("DB_HOST"),      // database host
		DBPort:           must("DB_PORT"),      // database port
		DBName:           must("DB_NAME"),      // database name
		JWTSecret:        must("JWT_SECRET"),   // secret used for signing JWTs
		AccessTTLSec:     envInt("ACCESS_TOKEN_TTL_SEC", 3600),
		RefreshTTLSec:    envInt("REFRESH_TOKEN_TTL_SEC", 604800),
		RevocationTTLMin: envInt("REVOCATION_TTL_MIN", 60),
		BcryptCost:       envInt("BCRYPT_COST", 10),
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

// envInt reads an optional integer variable, returning def when the value
// is unset or not a valid integer.
func envInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// Timeout applied to every repository call made on behalf of a request.
const RequestTimeout = 5 * time.Second
