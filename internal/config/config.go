package config // package config loads application configuration from environment variables

import (
	"log" // log is used to report configuration errors and halt execution
	"os"  // os provides access to environment variables
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Durations are expressed in the unit named by the
// variable so operators never guess.
type Config struct {
	Env               string // application environment (e.g. "dev", "prod")
	Port              string // HTTP port to listen on
	DBUser            string // database username
	DBPass            string // database password (optional)
	DBHost            string // database host address
	DBPort            string // database port number
	DBName            string // database name
	JWTSecret         string // secret used to verify access tokens
	SeatHoldTTLMin    int    // seat session lifetime in minutes
	ReaperIntervalSec int    // seconds between expired-session sweeps
	SearchWindowDays  int    // days of flights loaded per search window (date .. date+N)
	MinTransferMin    int    // default minimum connection time in minutes
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message. Tunables fall back
// to defaults matching the production system.
func Load() Config {
	return Config{
		Env:               must("APP_ENV"),
		Port:              must("APP_PORT"),
		DBUser:            must("DB_USER"),
		DBPass:            os.Getenv("DB_PASS"), // empty allowed
		DBHost:            must("DB_HOST"),
		DBPort:            must("DB_PORT"),
		DBName:            must("DB_NAME"),
		JWTSecret:         must("JWT_SECRET"),
		SeatHoldTTLMin:    envInt("SEAT_HOLD_TTL_MIN", 13),
		ReaperIntervalSec: envInt("REAPER_INTERVAL_SEC", 60),
		SearchWindowDays:  envInt("SEARCH_WINDOW_DAYS", 2),
		MinTransferMin:    envInt("MIN_TRANSFER_MIN", 45),
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
