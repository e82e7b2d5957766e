// Package simulator serves an in-memory stand-in for the services an export
// touches: the Blob service (path-style, one account), the ARM storage
// listKeys call and the DAC import/export endpoint.
package simulator

import (
	"os"
	"strconv"
)

// DefaultAccountKey is the key of the simulated account when none is configured.
const DefaultAccountKey = "c2ltdWxhdG9yLWFjY291bnQta2V5LWZvci1kYmV4cG9ydA=="

// Config holds the simulator server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":4570").
	ListenAddr string

	// LogLevel is the zerolog log level (trace, debug, info, warn, error).
	LogLevel string

	// AccountName and AccountKey identify the single simulated storage account.
	AccountName string
	AccountKey  string

	// SQLUser and SQLPassword, when set, are the only login the DAC endpoint
	// accepts; other logins make the export fail with "Login failed".
	SQLUser     string
	SQLPassword string

	// CompleteAfter is the number of status polls an export stays in
	// progress before it completes.
	CompleteAfter int
}

// ConfigFromEnv loads configuration from environment variables.
//
//	SIM_LISTEN_ADDR     listen address (default ":4570")
//	SIM_LOG_LEVEL       log level (default "info")
//	SIM_ACCOUNT_NAME    storage account name (default "devstoreaccount1")
//	SIM_ACCOUNT_KEY     storage account key, base64
//	SIM_SQL_USER        accepted SQL login (optional)
//	SIM_SQL_PASSWORD    accepted SQL password (optional)
//	SIM_COMPLETE_AFTER  status polls before completion (default 1)
func ConfigFromEnv() Config {
	return Config{
		ListenAddr:    envOrDefault("SIM_LISTEN_ADDR", ":4570"),
		LogLevel:      envOrDefault("SIM_LOG_LEVEL", "info"),
		AccountName:   envOrDefault("SIM_ACCOUNT_NAME", "devstoreaccount1"),
		AccountKey:    envOrDefault("SIM_ACCOUNT_KEY", DefaultAccountKey),
		SQLUser:       os.Getenv("SIM_SQL_USER"),
		SQLPassword:   os.Getenv("SIM_SQL_PASSWORD"),
		CompleteAfter: envOrDefaultInt("SIM_COMPLETE_AFTER", 1),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
