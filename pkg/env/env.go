// Package env reads process environment variables with fallbacks, for the
// few knobs that have to resolve before config loading (log format, ports).
package env

import (
	"os"
	"strconv"
)

// Get reads key from the environment, returning fallback when unset or empty.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// GetInt reads key as a base-10 integer, returning fallback when unset,
// empty, or unparsable.
func GetInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
