package env

import (
	"os"
	"strconv"
	"time"
)

// GetString returns the value of the environment variable or the fallback.
func GetString(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return val
}

// GetInt returns the value of the environment variable parsed as an int,
// or the fallback if unset or unparsable.
func GetInt(key string, fallback int) int {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	valAsInt, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return valAsInt
}

// GetBool returns the value of the environment variable parsed as a bool,
// or the fallback if unset or unparsable.
func GetBool(key string, fallback bool) bool {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	valAsBool, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return valAsBool
}

// GetDuration returns the value of the environment variable parsed as a
// time.Duration, or the fallback if unset or unparsable.
func GetDuration(key string, fallback time.Duration) time.Duration {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	valAsDuration, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return valAsDuration
}
