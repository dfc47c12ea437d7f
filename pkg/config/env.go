package config

import (
	"os"
	"strconv"
	"time"
)

// GetEnv returns the environment variable value for key, or def if unset or empty.
func GetEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// GetEnvInt returns the environment variable value for key parsed as int, or def if unset or invalid.
func GetEnvInt(key string, def int) int {
	return getEnvParsed(key, def, strconv.Atoi)
}

// GetEnvDuration returns the environment variable value for key parsed as time.Duration, or def if unset or invalid.
func GetEnvDuration(key string, def time.Duration) time.Duration {
	return getEnvParsed(key, def, time.ParseDuration)
}

// GetEnvBool returns the environment variable value for key parsed by strconv.ParseBool, or def if unset or invalid.
func GetEnvBool(key string, def bool) bool {
	return getEnvParsed(key, def, strconv.ParseBool)
}

func getEnvParsed[T any](key string, def T, parse func(string) (T, error)) T {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	v, err := parse(val)
	if err != nil {
		return def
	}
	return v
}
