package util

import "os"

// EnvOrDefault returns the environment variable value or fallback when it is empty.
func EnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// Override replaces *dst with value unless value is empty.
func Override(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
