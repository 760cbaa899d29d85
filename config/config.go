// Package config reads runtime configuration for Lambda-backed services:
// plain environment variables, KMS-encrypted environment variables, and
// Secrets Manager secrets parsed into flat maps.
package config

import (
	"fmt"
	"os"
)

// MissingVariableError reports a required environment variable that is not
// set. It carries the variable name so startup failures are actionable.
type MissingVariableError struct {
	Name string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("%s env var is missing", e.Name)
}

// EnvVar returns the named environment variable, failing with a
// MissingVariableError when it is unset or empty.
func EnvVar(name string) (string, error) {
	value := os.Getenv(name)
	if value == "" {
		return "", &MissingVariableError{Name: name}
	}
	return value, nil
}

// EnvVarDefault returns the named environment variable, or fallback when it
// is unset or empty.
func EnvVarDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}
