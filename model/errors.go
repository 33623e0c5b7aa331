package model

import "fmt"

// ConfigurationError reports invalid construction arguments. These are
// programming errors; callers should fail fast rather than continue.
type ConfigurationError struct {
	Component string
	Reason    string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Reason)
}

// Misconfigured is shorthand for building a ConfigurationError.
func Misconfigured(component, format string, args ...any) error {
	return &ConfigurationError{Component: component, Reason: fmt.Sprintf(format, args...)}
}
