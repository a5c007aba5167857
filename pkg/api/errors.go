package api

import (
	"fmt"
	"strings"
)

// ConfigurationError is a fatal problem with the configuration or test input.
type ConfigurationError struct {
	File string
	Line int
	Err  error
}

func (e *ConfigurationError) Error() string {
	switch {
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("configuration error: %s:%d: %v", e.File, e.Line, e.Err)
	case e.File != "":
		return fmt.Sprintf("configuration error: %s: %v", e.File, e.Err)
	default:
		return fmt.Sprintf("configuration error: %v", e.Err)
	}
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// DependencyError reports context keys a step needed but no earlier step provided.
type DependencyError struct {
	CallType string
	Missing  []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: missing dependencies: %s", e.CallType, strings.Join(e.Missing, ", "))
}

// UnknownCallTypeError reports a call type with no registered handler.
type UnknownCallTypeError struct {
	CallType string
}

func (e *UnknownCallTypeError) Error() string {
	return fmt.Sprintf("unknown call type %q", e.CallType)
}
