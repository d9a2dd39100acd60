package model

import (
	"errors"
	"fmt"
)

// ErrNotFound marks lookups of unregistered agents, teams, sessions, or
// runs. Callers surface it as a client error, never retried.
var ErrNotFound = errors.New("not found")

// ErrUnroutable marks a step whose conditions all failed to match with no
// fallback route. Same family as ConfigError, detected at run time.
var ErrUnroutable = errors.New("no matching route for step output")

// ErrMaxIterations marks a run terminated by the iteration cap.
var ErrMaxIterations = errors.New("max iterations exceeded")

// ConfigError is a malformed workflow graph or team definition. Caught at
// registration time where possible; fails a run immediately if it escapes to
// run time.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Msg
}

// Configf builds a ConfigError from a format string.
func Configf(format string, args ...any) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// ProviderError is a failed completion call. The gateway does not retry;
// retry policy belongs to callers.
type ProviderError struct {
	Provider string
	Status   int
	Message  string
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("provider %s: status %d: %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("provider %s: %s", e.Provider, e.Message)
}
