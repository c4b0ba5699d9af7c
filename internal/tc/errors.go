package tc

import (
	"errors"
	"fmt"
)

var (
	ErrNoDropPrecision      = errors.New("no-drop rate is not below 1")
	ErrUnknownTreasureClass = errors.New("unknown treasure class")
)

// ConfigurationError reports malformed graph input: unresolved names,
// self or cyclic references, groups without levels.
type ConfigurationError struct {
	Name   string // offending treasure class or item
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Name == "" {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Name, e.Reason)
}

func configErr(name, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Name: name, Reason: fmt.Sprintf(format, args...)}
}
