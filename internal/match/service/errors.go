package service

import (
	"errors"
	"fmt"
)

// ErrConfig is matched by every *ConfigError via errors.Is.
var ErrConfig = errors.New("match: invalid configuration")

// ConfigError reports a caller contract violation: bad threshold, unknown
// scorer, malformed reference entries or queries. No-match outcomes are never
// reported this way.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("match config: %s: %s", e.Field, e.Message)
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

func configErr(field, format string, args ...any) error {
	return &ConfigError{Field: field, Message: fmt.Sprintf(format, args...)}
}
