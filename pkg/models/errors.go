package models

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds for configuration errors. Match with errors.Is.
var (
	ErrMissingColumn = errors.New("missing required column")
	ErrMissingFile   = errors.New("missing required file")
	ErrMalformedRule = errors.New("malformed mapping rule")
)

// ConfigError is a blocking administrator-configuration problem. No partial
// output is produced when one is returned.
type ConfigError struct {
	Kind   error
	File   string
	Column string
	Rule   string
	Reason string
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	var parts []string
	if e.File != "" {
		parts = append(parts, "file "+e.File)
	}
	if e.Column != "" {
		parts = append(parts, fmt.Sprintf("column %q", e.Column))
	}
	if e.Rule != "" {
		parts = append(parts, fmt.Sprintf("rule %q", e.Rule))
	}
	msg := "configuration error"
	if e.Kind != nil {
		msg = e.Kind.Error()
	}
	if len(parts) > 0 {
		msg += ": " + strings.Join(parts, ", ")
	}
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

// Unwrap exposes the sentinel kind
func (e *ConfigError) Unwrap() error {
	return e.Kind
}

// MissingColumnError reports a required column absent from a file
func MissingColumnError(file, column string) *ConfigError {
	return &ConfigError{Kind: ErrMissingColumn, File: file, Column: column}
}

// MissingFileError reports a required file that was never supplied
func MissingFileError(file string) *ConfigError {
	return &ConfigError{Kind: ErrMissingFile, File: file}
}

// MalformedRuleError reports an unusable mapping rule
func MalformedRuleError(rule, reason string) *ConfigError {
	return &ConfigError{Kind: ErrMalformedRule, Rule: rule, Reason: reason}
}

// IsConfigError reports whether err carries a ConfigError
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
