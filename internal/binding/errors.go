package binding

import (
	"errors"
	"fmt"
	"strings"
)

// Configuration errors. Every failure of the resolver or the compiler wraps
// exactly one of these; none is recoverable.
var (
	ErrInvalidInterface         = errors.New("invalid interface reference")
	ErrMissingMapKey            = errors.New("missing multibinding map key")
	ErrUnsupportedEncapsulation = errors.New("unsupported encapsulation")
	ErrDuplicateAccessor        = errors.New("duplicate generated name")
	ErrConflictingAggregation   = errors.New("conflicting aggregation declaration")
)

// ConfigError locates a configuration error at the offending type.
type ConfigError struct {
	Err     error  // one of the Err* sentinels
	Module  string // qualified module name, when known
	Subject string // implementation or interface type name
	Detail  string
}

// Errorf builds a *ConfigError for subject.
func Errorf(kind error, subject, format string, args ...any) error {
	return &ConfigError{Err: kind, Subject: subject, Detail: fmt.Sprintf(format, args...)}
}

// InModule attributes err to the module named qualified. The module name
// prefixes the message and fills Module of a wrapped *ConfigError that has
// none yet.
func InModule(qualified string, err error) error {
	var ce *ConfigError
	if errors.As(err, &ce) && ce.Module == "" {
		ce.Module = qualified
	}
	return fmt.Errorf("module %s: %w", qualified, err)
}

func (e *ConfigError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Err.Error())
	if e.Subject != "" {
		sb.WriteString(" for ")
		sb.WriteString(e.Subject)
	}
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	return sb.String()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
