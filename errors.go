package wire

import (
	"errors"
	"fmt"
	"reflect"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrConfiguration matches every compile-time configuration failure.
	ErrConfiguration = errors.New("configuration error")

	// ErrNoHandler indicates no decorator handler accepts a type context.
	ErrNoHandler = errors.New("no handler for type")

	// ErrAmbiguousHandler indicates more than one decorator handler accepts a type context.
	ErrAmbiguousHandler = errors.New("ambiguous handler for type")

	// ErrConflictingFlags indicates mutually exclusive contextual inputs.
	ErrConflictingFlags = errors.New("conflicting context flags")

	// ErrDuplicate indicates a strategy is already registered under the same key.
	ErrDuplicate = errors.New("duplicate registration")

	// ErrDuplicateDiscriminator indicates two subtypes share a discriminator.
	ErrDuplicateDiscriminator = errors.New("duplicate discriminator")

	// ErrStrategyMismatch indicates a custom strategy serves a different type.
	ErrStrategyMismatch = errors.New("strategy type mismatch")

	// ErrCompiled indicates a registration after the service was frozen.
	ErrCompiled = errors.New("service already compiled")

	// ErrNoKey indicates a type context was used before its key was built.
	ErrNoKey = errors.New("context key not built")

	// ErrInternal indicates an internal consistency failure.
	ErrInternal = errors.New("internal consistency failure")

	// ErrInvalidTag indicates a wire struct tag has an invalid format or value.
	ErrInvalidTag = errors.New("invalid tag")

	// ErrNotRegistered indicates a registry miss for an expected dependency.
	ErrNotRegistered = errors.New("strategy not registered")

	// ErrRange indicates a read past the available data.
	ErrRange = errors.New("read out of range")

	// ErrUnsupportedValue indicates a decoded value has no mapping (string enums).
	ErrUnsupportedValue = errors.New("unsupported value")

	// ErrUnknownSubtype indicates a discriminator or concrete type with no mapping.
	ErrUnknownSubtype = errors.New("unknown subtype")

	// ErrValueTooLong indicates a value exceeds its fixed wire size.
	ErrValueTooLong = errors.New("value too long")

	// ErrValueLength indicates a collection length differs from its fixed count.
	ErrValueLength = errors.New("value length mismatch")
)

// ConfigError represents a compile-time configuration error.
// It wraps a sentinel error with the offending type and context.
type ConfigError struct {
	Err     error        // Underlying sentinel error (ErrNoHandler, ErrDuplicate, etc.)
	Type    reflect.Type // Type that triggered the error
	Context string       // Rendered context key or detail
}

func (e *ConfigError) Error() string {
	if e.Type != nil && e.Context != "" {
		return fmt.Sprintf("%s for type %s (%s)", e.Err.Error(), e.Type, e.Context)
	}
	if e.Type != nil {
		return fmt.Sprintf("%s for type %s", e.Err.Error(), e.Type)
	}
	if e.Context != "" {
		return fmt.Sprintf("%s (%s)", e.Err.Error(), e.Context)
	}
	return e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is reports ErrConfiguration for every ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

// LookupError represents a registry miss.
type LookupError struct {
	Key ContextKey
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNotRegistered.Error(), e.Key)
}

func (e *LookupError) Unwrap() error {
	return ErrNotRegistered
}

// RangeError represents a read that requested more bytes than available.
type RangeError struct {
	Requested int
	Available int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: requested %d bytes, %d available", ErrRange.Error(), e.Requested, e.Available)
}

func (e *RangeError) Unwrap() error {
	return ErrRange
}

// ValueError represents a data-level error found while encoding or decoding.
type ValueError struct {
	Err   error        // Underlying sentinel error (ErrUnsupportedValue, ErrUnknownSubtype, etc.)
	Type  reflect.Type // Type being processed
	Cause string       // Offending value or detail
}

func (e *ValueError) Error() string {
	if e.Type == nil {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Cause)
	}
	if e.Cause != "" {
		return fmt.Sprintf("%s for type %s: %s", e.Err.Error(), e.Type, e.Cause)
	}
	return fmt.Sprintf("%s for type %s", e.Err.Error(), e.Type)
}

func (e *ValueError) Unwrap() error {
	return e.Err
}

// newConfigError creates a ConfigError naming the type and context.
func newConfigError(sentinel error, t reflect.Type, context string) error {
	return &ConfigError{
		Err:     sentinel,
		Type:    t,
		Context: context,
	}
}

// newValueError creates a ValueError for data-level failures.
func newValueError(sentinel error, t reflect.Type, format string, args ...any) error {
	return &ValueError{
		Err:   sentinel,
		Type:  t,
		Cause: fmt.Sprintf(format, args...),
	}
}
