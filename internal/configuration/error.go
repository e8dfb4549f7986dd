package configuration

import "errors"

var (
	// ErrInvalidValue is an error that occurs when a configuration key is set
	// to a value that cannot be parsed into its type.
	ErrInvalidValue = errors.New("invalid configuration value")

	// ErrModeRange is an error that occurs when a permission mode has bits
	// set beyond the permission, setuid, setgid and sticky bits.
	ErrModeRange = errors.New("mode out of range")
)
