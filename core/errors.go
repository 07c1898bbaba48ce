package core

import (
	"fmt"
)

// ConfigError represents a configuration-related error with actionable instructions.
type ConfigError struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Action  string // Actionable instruction for resolution
}

func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

// Error codes for configuration errors
const (
	ErrCodeInvalidColorMode  = "INVALID_COLOR_MODE"
	ErrCodeInvalidDimensions = "INVALID_DIMENSIONS"
	ErrCodeInvalidPort       = "INVALID_PORT"
	ErrCodeInvalidInterval   = "INVALID_INTERVAL"
	ErrCodeInvalidLayoutFile = "INVALID_LAYOUT_FILE"
	ErrCodeInvalidFontSize   = "INVALID_FONT_SIZE"
)

// ErrInvalidColorMode returns an error for an unrecognized COLOR_MODE value.
func ErrInvalidColorMode(mode string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidColorMode,
		Message: fmt.Sprintf("Invalid COLOR_MODE %q", mode),
		Action:  "Set COLOR_MODE to one of: monochrome, grayscale, 7color",
	}
}

// ErrInvalidDimensions returns an error for unusable canvas or artwork dimensions.
func ErrInvalidDimensions(reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidDimensions,
		Message: fmt.Sprintf("Invalid image dimensions: %s", reason),
		Action:  "Check IMAGE_WIDTH, IMAGE_HEIGHT, ARTWORK_SIZE and TEXT_MARGIN in your .env file",
	}
}

// ErrInvalidPort returns an error for an out-of-range server port.
func ErrInvalidPort(port int) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidPort,
		Message: fmt.Sprintf("Invalid SERVER_PORT %d", port),
		Action:  "Set SERVER_PORT to a value between 1 and 65535",
	}
}

// ErrInvalidInterval returns an error for a non-positive poll interval.
func ErrInvalidInterval(seconds int) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidInterval,
		Message: fmt.Sprintf("Invalid POLL_INTERVAL %d", seconds),
		Action:  "Set POLL_INTERVAL to a positive number of seconds",
	}
}

// ErrInvalidLayoutFile returns an error for an unreadable or malformed layout file.
func ErrInvalidLayoutFile(path string, reason error) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidLayoutFile,
		Message: fmt.Sprintf("Cannot apply layout file %q: %v", path, reason),
		Action:  "Fix the YAML layout file or unset LAYOUT_FILE",
	}
}

// ErrInvalidFontSize returns an error for a non-positive font size.
func ErrInvalidFontSize(name string, size int) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidFontSize,
		Message: fmt.Sprintf("Invalid %s %d", name, size),
		Action:  fmt.Sprintf("Set %s to a positive pixel size", name),
	}
}

// IsConfigError checks if an error is a ConfigError and returns it if so.
func IsConfigError(err error) (*ConfigError, bool) {
	if configErr, ok := err.(*ConfigError); ok {
		return configErr, true
	}
	return nil, false
}
