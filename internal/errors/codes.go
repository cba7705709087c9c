package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrAlreadyRunning  ErrorCode = "already_running"

	// Configuration errors
	ErrInvalidConfig   ErrorCode = "invalid_configuration"
	ErrBindFlags       ErrorCode = "bind_flags_failed"
	ErrReadConfig      ErrorCode = "read_config_failed"
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Device read errors
	ErrDeviceUnavailable ErrorCode = "device_unavailable"
	ErrReadTimeout       ErrorCode = "read_timeout"
	ErrParseFailure      ErrorCode = "parse_failure"

	// Cache errors
	ErrCacheNotReady ErrorCode = "cache_not_ready"

	// Daemon errors
	ErrBindFailed ErrorCode = "bind_failed"
	ErrConnWrite  ErrorCode = "connection_write_failed"

	// Application errors
	ErrInitApp  ErrorCode = "init_app_failed"
	ErrMainLoop ErrorCode = "main_loop_failed"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:          "Internal error occurred",
	ErrInvalidArgument:   "Invalid argument provided",
	ErrAlreadyRunning:    "Another instance is already running",
	ErrInvalidConfig:     "Invalid configuration",
	ErrBindFlags:         "Failed to bind flags",
	ErrReadConfig:        "Failed to read configuration",
	ErrInvalidLogLevel:   "Invalid log level",
	ErrDeviceUnavailable: "Device unavailable",
	ErrReadTimeout:       "Device read timed out",
	ErrParseFailure:      "Unexpected diagnostic output",
	ErrCacheNotReady:     "Cache has not completed its first refresh",
	ErrBindFailed:        "Failed to bind listen address",
	ErrConnWrite:         "Failed to write to client connection",
	ErrInitApp:           "Failed to initialize application",
	ErrMainLoop:          "Error in main loop",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
