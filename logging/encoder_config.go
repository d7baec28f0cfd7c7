package logging

import (
	"time"

	"go.uber.org/zap/zapcore"
)

// Standard field names for structured logging.
// These constants define the JSON keys used in log output.
const (
	// FieldTimestamp is the key for the log entry timestamp
	FieldTimestamp = "timestamp"

	// FieldLevel is the key for the log level (debug, info, warn, error, fatal)
	FieldLevel = "level"

	// FieldSource is the key for the source file and line number
	FieldSource = "source"

	// FieldMessage is the key for the log message
	FieldMessage = "message"

	// FieldStacktrace is the key for stack traces (on error/fatal)
	FieldStacktrace = "stacktrace"

	// FieldCaller is the key for the calling function name
	FieldCaller = "caller"
)

// NewEncoderConfig returns a zapcore.EncoderConfig with standardized field names
// for structured logging output.
//
// This is a pure function that returns a consistent configuration.
// The config uses:
//   - ISO8601 timestamps
//   - Lowercase level names
//   - Full caller path with line numbers
//   - Standard field names defined in this package
//
// Example:
//
//	config := NewEncoderConfig()
//	encoder := zapcore.NewJSONEncoder(config)
func NewEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:       FieldTimestamp,
		LevelKey:      FieldLevel,
		NameKey:       FieldSource,
		CallerKey:     FieldCaller,
		MessageKey:    FieldMessage,
		StacktraceKey: FieldStacktrace,
		LineEnding:    zapcore.DefaultLineEnding,

		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// NewConsoleEncoderConfig returns an encoder config for human-readable
// console output in development mode.
//
// Differences from the JSON config:
//   - Colored, capitalized level names
//   - Compact time format (15:04:05.000)
func NewConsoleEncoderConfig() zapcore.EncoderConfig {
	config := NewEncoderConfig()
	config.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	return config
}

// timeEncoderLayout is the layout used by the console time encoder.
// Exposed for tests that verify formatting.
const timeEncoderLayout = "15:04:05.000"

// FormatConsoleTime formats a timestamp the way the console encoder does.
// This is a pure helper used by tests and diagnostic output.
func FormatConsoleTime(t time.Time) string {
	return t.Format(timeEncoderLayout)
}
