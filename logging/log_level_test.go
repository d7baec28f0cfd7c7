package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLogLevelString(t *testing.T) {
	tests := []struct {
		input string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"  info  ", zapcore.InfoLevel},
		{"bogus", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run("input_"+tt.input, func(t *testing.T) {
			got := ParseLogLevelString(tt.input, zapcore.InfoLevel)
			if got != tt.want {
				t.Errorf("ParseLogLevelString(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseLogLevel_FromEnv(t *testing.T) {
	t.Setenv("FINREPORT_TEST_LOG_LEVEL", "error")
	if got := ParseLogLevel("FINREPORT_TEST_LOG_LEVEL", zapcore.InfoLevel); got != zapcore.ErrorLevel {
		t.Errorf("ParseLogLevel() = %v, want error level", got)
	}

	t.Setenv("FINREPORT_TEST_LOG_LEVEL", "")
	if got := ParseLogLevel("FINREPORT_TEST_LOG_LEVEL", zapcore.WarnLevel); got != zapcore.WarnLevel {
		t.Errorf("ParseLogLevel() = %v, want default warn level", got)
	}
}
