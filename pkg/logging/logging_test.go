package logging

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSetupLoggerVerbosityLevels(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		expected  zerolog.Level
	}{
		{"default is warn", 0, zerolog.WarnLevel},
		{"single v is info", 1, zerolog.InfoLevel},
		{"double v is debug", 2, zerolog.DebugLevel},
		{"triple v is trace", 3, zerolog.TraceLevel},
		{"beyond triple is trace", 7, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetupLogger(tt.verbosity)
			assert.Equal(t, tt.expected, zerolog.GlobalLevel())
		})
	}
}

func TestGetLogger(t *testing.T) {
	SetupLogger(1)
	logger := GetLogger("test.component")
	// Logger should be usable without panicking
	logger.Info().Msg("test message")
}

func TestLogFilePath(t *testing.T) {
	path := LogFilePath()
	assert.True(t, strings.HasSuffix(path, "acforge.log"))
	assert.Contains(t, path, "acforge")
}
