package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorFormatting(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewAIError(ErrCodeAIUpstreamFailed, "Inference call failed", cause)

	assert.Equal(t, "AI_UPSTREAM_FAILED: Inference call failed (caused by: connection refused)", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsType(err, ErrorTypeAI))
	assert.False(t, IsType(err, ErrorTypeConfig))

	wrapped := fmt.Errorf("generate: %w", err)
	assert.True(t, IsType(wrapped, ErrorTypeAI))
}

func TestWithContext(t *testing.T) {
	err := NewValidationError(ErrCodeInvalidRequest, "Role is required", nil).
		WithContext("field", "role")

	assert.Equal(t, "role", err.Context["field"])
	assert.Equal(t, "INVALID_REQUEST: Role is required", err.Error())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
		wantErr  bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestLogErrorExpandsAppError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, slog.LevelDebug)

	err := NewAIError(ErrCodeAIUpstreamFailed, "Inference call failed", fmt.Errorf("timeout")).
		WithContext("failure_kind", "timeout")
	logger.LogError(err, "Question generation failed", "role", "SRE")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "ai", record["error_type"])
	assert.Equal(t, ErrCodeAIUpstreamFailed, record["error_code"])
	assert.Equal(t, "timeout", record["failure_kind"])
	assert.Equal(t, "timeout", record["cause"])
	assert.Equal(t, "SRE", record["role"])
}

func TestLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, slog.LevelInfo).With("request_id", "abc")
	logger.Debug("hidden")
	logger.Info("visible")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "visible", record["msg"])
	assert.Equal(t, "abc", record["request_id"])
}
