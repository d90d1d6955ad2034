package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "trace", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLogLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer

	logg := NewLogger(
		WithOutput(&buf),
		WithLevel(slog.LevelWarn),
		WithAttrs(slog.String("user_id", "u1")),
	)

	logg.Info("dropped")
	logg.Warn("kept", slog.String("order_id", "o1"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "kept", record["msg"])
	assert.Equal(t, "u1", record["user_id"])
	assert.Equal(t, "o1", record["order_id"])
}

func TestNewLoggerText(t *testing.T) {
	var buf bytes.Buffer

	NewLogger(WithOutput(&buf), WithFormat(LogFormatText)).Info("hello")

	assert.Contains(t, buf.String(), "msg=hello")
}
