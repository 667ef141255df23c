package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Component: ComponentCache, Output: &buf, JSON: true})

	logger.Info("evicted", FieldKey, "accounts(USER-001){}")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "evicted", record["msg"])
	assert.Equal(t, ComponentCache, record[FieldComponent])
	assert.Equal(t, "accounts(USER-001){}", record[FieldKey])
}

func TestWithComponentSwitchesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Component: ComponentApp, Output: &buf})

	logger.WithComponent(ComponentAMQP).Warn("reconnecting")

	assert.Contains(t, buf.String(), "component=amqp")
	assert.Equal(t, ComponentApp, logger.Component())
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Component: ComponentApp, Output: &buf})

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Error("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Equal(t, 1, strings.Count(buf.String(), "shown"))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"WARN", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogFields(t *testing.T) {
	fields := NewFields().
		WithComponent(ComponentLedger).
		WithOperation(OpCreate).
		WithEntity("transaction", "TX-001").
		WithError(errors.New("boom")).
		WithError(nil)

	assert.Equal(t, "boom", fields[FieldError])
	assert.Len(t, fields.ToSlice(), 2*len(fields))
}
