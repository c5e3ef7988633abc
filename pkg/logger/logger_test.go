package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/hivdash/pkg/config"
)

func newBuffered(t *testing.T, level string) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log := NewWithWriter(&config.Config{Env: "development", LogLevel: level, LogFormat: "json"}, &buf)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })
	return log, &buf
}

// lines decodes every JSON line written to buf
func lines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{" info ", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"verbose", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.input))
		})
	}
}

func TestNewWithWriter_ServiceFields(t *testing.T) {
	log, buf := newBuffered(t, "info")
	log.Info("Dataset loaded")

	got := lines(t, buf)
	require.Len(t, got, 1)
	assert.Equal(t, "hivdash", got[0]["service"])
	assert.Equal(t, "development", got[0]["env"])
	assert.Equal(t, "info", got[0]["level"])
	assert.Equal(t, "Dataset loaded", got[0]["message"])
	assert.Contains(t, got[0], "time")
}

func TestLevelFiltering(t *testing.T) {
	log, buf := newBuffered(t, "warn")
	log.Debug("chart cache miss")
	log.Info("pipeline ready")
	log.Warnf("dropped %d rows", 2)
	log.Errorf("export failed: %s", "disk full")

	got := lines(t, buf)
	require.Len(t, got, 2)
	assert.Equal(t, "dropped 2 rows", got[0]["message"])
	assert.Equal(t, "error", got[1]["level"])
}

func TestChildLoggers(t *testing.T) {
	log, buf := newBuffered(t, "debug")

	log.Component("dataset.loader").
		WithFields(map[string]interface{}{"rows": 150, "dropped_rows": 1}).
		WithError(errors.New("bad count")).
		Debug("Row dropped")

	got := lines(t, buf)
	require.Len(t, got, 1)
	assert.Equal(t, "dataset.loader", got[0]["component"])
	assert.Equal(t, float64(150), got[0]["rows"])
	assert.Equal(t, "bad count", got[0]["error"])

	// Children never leak fields into the parent
	buf.Reset()
	log.Info("plain")
	got = lines(t, buf)
	require.Len(t, got, 1)
	assert.NotContains(t, got[0], "component")
}

func TestContextRoundTrip(t *testing.T) {
	log, buf := newBuffered(t, "info")
	fallback := Nop()

	// Empty context falls back
	assert.Same(t, fallback, FromContext(context.Background(), fallback))

	ctx := log.WithField("request_id", "req-1").IntoContext(context.Background())
	FromContext(ctx, fallback).Info("Prediction served")

	got := lines(t, buf)
	require.Len(t, got, 1)
	assert.Equal(t, "req-1", got[0]["request_id"])
}

func TestNop(t *testing.T) {
	log := Nop()
	log.Info("discarded")
	log.WithField("k", "v").Error("discarded")
	assert.Equal(t, zerolog.Disabled, log.Zerolog().GetLevel())
}
