package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOptions_JSONInProduction(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOptions(Options{Env: "production"}, &buf)

	log.Debug("hidden")
	log.Info("visible", "wallet_id", int64(7))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "visible", entry["msg"])
	assert.Equal(t, float64(7), entry["wallet_id"])
	assert.Regexp(t, `^logger_test\.go:\d+$`, entry["source"])
}

func TestNewWithOptions_LevelOverride(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOptions(Options{Env: "development", Level: "warn"}, &buf)

	log.Info("dropped")
	assert.Empty(t, buf.String())

	log.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestWithContext_AddsRequestAndUser(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOptions(Options{Format: "json"}, &buf)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, UserIDKey, int64(42))
	log.WithContext(ctx).Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, float64(42), entry["user_id"])
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOptions(Options{Format: "json"}, &buf)

	log.WithError(errors.New("boom")).Error("failed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "boom", entry["error"])
}
