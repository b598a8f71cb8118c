package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewZapLoggerForwardsEntries(t *testing.T) {
	var buf bytes.Buffer
	base := New(DebugLevel, &buf)

	zl := NewZapLogger(base)
	zl.Debug("generation complete",
		zap.Int("generation", 3),
		zap.Float64("best", 19.5),
		zap.String("selection", "rank"),
	)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "generation complete", entry["message"])
	assert.EqualValues(t, 3, entry["generation"])
	assert.InDelta(t, 19.5, entry["best"], 1e-12)
	assert.Equal(t, "rank", entry["selection"])
}

func TestZapAdapterHonorsBaseLevel(t *testing.T) {
	var buf bytes.Buffer
	zl := NewZapLogger(New(WarnLevel, &buf))

	zl.Debug("dropped")
	zl.Info("dropped too")
	assert.Zero(t, buf.Len())

	zl.Warn("kept", zap.Int("keep_top", 25))
	assert.Contains(t, buf.String(), "kept")
	assert.Contains(t, buf.String(), "keep_top")
}

func TestZapAdapterWithCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	zl := NewZapLogger(New(DebugLevel, &buf)).With(zap.String("component", "genetic"))

	zl.Info("run started")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "genetic", entry["component"])
}
