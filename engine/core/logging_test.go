package core

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := NewLogger(&bytes.Buffer{}, "chatty")
	require.Error(t, err)
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	lg, err := NewLogger(&buf, "warn")
	require.NoError(t, err)

	lg.Infof("hidden %d", 1)
	assert.Empty(t, buf.String())

	lg.Warnf("shown %d", 2)
	assert.Contains(t, buf.String(), "shown 2")
}

func TestLoggerWithCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	lg, err := NewLogger(&buf, "info")
	require.NoError(t, err)

	lg.With("stage", "instance").Infof("created")
	assert.Contains(t, buf.String(), "stage=instance")
}

func TestElapsedSinceIsRelativeToStart(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	fn := elapsedSince(start)

	got := fn(start.Add(1500 * time.Millisecond))
	assert.Equal(t, "00:00:01.5000", got.Format(ElapsedTimeFormat))
}
