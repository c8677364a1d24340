package logging

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCapturedLogger() (*DefaultLogger, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	logger := &DefaultLogger{
		stdoutLogger: log.New(&stdout, "", 0),
		stderrLogger: log.New(&stderr, "", 0),
		level:        InfoLevel,
		fields:       make(Fields),
	}
	return logger, &stdout, &stderr
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("debug"))
	assert.Equal(t, WarnLevel, ParseLevel("warning"))
	assert.Equal(t, ErrorLevel, ParseLevel("error"))
	assert.Equal(t, InfoLevel, ParseLevel("nonsense"), "unknown names default to info")
}

func TestLevelFiltering(t *testing.T) {
	logger, stdout, _ := newCapturedLogger()

	logger.Debug("hidden")
	assert.Empty(t, stdout.String())

	logger.SetLevel(DebugLevel)
	logger.Debug("visible")
	assert.Contains(t, stdout.String(), "[DEBUG] visible")
}

func TestStreamSplit(t *testing.T) {
	logger, stdout, stderr := newCapturedLogger()

	logger.Info("regular")
	logger.Warn("worrying")
	logger.Error(errors.New("broken pipe"), "failed")

	assert.Contains(t, stdout.String(), "[INFO] regular")
	assert.NotContains(t, stdout.String(), "worrying")

	assert.Contains(t, stderr.String(), "[WARN] worrying")
	assert.Contains(t, stderr.String(), "[ERROR] failed: broken pipe")
}

func TestWithFields(t *testing.T) {
	logger, stdout, _ := newCapturedLogger()

	child := logger.WithFields(Fields{"component": "pipeline"})
	child.Info("ready", Fields{"frames": 6})

	out := stdout.String()
	assert.Contains(t, out, "component:pipeline")
	assert.Contains(t, out, "frames:6")

	// the parent keeps its own field set
	logger.Info("plain")
	require.Contains(t, stdout.String(), "[INFO] plain\n")
}

func TestGlobalLogger(t *testing.T) {
	original := GetGlobalLogger()
	defer SetGlobalLogger(original)

	logger, stdout, _ := newCapturedLogger()
	SetGlobalLogger(logger)

	Info("through the global")
	assert.Contains(t, stdout.String(), "through the global")

	// nil resets to the no-op logger instead of panicking later
	SetGlobalLogger(nil)
	assert.IsType(t, &NoOpLogger{}, GetGlobalLogger())
	Info("swallowed")
}
