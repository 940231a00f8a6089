package log

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func captureOutput(t *testing.T, debug bool) *bytes.Buffer {
	t.Helper()

	prevNoColor := color.NoColor
	color.NoColor = true

	buf := &bytes.Buffer{}
	SetOutput(buf)
	SetDebugMode(debug)

	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetDebugMode(false)
		color.NoColor = prevNoColor
	})
	return buf
}

func TestDebug_OnlyInDebugMode(t *testing.T) {
	buf := captureOutput(t, false)
	Debug("hidden %d", 1)
	assert.Empty(t, buf.String())

	SetDebugMode(true)
	Debug("shown %d", 2)
	assert.Equal(t, "[DEBUG] shown 2\n", buf.String())
}

func TestLevels(t *testing.T) {
	buf := captureOutput(t, false)

	Info("hello %s", "world")
	Warn("careful")
	Error("failed: %v", "boom")

	assert.Equal(t, "hello world\nWarning: careful\nError: failed: boom\n", buf.String())
}

func TestDebugHelpers(t *testing.T) {
	buf := captureOutput(t, true)

	DebugConfig("Config", map[string]int{"a": 1})
	DebugTokenUsage(10, 5, 15)
	DebugDuration("compose", 1500*time.Millisecond)

	out := buf.String()
	assert.Contains(t, out, "[DEBUG] Config:")
	assert.Contains(t, out, `"a": 1`)
	assert.Contains(t, out, "prompt=10, completion=5, total=15")
	assert.Contains(t, out, "compose took 1.5s")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcdef", 2))
}
