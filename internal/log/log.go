package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

var (
	mu                  sync.Mutex
	debugMode           = false
	output    io.Writer = os.Stderr
)

// SetDebugMode enables or disables debug mode
func SetDebugMode(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	debugMode = enabled
}

// IsDebugMode returns whether debug mode is enabled
func IsDebugMode() bool {
	mu.Lock()
	defer mu.Unlock()
	return debugMode
}

// SetOutput sets the output writer for log messages
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// emit writes one line with the given color under the package lock.
// The HTTP server logs from many goroutines.
func emit(c *color.Color, format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if c == nil {
		fmt.Fprintf(output, format, args...)
		return
	}
	c.Fprintf(output, format, args...)
}

// Debug prints debug messages (only in debug mode)
func Debug(format string, args ...interface{}) {
	if IsDebugMode() {
		emit(color.New(color.FgHiBlack), "[DEBUG] "+format+"\n", args...)
	}
}

// DebugConfig prints configuration details in debug mode
func DebugConfig(label string, config interface{}) {
	if !IsDebugMode() {
		return
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		emit(color.New(color.FgHiBlack), "[DEBUG] %s: (failed to serialize: %v)\n", label, err)
		return
	}
	emit(color.New(color.FgHiBlack), "[DEBUG] %s:\n%s\n", label, string(data))
}

// DebugPrompt logs the prompt sent to the model in debug mode
func DebugPrompt(prompt string) {
	if IsDebugMode() {
		emit(color.New(color.FgCyan), "[DEBUG] Prompt (%d chars):\n%s\n", len(prompt), truncate(prompt, 2000))
	}
}

// DebugReply logs the raw model reply in debug mode
func DebugReply(reply string) {
	if IsDebugMode() {
		emit(color.New(color.FgGreen), "[DEBUG] Reply:\n%s\n", truncate(reply, 2000))
	}
}

// DebugTokenUsage logs token usage in debug mode
func DebugTokenUsage(promptTokens, completionTokens, totalTokens int) {
	if IsDebugMode() {
		emit(color.New(color.FgMagenta), "[DEBUG] Token Usage: prompt=%d, completion=%d, total=%d\n",
			promptTokens, completionTokens, totalTokens)
	}
}

// DebugDuration logs execution duration in debug mode
func DebugDuration(operation string, duration time.Duration) {
	if IsDebugMode() {
		emit(color.New(color.FgBlue), "[DEBUG] %s took %v\n", operation, duration)
	}
}

// Info prints informational messages
func Info(format string, args ...interface{}) {
	emit(nil, format+"\n", args...)
}

// Error prints error messages
func Error(format string, args ...interface{}) {
	emit(color.New(color.FgRed), "Error: "+format+"\n", args...)
}

// Warn prints warning messages
func Warn(format string, args ...interface{}) {
	emit(color.New(color.FgYellow), "Warning: "+format+"\n", args...)
}

// truncate truncates a string to the specified length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
