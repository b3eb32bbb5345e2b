// Package logging configures the launcher's hclog loggers and the output
// context shared by the launcher and its child process.
package logging

import (
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	// EnvLogLevel selects the log level, optionally as "json:<level>".
	EnvLogLevel = "JLAUNCH_LOG_LEVEL"
	// EnvJSONLog switches to JSON output when set to a true value.
	EnvJSONLog = "JLAUNCH_JSON_LOG"
	// EnvLogPath appends log output to a file instead of stderr.
	EnvLogPath = "JLAUNCH_LOG_PATH"

	defaultLevel = "warn"
)

// NewLogger creates a new hclog logger with standard settings
func NewLogger(name string, level string, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}

	actualLevel, jsonFormat := ParseLevel(level)
	if IsEnvTrue(EnvJSONLog) {
		jsonFormat = true
	}

	// Add prefix for non-JSON output (ASCII on Windows consoles)
	if !jsonFormat {
		prefix := "[jlaunch] "
		if runtime.GOOS != "windows" {
			prefix = "☕ "
		}
		output = NewPrefixWriter(prefix, output)
	}

	opts := &hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(actualLevel),
		JSONFormat: jsonFormat,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z", // UTC ISO format
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	}

	return hclog.New(opts)
}

// ParseLevel splits a level spec of the form "debug", "json" or
// "json:debug" into the level name and whether JSON output was requested.
func ParseLevel(spec string) (string, bool) {
	if spec == "" {
		return defaultLevel, false
	}
	if !strings.HasPrefix(spec, "json") {
		return spec, false
	}
	if _, level, ok := strings.Cut(spec, ":"); ok && level != "" {
		return level, true
	}
	return "info", true
}

// GetLogLevel returns the configured log level from environment
func GetLogLevel() string {
	level := os.Getenv(EnvLogLevel)
	if level == "" {
		level = defaultLevel // Default to warn for production safety
	}
	return level
}

// LogOutput returns the writer log lines go to: the file named by
// JLAUNCH_LOG_PATH when it can be opened, otherwise fallback. The returned
// closer is a no-op for fallback.
func LogOutput(fallback io.Writer) (io.Writer, func() error) {
	if logPath := os.Getenv(EnvLogPath); logPath != "" {
		if file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			return file, file.Close
		}
	}
	return fallback, func() error { return nil }
}

// IsEnvTrue checks if an environment variable is set to a true value
func IsEnvTrue(key string) bool {
	val := os.Getenv(key)
	if val == "" {
		return false
	}

	valLower := strings.ToLower(val)
	if valLower == "on" || valLower == "yes" {
		return true
	}

	result, err := strconv.ParseBool(val)
	return err == nil && result
}
