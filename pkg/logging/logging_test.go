package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefixWriter(t *testing.T) {
	var buf bytes.Buffer
	pw := NewPrefixWriter("> ", &buf)

	n, err := pw.Write([]byte("one\ntw"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, "> one\n", buf.String())

	_, err = pw.Write([]byte("o\nthree\n"))
	require.NoError(t, err)
	assert.Equal(t, "> one\n> two\n> three\n", buf.String())
}

func TestPrefixWriterPassThrough(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "json record", input: "{\"@level\":\"info\"}\n", want: "{\"@level\":\"info\"}\n"},
		{name: "blank line", input: "\n", want: "\n"},
		{name: "mixed", input: "text\n{}\n\nmore\n", want: "> text\n{}\n\n> more\n"},
		{name: "partial held", input: "no newline", want: ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			n, err := NewPrefixWriter("> ", &buf).Write([]byte(tc.input))
			require.NoError(t, err)
			assert.Equal(t, len(tc.input), n)
			assert.Equal(t, tc.want, buf.String())
		})
	}
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		spec  string
		level string
		json  bool
	}{
		{spec: "", level: "warn"},
		{spec: "debug", level: "debug"},
		{spec: "json", level: "info", json: true},
		{spec: "json:trace", level: "trace", json: true},
		{spec: "json:", level: "info", json: true},
	}
	for _, tc := range testCases {
		t.Run(tc.spec, func(t *testing.T) {
			level, json := ParseLevel(tc.spec)
			assert.Equal(t, tc.level, level)
			assert.Equal(t, tc.json, json)
		})
	}
}

func TestGetLogLevel(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	assert.Equal(t, "warn", GetLogLevel())
	t.Setenv(EnvLogLevel, "json:debug")
	assert.Equal(t, "json:debug", GetLogLevel())
}

func TestNewLoggerJSON(t *testing.T) {
	t.Setenv(EnvJSONLog, "")
	var buf bytes.Buffer
	logger := NewLogger("jlaunch", "json:info", &buf)
	logger.Info("hello", "key", "value")
	assert.True(t, strings.HasPrefix(buf.String(), "{"), buf.String())
	assert.Contains(t, buf.String(), `"key":"value"`)
}

func TestNewLoggerLevel(t *testing.T) {
	t.Setenv(EnvJSONLog, "")
	var buf bytes.Buffer
	logger := NewLogger("jlaunch", "warn", &buf)
	logger.Info("hidden")
	assert.Empty(t, buf.String())
	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestLogOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launcher.log")
	t.Setenv(EnvLogPath, path)

	w, closeFn := LogOutput(os.Stderr)
	_, err := w.Write([]byte("line\n"))
	require.NoError(t, err)
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "line\n", string(data))
}

func TestOutputRedirect(t *testing.T) {
	var stdout, stderr bytes.Buffer
	o := NewOutput(&stdout, &stderr, hclog.NewNullLogger())
	o.Message("before")
	assert.Equal(t, "before\n", stderr.String())

	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, o.RedirectToFile(path))
	o.Message("to file")
	o.Print("also to file")
	require.NoError(t, o.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "to file\nalso to file\n", string(data))
	assert.Empty(t, stdout.String())
}

func TestOutputRedirectIgnoresDirectory(t *testing.T) {
	var stderr bytes.Buffer
	o := NewOutput(nil, &stderr, nil)
	require.NoError(t, o.RedirectToFile(t.TempDir()))
	o.Message("still stderr")
	assert.Equal(t, "still stderr\n", stderr.String())
}

func TestOutputSilent(t *testing.T) {
	var stderr bytes.Buffer
	o := NewOutput(nil, &stderr, nil)
	o.Silent = true
	o.Message("quiet")
	assert.Empty(t, stderr.String())
}

func TestIsEnvTrue(t *testing.T) {
	for value, want := range map[string]bool{"": false, "1": true, "yes": true, "ON": true, "false": false, "maybe": false} {
		t.Setenv("JLAUNCH_TEST_BOOL", value)
		assert.Equal(t, want, IsEnvTrue("JLAUNCH_TEST_BOOL"), "value %q", value)
	}
}
