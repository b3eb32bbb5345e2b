package workenv

import (
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/jlaunch/pkg/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{Name: "workenv_test", Level: hclog.Trace})
}

func TestCreateRandom(t *testing.T) {
	base := t.TempDir()
	w, err := Create(base, true, testLogger())
	require.NoError(t, err)
	assert.True(t, w.Created)

	name := filepath.Base(w.Dir)
	assert.True(t, strings.HasPrefix(name, TempPrefix))
	pid, ok := ownerPid(name)
	require.True(t, ok)
	assert.Equal(t, os.Getpid(), pid)

	w.Remove(testLogger())
	_, err = os.Stat(w.Dir)
	assert.True(t, os.IsNotExist(err))
}

func TestCreateFixedKeepsExisting(t *testing.T) {
	base := t.TempDir()
	w, err := Create(base, false, testLogger())
	require.NoError(t, err)
	assert.False(t, w.Created)

	w.Remove(testLogger())
	_, err = os.Stat(base)
	assert.NoError(t, err, "existing directories are never removed")
}

func TestCreateOverFileFails(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := Create(file, false, testLogger())
	assert.ErrorIs(t, err, container.ErrIO)
}

func TestOwnerPid(t *testing.T) {
	testCases := []struct {
		name string
		pid  int
		ok   bool
	}{
		{name: ".jlaunch-123-abcdef12.tmp", pid: 123, ok: true},
		{name: ".jlaunch-abc-abcdef12.tmp", ok: false},
		{name: ".jlaunch-123-abcdef12", ok: false},
		{name: "other-123-x.tmp", ok: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pid, ok := ownerPid(tc.name)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.pid, pid)
		})
	}
}

func TestCleanupStale(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("pid probing differs on windows")
	}
	base := t.TempDir()
	// PIDs this large are not handed out on supported systems.
	dead := filepath.Join(base, ".jlaunch-99999999-deadbeef.tmp")
	live := filepath.Join(base, RandomName())
	unrelated := filepath.Join(base, "keep-me")
	for _, dir := range []string{dead, live, unrelated} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}

	require.NoError(t, CleanupStale(base, testLogger()))

	_, err := os.Stat(dead)
	assert.True(t, os.IsNotExist(err))
	assert.DirExists(t, live)
	assert.DirExists(t, unrelated)
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, CheckFreeSpace(filepath.Join(dir, "not", "yet", "created"), 1, testLogger()))
	assert.NoError(t, CheckFreeSpace(dir, 0, testLogger()))
	assert.ErrorIs(t, CheckFreeSpace(dir, math.MaxUint64, testLogger()), container.ErrFreeSpace)
}

func TestCopyDir(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "bin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "bin", "java"), []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "release"), []byte("JAVA_VERSION=17"), 0o644))

	dst := filepath.Join(t.TempDir(), "copy")
	require.NoError(t, CopyDir(src, dst))

	data, err := os.ReadFile(filepath.Join(dst, "release"))
	require.NoError(t, err)
	assert.Equal(t, "JAVA_VERSION=17", string(data))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(filepath.Join(dst, "bin", "java"))
		require.NoError(t, err)
		assert.NotZero(t, info.Mode()&0o100)
	}
}

func TestMarker(t *testing.T) {
	dir := t.TempDir()
	_, ok := ReadMarker(dir)
	assert.False(t, ok)

	require.NoError(t, WriteMarker(dir, ValidationMarker{Launcher: "app", MainClass: "Main", BundledSize: 42}))
	m, ok := ReadMarker(dir)
	require.True(t, ok)
	assert.Equal(t, "Main", m.MainClass)
	assert.Equal(t, uint64(42), m.BundledSize)
	assert.False(t, m.Timestamp.IsZero())
}
