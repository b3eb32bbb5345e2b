package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	testCases := []struct {
		name     string
		template string
		args     []Arg
		want     string
	}{
		{name: "named", template: "Can't find JVM at {path}", args: []Arg{A("path", "/opt/jdk")}, want: "Can't find JVM at /opt/jdk"},
		{name: "positional", template: "Not enough free space at %s", args: []Arg{A("path", "/tmp")}, want: "Not enough free space at /tmp"},
		{name: "two positional", template: "Can't create file %s.\nError: %s", args: []Arg{A("path", "out.log"), A("error", "denied")}, want: "Can't create file out.log.\nError: denied"},
		{name: "repeated name", template: "{a}-{a}", args: []Arg{A("a", "x")}, want: "x-x"},
		{name: "unknown name kept", template: "{missing}", args: []Arg{A("a", "x")}, want: "{missing}"},
		{name: "no args", template: "Running JVM...", want: "Running JVM..."},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Format(tc.template, tc.args...))
		})
	}
}

func TestTableLookupFallsBack(t *testing.T) {
	table := NewTable(map[string]string{
		JvmUserError: "JVM nicht gefunden: %s",
		FreeSpace:    "",
	})

	assert.Equal(t, "JVM nicht gefunden: /x", table.Format(JvmUserError, A("path", "/x")))
	assert.Equal(t, "Not enough free space at /tmp", table.Format(FreeSpace, A("path", "/tmp")))
	assert.Equal(t, "custom.key", table.Get("custom.key"))

	v, ok := table.Lookup("custom.key")
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestNilTableUsesDefaults(t *testing.T) {
	var table *Table
	assert.Equal(t, "Finding JVM...", table.Get(MsgJvmSearch))
}

func TestKeysCoverDefaults(t *testing.T) {
	keys := Keys()
	assert.IsIncreasing(t, keys)
	for _, k := range keys {
		_, ok := Default(k)
		assert.True(t, ok, k)
	}
	assert.Contains(t, keys, JvmNotFound)
	assert.Contains(t, keys, MsgTitle)
}
