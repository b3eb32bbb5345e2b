package launcher

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provide-io/jlaunch/pkg/container"
	"github.com/provide-io/jlaunch/pkg/resolve"
)

func TestTestClasspath(t *testing.T) {
	dir := t.TempDir()
	class := filepath.Join(dir, "TestJDK.class")
	require.NoError(t, os.WriteFile(class, nil, 0o644))

	assert.Equal(t, dir, TestClasspath(dir))
	assert.Equal(t, dir, TestClasspath(class))
	assert.Equal(t, filepath.Join(dir, "probe.jar"), TestClasspath(filepath.Join(dir, "probe.jar")))
}

func TestBuildClasspath(t *testing.T) {
	dir := t.TempDir()
	app := filepath.Join(dir, "app.jar")
	require.NoError(t, os.WriteFile(app, nil, 0o644))

	r := resolve.New(nil, nil)
	r.Set(resolve.VarTmpDir, dir)
	jars := []*container.Resource{{Path: "$L{nbi.launcher.tmp.dir}/app.jar", Kind: container.External}}

	cp, err := BuildClasspath([]string{"first.jar"}, jars, []string{"$L{nbi.launcher.tmp.dir}/last"}, r)
	require.NoError(t, err)
	sep := string(os.PathListSeparator)
	assert.Equal(t, strings.Join([]string{"first.jar", app, dir + "/last"}, sep), cp)
}

func TestBuildClasspathMissingJar(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone.jar")
	jars := []*container.Resource{{Path: missing, Resolved: missing, Kind: container.External}}

	_, err := BuildClasspath(nil, jars, nil, resolve.New(nil, nil))
	require.ErrorIs(t, err, ErrExternalResourceMissing)
	var mre *MissingResourceError
	require.ErrorAs(t, err, &mre)
	assert.Equal(t, missing, mre.Path)
}

func TestBuildCommand(t *testing.T) {
	work := filepath.Join("tmp", ".jlaunch-1-abcd.tmp")
	cmd := BuildCommand("java", work, []string{"-Xmx1g"}, "a.jar", "org.example.Main", []string{"--flag"})
	assert.Equal(t, []string{
		"java",
		"-Djava.io.tmpdir=tmp",
		"-Xmx1g",
		"-classpath", "a.jar",
		"org.example.Main",
		"--flag",
	}, cmd)
}

func TestMeaningfulStderr(t *testing.T) {
	testCases := []struct {
		name   string
		stderr string
		want   bool
	}{
		{name: "empty", stderr: "", want: false},
		{name: "blank lines", stderr: "\n \r\n", want: false},
		{name: "picked up notice", stderr: "Picked up _JAVA_OPTIONS: -Xmx1g\n", want: false},
		{name: "git noise", stderr: "fatal: Not a git repository (or any parent)\n", want: false},
		{name: "real error", stderr: "Picked up JAVA_TOOL_OPTIONS\nException in thread \"main\"\n", want: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, meaningfulStderr(tc.stderr))
		})
	}
}

func TestTailBuffer(t *testing.T) {
	tb := &tailBuffer{max: 4}
	tb.Write([]byte("ab"))
	tb.Write([]byte("cdef"))
	assert.Equal(t, "cdef", tb.String())
	tb.Write([]byte("g"))
	assert.Equal(t, "defg", tb.String())
}
