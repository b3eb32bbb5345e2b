package builder

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provide-io/jlaunch/pkg/container"
	"github.com/provide-io/jlaunch/pkg/javaver"
	"github.com/provide-io/jlaunch/pkg/messages"
	"github.com/provide-io/jlaunch/pkg/operations"
)

const testStubSize = 4096

func testLogger() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{Name: "builder_test", Level: hclog.Trace})
}

const sampleManifest = `
main_class: org.example.Main
test_class: TestJDK
jvm_args: ["-Xmx64m"]
app_args: ["--serve"]
locales:
  - locale: de
    messages:
      nlw.msg.running: "JVM wird gestartet..."
rules:
  - min: "1.8"
    max: "21.99.99"
    vendor: Adoptium
testjvm:
  path: "$L{nbi.launcher.tmp.dir}/TestJDK.class"
  source: TestJDK.class
jvms:
  - path: /usr/lib/jvm/default
jars:
  - path: "$L{nbi.launcher.tmp.dir}/app.jar"
    source: app.jar
  - path: "$L{nbi.launcher.parent.dir}/shared.jar"
`

type passResolver struct{ dir string }

func (r passResolver) ResolvePath(raw string) (string, error) {
	return filepath.Join(r.dir, filepath.Base(raw)), nil
}

func writeSources(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "TestJDK.class"), []byte("cafebabe"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.jar"), []byte("PK app"), 0o644))
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleManifest), 0o644))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "org.example.Main", m.MainClass)
	assert.Equal(t, filepath.Join(dir, "TestJDK.class"), m.TestJVM.Source)
	require.Len(t, m.Jars, 2)
	assert.True(t, m.Jars[0].Bundled())
	assert.False(t, m.Jars[1].Bundled())

	rules, err := m.CompileRules()
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, javaver.MustParse("1.8"), rules[0].Min)
	assert.Equal(t, "Adoptium", rules[0].Vendor)
}

func TestParseManifestErrors(t *testing.T) {
	testCases := []struct {
		name string
		yaml string
	}{
		{name: "no main class", yaml: "test_class: T\ntestjvm: {path: x}\n"},
		{name: "no test class", yaml: "main_class: M\ntestjvm: {path: x}\n"},
		{name: "no test jvm", yaml: "main_class: M\ntest_class: T\n"},
		{name: "bad rule", yaml: "main_class: M\ntest_class: T\ntestjvm: {path: x}\nrules: [{min: abc, max: '11'}]\n"},
		{name: "resource without path", yaml: "main_class: M\ntest_class: T\ntestjvm: {path: x}\njars: [{source: a.jar}]\n"},
		{name: "unknown key", yaml: "main_class: M\ntest_class: T\ntestjvm: {path: x}\nmain: oops\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(tc.yaml))
			assert.ErrorIs(t, err, ErrInvalidManifest)
		})
	}
}

func TestBuildProducesReadableContainer(t *testing.T) {
	dir := t.TempDir()
	writeSources(t, dir)
	manifestPath := filepath.Join(dir, "app.yaml")
	require.NoError(t, os.WriteFile(manifestPath, []byte(sampleManifest), 0o644))
	m, err := LoadManifest(manifestPath)
	require.NoError(t, err)

	stub := filepath.Join(dir, "stub")
	require.NoError(t, os.WriteFile(stub, []byte("#!stub"), 0o755))
	out := filepath.Join(dir, "dist", "app")

	require.NoError(t, Build(Options{Manifest: m, StubPath: stub, OutputPath: out, StubSize: testStubSize}, testLogger()))

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o100)

	f, err := container.OpenContainer(out, testStubSize)
	require.NoError(t, err)
	defer f.Close()
	e := container.NewExtractor(f, testLogger())

	msgs, err := e.ReadMessages("de_DE")
	require.NoError(t, err)
	assert.Equal(t, "JVM wird gestartet...", msgs[messages.MsgRunning])
	assert.Equal(t, "Extracting data...", msgs[messages.MsgExtract])

	props, err := e.ReadProperties()
	require.NoError(t, err)
	assert.Equal(t, "org.example.Main", props.MainClass)
	assert.Equal(t, []string{"-Xmx64m"}, props.JVMArgs)
	assert.Equal(t, uint32(2), props.BundledCount)
	assert.Equal(t, uint64(len("cafebabe")+len("PK app")), props.BundledSize)

	extractDir := t.TempDir()
	rr := &container.ResourceReader{Extractor: e, Resolver: passResolver{dir: extractDir}}
	testJVM, err := rr.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, container.Bundled, testJVM.Kind)

	jvms, err := rr.ReadList(context.Background())
	require.NoError(t, err)
	require.Len(t, jvms, 1)
	assert.Equal(t, "/usr/lib/jvm/default", jvms[0].Path)

	jars, err := rr.ReadList(context.Background())
	require.NoError(t, err)
	require.Len(t, jars, 2)
	data, err := os.ReadFile(jars[0].Resolved)
	require.NoError(t, err)
	assert.Equal(t, "PK app", string(data))
	assert.Equal(t, container.External, jars[1].Kind)

	other, err := rr.ReadList(context.Background())
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestBuildRejectsOversizedStub(t *testing.T) {
	dir := t.TempDir()
	writeSources(t, dir)
	m, err := ParseManifest([]byte(sampleManifest))
	require.NoError(t, err)
	m.resolveSources(dir)

	stub := filepath.Join(dir, "stub")
	require.NoError(t, os.WriteFile(stub, bytes.Repeat([]byte{1}, 100), 0o755))
	out := filepath.Join(dir, "app")

	err = Build(Options{Manifest: m, StubPath: stub, OutputPath: out, StubSize: 50}, testLogger())
	require.Error(t, err)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestBuildMissingSource(t *testing.T) {
	dir := t.TempDir()
	m, err := ParseManifest([]byte(sampleManifest))
	require.NoError(t, err)
	m.resolveSources(dir)

	stub := filepath.Join(dir, "stub")
	require.NoError(t, os.WriteFile(stub, []byte("stub"), 0o755))
	err = Build(Options{Manifest: m, StubPath: stub, OutputPath: filepath.Join(dir, "app"), StubSize: testStubSize}, testLogger())
	assert.ErrorIs(t, err, container.ErrIO)
}

func TestBuildPacksDirectorySource(t *testing.T) {
	testCases := []struct {
		name    string
		path    string
		wantErr error
	}{
		{name: "tar gzip", path: "$L{nbi.launcher.tmp.dir}/jre.tar.gz"},
		{name: "tar zstd", path: "$L{nbi.launcher.tmp.dir}/jre.tar.zst"},
		{name: "tar bzip2", path: "$L{nbi.launcher.tmp.dir}/jre.tbz2"},
		{name: "tar lz4", path: "$L{nbi.launcher.tmp.dir}/jre.tar.lz4"},
		{name: "plain tar", path: "$L{nbi.launcher.tmp.dir}/jre.tar"},
		{name: "no archive suffix", path: "$L{nbi.launcher.tmp.dir}/jre", wantErr: ErrInvalidManifest},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeSources(t, dir)
			runtime := filepath.Join(dir, "jre")
			require.NoError(t, os.MkdirAll(filepath.Join(runtime, "bin"), 0o755))
			require.NoError(t, os.WriteFile(filepath.Join(runtime, "bin", "java"), []byte("#!/bin/sh\n"), 0o755))

			m, err := ParseManifest([]byte(sampleManifest))
			require.NoError(t, err)
			m.resolveSources(dir)
			m.JVMs = []ResourceSpec{{Path: tc.path, Source: runtime}}

			var buf bytes.Buffer
			err = WriteContainer(&buf, m, testLogger())
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)

			e := container.NewExtractor(bytes.NewReader(buf.Bytes()), testLogger())
			_, err = e.ReadMessages("")
			require.NoError(t, err)
			props, err := e.ReadProperties()
			require.NoError(t, err)
			assert.Equal(t, uint32(3), props.BundledCount)

			extractDir := t.TempDir()
			rr := &container.ResourceReader{Extractor: e, Resolver: passResolver{dir: extractDir}}
			_, err = rr.Read(context.Background())
			require.NoError(t, err)
			jvms, err := rr.ReadList(context.Background())
			require.NoError(t, err)
			require.Len(t, jvms, 1)

			archive, err := jvms[0].Resolve(passResolver{dir: extractDir})
			require.NoError(t, err)
			info, err := os.Stat(archive)
			require.NoError(t, err)
			assert.Equal(t, props.BundledSize-uint64(len("cafebabe")+len("PK app")), uint64(info.Size()))

			unpacked := t.TempDir()
			require.NoError(t, operations.UnpackFile(archive, unpacked, testLogger()))
			data, err := os.ReadFile(filepath.Join(unpacked, "bin", "java"))
			require.NoError(t, err)
			assert.Equal(t, "#!/bin/sh\n", string(data))
		})
	}
}
