package operations_test

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provide-io/jlaunch/pkg/operations"
	"github.com/provide-io/jlaunch/pkg/operations/bundle"
	_ "github.com/provide-io/jlaunch/pkg/operations/compress"
)

func sampleTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lib", "ext"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib", "rt.jar"), bytes.Repeat([]byte("jar"), 4096), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib", "ext", "empty.jar"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "release"), []byte("JAVA_VERSION=\"1.8.0\""), 0o644))
	return dir
}

func TestChainForFile(t *testing.T) {
	testCases := []struct {
		name  string
		chain string
		ok    bool
	}{
		{name: "jre.tar.gz", chain: "tar|gzip", ok: true},
		{name: "JRE.TGZ", chain: "tar|gzip", ok: true},
		{name: "jre.tar.bz2", chain: "tar|bzip2", ok: true},
		{name: "jre.tar.zst", chain: "tar|zstd", ok: true},
		{name: "jre.tar.lz4", chain: "tar|lz4", ok: true},
		{name: "jre.tar", chain: "tar", ok: true},
		{name: "rt.jar", ok: false},
		{name: "rt.jar.pack.gz", ok: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ops, ok := operations.ChainForFile(tc.name)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.chain, operations.ChainString(ops))
			}
		})
	}
}

func TestPackUnpackChains(t *testing.T) {
	src := sampleTree(t)
	logger := hclog.New(&hclog.LoggerOptions{Name: "operations_test", Level: hclog.Trace})

	for _, suffix := range []string{".tar", ".tar.gz", ".tar.bz2", ".tar.zst", ".tar.lz4"} {
		t.Run(suffix, func(t *testing.T) {
			ops, ok := operations.ChainForFile(suffix)
			require.True(t, ok)

			archive := filepath.Join(t.TempDir(), "runtime"+suffix)
			f, err := os.Create(archive)
			require.NoError(t, err)
			require.NoError(t, operations.Pack(src, ops, f))
			require.NoError(t, f.Close())

			dest := t.TempDir()
			require.NoError(t, operations.UnpackFile(archive, dest, logger))

			want, err := os.ReadFile(filepath.Join(src, "lib", "rt.jar"))
			require.NoError(t, err)
			got, err := os.ReadFile(filepath.Join(dest, "lib", "rt.jar"))
			require.NoError(t, err)
			assert.Equal(t, want, got)
			assert.FileExists(t, filepath.Join(dest, "lib", "ext", "empty.jar"))
			assert.FileExists(t, filepath.Join(dest, "release"))
		})
	}
}

func TestUnpackFileRejectsUnknownSuffix(t *testing.T) {
	err := operations.UnpackFile("rt.jar", t.TempDir(), hclog.NewNullLogger())
	assert.ErrorIs(t, err, operations.ErrNotArchive)
}

func TestUnpackRejectsTraversal(t *testing.T) {
	testCases := []struct {
		name   string
		header tar.Header
	}{
		{name: "parent", header: tar.Header{Name: "../evil", Typeflag: tar.TypeReg, Mode: 0o644}},
		{name: "nested parent", header: tar.Header{Name: "lib/../../evil", Typeflag: tar.TypeReg, Mode: 0o644}},
		{name: "absolute", header: tar.Header{Name: "/etc/evil", Typeflag: tar.TypeReg, Mode: 0o644}},
		{name: "symlink out", header: tar.Header{Name: "link", Linkname: "../../outside", Typeflag: tar.TypeSymlink}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			tw := tar.NewWriter(&buf)
			require.NoError(t, tw.WriteHeader(&tc.header))
			require.NoError(t, tw.Close())

			err := operations.Unpack(&buf, []uint8{operations.OP_TAR}, t.TempDir())
			assert.ErrorIs(t, err, bundle.ErrUnsafePath)
		})
	}
}

func TestUnpackInvalidChain(t *testing.T) {
	err := operations.Unpack(bytes.NewReader(nil), []uint8{operations.OP_GZIP}, t.TempDir())
	assert.Error(t, err)

	err = operations.Unpack(bytes.NewReader(nil), []uint8{0x7F}, t.TempDir())
	assert.Error(t, err)

	err = operations.Unpack(bytes.NewReader(nil), nil, t.TempDir())
	assert.Error(t, err)
}

func TestGetName(t *testing.T) {
	assert.Equal(t, "ZSTD", operations.GetName(operations.OP_ZSTD))
	assert.Equal(t, "UNKNOWN_7f", operations.GetName(0x7F))
}
