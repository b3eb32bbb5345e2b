package resolve

import (
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/jlaunch/pkg/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapLookup map[string]string

func (m mapLookup) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

func newTestResolver(props mapLookup) *Resolver {
	r := New(props, hclog.New(&hclog.LoggerOptions{Name: "resolve_test", Level: hclog.Trace}))
	r.Set(VarTmpDir, "/tmp/jl")
	r.Set(VarParentDir, "/opt/app")
	return r
}

func TestResolve(t *testing.T) {
	r := newTestResolver(mapLookup{
		"product":  "Demo",
		"title":    "$P{product} Installer",
		"data.dir": "$L{nbi.launcher.tmp.dir}/data",
	})

	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "no markers", input: "plain", want: "plain"},
		{name: "launcher variable", input: "$L{nbi.launcher.tmp.dir}/app.jar", want: "/tmp/jl/app.jar"},
		{name: "two variables", input: "$L{nbi.launcher.parent.dir}:$L{nbi.launcher.tmp.dir}", want: "/opt/app:/tmp/jl"},
		{name: "nested property", input: "$P{title}", want: "Demo Installer"},
		{name: "property into variable", input: "$P{data.dir}/x", want: "/tmp/jl/data/x"},
		{name: "unknown left alone", input: "$L{nope}/$P{missing}", want: "$L{nope}/$P{missing}"},
		{name: "unknown before known", input: "$L{nope}-$L{nbi.launcher.tmp.dir}", want: "$L{nope}-/tmp/jl"},
		{name: "unset java home", input: "$L{nbi.launcher.java.home}/bin", want: "$L{nbi.launcher.java.home}/bin"},
		{name: "unterminated", input: "$L{nbi.launcher.tmp.dir", want: "$L{nbi.launcher.tmp.dir"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.Resolve(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveJavaHomeAfterSet(t *testing.T) {
	r := newTestResolver(nil)
	r.Set(VarJavaHome, "/usr/lib/jvm/17")

	got, err := r.Resolve("$L{nbi.launcher.java.home}/lib/tools.jar")
	require.NoError(t, err)
	assert.Equal(t, "/usr/lib/jvm/17/lib/tools.jar", got)

	r.Set(VarJavaHome, "")
	got, err = r.Resolve("$L{nbi.launcher.java.home}")
	require.NoError(t, err)
	assert.Equal(t, "$L{nbi.launcher.java.home}", got)
}

func TestResolveSelfReferenceIsIntegrityError(t *testing.T) {
	r := newTestResolver(mapLookup{"loop": "x$P{loop}"})

	_, err := r.Resolve("$P{loop}")
	assert.ErrorIs(t, err, container.ErrIntegrity)
}

func TestResolveFixedPointReference(t *testing.T) {
	// A property that expands to itself converges immediately.
	r := newTestResolver(mapLookup{"same": "$P{same}"})

	got, err := r.Resolve("$P{same}")
	require.NoError(t, err)
	assert.Equal(t, "$P{same}", got)
}

func TestResolvePath(t *testing.T) {
	r := newTestResolver(nil)

	got, err := r.ResolvePath(`$L{nbi.launcher.tmp.dir}/lib\app.jar`)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/jl", "lib", "app.jar"), got)
}
