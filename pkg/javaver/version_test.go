package javaver

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  Version
		ok    bool
	}{
		{name: "legacy with update and build", input: "1.8.0_292-b10", want: Version{Major: 1, Minor: 8, Micro: 0, Update: 292, Build: "b10"}, ok: true},
		{name: "legacy without build", input: "1.8.0_292", want: Version{Major: 1, Minor: 8, Update: 292}, ok: true},
		{name: "plus separated", input: "17+35-2724", want: Version{Major: 17, Minor: 35}, ok: true},
		{name: "three components", input: "11.0.12", want: Version{Major: 11, Micro: 12}, ok: true},
		{name: "major only", input: "17", want: Version{Major: 17}, ok: true},
		{name: "two components", input: "1.8", want: Version{Major: 1, Minor: 8}, ok: true},
		{name: "early access build", input: "1.8.0-ea", want: Version{Major: 1, Minor: 8, Build: "ea"}, ok: true},
		{name: "plus after micro drops build", input: "9.0.4+11", want: Version{Major: 9, Micro: 4}, ok: true},
		{name: "empty", input: "", ok: false},
		{name: "letters", input: "abc", ok: false},
		{name: "letter in major", input: "1a.2", ok: false},
		{name: "no major digits", input: ".5", ok: false},
		{name: "major too large", input: "1000.0", ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Parse(tc.input)
			if ok != tc.ok {
				t.Fatalf("Parse(%q) ok = %v, want %v", tc.input, ok, tc.ok)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tc.input, diff)
			}
		})
	}
}

func TestParseBuildIsCapped(t *testing.T) {
	v, ok := Parse("1.8.0_1-" + strings.Repeat("x", 300))
	assert.True(t, ok)
	assert.Len(t, v.Build, maxBuildLen)
}

func TestString(t *testing.T) {
	assert.Equal(t, "1.8.0_292-b10", MustParse("1.8.0_292-b10").String())
	assert.Equal(t, "1.6.0_05", Version{Major: 1, Minor: 6, Update: 5}.String())
	assert.Equal(t, "17.35.0", MustParse("17+35-2724").String())
}

func randomVersion(r *rand.Rand) Version {
	return Version{
		Major:  uint32(r.Intn(3)),
		Minor:  uint32(r.Intn(3)),
		Micro:  uint32(r.Intn(3)),
		Update: uint32(r.Intn(3)),
		Build:  []string{"", "b01", "ea"}[r.Intn(3)],
	}
}

func TestCompareIsTotalOrder(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		a, b, c := randomVersion(r), randomVersion(r), randomVersion(r)

		if Compare(a, a) != 0 {
			t.Fatalf("Compare(%v, %v) != 0", a, a)
		}
		if Compare(a, b) != -Compare(b, a) {
			t.Fatalf("Compare not antisymmetric for %v, %v", a, b)
		}
		if Compare(a, b) <= 0 && Compare(b, c) <= 0 && Compare(a, c) > 0 {
			t.Fatalf("Compare not transitive for %v <= %v <= %v", a, b, c)
		}
	}
}

func TestCompareIgnoresBuild(t *testing.T) {
	a := Version{Major: 1, Minor: 8, Build: "b01"}
	b := Version{Major: 1, Minor: 8, Build: "b99"}
	assert.Equal(t, 0, Compare(a, b))
	assert.Equal(t, -1, Compare(MustParse("1.8.0_291"), MustParse("1.8.0_292")))
	assert.Equal(t, 1, Compare(MustParse("11"), MustParse("1.8.0_292")))
}
