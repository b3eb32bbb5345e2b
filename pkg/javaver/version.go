// Package javaver parses Java runtime version strings and evaluates the
// compatibility rules carried by a launcher container.
package javaver

import (
	"fmt"
	"strings"
)

// maxMajor bounds the major component; anything larger is not a Java version.
const maxMajor = 999

// maxBuildLen caps the free-form build suffix.
const maxBuildLen = 127

// Version is a parsed Java version. Build is informational and never
// takes part in ordering.
type Version struct {
	Major  uint32
	Minor  uint32
	Micro  uint32
	Update uint32
	Build  string
}

// Parse reads a version of the form
//
//	major(('.'|'+')minor)?('.'micro('_'update)?('-'build)?)?
//
// Both "1.8.0_292-b10" and "17+35" style strings are accepted. Parse
// reports false when the major component is missing, contains an
// unexpected character or exceeds 999.
func Parse(s string) (Version, bool) {
	var v Version
	p := 0
	digits := 0

	for p < len(s) {
		c := s[p]
		p++
		if isDigit(c) {
			v.Major = v.Major*10 + uint32(c-'0')
			digits++
			if v.Major > maxMajor {
				return Version{}, false
			}
			continue
		}
		if c == '.' || c == '+' {
			break
		}
		return Version{}, false
	}
	if digits == 0 {
		return Version{}, false
	}

	for p < len(s) && isDigit(s[p]) {
		v.Minor = v.Minor*10 + uint32(s[p]-'0')
		p++
	}

	if p >= len(s) || s[p] != '.' {
		return v, true
	}
	p++

	for p < len(s) {
		c := s[p]
		if isDigit(c) {
			v.Micro = v.Micro*10 + uint32(c-'0')
			p++
			continue
		}
		if c == '_' {
			p++
			for p < len(s) {
				c = s[p]
				p++
				if !isDigit(c) {
					break
				}
				v.Update = v.Update*10 + uint32(c-'0')
			}
		} else {
			p++
		}
		if c == '-' && p < len(s) {
			v.Build = s[p:]
			if len(v.Build) > maxBuildLen {
				v.Build = v.Build[:maxBuildLen]
			}
		}
		break
	}

	return v, true
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) Version {
	v, ok := Parse(s)
	if !ok {
		panic(fmt.Sprintf("javaver: invalid version %q", s))
	}
	return v
}

// Compare orders versions by (Major, Minor, Micro, Update). It returns -1,
// 0 or 1.
func Compare(a, b Version) int {
	for _, pair := range [4][2]uint32{
		{a.Major, b.Major},
		{a.Minor, b.Minor},
		{a.Micro, b.Micro},
		{a.Update, b.Update},
	} {
		switch {
		case pair[0] < pair[1]:
			return -1
		case pair[0] > pair[1]:
			return 1
		}
	}
	return 0
}

// String renders the version as "major.minor.micro[_update][-build]".
func (v Version) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d.%d.%d", v.Major, v.Minor, v.Micro)
	if v.Update != 0 {
		fmt.Fprintf(&sb, "_%02d", v.Update)
	}
	if v.Build != "" {
		sb.WriteString("-")
		sb.WriteString(v.Build)
	}
	return sb.String()
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
