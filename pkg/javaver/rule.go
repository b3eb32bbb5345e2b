package javaver

import "strings"

// Rule accepts runtimes whose version lies in [Min, Max] and whose vendor,
// os name and os arch contain the non-empty predicates.
type Rule struct {
	Min    Version
	Max    Version
	Vendor string
	OSName string
	OSArch string
}

// Matches reports whether a runtime with the given properties satisfies r.
// Substring checks are case sensitive.
func (r Rule) Matches(v Version, vendor, osName, osArch string) bool {
	if Compare(v, r.Min) < 0 || Compare(v, r.Max) > 0 {
		return false
	}
	if r.Vendor != "" && !strings.Contains(vendor, r.Vendor) {
		return false
	}
	if r.OSName != "" && !strings.Contains(osName, r.OSName) {
		return false
	}
	if r.OSArch != "" && !strings.Contains(osArch, r.OSArch) {
		return false
	}
	return true
}

// AnyMatches reports whether at least one rule accepts the runtime.
func AnyMatches(rules []Rule, v Version, vendor, osName, osArch string) bool {
	for _, r := range rules {
		if r.Matches(v, vendor, osName, osArch) {
			return true
		}
	}
	return false
}
