package launcher

import "strings"

// DetectLocale derives a Java style locale ("en_US") from the POSIX locale
// variables. It returns "" when none is set or the locale is C/POSIX.
func DetectLocale(getenv func(string) string) string {
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		value := getenv(name)
		if value == "" {
			continue
		}
		if i := strings.IndexAny(value, ".@"); i >= 0 {
			value = value[:i]
		}
		if value == "C" || value == "POSIX" {
			return ""
		}
		return strings.ReplaceAll(value, "-", "_")
	}
	return ""
}
