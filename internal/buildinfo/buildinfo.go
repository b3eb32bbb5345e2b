// Package buildinfo reports the version and build time of the jlaunch
// binaries.
package buildinfo

import (
	"os"
	"runtime/debug"
	"time"
)

// Version of the launcher and builder.
const Version = "0.1.0"

// Timestamp returns the VCS commit time recorded in the binary, falling back
// to the executable's modification time and finally to now.
func Timestamp() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.time" {
				if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					return t.UTC().Format(time.RFC3339)
				}
			}
		}
	}
	if exePath, err := os.Executable(); err == nil {
		if stat, err := os.Stat(exePath); err == nil {
			return stat.ModTime().UTC().Format(time.RFC3339)
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}
