package workenv

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// MarkerName is the file written into a directory once extraction finished.
const MarkerName = ".extraction.complete"

// ValidationMarker represents the extraction completion marker
type ValidationMarker struct {
	Timestamp   time.Time `json:"timestamp"`
	Launcher    string    `json:"launcher"`
	MainClass   string    `json:"main_class"`
	BundledSize uint64    `json:"bundled_size"`
}

// WriteMarker records a completed extraction in dir.
func WriteMarker(dir string, marker ValidationMarker) error {
	if marker.Timestamp.IsZero() {
		marker.Timestamp = time.Now().UTC()
	}
	data, err := json.MarshalIndent(marker, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, MarkerName), data, 0o644)
}

// ReadMarker returns the marker in dir, if a valid one exists.
func ReadMarker(dir string) (*ValidationMarker, bool) {
	data, err := os.ReadFile(filepath.Join(dir, MarkerName))
	if err != nil {
		return nil, false
	}
	var marker ValidationMarker
	if err := json.Unmarshal(data, &marker); err != nil {
		return nil, false
	}
	return &marker, true
}
