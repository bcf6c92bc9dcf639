// Package runstats maintains a small JSON sidecar file tracking the
// recent history of runs against a given measurements file; --time runs
// append to it. Nothing in the program reads the history back or prints
// a trend from it. The load/save shape is grounded on the
// teacher's schema.Schema in internal/schema/manager.go: a JSON sidecar
// keyed off the input path, loaded lazily and written back under a
// mutex, defaulting to an empty value when absent rather than erroring.
package runstats

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// maxHistory caps the ring of retained runs so the sidecar never grows
// unbounded across a long benchmarking session.
const maxHistory = 50

// Run records one completed run of the pipeline.
type Run struct {
	Timestamp string `json:"timestamp"`
	Workers   int    `json:"workers"`
	Strategy  string `json:"strategy"`
	ElapsedMs int64  `json:"elapsedMs"`
	Rows      uint64 `json:"rows"`
}

// History is the on-disk sidecar shape: a capped ring of past runs.
type History struct {
	Runs []Run `json:"runs"`

	path string
	mu   sync.Mutex
}

// Load reads the sidecar for measurementsPath, returning an empty
// History if none exists yet.
func Load(measurementsPath string) (*History, error) {
	h := &History{path: sidecarPath(measurementsPath)}

	data, err := os.ReadFile(h.path)
	if os.IsNotExist(err) {
		return h, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, h); err != nil {
		return nil, err
	}
	return h, nil
}

// Append records run and persists the updated history to disk,
// trimming to the most recent maxHistory entries.
func (h *History) Append(run Run) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.Runs = append(h.Runs, run)
	if len(h.Runs) > maxHistory {
		h.Runs = h.Runs[len(h.Runs)-maxHistory:]
	}

	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(h.path, data, 0644)
}

func sidecarPath(measurementsPath string) string {
	dir := filepath.Dir(measurementsPath)
	base := filepath.Base(measurementsPath)
	return filepath.Join(dir, base+".runstats.json")
}
