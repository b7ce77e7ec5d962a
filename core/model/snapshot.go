package model

import (
	"encoding/gob"
	"fmt"
	"os"
	"sort"
)

// ParamSnapshot captures a model's floating point parameters by name.
// It is the transport used for warm-starting a refit: Update captures a
// snapshot before replacing the training data and restores it as the
// optimizer's starting point.
type ParamSnapshot map[string]float64

// Clone returns a deep copy of the snapshot.
func (p ParamSnapshot) Clone() ParamSnapshot {
	out := make(ParamSnapshot, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Names returns the parameter names in sorted order.
func (p ParamSnapshot) Names() []string {
	names := make([]string, 0, len(p))
	for k := range p {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Snapshotter is implemented by models and likelihoods whose parameters can
// be captured and restored by name.
type Snapshotter interface {
	// Snapshot returns the current parameters.
	Snapshot() ParamSnapshot

	// Restore sets parameters from a snapshot. Unknown names are ignored so
	// snapshots stay usable across minor model changes.
	Restore(ParamSnapshot)
}

// SaveSnapshot writes a snapshot to a file using gob encoding.
//
// Example:
//
//	snap := m.Snapshot()
//	err := model.SaveSnapshot(snap, "threshold_model.gob")
func SaveSnapshot(snap ParamSnapshot, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := gob.NewEncoder(file)
	if err := encoder.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	return nil
}

// LoadSnapshot reads a snapshot from a file written by SaveSnapshot.
func LoadSnapshot(filename string) (ParamSnapshot, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var snap ParamSnapshot
	decoder := gob.NewDecoder(file)
	if err := decoder.Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	return snap, nil
}
