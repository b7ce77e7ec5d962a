package model

import (
	"path/filepath"
	"testing"
)

func TestParamSnapshotClone(t *testing.T) {
	snap := ParamSnapshot{
		"mean.constant":       1.5,
		"kernel.outputscale":  2.0,
		"kernel.lengthscale0": 0.4,
	}
	clone := snap.Clone()
	clone["mean.constant"] = -1

	if snap["mean.constant"] != 1.5 {
		t.Errorf("Clone must not alias the original map")
	}
	if len(clone) != len(snap) {
		t.Errorf("Clone lost entries: %d vs %d", len(clone), len(snap))
	}
}

func TestParamSnapshotNamesSorted(t *testing.T) {
	snap := ParamSnapshot{"b": 1, "a": 2, "c": 3}
	names := snap.Names()
	want := []string{"a", "b", "c"}
	for i, n := range want {
		if names[i] != n {
			t.Fatalf("Names() = %v, want %v", names, want)
		}
	}
}

func TestSnapshotSaveLoadRoundTrip(t *testing.T) {
	snap := ParamSnapshot{
		"variational.mean0": 0.25,
		"likelihood.noise":  1e-2,
	}
	path := filepath.Join(t.TempDir(), "snap.gob")

	if err := SaveSnapshot(snap, path); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	if len(loaded) != len(snap) {
		t.Fatalf("round trip lost entries: %d vs %d", len(loaded), len(snap))
	}
	for k, v := range snap {
		if loaded[k] != v {
			t.Errorf("parameter %s = %v after round trip, want %v", k, loaded[k], v)
		}
	}
}

func TestStateManager(t *testing.T) {
	s := NewStateManager()
	if s.IsFitted() {
		t.Error("new StateManager should not be fitted")
	}
	if err := s.RequireFitted(); err == nil {
		t.Error("RequireFitted should fail before fitting")
	}

	s.SetDimensions(2, 30)
	s.SetFitted()
	if !s.IsFitted() {
		t.Error("SetFitted did not take effect")
	}
	nf, ns := s.GetDimensions()
	if nf != 2 || ns != 30 {
		t.Errorf("GetDimensions = (%d, %d), want (2, 30)", nf, ns)
	}

	s.Reset()
	if s.IsFitted() {
		t.Error("Reset should clear the fitted state")
	}
}
