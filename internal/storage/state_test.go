package storage

import (
	"path/filepath"
	"testing"

	"pairpool/internal/model"
)

func TestFileStateStoreRoundTrip(t *testing.T) {
	store := &FileStateStore{Path: filepath.Join(t.TempDir(), "state.json")}

	if _, ok, err := store.Load(); err != nil || ok {
		t.Fatalf("expected empty load, got ok=%v err=%v", ok, err)
	}

	state := model.PoolState{
		Pool:        "0x00000000000000000000000000000000000000F0",
		AssetA:      "0x00000000000000000000000000000000000000aA",
		AssetB:      "0x00000000000000000000000000000000000000Bb",
		ReserveA:    "1100",
		ReserveB:    "1818",
		K:           "1999800",
		TotalShares: "100000000000000000000",
		Shares: map[string]string{
			"0x0000000000000000000000000000000000000001": "100000000000000000000",
		},
	}
	if err := store.Save(state); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, ok, err := store.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected saved state to load")
	}
	if loaded.ReserveA != state.ReserveA || loaded.K != state.K || loaded.TotalShares != state.TotalShares {
		t.Fatalf("round-trip mismatch: %+v != %+v", loaded, state)
	}
	if loaded.Shares["0x0000000000000000000000000000000000000001"] != "100000000000000000000" {
		t.Fatalf("shares lost in round trip: %+v", loaded.Shares)
	}
}

func TestFileStateStoreDisabledWithoutPath(t *testing.T) {
	store := &FileStateStore{}
	if err := store.Save(model.PoolState{}); err != nil {
		t.Fatalf("save without path should be a no-op, got %v", err)
	}
	if _, ok, err := store.Load(); err != nil || ok {
		t.Fatalf("load without path should report nothing, got ok=%v err=%v", ok, err)
	}
}
