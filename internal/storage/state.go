package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pairpool/internal/model"
)

// StateStore persists the pool ledger snapshot between runs.
type StateStore interface {
	Load() (model.PoolState, bool, error)
	Save(state model.PoolState) error
}

// FileStateStore stores the snapshot in a local JSON file, written
// atomically via a temp file and rename.
type FileStateStore struct {
	Path string
}

type stateRecord struct {
	State     model.PoolState `json:"state"`
	UpdatedAt string          `json:"updated_at"`
}

func (s *FileStateStore) Load() (model.PoolState, bool, error) {
	if s == nil || s.Path == "" {
		return model.PoolState{}, false, nil
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.PoolState{}, false, nil
		}
		return model.PoolState{}, false, fmt.Errorf("read state: %w", err)
	}

	var rec stateRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.PoolState{}, false, fmt.Errorf("parse state: %w", err)
	}
	return rec.State, true, nil
}

func (s *FileStateStore) Save(state model.PoolState) error {
	if s == nil || s.Path == "" {
		return nil
	}
	dir := filepath.Dir(s.Path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}

	rec := stateRecord{
		State:     state,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state tmp: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("rename state: %w", err)
	}
	return nil
}
