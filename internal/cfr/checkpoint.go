package cfr

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// checkpointFileVersion guards against loading a snapshot written by an
// incompatible encoding; bump it whenever Snapshot's shape changes.
const checkpointFileVersion = 1

// encounterSnapshot is one (info, edge) row in a persisted checkpoint,
// matching the blueprint table layout used by domain bindings: keyed
// uniquely by (past, present, choices, edge) in the NLHE binding, but here
// just by the raw info Key() and edge string since this package is
// domain-agnostic.
type encounterSnapshot struct {
	Info  string  `json:"info"`
	Edge  string  `json:"edge"`
	W     float64 `json:"w"`
	R     float64 `json:"r"`
	V     float64 `json:"v"`
	Count int32   `json:"c"`
}

// Snapshot is the full persisted state of a Profile plus the epoch counter,
// grounded in pokerforbots's sdk/solver/checkpoint.go checkpointSnapshot.
type Snapshot struct {
	Version    int                 `json:"version"`
	Epoch      int64               `json:"epoch"`
	Encounters []encounterSnapshot `json:"encounters"`
}

// Snapshot captures the trainer's current epoch and every accumulated (info,
// edge) encounter.
func (tr *Trainer) Snapshot() Snapshot {
	snap := Snapshot{Version: checkpointFileVersion, Epoch: tr.epoch.Load()}
	for i := range tr.profile.shards {
		tr.profile.mus[i].RLock()
		for infoKey, e := range tr.profile.shards[i] {
			e.mu.Lock()
			for edgeStr, enc := range e.encounter {
				snap.Encounters = append(snap.Encounters, encounterSnapshot{
					Info: infoKey, Edge: edgeStr,
					W: enc.W, R: enc.R, V: enc.V, Count: enc.C,
				})
			}
			e.mu.Unlock()
		}
		tr.profile.mus[i].RUnlock()
	}
	return snap
}

// SaveCheckpoint writes a JSON snapshot of the trainer to path, via a
// temp-file-then-rename so a crash mid-write never corrupts the last good
// checkpoint — the same atomic-write discipline as pokerforbots's
// SaveCheckpoint.
func (tr *Trainer) SaveCheckpoint(path string) error {
	snap := tr.Snapshot()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cfr: create checkpoint dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("cfr: create checkpoint temp: %w", err)
	}
	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("cfr: encode checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cfr: close checkpoint temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cfr: rename checkpoint into place: %w", err)
	}
	return nil
}

// LoadCheckpoint reads a Snapshot written by SaveCheckpoint.
func LoadCheckpoint(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("cfr: open checkpoint: %w", err)
	}
	defer f.Close()
	var snap Snapshot
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("cfr: decode checkpoint: %w", err)
	}
	if snap.Version != checkpointFileVersion {
		return Snapshot{}, fmt.Errorf("cfr: checkpoint version %d unsupported (want %d)", snap.Version, checkpointFileVersion)
	}
	return snap, nil
}

// Restore repopulates profile from a previously saved snapshot. Edges are
// restored keyed by their string form only — since Profile's entries key
// encounters by edgeKey(edge) rather than the edges themselves, Restore can
// rehydrate Encounter values without needing the original typed Edge; the
// typed edge set is backfilled from Encoder.Info on first live access.
func Restore(profile *Profile, snap Snapshot) {
	for _, row := range snap.Encounters {
		profile.Seed(row.Info, row.Edge, Encounter{W: row.W, R: row.R, V: row.V, C: row.Count})
	}
}

// SetEpoch positions the trainer's epoch counter, used when resuming from a
// checkpoint so discount schedules and walker alternation continue where the
// saved run stopped.
func (tr *Trainer) SetEpoch(epoch int64) {
	tr.epoch.Store(epoch)
}
