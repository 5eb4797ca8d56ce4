// Package sink models the relational persistence layer at its interface:
// per §1 it's an external collaborator treated as a black-box key-value
// sink/source, so this package only defines the KV contract and the row
// shapes of §6's persisted tables, plus one in-memory reference
// implementation used by tests and by cmd/solver when no external store is
// configured.
//
// Grounded in pokerforbots's sdk/solver/checkpoint.go temp-file-then-rename
// atomic write discipline (SaveJSON here follows the same shape) and in
// internal/cfr/checkpoint.go's JSON snapshot format, generalized to the
// keyed-table layout §6 specifies instead of one flat trainer snapshot.
package sink

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Table names the persisted keyed tables of §6.
type Table string

const (
	Isomorphism Table = "isomorphism" // i64 obs -> i16 abs
	Abstraction Table = "abstraction" // i16 abs -> {street, population, equity}
	Metric      Table = "metric"      // i32 triangular-pair id -> f32 distance
	Transitions Table = "transitions" // (i16 prev, i16 next) -> f32 mass
	Blueprint   Table = "blueprint"   // (i64 past, i16 present, i64 choices, i64 edge) -> {W,R,V,C}
	Epoch       Table = "epoch"       // "current" -> i64 t
	Street      Table = "street"      // i16 street -> {nobs, nabs}
)

// AbstractionRow is the value half of the abstraction table.
type AbstractionRow struct {
	Street     int16
	Population int32
	Equity     float32
}

// BlueprintKey uniquely identifies one (info, edge) row: past is the
// current-street edge path so far, present the bucket, choices the legal
// edges available, edge the action this row's W/R/V/C describe.
type BlueprintKey struct {
	Past    int64
	Present int16
	Choices int64
	Edge    int64
}

// BlueprintRow is the value half of the blueprint table: one Encounter.
type BlueprintRow struct {
	W float32
	R float32
	V float32
	C int32
}

// StreetRow is the value half of the street table.
type StreetRow struct {
	NObs int32
	NAbs int32
}

// KV is the sink's black-box contract: a keyed get/put/scan store plus a
// bulk-load entry point for the binary-stream protocol used to hydrate
// large tables (isomorphism, metric, transitions) at startup.
type KV interface {
	Get(table Table, key []byte) ([]byte, bool, error)
	Put(table Table, key, value []byte) error
	Scan(table Table, fn func(key, value []byte) error) error
	// BulkLoad reads a sequence of (key, value) pairs from a binary stream
	// (§6 "bulk loads use the sink's binary-stream protocol") and writes
	// them all into table in one pass.
	BulkLoad(table Table, r io.Reader) error
}

// Memory is an in-memory KV, the reference implementation this package ships
// for tests and for cmd/solver runs with no external store configured.
// Concurrency-safe: one map per table, all guarded by a single RWMutex — a
// coarser grain than internal/cfr.Profile's per-shard locking.
type Memory struct {
	mu     sync.RWMutex
	tables map[Table]map[string][]byte
}

// NewMemory returns an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{tables: make(map[Table]map[string][]byte)}
}

func (m *Memory) tableFor(t Table) map[string][]byte {
	tbl, ok := m.tables[t]
	if !ok {
		tbl = make(map[string][]byte)
		m.tables[t] = tbl
	}
	return tbl
}

func (m *Memory) Get(table Table, key []byte) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.tables[table][string(key)]
	return v, ok, nil
}

func (m *Memory) Put(table Table, key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tableFor(table)[string(key)] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Scan(table Table, fn func(key, value []byte) error) error {
	m.mu.RLock()
	// Snapshot the table under lock so fn can run without holding it (fn
	// may itself call back into Get/Put on a different table).
	snapshot := make(map[string][]byte, len(m.tables[table]))
	for k, v := range m.tables[table] {
		snapshot[k] = v
	}
	m.mu.RUnlock()

	for k, v := range snapshot {
		if err := fn([]byte(k), v); err != nil {
			return err
		}
	}
	return nil
}

// BulkLoad reads length-prefixed (key, value) pairs from r: a u32 key
// length, the key bytes, a u32 value length, the value bytes, repeated
// until EOF.
func (m *Memory) BulkLoad(table Table, r io.Reader) error {
	br := bufio.NewReader(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	tbl := m.tableFor(table)

	for {
		key, err := readFrame(br)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("sink: bulk load %s: read key: %w", table, err)
		}
		value, err := readFrame(br)
		if err != nil {
			return fmt.Errorf("sink: bulk load %s: read value: %w", table, err)
		}
		tbl[string(key)] = value
	}
}

// WriteBulk encodes pairs into the binary-stream protocol BulkLoad reads,
// used by the training orchestrator to hand off the tables it builds.
func WriteBulk(w io.Writer, pairs func(yield func(key, value []byte) error) error) error {
	bw := bufio.NewWriter(w)
	err := pairs(func(key, value []byte) error {
		if err := writeFrame(bw, key); err != nil {
			return err
		}
		return writeFrame(bw, value)
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}

func readFrame(r *bufio.Reader) ([]byte, error) {
	var length uint32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return nil, err
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeFrame(w io.Writer, b []byte) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// jsonRow is one binary-safe (key, value) pair; json.Marshal base64-encodes
// []byte fields automatically, so this survives keys that aren't valid
// UTF-8 (every table key here is a packed binary integer, never text).
type jsonRow struct {
	Key   []byte `json:"k"`
	Value []byte `json:"v"`
}

// SaveJSON is a convenience used by cmd/solver to persist a Memory sink's
// full contents to a single file for local runs where no external
// relational store is configured, via the same temp-file-then-rename
// atomic write discipline as internal/cfr.Trainer.SaveCheckpoint.
func (m *Memory) SaveJSON(path string) error {
	m.mu.RLock()
	dump := make(map[Table][]jsonRow, len(m.tables))
	for t, tbl := range m.tables {
		rows := make([]jsonRow, 0, len(tbl))
		for k, v := range tbl {
			rows = append(rows, jsonRow{Key: []byte(k), Value: v})
		}
		dump[t] = rows
	}
	m.mu.RUnlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("sink: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("sink: create temp: %w", err)
	}
	enc := json.NewEncoder(tmp)
	if err := enc.Encode(dump); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("sink: encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("sink: close temp: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// LoadJSON loads a Memory sink previously written by SaveJSON.
func LoadJSON(path string) (*Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sink: open: %w", err)
	}
	defer f.Close()
	var dump map[Table][]jsonRow
	if err := json.NewDecoder(f).Decode(&dump); err != nil {
		return nil, fmt.Errorf("sink: decode: %w", err)
	}
	m := NewMemory()
	for t, rows := range dump {
		tbl := m.tableFor(t)
		for _, row := range rows {
			tbl[string(row.Key)] = row.Value
		}
	}
	return m, nil
}
