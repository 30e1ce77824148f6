// Package runlog keeps the records of finished simulation runs in memory,
// optionally mirrored to JSON files.
package runlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pefman/w40k-sim/internal/game"
	"github.com/pefman/w40k-sim/internal/sim"
)

// ErrNotFound is returned by Get for unknown run IDs.
var ErrNotFound = errors.New("run not found")

type Record struct {
	ID        string               `json:"id"`
	Created   int64                `json:"created"`
	Modifiers game.AttackModifiers `json:"modifiers"`
	Summary   sim.Summary          `json:"summary"`
	Duration  string               `json:"duration,omitempty"`
}

type Log struct {
	mu    sync.Mutex
	recs  map[string]*Record
	order []string // insertion order, oldest first
	dir   string
}

// New returns a log. A non-empty dir enables persistence; it is created if
// missing.
func New(dir string) (*Log, error) {
	l := &Log{recs: map[string]*Record{}}
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return l, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create run log dir: %w", err)
	}
	l.dir = abs
	return l, nil
}

// Add stores rec under a fresh ID and returns it. A persistence failure is
// returned alongside the stored record.
func (l *Log) Add(rec Record) (*Record, error) {
	rec.ID = uuid.NewString()
	rec.Created = time.Now().Unix()
	stored := &rec

	l.mu.Lock()
	l.recs[rec.ID] = stored
	l.order = append(l.order, rec.ID)
	l.mu.Unlock()

	if l.dir == "" {
		return stored, nil
	}
	return stored, l.save(stored)
}

// Get returns the record for id, loading it from disk when persistence is
// enabled and it is not in memory.
func (l *Log) Get(id string) (*Record, error) {
	id = strings.TrimSpace(id)
	if err := uuid.Validate(id); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	l.mu.Lock()
	rec, ok := l.recs[id]
	l.mu.Unlock()
	if ok {
		return rec, nil
	}
	if l.dir == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	rec, err := l.load(id)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	if _, ok := l.recs[id]; !ok {
		l.recs[id] = rec
	}
	l.mu.Unlock()
	return rec, nil
}

// List returns up to limit records, newest first. limit <= 0 means all
// in-memory records.
func (l *Log) List(limit int) []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	ids := slices.Clone(l.order)
	slices.Reverse(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, *l.recs[id])
	}
	return out
}

func (l *Log) path(id string) string {
	return filepath.Join(l.dir, id+".json")
}

func (l *Log) save(rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	path := l.path(rec.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("persist run %s: %w", rec.ID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("persist run %s: %w", rec.ID, err)
	}
	return nil
}

func (l *Log) load(id string) (*Record, error) {
	data, err := os.ReadFile(l.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", id, err)
	}
	if rec.ID == "" {
		rec.ID = id
	}
	return &rec, nil
}
