package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// New starts an empty report for a run.
func New(mode, store string) *Report {
	return &Report{
		Version:     SupportedVersion,
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Mode:        mode,
		Store:       store,
		Items:       []Item{},
	}
}

// Add appends an item and returns a pointer to it for further updates.
func (r *Report) Add(it Item) *Item {
	r.Items = append(r.Items, it)
	return &r.Items[len(r.Items)-1]
}

// ComputeStats recalculates the aggregate counters from Items. LedgerRows
// is left untouched; only the pipeline knows it.
func (r *Report) ComputeStats() {
	s := Stats{Candidates: len(r.Items), LedgerRows: r.Stats.LedgerRows}
	for _, it := range r.Items {
		switch it.Status {
		case StatusPublished:
			s.Published++
			s.OutputBytes += it.Bytes
		case StatusStaged:
			s.Staged++
			s.OutputBytes += it.Bytes
		case StatusFailed:
			s.Failed++
		}
	}
	r.Stats = s
}

// WriteJSON writes the report as indented JSON, creating parent directories.
func WriteJSON(r *Report, path string) error {
	r.ComputeStats()

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadJSON loads a report written by WriteJSON.
func ReadJSON(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse report %s: %w", path, err)
	}
	if r.Version > SupportedVersion {
		return nil, fmt.Errorf("report %s: version %d is newer than supported %d", path, r.Version, SupportedVersion)
	}
	return &r, nil
}
