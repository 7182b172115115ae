// Package report records the outcome of a sync run.
package report

import "time"

// Status of one item in a run.
const (
	StatusPublished = "published"
	StatusStaged    = "staged" // dry run: normalized but not published
	StatusFailed    = "failed"
)

// Modes of a run.
const (
	ModeSheet = "sheet"
	ModeTree  = "tree"
)

// Report is the JSON document written after a run.
type Report struct {
	Version     int       `json:"version"`
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Mode        string    `json:"mode"`
	Store       string    `json:"store"`
	DryRun      bool      `json:"dry_run,omitempty"`
	Items       []Item    `json:"items"`
	Stats       Stats     `json:"stats"`
}

// Item is one photo record the run attempted.
type Item struct {
	Key        string  `json:"key"`
	Slot       string  `json:"slot,omitempty"`
	Source     string  `json:"source,omitempty"`
	RemotePath string  `json:"remote_path,omitempty"`
	URL        string  `json:"url,omitempty"`
	Width      int     `json:"width,omitempty"`
	Height     int     `json:"height,omitempty"`
	Bytes      int64   `json:"bytes,omitempty"`
	SizeKB     float64 `json:"size_kb,omitempty"`
	Hash       string  `json:"hash,omitempty"` // xxhash64 of the staged file
	Status     string  `json:"status"`
	Error      string  `json:"error,omitempty"`
}

// Stats aggregates item outcomes.
type Stats struct {
	Candidates  int   `json:"candidates"`
	Published   int   `json:"published"`
	Staged      int   `json:"staged,omitempty"`
	Failed      int   `json:"failed"`
	OutputBytes int64 `json:"output_bytes"`
	LedgerRows  int   `json:"ledger_rows"`
}

// SupportedVersion is the current report schema version.
const SupportedVersion = 1
