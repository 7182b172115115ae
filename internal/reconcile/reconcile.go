// Package reconcile computes which form photos have not been published yet.
package reconcile

import (
	"fmt"
	"strings"

	"github.com/AnyUserName/fotosync/internal/config"
	"github.com/AnyUserName/fotosync/internal/ledger"
	"github.com/AnyUserName/fotosync/internal/naming"
	"github.com/AnyUserName/fotosync/internal/sheet"
	"github.com/sirupsen/logrus"
)

// Key identifies a photo. Two records with equal keys are the same photo,
// whatever their descriptions say.
type Key struct {
	ProjectCode string
	WeekLabel   string
	FileName    string
}

// NewKey normalizes each field, so keys built from raw spreadsheet values
// and from ledger rows compare equal.
func NewKey(projectCode, weekLabel, fileName string) Key {
	return Key{
		ProjectCode: naming.Normalize(projectCode),
		WeekLabel:   naming.Normalize(weekLabel),
		FileName:    naming.Normalize(fileName),
	}
}

// KeyOf returns the key of a ledger row.
func KeyOf(r ledger.Row) Key {
	return NewKey(r.ProjectCode, r.WeekLabel, r.FileName)
}

func (k Key) String() string {
	return k.ProjectCode + "/" + k.WeekLabel + "/" + k.FileName
}

// PhotoRecord is one unit of work: a row × slot with a reference.
type PhotoRecord struct {
	ProjectCode string
	WeekLabel   string
	Slot        string
	SourceURL   string
	// SourceName is the decoded file name as it appears on disk.
	SourceName string
	// FileName is SourceName with whitespace normalized.
	FileName    string
	Description string
	// LocalPath, when set, skips resolution (tree mode).
	LocalPath string
	// Fallbacks are later cells of the same run with the same key, in
	// spreadsheet order. They are tried when this one cannot be read locally.
	Fallbacks []PhotoRecord
}

func (r PhotoRecord) Key() Key {
	return NewKey(r.ProjectCode, r.WeekLabel, r.FileName)
}

// Fields returns log fields identifying the record.
func (r PhotoRecord) Fields() logrus.Fields {
	return logrus.Fields{
		"project": r.ProjectCode,
		"week":    r.WeekLabel,
		"slot":    r.Slot,
		"file":    r.FileName,
	}
}

// Columns describes where the reconciler finds its inputs.
type Columns struct {
	Project string
	Week    string
	Slots   []config.Slot
}

// ColumnsFrom extracts the spreadsheet layout from cfg.
func ColumnsFrom(cfg *config.Config) Columns {
	return Columns{Project: cfg.ProjectColumn, Week: cfg.WeekColumn, Slots: cfg.Slots}
}

// Required lists the columns a forms spreadsheet must carry.
func (c Columns) Required() []string {
	cols := []string{c.Project, c.Week}
	for _, s := range c.Slots {
		cols = append(cols, s.ReferenceColumn, s.DescriptionColumn)
	}
	return cols
}

// Seen returns the set of keys already in the ledger.
func Seen(existing []ledger.Row) map[Key]bool {
	seen := make(map[Key]bool, len(existing))
	for _, r := range existing {
		seen[KeyOf(r)] = true
	}
	return seen
}

// Reconcile walks rows top to bottom and slots left to right and returns
// one record per key not in the ledger. The first cell carrying a key wins;
// later cells with that key become its Fallbacks.
func Reconcile(rows []sheet.Row, existing []ledger.Row, cols Columns, log logrus.FieldLogger) []PhotoRecord {
	if log == nil {
		log = logrus.StandardLogger()
	}
	seen := Seen(existing)
	// Index into out of the first cell carrying each key in this run.
	first := map[Key]int{}

	var out []PhotoRecord
	for i, row := range rows {
		if err := checkRow(row, cols); err != nil {
			log.WithFields(logrus.Fields{"row": i + 2, "error": err}).Warn("skipping row with unusable project or week")
			continue
		}
		for _, slot := range cols.Slots {
			ref := strings.TrimSpace(row[slot.ReferenceColumn])
			if ref == "" {
				continue
			}
			name, err := naming.FileNameFromReference(ref)
			if err != nil {
				log.WithFields(logrus.Fields{
					"row":   i + 2,
					"slot":  slot.Name,
					"error": err,
				}).Warn("skipping unusable photo reference")
				continue
			}

			rec := PhotoRecord{
				ProjectCode: naming.Normalize(row[cols.Project]),
				WeekLabel:   naming.Normalize(row[cols.Week]),
				Slot:        slot.Name,
				SourceURL:   ref,
				SourceName:  name,
				FileName:    naming.Normalize(name),
				Description: strings.TrimSpace(row[slot.DescriptionColumn]),
			}
			k := rec.Key()
			if seen[k] {
				log.WithFields(rec.Fields()).Debug("already published")
				continue
			}
			if j, ok := first[k]; ok {
				log.WithFields(rec.Fields()).Debug("duplicate key in this run, kept as fallback")
				out[j].Fallbacks = append(out[j].Fallbacks, rec)
				continue
			}
			first[k] = len(out)
			out = append(out, rec)
		}
	}
	return out
}

func checkRow(row sheet.Row, cols Columns) error {
	for _, col := range []string{cols.Project, cols.Week} {
		if err := naming.CheckPart(row[col]); err != nil {
			return fmt.Errorf("column %s: %w", col, err)
		}
	}
	return nil
}

// Filter drops records whose key is already in the ledger or earlier in
// records, keeping order. It serves tree mode, where records do not come
// from a spreadsheet.
func Filter(records []PhotoRecord, existing []ledger.Row) []PhotoRecord {
	seen := Seen(existing)
	var out []PhotoRecord
	for _, r := range records {
		k := r.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}
