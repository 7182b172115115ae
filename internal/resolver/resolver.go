// Package resolver locates the local file a form submission refers to.
package resolver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/AnyUserName/fotosync/internal/config"
	"github.com/AnyUserName/fotosync/internal/naming"
	"github.com/sirupsen/logrus"
)

var (
	// ErrUnknownSlot means the slot name is not in the configured table.
	ErrUnknownSlot = errors.New("unknown photo slot")
	// ErrFileNotFound means neither an exact nor a fuzzy match exists.
	ErrFileNotFound = errors.New("file not found")
)

// Match ranks, best first.
const (
	RankExact = iota
	RankNormalized
	// RankStem: the stem is followed by a non-alphanumeric rune or the end,
	// as in "IMG_0001 (1).jpg" for "IMG_0001.jpg".
	RankStem
	// RankSubstring: the stem merely occurs somewhere, as in "IMG_00012.jpg".
	RankSubstring
)

// Candidate is one file that may be the photo a record refers to.
type Candidate struct {
	Path string
	Name string
	Rank int
}

// Resolver maps (slot, file name) to a path under Root.
type Resolver struct {
	root    string
	folders map[string]string
	log     logrus.FieldLogger
}

// New builds a Resolver over the slot→folder table.
func New(root string, slots []config.Slot, log logrus.FieldLogger) *Resolver {
	folders := make(map[string]string, len(slots))
	for _, s := range slots {
		folders[s.Name] = s.Folder
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Resolver{root: root, folders: folders, log: log}
}

// Resolve returns the best candidate for fileName in the slot's folder.
// When the best match is a fuzzy one and other candidates exist, the
// choice and the alternatives are logged.
func (r *Resolver) Resolve(slotName, fileName string) (string, error) {
	cands, err := r.Candidates(slotName, fileName)
	if err != nil {
		return "", err
	}
	best := cands[0]
	if best.Rank >= RankStem && len(cands) > 1 {
		names := make([]string, len(cands))
		for i, c := range cands {
			names[i] = c.Name
		}
		r.log.WithFields(logrus.Fields{
			"slot":       slotName,
			"file":       fileName,
			"chosen":     best.Name,
			"candidates": strings.Join(names, ", "),
		}).Warn("ambiguous fuzzy match")
	}
	return best.Path, nil
}

// Candidates lists every plausible match, best first. Ordering is
// independent of the directory listing order.
func (r *Resolver) Candidates(slotName, fileName string) ([]Candidate, error) {
	folder, ok := r.folders[slotName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSlot, slotName)
	}
	dir := filepath.Join(r.root, folder)

	exact := filepath.Join(dir, fileName)
	if info, err := os.Stat(exact); err == nil && !info.IsDir() {
		return []Candidate{{Path: exact, Name: fileName, Rank: RankExact}}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: folder %s does not exist", ErrFileNotFound, dir)
		}
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	normName := naming.Normalize(fileName)
	stem := naming.Stem(fileName)
	normStem := naming.Normalize(stem)

	var cands []Candidate
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		norm := naming.Normalize(name)
		c := Candidate{Path: filepath.Join(dir, name), Name: name}
		switch {
		case norm == normName:
			c.Rank = RankNormalized
		case stem != "" && (boundaryMatch(name, stem) || boundaryMatch(norm, normStem)):
			c.Rank = RankStem
		case stem != "" && (strings.Contains(name, stem) || strings.Contains(norm, normStem)):
			c.Rank = RankSubstring
		default:
			continue
		}
		cands = append(cands, c)
	}
	if len(cands) == 0 {
		return nil, fmt.Errorf("%w: %s in %s", ErrFileNotFound, fileName, dir)
	}

	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.Rank != b.Rank {
			return a.Rank < b.Rank
		}
		if len(a.Name) != len(b.Name) {
			return len(a.Name) < len(b.Name)
		}
		return a.Name < b.Name
	})
	return cands, nil
}

// boundaryMatch reports whether stem occurs in name and is not immediately
// followed by a letter or digit.
func boundaryMatch(name, stem string) bool {
	for off := 0; ; {
		i := strings.Index(name[off:], stem)
		if i < 0 {
			return false
		}
		end := off + i + len(stem)
		if end == len(name) {
			return true
		}
		r, _ := utf8.DecodeRuneInString(name[end:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return true
		}
		off += i + 1
	}
}
