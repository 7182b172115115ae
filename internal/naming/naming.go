// Package naming derives the canonical remote and staging paths of a photo
// from its project code, week label and file name.
package naming

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"unicode"
)

// Normalize trims surrounding whitespace and replaces every remaining
// whitespace rune with an underscore.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, s)
}

// Stem returns name without its final extension.
func Stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// FileNameFromReference extracts the file name a spreadsheet reference
// points at: the last segment of the URL path with escaping removed. The
// result is not whitespace-normalized.
func FileNameFromReference(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", errors.New("empty reference")
	}

	p := ref
	if u, err := url.Parse(ref); err == nil {
		p = u.EscapedPath()
		if p == "" {
			p = u.Opaque
		}
	}

	// Forms exports sometimes carry backslash paths.
	p = strings.ReplaceAll(p, `\`, "/")
	base := path.Base(p)
	if base == "." || base == "/" {
		return "", fmt.Errorf("reference %q has no file name", ref)
	}

	name, err := url.PathUnescape(base)
	if err != nil {
		// Not valid escaping; keep the raw segment.
		name = base
	}
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("reference %q has no file name", ref)
	}
	// Escaped separators decode into path syntax that must not reach Derive.
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: reference %q decodes to %q", ErrUnsafeName, ref, name)
	}
	return name, nil
}

// ErrUnsafeName is returned for names that would leave the
// project/week/file layout once joined into a path.
var ErrUnsafeName = errors.New("unsafe path name")

// CheckPart rejects a project code or week label that is empty or holds
// a "." or ".." segment or a backslash. Forward slashes are allowed, so
// "2025/W07" is a valid week label.
func CheckPart(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("%w: empty", ErrUnsafeName)
	}
	if strings.Contains(s, `\`) {
		return fmt.Errorf("%w: %q", ErrUnsafeName, s)
	}
	for _, seg := range strings.Split(s, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return fmt.Errorf("%w: %q", ErrUnsafeName, s)
		}
	}
	return nil
}

// Paths is the pair of locations derived for one photo.
type Paths struct {
	// Remote is the object key, always forward-slash separated.
	Remote string
	// Staging is where the normalized image is written locally.
	Staging string
}

// Deriver composes Paths under a staging root.
type Deriver struct {
	StagingRoot string
}

// Derive normalizes each field and composes projectCode/weekLabel/fileName.
func (d Deriver) Derive(projectCode, weekLabel, fileName string) Paths {
	p, w, f := Normalize(projectCode), Normalize(weekLabel), Normalize(fileName)
	remote := path.Join(p, w, f)
	return Paths{
		Remote:  remote,
		Staging: filepath.Join(d.StagingRoot, filepath.FromSlash(remote)),
	}
}
