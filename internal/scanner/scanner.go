// Package scanner discovers photos in a directory tree for tree mode, where
// the containing folder names the project and the capture date names the week.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// Source is a discovered photo.
type Source struct {
	// AbsPath is the path to the file on disk.
	AbsPath string
	// RelPath is the slash-separated path relative to the scanned root.
	RelPath string
	// Dir is the name of the directory holding the file.
	Dir     string
	Name    string
	ModTime time.Time
	Size    int64
}

var photoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// IsPhoto reports whether name has an accepted photo extension.
func IsPhoto(name string) bool {
	return photoExtensions[strings.ToLower(filepath.Ext(name))]
}

// Scan walks root and returns every photo in walk order. Hidden
// directories are skipped.
func Scan(root string) ([]Source, error) {
	var sources []Source

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsPhoto(path) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}

		sources = append(sources, Source{
			AbsPath: abs,
			RelPath: filepath.ToSlash(rel),
			Dir:     filepath.Base(filepath.Dir(abs)),
			Name:    info.Name(),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return sources, nil
}

// CaptureTime returns the EXIF DateTimeOriginal of the file at path, or
// modTime when the file carries no usable EXIF date.
func CaptureTime(path string, modTime time.Time) time.Time {
	f, err := os.Open(path)
	if err != nil {
		return modTime
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return modTime
	}
	t, err := x.DateTime()
	if err != nil || t.IsZero() {
		return modTime
	}
	return t
}

// WeekLabel formats t as year and ISO week, e.g. "2025/W07". The year is
// the ISO year, so 2024-12-30 is "2025/W01".
func WeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d/W%02d", year, week)
}
