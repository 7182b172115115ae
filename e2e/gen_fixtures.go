//go:build ignore

// gen_fixtures creates a small form export and photo tree for a manual
// smoke run of fotosync.
// Usage: go run gen_fixtures.go <output_dir>
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/AnyUserName/fotosync/internal/config"
	"github.com/AnyUserName/fotosync/internal/sheet"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]
	photos := filepath.Join(dir, "photos")

	// Slot folders as the form platform exports them.
	writeJPEG(filepath.Join(photos, "Foto 1", "site visit.jpg"), gradient(3000, 2000))
	writeJPEG(filepath.Join(photos, "Foto 1", "IMG_0001 (1).jpg"), gradient(1200, 1600))
	writePNG(filepath.Join(photos, "Foto 2", "plan.png"), gradient(800, 600))

	// Tree-mode layout: unit folders, week taken from the file time.
	unit := filepath.Join(dir, "tree", "Unit A", "column.jpg")
	writeJPEG(unit, gradient(640, 480))
	taken := time.Date(2025, 2, 12, 9, 30, 0, 0, time.Local)
	if err := os.Chtimes(unit, taken, taken); err != nil {
		panic(err)
	}

	cols := []string{"Timestamp", "Kode Proyek", "Minggu"}
	for _, s := range config.DefaultSlots() {
		cols = append(cols, s.ReferenceColumn, s.DescriptionColumn)
	}
	tbl := &sheet.Table{
		Columns: cols,
		Rows: []sheet.Row{
			{
				"Timestamp":        "2025-02-12 10:04:11",
				"Kode Proyek":      "P1",
				"Minggu":           "Week 1",
				"Foto 1":           "https://forms.example/files/site%20visit.jpg",
				"Deskripsi Foto 1": "site visit",
				"Foto 2":           "https://forms.example/files/plan.png",
				"Deskripsi Foto 2": "floor plan",
			},
			{
				"Timestamp":        "2025-02-19 08:15:40",
				"Kode Proyek":      "P1",
				"Minggu":           "Week 2",
				"Foto 1":           "https://forms.example/files/IMG_0001.jpg",
				"Deskripsi Foto 1": "rebar",
			},
		},
	}
	if err := sheet.Write(filepath.Join(dir, "form_responses.xlsx"), tbl); err != nil {
		panic(err)
	}

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created form export and 4 photos in %s\n", dir)
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

func create(path string) *os.File {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		panic(err)
	}
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	return f
}

func writePNG(path string, img *image.NRGBA) {
	f := create(path)
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		panic(err)
	}
}

func writeJPEG(path string, img *image.NRGBA) {
	f := create(path)
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 85}); err != nil {
		panic(err)
	}
}
