package sheet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sample() *Table {
	return &Table{
		Columns: []string{"kode_proyek", "minggu", "size_gambar_kb"},
		Rows: []Row{
			{"kode_proyek": "P1", "minggu": "Week_1", "size_gambar_kb": "120.5"},
			{"kode_proyek": "P2", "minggu": "Week_2", "size_gambar_kb": "88"},
		},
		Numeric: map[string]bool{"size_gambar_kb": true},
	}
}

func TestWorkbookWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.xlsx")
	require.NoError(t, Write(path, sample()))

	got, err := Read(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"kode_proyek", "minggu", "size_gambar_kb"}, got.Columns)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "P2", got.Rows[1]["kode_proyek"])
	assert.Equal(t, "120.5", got.Rows[0]["size_gambar_kb"])

	// Numeric columns are stored as numbers.
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	typ, err := f.GetCellType(DefaultSheet, "C2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, typ)
	assert.NotEqual(t, excelize.CellTypeInlineString, typ)
}

func TestCSVWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "ledger.csv")
	require.NoError(t, Write(path, sample()))

	got, err := Read(path, "")
	require.NoError(t, err)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "Week_1", got.Rows[0]["minggu"])
}

func TestReadCSVRaggedAndBlank(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forms.csv")
	data := "\ufeffKode Proyek,Minggu,,Foto 1\nP1,Week 1,,http://x/a.jpg\n,,,\nP2,Week 2\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	got, err := Read(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Kode Proyek", "Minggu", "Foto 1"}, got.Columns)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "http://x/a.jpg", got.Rows[0]["Foto 1"])
	assert.Equal(t, "", got.Rows[1]["Foto 1"])
}

func TestReadNamedSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forms.xlsx")
	f := excelize.NewFile()
	_, err := f.NewSheet("Responses")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Responses", "A1", &[]interface{}{"Kode Proyek", "Minggu"}))
	require.NoError(t, f.SetSheetRow("Responses", "A2", &[]interface{}{"P9", "Week 3"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	got, err := Read(path, "Responses")
	require.NoError(t, err)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "P9", got.Rows[0]["Kode Proyek"])
}

func TestRequire(t *testing.T) {
	tbl := sample()
	assert.NoError(t, tbl.Require("kode_proyek", "minggu"))

	err := tbl.Require("kode_proyek", "Foto 1", "Foto 2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Foto 1, Foto 2")
}

func TestUnsupportedFormat(t *testing.T) {
	_, err := Read("ledger.ods", "")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.ErrorIs(t, Write(filepath.Join(t.TempDir(), "x.txt"), sample()), ErrUnsupportedFormat)
}
