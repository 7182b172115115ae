package reconcile

import (
	"testing"

	"github.com/AnyUserName/fotosync/internal/config"
	"github.com/AnyUserName/fotosync/internal/ledger"
	"github.com/AnyUserName/fotosync/internal/sheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func columns() Columns {
	cfg := config.Default()
	return ColumnsFrom(cfg)
}

func formRow(project, week string, cells map[string]string) sheet.Row {
	r := sheet.Row{"Kode Proyek": project, "Minggu": week}
	for k, v := range cells {
		r[k] = v
	}
	return r
}

func TestReconcileEmitsInOrder(t *testing.T) {
	rows := []sheet.Row{
		formRow("P1", "Week 1", map[string]string{
			"Foto 1":           "http://x/a%20b.jpg",
			"Deskripsi Foto 1": "site visit",
			"Foto 3":           "http://x/c.jpg",
		}),
		formRow("P2", "Week 1", map[string]string{
			"Foto 2": "http://x/d.jpg",
		}),
	}

	got := Reconcile(rows, nil, columns(), nil)
	require.Len(t, got, 3)

	assert.Equal(t, "P1", got[0].ProjectCode)
	assert.Equal(t, "Week_1", got[0].WeekLabel)
	assert.Equal(t, "first photo", got[0].Slot)
	assert.Equal(t, "a b.jpg", got[0].SourceName)
	assert.Equal(t, "a_b.jpg", got[0].FileName)
	assert.Equal(t, "site visit", got[0].Description)

	assert.Equal(t, "third photo", got[1].Slot)
	assert.Equal(t, "c.jpg", got[1].FileName)
	assert.Equal(t, "", got[1].Description)

	assert.Equal(t, "P2", got[2].ProjectCode)
	assert.Equal(t, "second photo", got[2].Slot)
}

func TestReconcileSkipsLedgerKeys(t *testing.T) {
	rows := []sheet.Row{
		formRow("P1", "Week 1", map[string]string{
			"Foto 1": "http://x/a%20b.jpg",
			"Foto 2": "http://x/new.jpg",
		}),
	}
	existing := []ledger.Row{{ProjectCode: "P1", WeekLabel: "Week_1", FileName: "a_b.jpg"}}

	got := Reconcile(rows, existing, columns(), nil)
	require.Len(t, got, 1)
	assert.Equal(t, "new.jpg", got[0].FileName)
}

func TestReconcileIdempotent(t *testing.T) {
	rows := []sheet.Row{
		formRow("P1", "Week 1", map[string]string{"Foto 1": "http://x/a.jpg", "Foto 8": "http://x/z.jpg"}),
		formRow("P3", "Week 4", map[string]string{"Foto 5": "http://x/q r.jpg"}),
	}
	first := Reconcile(rows, nil, columns(), nil)
	require.Len(t, first, 3)

	var published []ledger.Row
	for _, r := range first {
		published = append(published, ledger.Row{
			ProjectCode: r.ProjectCode, WeekLabel: r.WeekLabel, FileName: r.FileName,
		})
	}
	assert.Empty(t, Reconcile(rows, published, columns(), nil))
}

func TestReconcileDuplicateTripleWithinRun(t *testing.T) {
	rows := []sheet.Row{
		formRow("P1", "Week 1", map[string]string{"Foto 1": "http://x/a.jpg", "Deskripsi Foto 1": "one"}),
		formRow("P1", "Week 1", map[string]string{"Foto 2": "http://y/a.jpg", "Deskripsi Foto 2": "two"}),
	}
	got := Reconcile(rows, nil, columns(), nil)
	require.Len(t, got, 1)
	assert.Equal(t, "one", got[0].Description)
	require.Len(t, got[0].Fallbacks, 1)
	assert.Equal(t, "two", got[0].Fallbacks[0].Description)
	assert.Equal(t, "second photo", got[0].Fallbacks[0].Slot)
	assert.Equal(t, "http://y/a.jpg", got[0].Fallbacks[0].SourceURL)
}

func TestReconcileSkipsUnsafeProjectOrWeek(t *testing.T) {
	rows := []sheet.Row{
		formRow("..", "Week 1", map[string]string{"Foto 1": "http://x/a.jpg"}),
		formRow("P1", "../../etc", map[string]string{"Foto 1": "http://x/b.jpg"}),
		formRow("P1", "", map[string]string{"Foto 1": "http://x/c.jpg"}),
		formRow("P1", "Week 1", map[string]string{
			"Foto 1": "http://x/..%2F..%2Fmetadata_foto.xlsx",
			"Foto 2": "http://x/d.jpg",
		}),
	}
	got := Reconcile(rows, nil, columns(), nil)
	require.Len(t, got, 1)
	assert.Equal(t, "d.jpg", got[0].FileName)
}

func TestReconcileSkipsEmptyAndBadReferences(t *testing.T) {
	rows := []sheet.Row{
		formRow("P1", "Week 1", map[string]string{"Foto 1": "   ", "Foto 2": "https://host/"}),
	}
	assert.Empty(t, Reconcile(rows, nil, columns(), nil))
}

func TestKeyIgnoresDescription(t *testing.T) {
	a := PhotoRecord{ProjectCode: "P1", WeekLabel: "Week 1", FileName: "a b.jpg", Description: "x"}
	b := PhotoRecord{ProjectCode: "P1", WeekLabel: "Week_1", FileName: "a_b.jpg", Description: "y"}
	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, "P1/Week_1/a_b.jpg", a.Key().String())
}

func TestFilter(t *testing.T) {
	recs := []PhotoRecord{
		{ProjectCode: "Unit_A", WeekLabel: "2025/W07", FileName: "a.jpg"},
		{ProjectCode: "Unit_A", WeekLabel: "2025/W07", FileName: "b.jpg"},
		{ProjectCode: "Unit_A", WeekLabel: "2025/W07", FileName: "a.jpg"},
	}
	existing := []ledger.Row{{ProjectCode: "Unit_A", WeekLabel: "2025/W07", FileName: "b.jpg"}}
	got := Filter(recs, existing)
	require.Len(t, got, 1)
	assert.Equal(t, "a.jpg", got[0].FileName)
}

func TestRequiredColumns(t *testing.T) {
	req := columns().Required()
	assert.Len(t, req, 18)
	assert.Equal(t, "Kode Proyek", req[0])
	assert.Equal(t, "Foto 1", req[2])
	assert.Equal(t, "Deskripsi Foto 1", req[3])
	assert.Equal(t, "Deskripsi Foto 8", req[17])
}
