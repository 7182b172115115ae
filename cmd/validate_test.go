package cmd

import (
	"testing"

	"github.com/AnyUserName/fotosync/internal/ledger"
	"github.com/stretchr/testify/assert"
)

func ledgerRow(p, w, f, u string) ledger.Row {
	return ledger.Row{ProjectCode: p, WeekLabel: w, FileName: f, RemoteURL: u, SizeKB: 10}
}

func TestValidateLedgerClean(t *testing.T) {
	rows := []ledger.Row{
		ledgerRow("P1", "Week_1", "a.jpg", "https://raw.example/P1/Week_1/a.jpg"),
		ledgerRow("P1", "Week_2", "a.jpg", "https://raw.example/P1/Week_2/a.jpg"),
	}
	assert.Empty(t, validateLedger(rows))
}

func TestValidateLedgerProblems(t *testing.T) {
	rows := []ledger.Row{
		ledgerRow("P1", "Week_1", "a_b.jpg", "https://raw.example/a_b.jpg"),
		ledgerRow("P1", "Week 1", "a b.jpg", "https://raw.example/a_b.jpg"),
		ledgerRow("", "Week_1", "", "https://raw.example/x.jpg"),
		ledgerRow("P2", "Week_1", "c.jpg", "not a url"),
	}
	got := validateLedger(rows)
	assert.Equal(t, []string{
		"row 2: duplicate of row 1 (P1/Week_1/a_b.jpg)",
		"row 3: empty kode_proyek, nama_file",
		`row 4: malformed link_foto "not a url"`,
	}, got)
}

func TestProjectOf(t *testing.T) {
	assert.Equal(t, "P1", projectOf("P1/Week_1/a.jpg"))
	assert.Equal(t, "solo", projectOf("solo"))
	assert.Equal(t, "...efgh", truncKey("abcdefgh", 7))
}
