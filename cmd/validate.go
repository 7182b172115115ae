package cmd

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/AnyUserName/fotosync/internal/ledger"
	"github.com/AnyUserName/fotosync/internal/reconcile"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [ledger_path]",
	Short: "Check the metadata ledger for duplicates and malformed rows",
	Long: `Loads the ledger (the configured one unless a path is given) and
reports rows that share a (project, week, file) key, rows with an empty
project, week or file name, and rows whose link is not an absolute URL.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := cfg.LedgerPath
	if len(args) == 1 {
		path = args[0]
	}

	repo, err := ledger.Open(path, "")
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer repo.Close()

	rows, err := repo.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	errs := validateLedger(rows)
	if len(errs) == 0 {
		fmt.Printf("  ✓ Ledger %s is valid (%d rows)\n", path, len(rows))
		return nil
	}

	fmt.Printf("  ✗ Ledger %s has %d problem(s):\n", path, len(errs))
	for _, e := range errs {
		fmt.Printf("    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errs))
}

// validateLedger lists every problem in rows. Row numbers are 1-based.
func validateLedger(rows []ledger.Row) []string {
	var errs []string
	first := map[reconcile.Key]int{}

	for i, r := range rows {
		n := i + 1

		var empty []string
		if strings.TrimSpace(r.ProjectCode) == "" {
			empty = append(empty, ledger.ColProject)
		}
		if strings.TrimSpace(r.WeekLabel) == "" {
			empty = append(empty, ledger.ColWeek)
		}
		if strings.TrimSpace(r.FileName) == "" {
			empty = append(empty, ledger.ColFileName)
		}
		if len(empty) > 0 {
			errs = append(errs, fmt.Sprintf("row %d: empty %s", n, strings.Join(empty, ", ")))
			continue
		}

		if u, err := url.Parse(r.RemoteURL); err != nil || !u.IsAbs() || u.Host == "" {
			errs = append(errs, fmt.Sprintf("row %d: malformed %s %q", n, ledger.ColURL, r.RemoteURL))
		}
		if r.SizeKB < 0 {
			errs = append(errs, fmt.Sprintf("row %d: negative %s %.2f", n, ledger.ColSizeKB, r.SizeKB))
		}

		k := reconcile.KeyOf(r)
		if prev, ok := first[k]; ok {
			errs = append(errs, fmt.Sprintf("row %d: duplicate of row %d (%s)", n, prev, k))
			continue
		}
		first[k] = n
	}
	return errs
}
