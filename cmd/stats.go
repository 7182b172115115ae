package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/AnyUserName/fotosync/internal/report"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats <report.json>",
	Short: "Display a saved run report",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, args []string) error {
	path := args[0]

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		path = filepath.Join(path, "fotosync.report.json")
	}

	rep, err := report.ReadJSON(path)
	if err != nil {
		return err
	}
	printStats(rep)
	return nil
}

func printRunReport(rep *report.Report, elapsed time.Duration) {
	s := rep.Stats
	title := "fotosync run complete"
	if rep.DryRun {
		title = "fotosync dry run complete"
	}

	fmt.Println()
	fmt.Printf("  %s (%s)\n", title, rep.Mode)
	fmt.Println()
	fmt.Printf("  Candidates:  %d\n", s.Candidates)
	if rep.DryRun {
		fmt.Printf("  Staged:      %d\n", s.Staged)
	} else {
		fmt.Printf("  Published:   %d\n", s.Published)
	}
	fmt.Printf("  Failed:      %d\n", s.Failed)
	fmt.Printf("  Output size: %s\n", humanize.IBytes(uint64(s.OutputBytes)))
	fmt.Printf("  Ledger rows: %s\n", humanize.Comma(int64(s.LedgerRows)))
	fmt.Printf("  Store:       %s\n", rep.Store)
	fmt.Printf("  Time:        %s\n", elapsed.Round(time.Millisecond))
	fmt.Println()

	printFailures(rep)
}

func printStats(rep *report.Report) {
	fmt.Println()
	fmt.Printf("  Report version: %d\n", rep.Version)
	fmt.Printf("  Run:            %s\n", rep.RunID)
	fmt.Printf("  Generated:      %s (%s)\n", rep.GeneratedAt.Format(time.RFC3339), humanize.Time(rep.GeneratedAt))
	fmt.Printf("  Mode:           %s\n", rep.Mode)
	fmt.Printf("  Store:          %s\n", rep.Store)
	if rep.DryRun {
		fmt.Println("  Dry run:        yes")
	}
	fmt.Println()

	s := rep.Stats
	fmt.Printf("  Candidates:     %d\n", s.Candidates)
	fmt.Printf("  Published:      %d\n", s.Published)
	if s.Staged > 0 {
		fmt.Printf("  Staged:         %d\n", s.Staged)
	}
	fmt.Printf("  Failed:         %d\n", s.Failed)
	fmt.Printf("  Output size:    %s\n", humanize.IBytes(uint64(s.OutputBytes)))
	fmt.Printf("  Ledger rows:    %s\n", humanize.Comma(int64(s.LedgerRows)))
	fmt.Println()

	// Per-project breakdown.
	type projectStats struct {
		count int
		bytes int64
	}
	projects := map[string]projectStats{}
	for _, it := range rep.Items {
		if it.Status == report.StatusFailed {
			continue
		}
		p := projectOf(it.Key)
		ps := projects[p]
		ps.count++
		ps.bytes += it.Bytes
		projects[p] = ps
	}
	if len(projects) > 0 {
		names := make([]string, 0, len(projects))
		for p := range projects {
			names = append(names, p)
		}
		sort.Strings(names)
		fmt.Println("  Projects:")
		for _, p := range names {
			ps := projects[p]
			fmt.Printf("    %-24s %4d photos  %s\n", truncKey(p, 24), ps.count, humanize.IBytes(uint64(ps.bytes)))
		}
		fmt.Println()
	}

	printFailures(rep)
}

func printFailures(rep *report.Report) {
	var failed []report.Item
	for _, it := range rep.Items {
		if it.Status == report.StatusFailed {
			failed = append(failed, it)
		}
	}
	if len(failed) == 0 {
		return
	}
	fmt.Printf("  Failures (%d):\n", len(failed))
	for _, it := range failed {
		fmt.Printf("    ✗ %-40s %s\n", truncKey(it.Key, 40), it.Error)
	}
	fmt.Println()
}

// projectOf returns the first segment of a record key.
func projectOf(key string) string {
	p, _, _ := strings.Cut(key, "/")
	return p
}

func truncKey(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}
