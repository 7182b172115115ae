package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/AnyUserName/fotosync/internal/report"
	"github.com/spf13/cobra"
)

// runFlags override the loaded configuration for sync and scan.
type runFlags struct {
	ledger     string
	store      string
	staging    string
	format     string
	maxDim     int
	quality    int
	dryRun     bool
	reportPath string
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.ledger, "ledger", "l", "", "metadata ledger (.xlsx, .csv, .db)")
	cmd.Flags().StringVar(&f.store, "store", "", "remote store: github or s3")
	cmd.Flags().StringVarP(&f.staging, "staging", "o", "", "local directory for normalized photos")
	cmd.Flags().StringVar(&f.format, "format", "", "output encoding: jpeg or png")
	cmd.Flags().IntVar(&f.maxDim, "max-dimension", 0, "longest side in pixels (0 = config)")
	cmd.Flags().IntVarP(&f.quality, "quality", "q", 0, "quality 1-100 (0 = config)")
	cmd.Flags().BoolVarP(&f.dryRun, "dry-run", "n", false, "normalize only; do not upload or write the ledger")
	cmd.Flags().StringVar(&f.reportPath, "report", "", "write a JSON run report to this path")
}

func (f *runFlags) apply() {
	if f.ledger != "" {
		cfg.LedgerPath = f.ledger
	}
	if f.store != "" {
		cfg.Store = f.store
	}
	if f.staging != "" {
		cfg.StagingDir = f.staging
	}
	if f.format != "" {
		cfg.OutputFormat = f.format
	}
	if f.maxDim > 0 {
		cfg.MaxDimension = f.maxDim
	}
	if f.quality > 0 {
		cfg.Quality = f.quality
	}
}

var (
	syncFlags       runFlags
	syncSpreadsheet string
	syncPhotoRoot   string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Publish new photos referenced by the form responses spreadsheet",
	Long: `Reads the form responses export (.xlsx or .csv), skips every photo
already recorded in the ledger, and for each remaining one:

  1. finds the file in the slot's folder under the photo root
  2. downsizes it to the configured longest side and re-encodes it
  3. uploads it as <project>/<week>/<file> under the base folder
  4. appends a ledger row with its public URL and size

The ledger is written once, after all photos are processed.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVarP(&syncSpreadsheet, "spreadsheet", "s", "", "form responses export")
	syncCmd.Flags().StringVarP(&syncPhotoRoot, "photos", "p", "", "directory holding the slot folders")
	syncFlags.register(syncCmd)
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	start := time.Now()
	syncFlags.apply()
	if syncSpreadsheet != "" {
		cfg.Spreadsheet = syncSpreadsheet
	}
	if syncPhotoRoot != "" {
		cfg.PhotoRoot = syncPhotoRoot
	}

	logVerbose("spreadsheet: %s", cfg.Spreadsheet)
	logVerbose("photos:      %s", cfg.PhotoRoot)
	logVerbose("ledger:      %s", cfg.LedgerPath)

	p, repo, err := buildPipeline(cfg, syncFlags.dryRun)
	if err != nil {
		return err
	}
	defer repo.Close()

	rep, err := p.RunSheet(cmd.Context())
	if rep != nil {
		if werr := finishRun(rep, syncFlags.reportPath, time.Since(start)); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}

// finishRun writes the optional JSON report and prints the summary.
func finishRun(rep *report.Report, path string, elapsed time.Duration) error {
	rep.ComputeStats()
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("resolve report path: %w", err)
		}
		if err := report.WriteJSON(rep, abs); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		logVerbose("report written to %s", abs)
	}
	printRunReport(rep, elapsed)
	return nil
}
