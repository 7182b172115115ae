package cmd

import (
	"time"

	"github.com/spf13/cobra"
)

var scanFlags runFlags

var scanCmd = &cobra.Command{
	Use:   "scan <photo_dir>",
	Short: "Publish new photos found in a directory tree",
	Long: `Walks photo_dir for .jpg, .jpeg and .png files. Each photo's containing
folder becomes its project code and its capture week (EXIF date, else the
file modification time) becomes its week label, e.g. Unit_A/2025/W07/x.jpg.

Photos already in the ledger are skipped; the rest are normalized,
uploaded and recorded exactly as with sync.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanFlags.register(scanCmd)
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	start := time.Now()
	scanFlags.apply()

	p, repo, err := buildPipeline(cfg, scanFlags.dryRun)
	if err != nil {
		return err
	}
	defer repo.Close()

	rep, err := p.RunTree(cmd.Context(), args[0])
	if rep != nil {
		if werr := finishRun(rep, scanFlags.reportPath, time.Since(start)); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}
