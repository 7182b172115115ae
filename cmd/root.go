package cmd

import (
	"context"
	"fmt"
	"runtime"

	"github.com/AnyUserName/fotosync/internal/config"
	"github.com/AnyUserName/fotosync/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	version   = "0.1.0"
	cfgFile   string
	verbose   bool
	logLevel  string
	logFormat string

	// cfg is loaded once per invocation before any subcommand runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "fotosync",
	Short: "Publish weekly site photos and keep their metadata ledger",
	Long: `fotosync reads the weekly documentation form export, finds each
referenced photo on disk, downsizes and re-encodes it, uploads it to the
configured store and appends one row per photo to the metadata ledger.

Photos already in the ledger are never uploaded twice, so a run can be
repeated safely after new form responses arrive.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "fotosync.yaml", "config file (missing is fine)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (same as --log-level debug)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"fotosync %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

func loadConfig(_ *cobra.Command, _ []string) error {
	c, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if verbose {
		c.LogLevel = "debug"
	}
	if logFormat != "" {
		c.LogFormat = logFormat
	}
	if err := logging.Setup(c.LogLevel, c.LogFormat); err != nil {
		return err
	}
	cfg = c
	return nil
}

// logVerbose logs at debug level, shown only with --verbose.
func logVerbose(format string, args ...any) {
	logrus.Debugf(format, args...)
}
