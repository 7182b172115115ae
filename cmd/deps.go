package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/AnyUserName/fotosync/internal/config"
	"github.com/AnyUserName/fotosync/internal/encoder"
	"github.com/AnyUserName/fotosync/internal/imagenorm"
	"github.com/AnyUserName/fotosync/internal/ledger"
	"github.com/AnyUserName/fotosync/internal/pipeline"
	"github.com/AnyUserName/fotosync/internal/reconcile"
	"github.com/AnyUserName/fotosync/internal/remote"
	"github.com/AnyUserName/fotosync/internal/resolver"
	"github.com/sirupsen/logrus"
)

func openStore(c *config.Config) (remote.Store, error) {
	switch c.Store {
	case config.StoreGitHub:
		client := &http.Client{Timeout: 60 * time.Second}
		return remote.NewGitHubStore(c.GitHub, c.BaseFolder, client), nil
	case config.StoreS3:
		return remote.NewS3Store(c.S3, c.BaseFolder)
	default:
		return nil, fmt.Errorf("unknown store %q", c.Store)
	}
}

// buildPipeline validates c and wires every collaborator of a run. The
// returned ledger must be closed by the caller.
func buildPipeline(c *config.Config, dryRun bool) (*pipeline.Pipeline, ledger.Repository, error) {
	validate := c.Validate
	if dryRun {
		validate = c.ValidateLocal
	}
	if err := validate(); err != nil {
		return nil, nil, err
	}

	enc, err := encoder.NewRegistry().Get(c.OutputFormat)
	if err != nil {
		return nil, nil, err
	}

	var store remote.Store
	if !dryRun {
		if store, err = openStore(c); err != nil {
			return nil, nil, err
		}
	}

	repo, err := ledger.Open(c.LedgerPath, "")
	if err != nil {
		return nil, nil, fmt.Errorf("open ledger: %w", err)
	}

	log := logrus.StandardLogger()
	p := pipeline.New(pipeline.Config{
		Spreadsheet: c.Spreadsheet,
		SheetName:   c.SheetName,
		Columns:     reconcile.ColumnsFrom(c),
		StagingDir:  c.StagingDir,
		DryRun:      dryRun,
	}, pipeline.Deps{
		Ledger:     repo,
		Store:      store,
		Resolver:   resolver.New(c.PhotoRoot, c.Slots, log),
		Normalizer: imagenorm.New(c.MaxDimension, c.Quality, enc),
		Log:        log,
	})
	return p, repo, nil
}
