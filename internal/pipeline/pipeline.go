// Package pipeline runs a sync: it finds the photos that are not in the
// ledger yet, normalizes and publishes each one, and records the results.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/AnyUserName/fotosync/internal/hasher"
	"github.com/AnyUserName/fotosync/internal/imagenorm"
	"github.com/AnyUserName/fotosync/internal/ledger"
	"github.com/AnyUserName/fotosync/internal/naming"
	"github.com/AnyUserName/fotosync/internal/reconcile"
	"github.com/AnyUserName/fotosync/internal/remote"
	"github.com/AnyUserName/fotosync/internal/report"
	"github.com/AnyUserName/fotosync/internal/resolver"
	"github.com/sirupsen/logrus"
)

// Config holds the parameters of a pipeline run.
type Config struct {
	Spreadsheet string
	SheetName   string
	Columns     reconcile.Columns
	StagingDir  string
	// DryRun resolves and normalizes but neither publishes nor writes the
	// ledger.
	DryRun bool
}

// Deps are the collaborators a pipeline drives.
type Deps struct {
	Ledger     ledger.Repository
	Store      remote.Store // may be nil on a dry run
	Resolver   *resolver.Resolver
	Normalizer *imagenorm.Normalizer
	Log        logrus.FieldLogger
}

// Pipeline orchestrates one sync run. It is sequential: records are
// processed one at a time in reconciliation order.
type Pipeline struct {
	cfg       Config
	ledger    ledger.Repository
	store     remote.Store
	publisher *remote.Publisher
	resolver  *resolver.Resolver
	norm      *imagenorm.Normalizer
	deriver   naming.Deriver
	log       logrus.FieldLogger
}

// New creates a configured pipeline.
func New(cfg Config, deps Deps) *Pipeline {
	log := deps.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	norm := deps.Normalizer
	if norm == nil {
		norm = imagenorm.New(1024, 65, nil)
	}
	p := &Pipeline{
		cfg:      cfg,
		ledger:   deps.Ledger,
		store:    deps.Store,
		resolver: deps.Resolver,
		norm:     norm,
		deriver:  naming.Deriver{StagingRoot: cfg.StagingDir},
		log:      log,
	}
	if deps.Store != nil {
		p.publisher = remote.NewPublisher(deps.Store)
	}
	return p
}

func (p *Pipeline) storeName() string {
	if p.store == nil {
		return "none"
	}
	return p.store.Name()
}

// run processes records and, unless nothing was published, writes the
// merged ledger once at the end. Per-record failures are logged and
// reported; only ledger failures and cancellation are returned.
func (p *Pipeline) run(ctx context.Context, mode string, records []reconcile.PhotoRecord, existing []ledger.Row) (*report.Report, error) {
	rep := report.New(mode, p.storeName())
	rep.DryRun = p.cfg.DryRun
	rep.Stats.LedgerRows = len(existing)

	if len(records) == 0 {
		p.log.WithField("ledger_rows", len(existing)).Info("nothing new to publish")
		rep.ComputeStats()
		return rep, nil
	}
	if !p.cfg.DryRun && p.publisher == nil {
		return nil, errors.New("no remote store configured")
	}

	p.log.WithFields(logrus.Fields{
		"mode":    mode,
		"records": len(records),
		"store":   p.storeName(),
		"dry_run": p.cfg.DryRun,
	}).Info("starting sync")

	var (
		added       []ledger.Row
		interrupted error
	)
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			interrupted = err
			break
		}

		item, row, err := p.processWithFallbacks(ctx, rec)
		if err != nil {
			p.logFailure(rec, err)
			item.Status = report.StatusFailed
			item.Error = err.Error()
		}
		rep.Add(item)
		if row != nil {
			added = append(added, *row)
		}
	}

	if !p.cfg.DryRun && len(added) > 0 {
		merged := ledger.Merge(existing, added)
		// Rows already published are recorded even when the run was interrupted.
		if err := p.ledger.Save(context.WithoutCancel(ctx), merged); err != nil {
			rep.ComputeStats()
			return rep, fmt.Errorf("save ledger: %w", err)
		}
		rep.Stats.LedgerRows = len(merged)
	}
	rep.ComputeStats()

	p.log.WithFields(logrus.Fields{
		"published": rep.Stats.Published,
		"staged":    rep.Stats.Staged,
		"failed":    rep.Stats.Failed,
	}).Info("sync finished")

	if interrupted != nil {
		return rep, interrupted
	}
	return rep, nil
}

// processWithFallbacks tries rec and then each of its fallbacks in order,
// moving on only when the photo could not be found or decoded locally.
func (p *Pipeline) processWithFallbacks(ctx context.Context, rec reconcile.PhotoRecord) (report.Item, *ledger.Row, error) {
	item, row, err := p.process(ctx, rec)
	for _, alt := range rec.Fallbacks {
		if err == nil || !isLocalFailure(err) {
			break
		}
		p.log.WithFields(rec.Fields()).WithError(err).
			WithField("fallback_slot", alt.Slot).
			Warn("photo unusable, trying a later cell with the same key")
		item, row, err = p.process(ctx, alt)
	}
	return item, row, err
}

func isLocalFailure(err error) bool {
	return errors.Is(err, resolver.ErrFileNotFound) || errors.Is(err, imagenorm.ErrUnreadableImage)
}

func (p *Pipeline) logFailure(rec reconcile.PhotoRecord, err error) {
	log := p.log.WithFields(rec.Fields()).WithError(err)
	switch {
	case errors.Is(err, resolver.ErrUnknownSlot):
		log.Error("photo slot is not in the configured slot table; check the slots configuration")
	case errors.Is(err, remote.ErrPublishFailure):
		log.Error("remote store rejected the photo")
	default:
		log.Error("failed to sync photo")
	}
}

// process resolves, normalizes and publishes one record. The returned
// item is filled as far as processing got; row is nil unless published.
func (p *Pipeline) process(ctx context.Context, rec reconcile.PhotoRecord) (report.Item, *ledger.Row, error) {
	item := report.Item{
		Key:    rec.Key().String(),
		Slot:   rec.Slot,
		Source: rec.SourceURL,
	}
	log := p.log.WithFields(rec.Fields())

	local := rec.LocalPath
	if local == "" {
		if p.resolver == nil {
			return item, nil, errors.New("no local file resolver configured")
		}
		var err error
		local, err = p.resolver.Resolve(rec.Slot, rec.SourceName)
		if err != nil {
			return item, nil, err
		}
	}

	paths := p.deriver.Derive(rec.ProjectCode, rec.WeekLabel, rec.FileName)
	item.RemotePath = paths.Remote

	res, err := p.norm.Normalize(local, paths.Staging)
	if err != nil {
		return item, nil, err
	}
	item.Width, item.Height = res.Width, res.Height
	item.Bytes, item.SizeKB = res.Bytes, res.SizeKB

	hash, err := hasher.ContentHashFile(paths.Staging, hasher.DefaultLength)
	if err != nil {
		return item, nil, fmt.Errorf("hash staged file: %w", err)
	}
	item.Hash = hash

	if p.cfg.DryRun {
		item.Status = report.StatusStaged
		log.WithField("staging", paths.Staging).Info("staged (dry run)")
		return item, nil, nil
	}

	url, err := p.publisher.Publish(ctx, paths.Remote, paths.Staging)
	if err != nil {
		return item, nil, err
	}
	item.URL = url
	item.Status = report.StatusPublished
	log.WithFields(logrus.Fields{"url": url, "size_kb": res.SizeKB}).Info("published")

	return item, &ledger.Row{
		ProjectCode: rec.ProjectCode,
		WeekLabel:   rec.WeekLabel,
		RemoteURL:   url,
		Description: rec.Description,
		FileName:    rec.FileName,
		SizeKB:      res.SizeKB,
	}, nil
}
