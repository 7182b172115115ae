package pipeline

import (
	"context"
	"fmt"

	"github.com/AnyUserName/fotosync/internal/naming"
	"github.com/AnyUserName/fotosync/internal/reconcile"
	"github.com/AnyUserName/fotosync/internal/report"
	"github.com/AnyUserName/fotosync/internal/scanner"
	"github.com/AnyUserName/fotosync/internal/sheet"
)

// RunSheet syncs the photos referenced by the forms spreadsheet.
func (p *Pipeline) RunSheet(ctx context.Context) (*report.Report, error) {
	existing, err := p.ledger.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	tbl, err := sheet.Read(p.cfg.Spreadsheet, p.cfg.SheetName)
	if err != nil {
		return nil, fmt.Errorf("read spreadsheet: %w", err)
	}
	if err := tbl.Require(p.cfg.Columns.Required()...); err != nil {
		return nil, fmt.Errorf("spreadsheet %s: %w", p.cfg.Spreadsheet, err)
	}
	p.log.WithField("rows", len(tbl.Rows)).Debug("read spreadsheet")

	records := reconcile.Reconcile(tbl.Rows, existing, p.cfg.Columns, p.log)
	return p.run(ctx, report.ModeSheet, records, existing)
}

// TreeRecords turns scanned photos into records: the containing folder is
// the project code and the capture week is the week label.
func TreeRecords(sources []scanner.Source) []reconcile.PhotoRecord {
	records := make([]reconcile.PhotoRecord, 0, len(sources))
	for _, src := range sources {
		taken := scanner.CaptureTime(src.AbsPath, src.ModTime)
		records = append(records, reconcile.PhotoRecord{
			ProjectCode: naming.Normalize(src.Dir),
			WeekLabel:   scanner.WeekLabel(taken),
			SourceURL:   src.RelPath,
			SourceName:  src.Name,
			FileName:    naming.Normalize(src.Name),
			LocalPath:   src.AbsPath,
		})
	}
	return records
}

// RunTree syncs every photo under root that is not in the ledger yet.
func (p *Pipeline) RunTree(ctx context.Context, root string) (*report.Report, error) {
	existing, err := p.ledger.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	sources, err := scanner.Scan(root)
	if err != nil {
		return nil, err
	}
	p.log.WithField("photos", len(sources)).Debug("scanned photo tree")

	records := reconcile.Filter(TreeRecords(sources), existing)
	return p.run(ctx, report.ModeTree, records, existing)
}
