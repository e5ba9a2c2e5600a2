package docsync

import (
	"context"
	"io"

	"github.com/mmdatafocus/lexfiles_backend/models/reports"
)

// OrphanReport groups unmatched documents by folder for manual triage.
func OrphanReport(ctx context.Context, firmId string, sampleLimit int) ([]*reports.OrphanFolder, error) {
	return reports.GetOrphanFolderReport(ctx, firmId, sampleLimit)
}

// ExportOrphanReport writes the orphan report as an xlsx workbook.
func ExportOrphanReport(ctx context.Context, firmId string, sampleLimit int, w io.Writer) error {
	report, err := reports.GetOrphanFolderReport(ctx, firmId, sampleLimit)
	if err != nil {
		return err
	}
	return reports.ExportOrphanExcel(report, w)
}
