package docsync

import (
	"context"
	"fmt"
	"mime"
	"path"

	"github.com/mmdatafocus/lexfiles_backend/filestore"
	"github.com/mmdatafocus/lexfiles_backend/models"
	"github.com/mmdatafocus/lexfiles_backend/utils"
)

func contentTypeFor(name string) string {
	ct := mime.TypeByExtension(path.Ext(name))
	if ct == "" {
		return "application/octet-stream"
	}
	return ct
}

// runHeuristicScan reconciles without a manifest: the folder hierarchy itself
// is parsed to infer each file's matter. Every enumerated file gets a
// document row; files no segment matches stay unassigned (orphan candidates).
func runHeuristicScan(ctx context.Context, job *ScanJob, store filestore.RemoteStore, firmId string) (string, error) {
	job.SetPhase("indexing matters")
	matters, err := models.GetMattersForIndex(ctx, firmId)
	if err != nil {
		return "", err
	}
	idx := BuildMatterIndex(matters)

	job.SetPhase("scanning remote store")
	reporter := newProgressReporter(job)

	err = walkRemote(ctx, job, store, "", func(f remoteFile) error {
		job.AddProcessed(1)

		doc := &models.FileDocument{
			FirmId:          firmId,
			Name:            f.Name,
			Path:            f.Path,
			FolderPath:      f.FolderPath,
			ContentType:     contentTypeFor(f.Name),
			SizeBytes:       f.Size,
			StorageLocation: models.StorageLocationRemote,
			ExternalPath:    f.Path,
		}
		if matter := idx.MatchPath(f.FolderPath); matter != nil {
			job.AddMatched(1)
			matterId := matter.ID
			doc.MatterId = &matterId
			doc.OwnerId = utils.NilIfEmpty(matter.OwnerId)
		}

		if job.DryRun() {
			exists, err := models.FileDocumentExists(ctx, firmId, f.Path)
			if err != nil {
				return err
			}
			if exists {
				job.AddSkipped(1)
			} else {
				job.AddCreated(1)
			}
		} else {
			inserted, err := models.UpsertFileDocument(ctx, doc)
			if err != nil {
				return err
			}
			if inserted {
				job.AddCreated(1)
			} else {
				job.AddSkipped(1)
			}
		}

		reporter.Tick()
		return nil
	})
	if err != nil {
		return "", err
	}

	snap := job.Snapshot()
	return fmt.Sprintf("scanned %d files, matched %d, created %d documents",
		snap.Processed, snap.Matched, snap.Created), nil
}
