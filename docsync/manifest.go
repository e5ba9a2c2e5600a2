package docsync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmdatafocus/lexfiles_backend/config"
	"github.com/mmdatafocus/lexfiles_backend/filestore"
	"github.com/mmdatafocus/lexfiles_backend/models"
	"github.com/mmdatafocus/lexfiles_backend/utils"
)

const (
	scratchBatchSize  = 500
	manifestChunkSize = 500
)

// scratchFile is one row of the per-job scratch table the enumerated store is
// bulk-loaded into. Name is the lowercased join key.
type scratchFile struct {
	Name       string
	Path       string
	FolderPath string
	SizeBytes  int64
}

const createScratchSQL = `
CREATE TABLE ` + "`{{.Table}}`" + ` (
	` + "`id`" + ` BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
	` + "`name`" + ` VARCHAR(255) NOT NULL,
	` + "`path`" + ` VARCHAR(700) NOT NULL,
	` + "`folder_path`" + ` VARCHAR(700) NOT NULL,
	` + "`size_bytes`" + ` BIGINT NOT NULL DEFAULT 0,
	PRIMARY KEY (` + "`id`" + `)
) ENGINE=InnoDB
`

// scratchTableName is unique per job instance: a job started while a previous
// job for the same firm is still tearing down must not collide with it.
func scratchTableName(firmId string) string {
	return fmt.Sprintf("scan_files_%s_%d",
		strings.ReplaceAll(firmId, "-", ""), time.Now().UnixNano())
}

func dropScratchTable(table string) {
	db := config.GetDB()
	// Background context: teardown must run even when the job's context is
	// already cancelled.
	err := db.WithContext(context.Background()).
		Exec("DROP TABLE IF EXISTS `" + table + "`").Error
	if err != nil {
		config.LogError(config.GetLogger(), moduleName, "dropScratchTable",
			"Failed to drop scratch table", table, err)
	}
}

// loadScratchTable walks the remote store and streams every file into the
// scratch table in bounded batches. The name index is created after the bulk
// load, which is much cheaper than maintaining it during inserts.
func loadScratchTable(ctx context.Context, job *ScanJob, store filestore.RemoteStore, table string) (int64, error) {
	db := config.GetDB()

	var (
		loaded int64
		batch  []scratchFile
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := db.WithContext(ctx).Table(table).Create(&batch).Error; err != nil {
			return err
		}
		loaded += int64(len(batch))
		batch = batch[:0]
		return nil
	}

	reporter := newProgressReporter(job)
	err := walkRemote(ctx, job, store, "", func(f remoteFile) error {
		batch = append(batch, scratchFile{
			Name:       strings.ToLower(f.Name),
			Path:       f.Path,
			FolderPath: f.FolderPath,
			SizeBytes:  f.Size,
		})
		reporter.Tick()
		if len(batch) >= scratchBatchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return loaded, err
	}
	if err := flush(); err != nil {
		return loaded, err
	}

	if err := db.WithContext(ctx).
		Exec("CREATE INDEX `idx_scan_name` ON `" + table + "` (`name`)").Error; err != nil {
		return loaded, err
	}
	return loaded, nil
}

// runManifestScan reconciles against the authoritative manifest: the matter
// linkage already exists per entry, so matching is only "find the file on the
// remote store", done as a SQL-side join against the scratch table so the
// full file set never has to fit in process memory.
func runManifestScan(ctx context.Context, job *ScanJob, store filestore.RemoteStore, firmId string) (string, error) {
	db := config.GetDB()

	total, err := models.CountManifestEntries(ctx, firmId)
	if err != nil {
		return "", err
	}
	job.SetTotal(total)

	table := scratchTableName(firmId)
	createSQL, err := utils.ExecTemplate(createScratchSQL, map[string]interface{}{"Table": table})
	if err != nil {
		return "", err
	}
	if err := db.WithContext(ctx).Exec(createSQL).Error; err != nil {
		return "", err
	}
	defer dropScratchTable(table)

	job.SetPhase("loading remote files")
	loaded, err := loadScratchTable(ctx, job, store, table)
	if err != nil {
		return "", err
	}

	job.SetPhase("matching manifest entries")
	reporter := newProgressReporter(job)

	var notFoundTotal int64
	lastId := 0
	for {
		if job.Cancelled() {
			return "", errCancelled
		}

		afterId := 0
		if job.DryRun() {
			afterId = lastId
		}
		entries, err := models.PendingManifestChunk(ctx, firmId, afterId, manifestChunkSize)
		if err != nil {
			return "", err
		}
		if len(entries) == 0 {
			break
		}
		lastId = entries[len(entries)-1].ID

		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, strings.ToLower(e.Name))
		}
		var rows []scratchFile
		if err := db.WithContext(ctx).Table(table).
			Where("name IN ?", utils.UniqueSlice(names)).
			Find(&rows).Error; err != nil {
			return "", err
		}
		byName := make(map[string][]scratchFile, len(rows))
		for _, r := range rows {
			byName[r.Name] = append(byName[r.Name], r)
		}

		var notFound []int
		for _, entry := range entries {
			job.AddProcessed(1)

			if entry.MatterId <= 0 {
				job.AddDataError(fmt.Sprintf("manifest entry %d (%s): missing matter id", entry.ID, entry.Name))
				notFound = append(notFound, entry.ID)
				continue
			}

			candidates := byName[strings.ToLower(entry.Name)]
			if len(candidates) == 0 {
				notFound = append(notFound, entry.ID)
				continue
			}
			// Prefer the candidate whose size agrees with the manifest.
			hit := candidates[0]
			for _, c := range candidates {
				if c.SizeBytes == entry.SizeBytes {
					hit = c
					break
				}
			}
			job.AddMatched(1)

			matterId := entry.MatterId
			doc := &models.FileDocument{
				FirmId:          firmId,
				MatterId:        &matterId,
				OwnerId:         utils.NilIfEmpty(entry.OwnerId),
				Name:            entry.Name,
				Path:            hit.Path,
				FolderPath:      hit.FolderPath,
				ContentType:     entry.ContentType,
				SizeBytes:       hit.SizeBytes,
				StorageLocation: models.StorageLocationRemote,
				ExternalPath:    hit.Path,
			}
			if doc.ContentType == "" {
				doc.ContentType = contentTypeFor(entry.Name)
			}

			if job.DryRun() {
				exists, err := models.FileDocumentExists(ctx, firmId, hit.Path)
				if err != nil {
					return "", err
				}
				if exists {
					job.AddSkipped(1)
				} else {
					job.AddCreated(1)
				}
				continue
			}

			inserted, err := models.UpsertFileDocument(ctx, doc)
			if err != nil {
				return "", err
			}
			if inserted {
				job.AddCreated(1)
			} else {
				job.AddSkipped(1)
			}
			if err := models.MarkManifestMatched(ctx, firmId, entry.ID, hit.Path); err != nil {
				return "", err
			}
		}

		notFoundTotal += int64(len(notFound))
		if !job.DryRun() {
			if err := models.MarkManifestNotFound(ctx, firmId, notFound); err != nil {
				return "", err
			}
		}
		reporter.Tick()
	}

	snap := job.Snapshot()
	return fmt.Sprintf("loaded %d remote files; %d manifest entries processed, %d matched, %d not found, %d documents created",
		loaded, snap.Processed, snap.Matched, notFoundTotal, snap.Created), nil
}
