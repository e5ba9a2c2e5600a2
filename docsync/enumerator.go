package docsync

import (
	"context"
	"time"

	"github.com/mmdatafocus/lexfiles_backend/config"
	"github.com/mmdatafocus/lexfiles_backend/filestore"
)

const moduleName = "docsync"

// progressCadence throttles progress reporting to wall-clock time rather
// than per-item; at multi-million-file scale per-item reporting swamps
// observers.
const progressCadence = 5 * time.Second

// remoteFile is the per-leaf metadata yielded by the enumerator. Never
// persisted beyond the scan's scratch lifetime.
type remoteFile struct {
	Path       string
	FolderPath string
	Name       string
	Size       int64
}

// walkRemote traverses the store depth-first beneath dir, invoking fn for
// every leaf file. Per-subtree listing failures are logged and skipped; the
// cooperative cancel flag is checked at every directory and file boundary,
// so cancellation latency is bounded by one directory's branching factor.
// An error returned by fn aborts the walk.
func walkRemote(ctx context.Context, job *ScanJob, store filestore.RemoteStore, dir string, fn func(f remoteFile) error) error {
	if job.Cancelled() {
		return errCancelled
	}

	logger := config.GetLogger()
	entries, err := store.List(ctx, dir)
	if err != nil {
		// Transient per-subtree failure: skip this branch, keep walking.
		config.LogError(logger, moduleName, "walkRemote", "Skipping unreadable directory", dir, err)
		return nil
	}

	var subdirs []string
	for _, e := range entries {
		if job.Cancelled() {
			return errCancelled
		}
		if e.IsDir {
			subdirs = append(subdirs, e.Name)
			continue
		}
		path := filestore.Join(dir, e.Name)
		size := e.Size
		if size < 0 {
			size, err = store.GetSize(ctx, path)
			if err != nil {
				config.LogError(logger, moduleName, "walkRemote", "Skipping unreadable file", path, err)
				continue
			}
		}
		if err := fn(remoteFile{
			Path:       path,
			FolderPath: dir,
			Name:       e.Name,
			Size:       size,
		}); err != nil {
			return err
		}
	}

	for _, name := range subdirs {
		if err := walkRemote(ctx, job, store, filestore.Join(dir, name), fn); err != nil {
			return err
		}
	}
	return nil
}

// progressReporter logs job progress on a wall-clock cadence.
type progressReporter struct {
	job  *ScanJob
	last time.Time
}

func newProgressReporter(job *ScanJob) *progressReporter {
	return &progressReporter{job: job, last: time.Now()}
}

func (p *progressReporter) Tick() {
	if time.Since(p.last) < progressCadence {
		return
	}
	p.last = time.Now()
	snap := p.job.Snapshot()
	config.GetLogger().WithField("module", moduleName).
		WithField("firm_id", snap.FirmId).
		WithField("job_id", snap.JobId).
		WithField("phase", snap.Phase).
		WithField("processed", snap.Processed).
		WithField("matched", snap.Matched).
		WithField("created", snap.Created).
		Info("scan progress")
}
