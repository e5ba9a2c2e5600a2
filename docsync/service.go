package docsync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/mmdatafocus/lexfiles_backend/config"
	"github.com/mmdatafocus/lexfiles_backend/filestore"
	"github.com/mmdatafocus/lexfiles_backend/models"
	"github.com/mmdatafocus/lexfiles_backend/models/reports"
	"github.com/mmdatafocus/lexfiles_backend/utils"
)

// StoreFactory opens the firm's remote store. The returned func releases the
// store's resources when the scan ends. A misconfigured firm yields a
// ConfigurationError, which aborts the job before enumeration begins.
type StoreFactory func(ctx context.Context, firm *models.Firm) (filestore.RemoteStore, func(), error)

// GCSStoreFactory is the production factory: the firm record carries the
// bucket and root prefix the legacy share was bulk-copied into.
func GCSStoreFactory(ctx context.Context, firm *models.Firm) (filestore.RemoteStore, func(), error) {
	if firm.RemoteBucket == "" {
		return nil, nil, &ConfigurationError{Reason: "firm has no remote bucket configured"}
	}
	store, err := filestore.NewGCSStore(ctx, firm.RemoteBucket, firm.RemoteRoot)
	if err != nil {
		return nil, nil, &ConfigurationError{Reason: err.Error()}
	}
	return store, func() { _ = store.Close() }, nil
}

type ScanOptions struct {
	DryRun      bool
	UseManifest bool
}

// Service exposes the reconciliation engine's operations. The registry and
// store factory are injected so tests can run against fakes.
type Service struct {
	registry *Registry
	stores   StoreFactory
	wg       sync.WaitGroup
}

func NewService(registry *Registry, stores StoreFactory) *Service {
	return &Service{
		registry: registry,
		stores:   stores,
	}
}

// StartScan creates the job record and returns its initial snapshot
// immediately; reconciliation proceeds in a supervised background task that
// writes its completion or failure back into the record. ErrScanConflict
// when a job is already running for the firm.
func (s *Service) StartScan(ctx context.Context, firmId string, opts ScanOptions) (JobSnapshot, error) {
	firm, err := models.GetFirmById(ctx, firmId)
	if err != nil {
		return JobSnapshot{}, err
	}

	job, err := s.registry.Begin(firmId, opts.DryRun, opts.UseManifest)
	if err != nil {
		return JobSnapshot{}, err
	}

	// Best-effort cross-instance serialization; the in-process registry
	// remains the source of truth for the single-flight invariant.
	if err := utils.FirmLock(ctx, firmId, "docsync-scan", moduleName, "StartScan"); err != nil {
		config.LogError(config.GetLogger(), moduleName, "StartScan",
			"Proceeding without firm lock", firmId, err)
	}

	correlationId, _ := utils.GetCorrelationIdFromContext(ctx)

	s.wg.Add(1)
	go s.run(job, firm, correlationId)

	return job.Snapshot(), nil
}

// run is the background task that owns the job record. It never returns an
// error to the original caller (who already got an acknowledgment); every
// outcome is written into the record and published as a lifecycle event.
func (s *Service) run(job *ScanJob, firm *models.Firm, correlationId string) {
	defer s.wg.Done()

	// The request context dies with the HTTP call; the task carries its own.
	ctx := utils.SetFirmIdInContext(context.Background(), job.FirmId())
	if correlationId != "" {
		ctx = utils.SetCorrelationIdInContext(ctx, correlationId)
	}

	logger := config.GetLogger()
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			config.LogError(logger, moduleName, "run", "Scan task panicked", job.FirmId(), err)
			job.finalize(ScanStatusError, "", err.Error())
			snap := job.Snapshot()
			cacheLastResult(snap)
			publishLifecycleEvent(snap, correlationId)
		}
	}()

	store, cleanup, err := s.stores(ctx, firm)
	if err != nil {
		config.LogError(logger, moduleName, "run", "Remote store unavailable", job.FirmId(), err)
		job.finalize(ScanStatusError, "", err.Error())
		snap := job.Snapshot()
		cacheLastResult(snap)
		publishLifecycleEvent(snap, correlationId)
		return
	}
	defer cleanup()

	var result string
	if job.UseManifest() {
		result, err = runManifestScan(ctx, job, store, job.FirmId())
	} else {
		result, err = runHeuristicScan(ctx, job, store, job.FirmId())
	}

	switch {
	case errors.Is(err, errCancelled):
		job.finalize(ScanStatusCancelled, "", "")
	case err != nil:
		config.LogError(logger, moduleName, "run", "Scan failed", job.FirmId(), err)
		job.finalize(ScanStatusError, "", err.Error())
	default:
		job.finalize(ScanStatusCompleted, result, "")
	}
	snap := job.Snapshot()
	cacheLastResult(snap)
	publishLifecycleEvent(snap, correlationId)
}

func lastResultKey(firmId string) string {
	return "ScanResult:" + firmId
}

// cacheLastResult keeps the most recent terminal snapshot in Redis so ops can
// see how the last scan ended after the in-process record is superseded or
// the instance restarts. Best-effort; a cache failure never affects the job.
func cacheLastResult(snap JobSnapshot) {
	if err := config.SetRedisObject(lastResultKey(snap.FirmId), snap, 7*24*time.Hour); err != nil {
		config.LogError(config.GetLogger(), moduleName, "cacheLastResult",
			"Failed to cache scan result", snap.FirmId, err)
	}
}

// LastResult returns the cached terminal snapshot of the firm's most recent
// scan, if any.
func (s *Service) LastResult(ctx context.Context, firmId string) (JobSnapshot, bool, error) {
	var snap JobSnapshot
	found, err := config.GetRedisObject(lastResultKey(firmId), &snap)
	if err != nil || !found {
		return JobSnapshot{}, false, err
	}
	return snap, true, nil
}

// GetStatus is a lock-free read of the firm's job record; Idle when none
// exists.
func (s *Service) GetStatus(ctx context.Context, firmId string) JobSnapshot {
	job := s.registry.Get(firmId)
	if job == nil {
		return IdleSnapshot(firmId)
	}
	return job.Snapshot()
}

// CancelScan requests cooperative cancellation; true when a running job
// existed.
func (s *Service) CancelScan(ctx context.Context, firmId string) bool {
	return s.registry.Cancel(firmId)
}

// ResetJob unconditionally clears the firm's job record and the cached last
// result.
func (s *Service) ResetJob(ctx context.Context, firmId string) {
	s.registry.Delete(firmId)
	if err := config.RemoveRedisKey(lastResultKey(firmId)); err != nil {
		config.LogError(config.GetLogger(), moduleName, "ResetJob",
			"Failed to clear cached scan result", firmId, err)
	}
}

// Rescan runs a synchronous heuristic pass over unmatched documents.
func (s *Service) Rescan(ctx context.Context, firmId string) (RescanResult, error) {
	return RescanUnmatched(ctx, firmId)
}

func (s *Service) OrphanReport(ctx context.Context, firmId string, sampleLimit int) ([]*reports.OrphanFolder, error) {
	return OrphanReport(ctx, firmId, sampleLimit)
}

func (s *Service) ExportOrphanReport(ctx context.Context, firmId string, sampleLimit int, w io.Writer) error {
	return ExportOrphanReport(ctx, firmId, sampleLimit, w)
}

func (s *Service) ManualMatch(ctx context.Context, firmId string, matterId int, documentIds []int, folderPrefix string) (int64, error) {
	return ManualMatch(ctx, firmId, matterId, documentIds, folderPrefix)
}

// Shutdown flags every running job and waits for the background tasks to
// finalize, or for ctx to expire.
func (s *Service) Shutdown(ctx context.Context) error {
	s.registry.CancelAll()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
