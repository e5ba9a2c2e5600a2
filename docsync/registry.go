package docsync

import "sync"

// Registry is the keyed job store: one slot per firm. It is injected into
// the Service (and into tests) instead of living as a package-level map, so
// it can be swapped for a distributed store later without touching callers.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*ScanJob
}

func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*ScanJob)}
}

// Begin creates a new running job for the firm. A firm with a job still in
// Running state gets ErrScanConflict; a terminal job is superseded.
func (r *Registry) Begin(firmId string, dryRun bool, useManifest bool) (*ScanJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.jobs[firmId]; ok && existing.Status() == ScanStatusRunning {
		return nil, ErrScanConflict
	}
	job := newScanJob(firmId, dryRun, useManifest)
	r.jobs[firmId] = job
	return job, nil
}

// Get returns the firm's job record, or nil when none exists.
func (r *Registry) Get(firmId string) *ScanJob {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.jobs[firmId]
}

// Cancel requests cooperative cancellation. True when a running job existed.
func (r *Registry) Cancel(firmId string) bool {
	r.mu.RLock()
	job := r.jobs[firmId]
	r.mu.RUnlock()
	if job == nil {
		return false
	}
	return job.Cancel()
}

// Delete unconditionally clears the firm's job record (used to clear a stuck
// job). A still-running task keeps its own job pointer and finalizes into the
// detached record harmlessly.
func (r *Registry) Delete(firmId string) {
	r.mu.Lock()
	delete(r.jobs, firmId)
	r.mu.Unlock()
}

// CancelAll flags every running job; used on graceful shutdown.
func (r *Registry) CancelAll() {
	r.mu.RLock()
	jobs := make([]*ScanJob, 0, len(r.jobs))
	for _, j := range r.jobs {
		jobs = append(jobs, j)
	}
	r.mu.RUnlock()
	for _, j := range jobs {
		j.Cancel()
	}
}
