package docsync

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type ScanStatus string

const (
	ScanStatusIdle      ScanStatus = "Idle"
	ScanStatusRunning   ScanStatus = "Running"
	ScanStatusCompleted ScanStatus = "Completed"
	ScanStatusError     ScanStatus = "Error"
	ScanStatusCancelled ScanStatus = "Cancelled"
)

// ScanJob is the per-firm reconciliation job record. Exactly one goroutine
// (the background task that owns the job) writes it; status polls read it
// concurrently through Snapshot. Cancellation is a flag the task polls at
// file/chunk boundaries, not a preemptive kill.
type ScanJob struct {
	mu sync.RWMutex

	jobId       string
	firmId      string
	status      ScanStatus
	phase       string
	processed   int64
	matched     int64
	created     int64
	skipped     int64
	total       int64
	dryRun      bool
	useManifest bool
	cancelled   bool
	result      string
	errMessage  string
	dataErrors  []string
	startedAt   time.Time
	completedAt *time.Time
}

// JobSnapshot is the read-only view handed to status polls and lifecycle
// events.
type JobSnapshot struct {
	JobId        string     `json:"job_id"`
	FirmId       string     `json:"firm_id"`
	Status       ScanStatus `json:"status"`
	Phase        string     `json:"phase"`
	Processed    int64      `json:"processed"`
	Matched      int64      `json:"matched"`
	Created      int64      `json:"created"`
	Skipped      int64      `json:"skipped"`
	Total        int64      `json:"total"`
	Percent      int        `json:"percent"`
	DryRun       bool       `json:"dry_run"`
	UseManifest  bool       `json:"use_manifest"`
	Result       string     `json:"result,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	DataErrors   []string   `json:"data_errors,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// IdleSnapshot is what GetStatus returns when no job record exists.
func IdleSnapshot(firmId string) JobSnapshot {
	return JobSnapshot{
		FirmId: firmId,
		Status: ScanStatusIdle,
	}
}

func newScanJob(firmId string, dryRun bool, useManifest bool) *ScanJob {
	return &ScanJob{
		jobId:       uuid.New().String(),
		firmId:      firmId,
		status:      ScanStatusRunning,
		phase:       "starting",
		dryRun:      dryRun,
		useManifest: useManifest,
		startedAt:   time.Now().UTC(),
	}
}

func (j *ScanJob) JobId() string     { return j.jobId }
func (j *ScanJob) FirmId() string    { return j.firmId }
func (j *ScanJob) DryRun() bool      { return j.dryRun }
func (j *ScanJob) UseManifest() bool { return j.useManifest }

func (j *ScanJob) Status() ScanStatus {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.status
}

// Cancelled reports the cooperative flag. The background task checks it at
// every directory/file/chunk boundary.
func (j *ScanJob) Cancelled() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.cancelled
}

// Cancel sets the cooperative flag. Returns true when the job was running.
// The status flips to Cancelled immediately so polls reflect intent; the
// background task still finishes its in-flight unit of work before exiting.
func (j *ScanJob) Cancel() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status != ScanStatusRunning {
		return false
	}
	j.cancelled = true
	j.status = ScanStatusCancelled
	return true
}

func (j *ScanJob) SetPhase(phase string) {
	j.mu.Lock()
	j.phase = phase
	j.mu.Unlock()
}

func (j *ScanJob) SetTotal(total int64) {
	j.mu.Lock()
	j.total = total
	j.mu.Unlock()
}

func (j *ScanJob) AddProcessed(n int64) {
	j.mu.Lock()
	j.processed += n
	j.mu.Unlock()
}

func (j *ScanJob) AddMatched(n int64) {
	j.mu.Lock()
	j.matched += n
	j.mu.Unlock()
}

func (j *ScanJob) AddCreated(n int64) {
	j.mu.Lock()
	j.created += n
	j.mu.Unlock()
}

func (j *ScanJob) AddSkipped(n int64) {
	j.mu.Lock()
	j.skipped += n
	j.mu.Unlock()
}

// AddDataError records a skipped malformed record, capped at maxDataErrors.
func (j *ScanJob) AddDataError(msg string) {
	j.mu.Lock()
	if len(j.dataErrors) < maxDataErrors {
		j.dataErrors = append(j.dataErrors, msg)
	}
	j.mu.Unlock()
}

func (j *ScanJob) finalize(status ScanStatus, result string, errMessage string) {
	now := time.Now().UTC()
	j.mu.Lock()
	// A cancel observed mid-run keeps the Cancelled status even if the task
	// unwound through its normal completion path.
	if !(j.cancelled && status == ScanStatusCompleted) {
		j.status = status
	}
	j.result = result
	j.errMessage = errMessage
	j.completedAt = &now
	j.mu.Unlock()
}

// Snapshot copies the job state for lock-free consumption by callers.
func (j *ScanJob) Snapshot() JobSnapshot {
	j.mu.RLock()
	defer j.mu.RUnlock()

	percent := 0
	if j.total > 0 {
		percent = int(j.processed * 100 / j.total)
		if percent > 100 {
			percent = 100
		}
	} else if j.status == ScanStatusCompleted {
		percent = 100
	}

	snap := JobSnapshot{
		JobId:        j.jobId,
		FirmId:       j.firmId,
		Status:       j.status,
		Phase:        j.phase,
		Processed:    j.processed,
		Matched:      j.matched,
		Created:      j.created,
		Skipped:      j.skipped,
		Total:        j.total,
		Percent:      percent,
		DryRun:       j.dryRun,
		UseManifest:  j.useManifest,
		Result:       j.result,
		ErrorMessage: j.errMessage,
		StartedAt:    j.startedAt,
		CompletedAt:  j.completedAt,
	}
	if len(j.dataErrors) > 0 {
		snap.DataErrors = append([]string(nil), j.dataErrors...)
	}
	return snap
}
