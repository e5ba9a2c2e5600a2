package docsync

import (
	"fmt"
	"testing"
)

func TestJobSnapshotPercent(t *testing.T) {
	job := newScanJob("firm-1", false, true)
	job.SetTotal(200)
	job.AddProcessed(50)

	if got := job.Snapshot().Percent; got != 25 {
		t.Fatalf("expected 25%%, got %d", got)
	}

	// Processed can overshoot total when the source changed mid-scan.
	job.AddProcessed(400)
	if got := job.Snapshot().Percent; got != 100 {
		t.Fatalf("expected percent capped at 100, got %d", got)
	}
}

func TestJobDataErrorsBounded(t *testing.T) {
	job := newScanJob("firm-1", false, true)
	for i := 0; i < maxDataErrors+25; i++ {
		job.AddDataError(fmt.Sprintf("bad record %d", i))
	}
	if got := len(job.Snapshot().DataErrors); got != maxDataErrors {
		t.Fatalf("expected %d data errors, got %d", maxDataErrors, got)
	}
}

func TestJobFinalizeKeepsCancelledStatus(t *testing.T) {
	job := newScanJob("firm-1", false, false)
	job.Cancel()

	// The background task unwound through its normal completion path after
	// the flag was observed; the terminal status must stay Cancelled.
	job.finalize(ScanStatusCompleted, "done", "")
	if got := job.Status(); got != ScanStatusCancelled {
		t.Fatalf("expected Cancelled, got %s", got)
	}

	snap := job.Snapshot()
	if snap.CompletedAt == nil {
		t.Fatalf("expected completion timestamp")
	}
}

func TestJobFinalizeError(t *testing.T) {
	job := newScanJob("firm-1", true, false)
	job.finalize(ScanStatusError, "", "bucket unreachable")

	snap := job.Snapshot()
	if snap.Status != ScanStatusError {
		t.Fatalf("expected Error, got %s", snap.Status)
	}
	if snap.ErrorMessage != "bucket unreachable" {
		t.Fatalf("unexpected error message %q", snap.ErrorMessage)
	}
	if !snap.DryRun {
		t.Fatalf("expected dry-run flag to survive finalize")
	}
}
