package docsync_test

import (
	"testing"

	"github.com/mmdatafocus/lexfiles_backend/docsync"
)

func TestRegistrySingleFlight(t *testing.T) {
	r := docsync.NewRegistry()

	first, err := r.Begin("firm-1", false, false)
	if err != nil {
		t.Fatalf("first Begin: %v", err)
	}
	if first.Status() != docsync.ScanStatusRunning {
		t.Fatalf("expected Running, got %s", first.Status())
	}

	if _, err := r.Begin("firm-1", false, false); err != docsync.ErrScanConflict {
		t.Fatalf("expected ErrScanConflict, got %v", err)
	}

	// Another firm is unaffected.
	if _, err := r.Begin("firm-2", false, false); err != nil {
		t.Fatalf("Begin for other firm: %v", err)
	}
}

func TestRegistryCancelAndSupersede(t *testing.T) {
	r := docsync.NewRegistry()

	job, err := r.Begin("firm-1", false, false)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}

	if !r.Cancel("firm-1") {
		t.Fatalf("expected Cancel to report a running job")
	}
	if job.Status() != docsync.ScanStatusCancelled {
		t.Fatalf("expected Cancelled, got %s", job.Status())
	}
	if !job.Cancelled() {
		t.Fatalf("expected cooperative flag to be set")
	}

	// Cancel is a no-op once terminal.
	if r.Cancel("firm-1") {
		t.Fatalf("expected second Cancel to be a no-op")
	}

	// A terminal job is superseded by a new one.
	if _, err := r.Begin("firm-1", false, false); err != nil {
		t.Fatalf("Begin after cancel: %v", err)
	}
}

func TestRegistryCancelIdleFirm(t *testing.T) {
	r := docsync.NewRegistry()
	if r.Cancel("nobody") {
		t.Fatalf("expected false for firm with no job")
	}
}

func TestRegistryDeleteClearsJob(t *testing.T) {
	r := docsync.NewRegistry()
	if _, err := r.Begin("firm-1", false, false); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	r.Delete("firm-1")
	if r.Get("firm-1") != nil {
		t.Fatalf("expected no job after Delete")
	}
	// Reset clears even a running job, so a fresh start must succeed.
	if _, err := r.Begin("firm-1", false, false); err != nil {
		t.Fatalf("Begin after Delete: %v", err)
	}
}
