package docsync

import (
	"context"
	"time"

	"github.com/mmdatafocus/lexfiles_backend/config"
)

// publishLifecycleEvent notifies downstream consumers (notifications, audit)
// that a job reached a terminal state. Fire-and-forget: event delivery
// failures never affect the job outcome, and publishing is skipped entirely
// when no topic is configured.
func publishLifecycleEvent(snap JobSnapshot, correlationId string) {
	if !config.ScanEventsEnabled() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	event := config.ScanEvent{
		JobId:         snap.JobId,
		FirmId:        snap.FirmId,
		Status:        string(snap.Status),
		Phase:         snap.Phase,
		Processed:     snap.Processed,
		Matched:       snap.Matched,
		Created:       snap.Created,
		DryRun:        snap.DryRun,
		ErrorMessage:  snap.ErrorMessage,
		OccurredAt:    time.Now().UTC(),
		CorrelationId: correlationId,
	}
	if _, err := config.PublishScanEvent(ctx, event); err != nil {
		config.LogError(config.GetLogger(), moduleName, "publishLifecycleEvent",
			"Failed to publish scan lifecycle event", snap.JobId, err)
	}
}
