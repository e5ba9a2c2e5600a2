package docsync

import (
	"errors"
	"fmt"
)

// ErrScanConflict is returned by StartScan when a job is already running for
// the firm. The caller retries after the current job reaches a terminal state.
var ErrScanConflict = errors.New("a scan is already running for this firm")

// errCancelled is the internal signal raised when the cooperative cancel flag
// is observed. It finalizes the job as Cancelled, never as Error.
var errCancelled = errors.New("scan cancelled")

// ConfigurationError aborts a scan before enumeration begins: the firm's
// remote store is missing or unreachable. The job finalizes as Error.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("scan configuration error: %s", e.Reason)
}

func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// maxDataErrors caps the per-job list of skipped malformed records surfaced
// in the final result. Beyond the cap records are still skipped, just not
// itemized.
const maxDataErrors = 50
