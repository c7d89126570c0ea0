// Package simerr defines the sentinel errors shared by every component of
// the simulator, so callers can classify a failure with errors.Is instead
// of string matching.
package simerr

import "errors"

var (
	// ErrAdmissionDeferred is not a failure: the arrival could not be
	// admitted this tick (no free block of sufficient size) and must be
	// retried on a later tick.
	ErrAdmissionDeferred = errors.New("simerr: admission deferred, no free block")

	// ErrDuplicateArrival is returned when an arrival names a job id still
	// sitting in the pending (not-yet-admitted) set — a genuinely
	// duplicated id racing its own admission, treated as fatal. A
	// duplicate naming an id that is already admitted is instead logged
	// and dropped without this error (spec.md §4.5).
	ErrDuplicateArrival = errors.New("simerr: duplicate arrival for a pending job id")

	// ErrJobTimeout means a job failed to acknowledge a command within
	// the configured bound. The scheduler retries once before escalating
	// to ErrJobUnresponsive.
	ErrJobTimeout = errors.New("simerr: job did not acknowledge command in time")

	// ErrJobUnresponsive is a TransientJobError escalated after a retry.
	ErrJobUnresponsive = errors.New("simerr: job unresponsive after retry")

	// ErrClockRegression is a FatalInvariantViolation: an observer read a
	// tick lower than one it had already observed.
	ErrClockRegression = errors.New("simerr: clock regression detected")

	// ErrBuddyCorruption is a FatalInvariantViolation: when a job
	// finishes, its owner id does not hold a block at least as large as
	// the job's requested bytes, so its memory is not freed.
	ErrBuddyCorruption = errors.New("simerr: buddy allocator corruption")

	// ErrClockClosed is returned by Clock.Read/Wait after Destroy.
	ErrClockClosed = errors.New("simerr: clock destroyed")

	// ErrExternalSignal marks a clean shutdown triggered by an external
	// interrupt (SIGINT/SIGTERM), not an internal failure.
	ErrExternalSignal = errors.New("simerr: shutdown requested by signal")
)
