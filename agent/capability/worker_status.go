package capability

import "errors"

// ErrStall is wrapped into the error a Worker.Await returns to signal that
// the worker went quiet past its progress deadline (capability.WorkerStatus
// StatusStalled) rather than erroring outright. Runtime.Carry checks for
// this with errors.Is to set WorkerFailed.IsStall accordingly.
var ErrStall = errors.New("capability: worker stalled")

// WorkerStatus is the lifecycle taxonomy a delegated worker moves through,
// ported from the original prototype's workers.rs::WorkerStatus. The
// kernel itself only ever sees the coarser WorkerCompleted/WorkerFailed
// split (with WorkerFailed.IsStall distinguishing StatusStalled from a
// hard failure); WorkerStatus is the finer-grained taxonomy a Worker
// implementation uses internally while polling, before collapsing its
// outcome into one of those two kernel events.
type WorkerStatus int

const (
	// StatusIdle means the worker has been spawned but has not yet
	// reported any progress.
	StatusIdle WorkerStatus = iota
	// StatusRunning means the worker is actively making progress.
	StatusRunning
	// StatusStalled means the worker has gone quiet past its progress
	// deadline without completing or erroring outright.
	StatusStalled
	// StatusCompleted means the worker finished successfully.
	StatusCompleted
	// StatusFailed means the worker errored and will not make further
	// progress.
	StatusFailed
)

// String renders the status for logging.
func (s WorkerStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusStalled:
		return "stalled"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is a status a worker never leaves once
// reached (Completed or Failed).
func (s WorkerStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}
