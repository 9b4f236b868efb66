package raft

import "github.com/pingcap/errors"

// Recoverable, expected error conditions. These are never panics:
// transport errors and stale replies are routine artifacts of an
// asynchronous network and are handled by the caller without crashing
// the engine.
var (
	// ErrNotLeader names the condition of having no active Leader
	// (server_state != Leader). No operation in this package returns it:
	// Engine's Handle* methods drop events while not leading, and a
	// leader-only handler operation halts via invariantViolation.
	ErrNotLeader = errors.New("raft: engine is not the leader")

	// ErrUnknownTarget is returned when a target id has no ProgressEntry,
	// e.g. because it was removed by a membership change.
	ErrUnknownTarget = errors.New("raft: unknown replication target")

	// ErrStaleRequestID is returned when a response's request id does not
	// match the currently outstanding inflight for that target. This is a
	// benign artifact of retries or a replication-stream rebuild; callers
	// drop the response rather than propagate the error.
	ErrStaleRequestID = errors.New("raft: stale request id")

	// ErrInflightBusy is returned by ProgressEntry.NextSend when a request
	// is already outstanding for the target.
	ErrInflightBusy = errors.New("raft: inflight request already in progress")

	// ErrNothingToSend is returned by ProgressEntry.NextSend when no
	// request is outstanding but there is also no new data to replicate;
	// the caller may choose to send a heartbeat instead.
	ErrNothingToSend = errors.New("raft: nothing new to replicate")
)

// invariantViolation reports a condition classified as an invariant
// violation: a logic bug in the driver or engine, never a consequence of
// network behavior. Recovery would risk violating Raft's safety
// properties, so the engine halts instead of limping on.
func invariantViolation(format string, args ...interface{}) {
	panic(errors.Errorf(format, args...))
}
