package raft

import "time"

// ReplicationOutcome is the per-entry result a follower/learner reports
// for a data request: exactly one of Matching or ConflictAt is non-nil.
type ReplicationOutcome struct {
	// Matching is set when the target accepted the request: the log id
	// it now durably holds.
	Matching *LogId
	// ConflictAt is set when the target rejected the request: the first
	// index at which its log diverges from what was sent.
	ConflictAt *LogId
}

// ReplicationResult is the successful half of a ReplicationResponse.
// SendingTime is when the leader sent the request,
// not when the response arrived -- the clock-progress lease reflects
// when the follower last confirmed this leader's legitimacy, not network
// round-trip time.
type ReplicationResult struct {
	SendingTime time.Time
	Outcome     ReplicationOutcome
}

// ReplicationResponse is the inbound event carrying a follower/learner's
// answer to a Replicate command.
type ReplicationResponse struct {
	Target    NodeID
	RequestID RequestID

	// Exactly one of Result or Err is set.
	Result *ReplicationResult
	Err    error
}

// LocalLogWritten is the inbound event signaling the leader's own log
// store durably holds entries up to Upto.
type LocalLogWritten struct {
	Upto *LogId
}

// MembershipAppended is the inbound event signaling a new membership
// configuration was appended to the log.
type MembershipAppended struct {
	LogID      LogId
	Membership Membership
}

// Tick is the inbound event used for lease evaluation; a driver may
// choose never to send it if it does not care about leader-lease
// metrics.
type Tick struct {
	Now time.Time
}
