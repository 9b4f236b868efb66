package raft

import "time"

// ReplicationMetrics reports one target's replication progress as of the
// most recent handled event.
type ReplicationMetrics struct {
	Matching *LogId
	End      uint64
	Inflight Inflight
}

// LeaderMetrics reports the current leader's view of cluster replication
// health: the quorum-accepted log id (the strongest safe commit
// candidate), the quorum-accepted lease instant, the actual committed log
// id, and a per-target breakdown. Drivers poll this via Engine.LeaderMetrics
// to feed a metrics/alerting pipeline without the engine depending on one
// itself.
type LeaderMetrics struct {
	Term             uint64
	QuorumAccepted   *LogId
	LeaseQuorumAcked *time.Time
	Committed        *LogId
	Replication      map[NodeID]ReplicationMetrics
}
