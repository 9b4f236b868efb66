package raft

// ServerState is the role a node currently plays. The replication core is
// only ever constructed while ServerState is Leader; election and
// candidate behavior belong to the (external) voting subsystem.
type ServerState int

const (
	ServerStateFollower ServerState = iota
	ServerStateCandidate
	ServerStateLeader
)

func (s ServerState) String() string {
	switch s {
	case ServerStateCandidate:
		return "Candidate"
	case ServerStateLeader:
		return "Leader"
	default:
		return "Follower"
	}
}

// Vote identifies who this node currently believes is the leader for a
// given term. Only the leader_id half of a vote matters to the
// replication core: a log id "is from the current leader" iff its
// LeaderID equals Vote.LeaderID.
type Vote struct {
	LeaderID LeaderID
}

// IsSameLeader reports whether id names the same leader term as this
// vote.
func (v Vote) IsSameLeader(id LeaderID) bool { return v.LeaderID == id }

// SnapshotMeta describes the most recently completed local snapshot. Its
// contents beyond the covered log id are opaque to the replication core.
type SnapshotMeta struct {
	LastIncluded *LogId
}

// RaftState is the read-mostly slice of leader state the replication core
// consumes and narrowly mutates: current vote, server role, membership
// stack, log tail, and the commit / purge frontier. Physical log storage
// and state-machine application live behind the external
// LogStore/StateMachine interfaces and are not part of this struct.
type RaftState struct {
	Vote            Vote
	ServerState     ServerState
	MembershipState MembershipState

	lastLogID       *LogId
	committed       *LogId
	lastPurgedLogID *LogId
	purgeUpto       *LogId
	snapshot        SnapshotMeta
}

// NewRaftState builds a RaftState. membership must already describe the
// starting configuration; lastLogID may be nil for a brand new cluster.
func NewRaftState(vote Vote, membership MembershipState, lastLogID *LogId) *RaftState {
	return &RaftState{
		Vote:            vote,
		ServerState:     ServerStateFollower,
		MembershipState: membership,
		lastLogID:       lastLogID,
	}
}

// LastLogID returns the most recent entry appended to the local log,
// implementing ReplicationStateReader.
func (s *RaftState) LastLogID() *LogId { return s.lastLogID }

// SetLastLogID records a new log tail after a local append. It is the
// driver's responsibility to call this once an append to the LogStore
// completes; the core never writes log entries itself.
func (s *RaftState) SetLastLogID(id *LogId) { s.lastLogID = id }

// Committed returns the most recent log id known committed.
func (s *RaftState) Committed() *LogId { return s.committed }

// LastPurgedLogID returns the log id immediately before the oldest entry
// still physically present in the log store, implementing
// ReplicationStateReader.
func (s *RaftState) LastPurgedLogID() *LogId { return s.lastPurgedLogID }

// SetLastPurgedLogID records that purge has been requested up to id. The
// core itself calls this synchronously from TryPurgeLog, before the
// corresponding PurgeLog command is handed to a driver or known to have
// completed: it is an optimistic bookkeeping update, not a confirmation.
// A driver-reported completion event is not part of this core's contract,
// so a PurgeLog command that is slow, queued, or fails is not retried;
// the only consequence is that NextSend may route a target to a snapshot
// for entries that, in fact, are still physically present.
func (s *RaftState) SetLastPurgedLogID(id *LogId) { s.lastPurgedLogID = id }

// PurgeUpto returns the upper bound (inclusive) the system intends to
// purge to, bounded above by Committed and the snapshot retention policy.
// ReplicationHandler.TryPurgeLog sets it to the boundary it computes just
// before emitting a PurgeLog command.
func (s *RaftState) PurgeUpto() *LogId { return s.purgeUpto }

// SetPurgeUpto updates the intended purge boundary.
func (s *RaftState) SetPurgeUpto(id *LogId) { s.purgeUpto = id }

// CurrentSnapshotLogID returns the log id covered by the most recent
// completed snapshot, implementing ReplicationStateReader.
func (s *RaftState) CurrentSnapshotLogID() *LogId { return s.snapshot.LastIncluded }

// SetSnapshot records a newly completed snapshot's metadata.
func (s *RaftState) SetSnapshot(meta SnapshotMeta) { s.snapshot = meta }

// IsLeader reports whether id is this state's current vote AND the
// server role is Leader.
func (s *RaftState) IsLeader(id NodeID) bool {
	return s.ServerState == ServerStateLeader && s.Vote.LeaderID.NodeID == id
}

// UpdateCommitted advances Committed to candidate if candidate is
// strictly greater than the current value: commit is monotone and never
// regresses. Returns the previous committed value and whether an advance
// happened.
func (s *RaftState) UpdateCommitted(candidate *LogId) (prev *LogId, advanced bool) {
	if CompareLogID(candidate, s.committed) <= 0 {
		return s.committed, false
	}
	prev = s.committed
	s.committed = candidate
	return prev, true
}
