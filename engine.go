package raft

// Engine is the synchronous, single-threaded state machine driving leader
// replication. It performs no I/O itself: every inbound Handle* call may
// enqueue zero or more Commands, retrieved afterward via DrainCommands and
// executed by the caller. Engine is safe to use only from one goroutine at
// a time; callers needing concurrent access must serialize their own
// calls.
type Engine struct {
	config *EngineConfig
	state  *RaftState

	// leader is non-nil only while State.ServerState == ServerStateLeader.
	leader *Leader

	output commandOutput
}

// NewEngine builds an Engine in the Follower role. config.validate() fills
// in defaults for an unset SnapshotPolicy/Logger.
func NewEngine(config *EngineConfig, state *RaftState) *Engine {
	config.validate()
	return &Engine{config: config, state: state}
}

// DrainCommands returns and clears every command queued since the last
// call.
func (e *Engine) DrainCommands() []Command {
	return e.output.Drain()
}

// handler constructs a ReplicationHandler borrowing this engine's state
// for the duration of one call. Panics via invariantViolation if the
// engine is not currently leading, since every handler operation assumes
// a Leader exists.
func (e *Engine) handler() *ReplicationHandler {
	if e.state.ServerState != ServerStateLeader || e.leader == nil {
		invariantViolation("replication operation requires the engine to be leader")
	}
	return newReplicationHandler(e.config, e.leader, e.state, &e.output)
}

// BecomeLeader transitions the engine into the Leader role for vote,
// seeding a fresh Leader's progress trackers from the current effective
// membership and log tail, then kicks off replication to every target.
// Callers are responsible for having already won an election; this method
// does not perform or validate one.
func (e *Engine) BecomeLeader(vote Vote) {
	e.state.Vote = vote
	e.state.ServerState = ServerStateLeader
	e.leader = NewLeader(e.state.MembershipState.Effective(), e.state.LastLogID())

	e.handler().InitiateReplication(SendNoneTrue)
}

// BecomeFollower drops all leader-only state. Any outstanding replication
// responses that arrive afterward are dropped by HandleReplicationResponse,
// since Engine no longer holds a Leader to apply them to.
func (e *Engine) BecomeFollower() {
	e.state.ServerState = ServerStateFollower
	e.leader = nil
}

// HandleReplicationResponse feeds one target's answer to an outstanding
// Replicate command back into the engine. Silently ignored, other than a
// debug log, if the engine is no longer leading -- a response racing a
// step-down is expected, not an error.
func (e *Engine) HandleReplicationResponse(resp ReplicationResponse) {
	if e.state.ServerState != ServerStateLeader || e.leader == nil {
		e.config.Logger.Debugf("dropping replication response from %v: engine is not leader", resp.Target)
		return
	}
	e.handler().UpdateProgress(resp)
}

// HandleLocalLogWritten notifies the engine that the local log store
// durably holds entries up to ev.Upto. Only meaningful while leading: a
// follower's local append is acknowledged to its leader by the transport
// layer, not through this engine.
func (e *Engine) HandleLocalLogWritten(ev LocalLogWritten) {
	if e.state.ServerState != ServerStateLeader || e.leader == nil {
		return
	}
	e.handler().UpdateLocalProgress(ev.Upto)
}

// HandleMembershipAppended notifies the engine a new membership
// configuration was appended to the log, rebuilding progress tracking and
// replication streams for the new voter set.
func (e *Engine) HandleMembershipAppended(ev MembershipAppended) {
	if e.state.ServerState != ServerStateLeader || e.leader == nil {
		e.state.MembershipState.Append(NewEffectiveMembership(&ev.LogID, ev.Membership))
		return
	}
	e.handler().AppendMembership(ev.LogID, ev.Membership)
}

// HandleTick sends every idle target its next Logs or Snapshot request,
// or a heartbeat when there is nothing new for it, keeping the leader
// lease (ClockProgress's quorum-accepted instant) advancing even when
// there is no new log data to replicate. A no-op while not leading.
// Drivers call this on a fixed interval; it is optional to call at all
// for a driver that does not care about leader-lease metrics.
func (e *Engine) HandleTick(ev Tick) {
	_ = ev
	if e.state.ServerState != ServerStateLeader || e.leader == nil {
		return
	}
	e.handler().InitiateReplication(SendNoneTrue)
}

// LeaderMetrics reports the current leader's view of cluster replication
// health, or ok=false if the engine is not currently leading.
func (e *Engine) LeaderMetrics() (m LeaderMetrics, ok bool) {
	if e.state.ServerState != ServerStateLeader || e.leader == nil {
		return LeaderMetrics{}, false
	}

	replication := make(map[NodeID]ReplicationMetrics)
	e.leader.Progress.Iter(func(target NodeID, entry *ProgressEntry) {
		replication[target] = ReplicationMetrics{
			Matching: entry.Matching,
			End:      entry.End,
			Inflight: entry.Inflight,
		}
	})

	return LeaderMetrics{
		Term:             e.state.Vote.LeaderID.Term,
		QuorumAccepted:   e.leader.Progress.QuorumAccepted(),
		LeaseQuorumAcked: e.leader.ClockProgress.QuorumAccepted(),
		Committed:        e.state.Committed(),
		Replication:      replication,
	}, true
}
