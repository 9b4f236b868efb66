package raft

import "time"

// SendNone controls whether InitiateReplication should send an RPC to a
// target even when there is no new data for it -- that RPC serves as a
// heartbeat.
type SendNone bool

const (
	SendNoneFalse SendNone = false
	SendNoneTrue  SendNone = true
)

// ReplicationHandler orchestrates ProgressEntry, Progress, ClockProgress
// and Inflight: replication response in, progress update, quorum-accepted
// recompute, commit advance, purge re-examination out. It borrows Config,
// Leader, RaftState and the output buffer for the duration of one event
// and is discarded once that event finishes.
type ReplicationHandler struct {
	config *EngineConfig
	leader *Leader
	state  *RaftState
	output *commandOutput
}

func newReplicationHandler(config *EngineConfig, leader *Leader, state *RaftState, output *commandOutput) *ReplicationHandler {
	return &ReplicationHandler{config: config, leader: leader, state: state, output: output}
}

// LogHandler returns a view over the purge machinery, borrowing the same
// state and output this handler holds.
func (h *ReplicationHandler) LogHandler() *LogHandler {
	return &LogHandler{config: h.config, state: h.state, output: h.output}
}

// SnapshotHandler returns a view over snapshot triggering, borrowing the
// same state and output this handler holds.
func (h *ReplicationHandler) SnapshotHandler() *SnapshotHandler {
	return &SnapshotHandler{state: h.state, output: h.output}
}

// AppendMembership pushes a newly appended membership as effective and
// rebuilds every downstream structure that depends on the voter set: the
// progress trackers, the replication streams, and outstanding sends. The
// leader does not step down even if it is no longer a voter; that happens
// only once the membership log entry itself commits, which is handled by
// the driver observing Command.Committed, not by this method.
func (h *ReplicationHandler) AppendMembership(logID LogId, m Membership) {
	if h.state.ServerState != ServerStateLeader {
		invariantViolation("AppendMembership called while not leader")
	}

	h.state.MembershipState.Append(NewEffectiveMembership(&logID, m))

	h.RebuildProgresses()
	h.RebuildReplicationStreams()
	h.InitiateReplication(SendNoneFalse)
}

// RebuildProgresses reconstructs Progress and ClockProgress to reflect the
// current effective membership: added targets get a fresh entry, removed
// targets are dropped, survivors keep their exact state.
func (h *ReplicationHandler) RebuildProgresses() {
	em := h.state.MembershipState.Effective()
	learners := em.Membership.LearnerIds()
	qs := em.Membership.ToQuorumSet()

	end := NextIndexOf(h.state.LastLogID())
	h.leader.Progress = h.leader.Progress.UpgradeQuorumSet(qs, learners, func() ProgressEntry { return Empty(end) })
	h.leader.ClockProgress = h.leader.ClockProgress.UpgradeQuorumSet(qs, learners)
}

// RebuildReplicationStreams clears every target's inflight bookkeeping and
// asks the driver to recreate its per-target send tasks from scratch --
// any outstanding request from before the rebuild is now meaningless, since
// the driver's own stream objects are being torn down and recreated.
func (h *ReplicationHandler) RebuildReplicationStreams() {
	var targets []ReplicationProgress
	h.leader.Progress.Iter(func(target NodeID, entry *ProgressEntry) {
		entry.ResetInflight()
		targets = append(targets, ReplicationProgress{Target: target, Entry: *entry})
	})
	h.output.push(Command{Kind: CmdRebuildReplicationStreams, RebuildTargets: targets})
}

// UpdateProgress is the entry point for a replication response. It
// dispatches on success/failure, then always retries the purge job since a
// cleared inflight may unblock it. A failure only clears the target's
// inflight when the response's request id still matches what is currently
// outstanding -- a failure for a superseded request must never clear a
// newer one that is genuinely still in flight.
func (h *ReplicationHandler) UpdateProgress(resp ReplicationResponse) {
	if resp.Err == nil {
		h.UpdateSuccessProgress(resp.Target, resp.RequestID, *resp.Result)
	} else if id, ok := resp.RequestID.DataID(); ok {
		if e, ok := h.leader.Progress.Get(resp.Target); ok {
			if entryID, hasID := e.Inflight.GetID(); hasID && entryID == id {
				e.ResetInflight()
			}
		}
	} else {
		h.config.Logger.Warningf("heartbeat to %v failed: %v", resp.Target, resp.Err)
	}

	h.TryPurgeLog()
}

// UpdateSuccessProgress handles a successful replication response: the
// leader clock always advances first, since any response -- even a bare
// heartbeat -- is proof the target still recognizes this leader.
func (h *ReplicationHandler) UpdateSuccessProgress(target NodeID, reqID RequestID, result ReplicationResult) {
	h.UpdateLeaderClock(target, result.SendingTime)

	id, ok := reqID.DataID()
	if !ok {
		return
	}

	switch {
	case result.Outcome.Matching != nil:
		h.UpdateMatching(target, id, *result.Outcome.Matching)
	case result.Outcome.ConflictAt != nil:
		h.UpdateConflicting(target, id, result.Outcome.ConflictAt.Index)
	default:
		invariantViolation("replication result has neither Matching nor ConflictAt set")
	}
}

// UpdateLeaderClock monotonically advances target's acknowledged instant
// in ClockProgress. It emits no command; drivers read the resulting lease
// instant through Engine.LeaderMetrics.
// The granted (quorum-accepted) instant may revert to an earlier one
// across a membership change -- e.g. when the voter set shrinks from
// {1,2,3,4,5} to {1,2,3}, an instant acknowledged by only 2 of the 5 may
// become quorum-accepted once just 3 voters remain, if both of those 2
// are among them. That is expected, not a bug.
func (h *ReplicationHandler) UpdateLeaderClock(target NodeID, t time.Time) {
	if _, err := h.leader.ClockProgress.IncreaseTo(target, t); err != nil {
		h.config.Logger.Debugf("clock progress update for unknown target %v: %v", target, err)
	}
}

// UpdateMatching applies a successful Logs/Snapshot response to target's
// ProgressEntry, then recomputes and tries to commit the new
// quorum-accepted log id. Fails silently (logged, not propagated) on a
// stale request id: that is an expected artifact of a retried or
// superseded request, and logging instead of halting follows the same
// rule applied to every stale-reply case in this core.
func (h *ReplicationHandler) UpdateMatching(target NodeID, reqID uint64, newMatching LogId) {
	quorumAccepted, err := h.leader.Progress.UpdateWith(target, func(e *ProgressEntry) {
		if uErr := e.UpdateMatching(reqID, newMatching); uErr != nil {
			h.config.Logger.Debugf("update_matching(%v, #%d): %v", target, reqID, uErr)
		}
	})
	if err != nil {
		h.config.Logger.Warningf("update_matching for unknown target %v: %v", target, err)
		return
	}

	h.TryCommitQuorumAccepted(quorumAccepted)
}

// UpdateConflicting applies a rejection to target's ProgressEntry: the
// leader lowers its belief of End to the reported conflict index and
// clears the inflight. The next send is chosen by NextSend, which does not
// read End.
func (h *ReplicationHandler) UpdateConflicting(target NodeID, reqID uint64, conflictIndex uint64) {
	_, err := h.leader.Progress.UpdateWith(target, func(e *ProgressEntry) {
		if uErr := e.UpdateConflicting(reqID, conflictIndex); uErr != nil {
			h.config.Logger.Debugf("update_conflicting(%v, #%d): %v", target, reqID, uErr)
		}
	})
	if err != nil {
		h.config.Logger.Warningf("update_conflicting for unknown target %v: %v", target, err)
	}
}

// TryCommitQuorumAccepted advances RaftState.committed to quorumAccepted
// if, and only if, quorumAccepted was proposed by the current leader term.
// A log id proposed by an earlier term can be quorum-replicated without
// being safe to commit -- committing it directly would let an old term's
// entry become visible without this leader ever having confirmed it itself
// (the classic "Figure 8" unsafety Raft's leader-completeness rule exists
// to prevent). Once committed advances, it asks the driver to broadcast
// the new commit index, apply the newly committed range to the state
// machine, checks the configured SnapshotPolicy, and retries the purge
// job.
func (h *ReplicationHandler) TryCommitQuorumAccepted(quorumAccepted *LogId) {
	if quorumAccepted == nil {
		return
	}
	if !h.state.Vote.IsSameLeader(quorumAccepted.LeaderID) {
		h.config.Logger.Debugf("quorum-accepted %v is not from the current leader term %v, not committing", quorumAccepted, h.state.Vote.LeaderID)
		return
	}

	prev, advanced := h.state.UpdateCommitted(quorumAccepted)
	if !advanced {
		return
	}

	if effective := h.state.MembershipState.Effective(); effective.LogID != nil && CompareLogID(effective.LogID, quorumAccepted) <= 0 {
		h.state.MembershipState.CommitTo(effective)
	}

	h.output.push(Command{Kind: CmdReplicateCommitted, Committed: quorumAccepted})
	h.output.push(Command{Kind: CmdCommit, AlreadyCommitted: prev, Upto: quorumAccepted})

	if h.config.SnapshotPolicy.ShouldSnapshot(h.state) {
		h.SnapshotHandler().TriggerSnapshot()
	}

	h.TryPurgeLog()
}

// UpdateLocalProgress records that the leader's own log store durably
// holds entries up to upto. The leader counts as a voter like any other
// target, so its own matching index participates in the quorum-accepted
// computation exactly the way a follower's acknowledgment does.
func (h *ReplicationHandler) UpdateLocalProgress(upto *LogId) {
	if upto == nil {
		return
	}
	h.state.SetLastLogID(upto)

	if !h.leader.Progress.IsLearner(h.config.ID) {
		quorumAccepted, err := h.leader.Progress.UpdateWith(h.config.ID, func(e *ProgressEntry) {
			e.Matching = MaxLogID(e.Matching, upto)
			if next := NextIndexOf(e.Matching); next > e.End {
				e.End = next
			}
		})
		if err == nil {
			h.TryCommitQuorumAccepted(quorumAccepted)
		}
	}

	h.InitiateReplication(SendNoneFalse)
}

// InitiateReplication asks every tracked target to start or resume
// replication: a target with no outstanding request and new data gets a
// Logs or Snapshot command; a target already busy is left alone; a target
// with nothing new to send gets a heartbeat Replicate command only if
// sendNone is true.
func (h *ReplicationHandler) InitiateReplication(sendNone SendNone) {
	h.leader.Progress.Iter(func(target NodeID, entry *ProgressEntry) {
		if target == h.config.ID {
			return
		}

		inflight, err := entry.NextSend(h.state, h.config.MaxPayloadEntries)
		switch err {
		case nil:
			id := h.leader.AllocateRequestID()
			inflight = inflight.WithID(id)
			entry.Inflight = inflight
			h.output.push(Command{Kind: CmdReplicate, Target: target, Inflight: inflight})
		case ErrInflightBusy:
			// Already in flight; nothing to do.
		case ErrNothingToSend:
			if sendNone {
				h.output.push(Command{Kind: CmdReplicate, Target: target, Inflight: Inflight{Kind: InflightNone, ID: HeartBeatRequestID}})
			}
		default:
			h.config.Logger.Errorf("next_send(%v): %v", target, err)
		}
	})
}

// TryPurgeLog recomputes the safe purge boundary and asks the driver to
// purge if it can move forward. The boundary is the configured retention
// bound below Committed (see purgeUpperBound). If any target has an
// in-flight Logs range overlapping that boundary, nothing is purged on
// this call -- purging past an in-flight read would let the driver serve
// stale or now-absent entries to a target mid-transfer -- and a later
// progress update tries again.
func (h *ReplicationHandler) TryPurgeLog() {
	committed := h.state.Committed()
	if committed == nil {
		return
	}

	upto := h.purgeUpperBound(committed)
	if upto == nil {
		return
	}

	var blocked bool
	h.leader.Progress.Iter(func(target NodeID, entry *ProgressEntry) {
		if entry.IsLogRangeInflight(*upto) {
			blocked = true
		}
	})
	if blocked {
		return
	}

	if CompareLogID(upto, h.state.LastPurgedLogID()) <= 0 {
		return
	}

	h.state.SetPurgeUpto(upto)
	h.state.SetLastPurgedLogID(upto)
	h.LogHandler().PurgeLog()
}

// purgeUpperBound returns the newest log id that MaxInSnapshotLogToKeep
// still permits purging, bounded above by committed and by the most
// recent completed snapshot -- log entries not yet covered by any
// snapshot must never be purged, or a restart could lose them for good.
func (h *ReplicationHandler) purgeUpperBound(committed *LogId) *LogId {
	snapshot := h.state.CurrentSnapshotLogID()
	if snapshot == nil {
		return nil
	}

	bound := *snapshot
	if CompareLogID(&bound, committed) > 0 {
		bound = *committed
	}
	if bound.Index < h.config.MaxInSnapshotLogToKeep {
		return nil
	}
	bound.Index -= h.config.MaxInSnapshotLogToKeep
	return &bound
}
