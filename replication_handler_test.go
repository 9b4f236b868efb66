package raft

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errExampleTransport = errors.New("transport: connection reset")

func newTestEngine(t *testing.T, voters []NodeID) *Engine {
	t.Helper()
	config := &EngineConfig{ID: voters[0], MaxPayloadEntries: 10}
	em := NewEffectiveMembership(nil, Membership{Voters: voters})
	state := NewRaftState(Vote{LeaderID: LeaderID{Term: 1, NodeID: voters[0]}}, NewMembershipState(em), nil)
	e := NewEngine(config, state)
	e.BecomeLeader(state.Vote)
	e.DrainCommands() // discard the initial replication kick-off
	return e
}

func TestCommitRequiresCurrentLeaderTerm(t *testing.T) {
	e := newTestEngine(t, []NodeID{1, 2, 3})

	// A log id proposed by an earlier term, even if quorum-replicated,
	// must never become committed by this leader.
	staleID := logID(0, 5, 1) // term 0, some other leader
	h := e.handler()
	h.TryCommitQuorumAccepted(&staleID)

	require.Nil(t, e.state.Committed())
	require.Empty(t, e.DrainCommands())
}

func TestCommitAdvancesForCurrentLeaderTerm(t *testing.T) {
	e := newTestEngine(t, []NodeID{1, 2, 3})

	current := logID(1, 1, 5)
	h := e.handler()
	h.TryCommitQuorumAccepted(&current)

	require.Equal(t, &current, e.state.Committed())
	cmds := e.DrainCommands()
	require.Len(t, cmds, 2)
	require.Equal(t, CmdReplicateCommitted, cmds[0].Kind)
	require.Equal(t, CmdCommit, cmds[1].Kind)
}

func TestUpdateMatchingDrivesCommitOnQuorum(t *testing.T) {
	e := newTestEngine(t, []NodeID{1, 2, 3})
	h := e.handler()

	entry2, ok := e.leader.Progress.Get(2)
	require.True(t, ok)
	entry2.Inflight = LogsInflight(1, nil, nil)
	entry3, ok := e.leader.Progress.Get(3)
	require.True(t, ok)
	entry3.Inflight = LogsInflight(1, nil, nil)

	id := logID(1, 1, 4)
	h.UpdateMatching(2, 1, id)
	require.Nil(t, e.state.Committed(), "only one of three voters has acked")

	h.UpdateMatching(3, 1, id)
	require.Equal(t, &id, e.state.Committed(), "2 of 3 voters now agree, which is a majority")
}

func TestUpdateConflictingShrinksWithoutCommitting(t *testing.T) {
	e := newTestEngine(t, []NodeID{1, 2, 3})
	h := e.handler()

	entry, ok := e.leader.Progress.Get(2)
	require.True(t, ok)
	entry.End = 20
	entry.Inflight = LogsInflight(1, nil, nil)

	h.UpdateConflicting(2, 1, 3)
	require.Nil(t, e.state.Committed())
	require.Equal(t, uint64(3), entry.End)
}

func TestRebuildProgressesOnMembershipChange(t *testing.T) {
	e := newTestEngine(t, []NodeID{1, 2, 3})
	h := e.handler()

	id := logID(1, 1, 1)
	newMembership := Membership{Voters: []NodeID{1, 2, 4}}
	h.AppendMembership(id, newMembership)

	_, ok := e.leader.Progress.Get(3)
	require.False(t, ok, "voter removed by the reconfiguration is dropped")
	_, ok = e.leader.Progress.Get(4)
	require.True(t, ok, "voter added by the reconfiguration gets a fresh entry")
}

func TestPurgeBlockedByInflightLogsRange(t *testing.T) {
	e := newTestEngine(t, []NodeID{1, 2, 3})
	h := e.handler()

	snap := logID(1, 1, 50)
	e.state.SetSnapshot(SnapshotMeta{LastIncluded: &snap})
	e.config.MaxInSnapshotLogToKeep = 0
	committed := logID(1, 1, 60)
	e.state.UpdateCommitted(&committed)

	entry, ok := e.leader.Progress.Get(2)
	require.True(t, ok)
	prev := logID(1, 1, 10)
	entry.Inflight = LogsInflight(9, &prev, nil)

	h.TryPurgeLog()
	require.Nil(t, e.state.LastPurgedLogID(), "an overlapping in-flight logs range blocks the purge")
}

func TestPurgeProceedsWithNoInflightLogsRange(t *testing.T) {
	e := newTestEngine(t, []NodeID{1, 2, 3})
	h := e.handler()

	snap := logID(1, 1, 50)
	e.state.SetSnapshot(SnapshotMeta{LastIncluded: &snap})
	e.config.MaxInSnapshotLogToKeep = 0
	committed := logID(1, 1, 60)
	e.state.UpdateCommitted(&committed)

	h.TryPurgeLog()
	require.Equal(t, &snap, e.state.LastPurgedLogID())
}

func TestUpdateLeaderClockAdvancesOnAnyResponse(t *testing.T) {
	e := newTestEngine(t, []NodeID{1, 2, 3})
	h := e.handler()

	now := time.Unix(1000, 0)
	h.UpdateLeaderClock(2, now)

	_, ok := e.leader.ClockProgress.entries[2]
	require.True(t, ok)
	require.True(t, e.leader.ClockProgress.entries[2].Equal(now))
}

func TestStaleFailureResponseDoesNotClearNewerInflight(t *testing.T) {
	e := newTestEngine(t, []NodeID{1, 2, 3})

	entry, ok := e.leader.Progress.Get(2)
	require.True(t, ok)
	entry.Inflight = LogsInflight(6, nil, nil) // request #6 is the current outstanding request

	e.HandleReplicationResponse(ReplicationResponse{
		Target:    2,
		RequestID: DataRequestID(5), // a late failure for a superseded request #5
		Err:       errExampleTransport,
	})

	require.False(t, entry.Inflight.IsNone(), "a failure for a stale request id must not clear the current inflight")
	id, ok := entry.Inflight.GetID()
	require.True(t, ok)
	require.Equal(t, uint64(6), id)
}

func TestFailureResponseClearsMatchingInflight(t *testing.T) {
	e := newTestEngine(t, []NodeID{1, 2, 3})

	entry, ok := e.leader.Progress.Get(2)
	require.True(t, ok)
	entry.Inflight = LogsInflight(6, nil, nil)

	e.HandleReplicationResponse(ReplicationResponse{
		Target:    2,
		RequestID: DataRequestID(6),
		Err:       errExampleTransport,
	})

	require.True(t, entry.Inflight.IsNone(), "a failure for the current inflight's request id clears it")
}

func TestHeartbeatResponseDoesNotTouchInflight(t *testing.T) {
	e := newTestEngine(t, []NodeID{1, 2, 3})

	entry, ok := e.leader.Progress.Get(2)
	require.True(t, ok)
	entry.Inflight = LogsInflight(1, nil, nil)

	e.HandleReplicationResponse(ReplicationResponse{
		Target:    2,
		RequestID: HeartBeatRequestID,
		Result:    &ReplicationResult{SendingTime: time.Unix(1000, 0)},
	})

	require.False(t, entry.Inflight.IsNone(), "a heartbeat response carries no data id and must not clear a live data inflight")
}
