package raft

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeStateReader struct {
	lastLogID       *LogId
	lastPurgedLogID *LogId
	snapshotLogID   *LogId
}

func (f fakeStateReader) LastLogID() *LogId           { return f.lastLogID }
func (f fakeStateReader) LastPurgedLogID() *LogId     { return f.lastPurgedLogID }
func (f fakeStateReader) CurrentSnapshotLogID() *LogId { return f.snapshotLogID }

func logID(term, node NodeID, index uint64) LogId {
	return LogId{LeaderID: LeaderID{Term: uint64(term), NodeID: node}, Index: index}
}

func TestNextSendBuildsLogsRequest(t *testing.T) {
	e := Empty(11)
	last := logID(1, 1, 10)
	state := fakeStateReader{lastLogID: &last}

	inflight, err := e.NextSend(state, 5)
	require.NoError(t, err)
	require.Equal(t, InflightLogs, inflight.Kind)
	require.Nil(t, inflight.Prev)
	require.Equal(t, uint64(5), inflight.Last.Index, "bounded by maxPayloadEntries")
}

func TestNextSendIsNotBoundedByEnd(t *testing.T) {
	// End only bounds how far a probe has shrunk after a conflict; it is
	// not itself a ceiling on what NextSend may offer. End is seeded from
	// the log tail when the leader takes over (or the target joins) and
	// only moves on a replication response, so it can lag behind the real
	// log tail, and a send must still be able to reach that tail.
	e := Empty(3)
	last := logID(1, 1, 10)
	state := fakeStateReader{lastLogID: &last}

	inflight, err := e.NextSend(state, 5)
	require.NoError(t, err)
	require.Equal(t, uint64(5), inflight.Last.Index, "bounded by maxPayloadEntries, not End")
}

func TestNextSendNothingNew(t *testing.T) {
	last := logID(1, 1, 5)
	e := Empty(6)
	e.Matching = &last
	state := fakeStateReader{lastLogID: &last}

	_, err := e.NextSend(state, 5)
	require.ErrorIs(t, err, ErrNothingToSend)
}

func TestNextSendPastPurgeBoundarySendsSnapshot(t *testing.T) {
	purged := logID(1, 1, 20)
	snap := logID(1, 1, 20)
	last := logID(1, 1, 30)
	e := Empty(31)
	state := fakeStateReader{lastLogID: &last, lastPurgedLogID: &purged, snapshotLogID: &snap}

	inflight, err := e.NextSend(state, 5)
	require.NoError(t, err)
	require.Equal(t, InflightSnapshot, inflight.Kind)
	require.Equal(t, &snap, inflight.LastIncluded)
}

func TestNextSendBusyReturnsExistingInflight(t *testing.T) {
	e := Empty(10)
	e.Inflight = LogsInflight(3, nil, nil)
	state := fakeStateReader{}

	inflight, err := e.NextSend(state, 5)
	require.ErrorIs(t, err, ErrInflightBusy)
	require.Equal(t, uint64(3), inflight.ID.id)
}

func TestUpdateMatchingAdvancesAndClearsInflight(t *testing.T) {
	e := Empty(3)
	e.Inflight = LogsInflight(7, nil, nil)

	newMatching := logID(1, 1, 5)
	require.NoError(t, e.UpdateMatching(7, newMatching))
	require.Equal(t, &newMatching, e.Matching)
	require.True(t, e.Inflight.IsNone())
	require.Equal(t, uint64(6), e.End)
}

func TestUpdateMatchingStaleRequestID(t *testing.T) {
	e := Empty(10)
	e.Inflight = LogsInflight(7, nil, nil)

	err := e.UpdateMatching(8, logID(1, 1, 5))
	require.ErrorIs(t, err, ErrStaleRequestID)
}

func TestUpdateConflictingShrinksEnd(t *testing.T) {
	e := Empty(20)
	e.Inflight = LogsInflight(1, nil, nil)

	require.NoError(t, e.UpdateConflicting(1, 8))
	require.Equal(t, uint64(8), e.End)
	require.True(t, e.Inflight.IsNone())
}

func TestIsLogRangeInflight(t *testing.T) {
	e := Empty(20)
	prev := logID(1, 1, 4)
	e.Inflight = LogsInflight(1, &prev, nil)

	require.True(t, e.IsLogRangeInflight(logID(1, 1, 10)))
	require.False(t, e.IsLogRangeInflight(logID(1, 1, 2)))
}
