package raft

// ReplicationStateReader is the narrow slice of RaftState a ProgressEntry
// needs to decide what to send next: the tail of the log, the purge
// boundary, and the most recent snapshot. It lets NextSend stay
// independent of the rest of RaftState.
type ReplicationStateReader interface {
	LastLogID() *LogId
	LastPurgedLogID() *LogId
	CurrentSnapshotLogID() *LogId
}

// ProgressEntry tracks one target's replication progress: the log entry
// it is known to have durably accepted (Matching), the exclusive upper
// bound of what the leader currently believes it could accept (End), and
// any outstanding request (Inflight).
//
// Invariants: Matching.Index < End; an inflight Logs range satisfies
// Prev == Matching; Matching never regresses.
type ProgressEntry struct {
	Matching *LogId
	End      uint64
	Inflight Inflight
}

// Empty builds the default ProgressEntry for a target with no known
// matching log, bounded above by end (normally last_log_id.next_index()
// at the moment the leader took over, or the moment the target was added
// to membership).
func Empty(end uint64) ProgressEntry {
	return ProgressEntry{Matching: nil, End: end, Inflight: NoneInflight()}
}

// IsLogRangeInflight reports whether this entry has an outstanding Logs
// request that overlaps [.., upto]: i.e. the request was sent starting
// from an index at or before upto. Used by the purge interlock to decide
// whether purging up to upto would race an in-flight read of the log
// store.
func (e ProgressEntry) IsLogRangeInflight(upto LogId) bool {
	if e.Inflight.Kind != InflightLogs {
		return false
	}
	prevIndex := uint64(0)
	if e.Inflight.Prev != nil {
		prevIndex = e.Inflight.Prev.Index
	}
	return prevIndex < upto.Index
}

// NextSend decides what to replicate to this target next. If a request
// is already outstanding it fails with ErrInflightBusy and
// returns the existing inflight alongside it, so the caller may choose to
// send a heartbeat instead. Otherwise it returns a Logs request when the target's
// next index is still present in the log store, or a Snapshot request
// when the target has fallen behind the purge boundary.
func (e *ProgressEntry) NextSend(state ReplicationStateReader, maxPayloadEntries uint64) (Inflight, error) {
	if !e.Inflight.IsNone() {
		return e.Inflight, ErrInflightBusy
	}

	if maxPayloadEntries == 0 {
		maxPayloadEntries = 1
	}

	nextIndex := NextIndexOf(e.Matching)
	lastPurged := state.LastPurgedLogID()
	lastPurgedIndex := uint64(0)
	if lastPurged != nil {
		lastPurgedIndex = lastPurged.Index
	}

	if nextIndex <= lastPurgedIndex {
		// The target's next entry has already been purged; it must
		// catch up via snapshot instead of logs.
		return SnapshotInflight(0, state.CurrentSnapshotLogID()), nil
	}

	lastLogID := state.LastLogID()
	if lastLogID == nil || lastLogID.Index < nextIndex {
		// Nothing new to send; caller decides whether to heartbeat.
		return NoneInflight(), ErrNothingToSend
	}

	last := *lastLogID
	if capIndex := nextIndex + maxPayloadEntries - 1; capIndex < last.Index {
		last.Index = capIndex
		last.LeaderID = lastLogID.LeaderID
	}

	return LogsInflight(0, e.Matching, &last), nil
}

// UpdateMatching applies a successful replication response: the target
// has durably accepted up to and including newMatching. Matching is
// typed as a concrete LogId (never optional) so that, by construction, a
// matching update can never erase Matching back to None: a response
// reporting no matching entry at all is simply not representable as a
// call to this method.
//
// Fails with ErrStaleRequestID if reqID does not match the outstanding
// inflight, which is the expected shape of a late or duplicate response:
// callers should drop the error, not propagate it as fatal.
func (e *ProgressEntry) UpdateMatching(reqID uint64, newMatching LogId) error {
	if e.Inflight.Kind != InflightLogs && e.Inflight.Kind != InflightSnapshot {
		return ErrStaleRequestID
	}
	if id, ok := e.Inflight.GetID(); !ok || id != reqID {
		return ErrStaleRequestID
	}

	e.Matching = MaxLogID(e.Matching, &newMatching)
	if next := NextIndexOf(e.Matching); next > e.End {
		e.End = next
	}
	e.Inflight = NoneInflight()
	return nil
}

// UpdateConflicting applies a rejection: the target reports the first
// conflicting index, and End is lowered to it if it is below the current
// End. NextSend does not read End, so the next send still starts right
// after Matching and is bounded only by maxPayloadEntries and the log
// tail; no bisection toward the conflict index takes place.
func (e *ProgressEntry) UpdateConflicting(reqID uint64, conflictIndex uint64) error {
	if e.Inflight.Kind != InflightLogs && e.Inflight.Kind != InflightSnapshot {
		return ErrStaleRequestID
	}
	if id, ok := e.Inflight.GetID(); !ok || id != reqID {
		return ErrStaleRequestID
	}

	if conflictIndex < e.End {
		e.End = conflictIndex
	}
	e.Inflight = NoneInflight()
	return nil
}

// ResetInflight clears any outstanding request, e.g. on transport error
// for a data request, or when a replication-stream rebuild invalidates
// everything in flight.
func (e *ProgressEntry) ResetInflight() { e.Inflight = NoneInflight() }
