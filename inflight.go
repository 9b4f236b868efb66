package raft

import "strconv"

// RequestID identifies one outstanding replication request. It is either a
// distinguished HeartBeat sentinel, which never occupies a ProgressEntry's
// inflight slot and is excluded from inflight bookkeeping entirely, or a
// per-leader monotonically increasing data id.
type RequestID struct {
	heartbeat bool
	id        uint64
}

// HeartBeatRequestID is the sentinel used for heartbeat (no-payload)
// replication requests.
var HeartBeatRequestID = RequestID{heartbeat: true}

// DataRequestID wraps a data-bearing request id.
func DataRequestID(id uint64) RequestID { return RequestID{id: id} }

// IsHeartBeat reports whether this is the heartbeat sentinel.
func (r RequestID) IsHeartBeat() bool { return r.heartbeat }

// DataID returns the numeric id and true, or (0, false) for the heartbeat
// sentinel.
func (r RequestID) DataID() (uint64, bool) {
	if r.heartbeat {
		return 0, false
	}
	return r.id, true
}

func (r RequestID) String() string {
	if r.heartbeat {
		return "HeartBeat"
	}
	return "#" + strconv.FormatUint(r.id, 10)
}

// InflightKind enumerates the shapes an outstanding replication request
// can take.
type InflightKind int

const (
	// InflightNone means there is no outstanding request to this target.
	InflightNone InflightKind = iota
	// InflightLogs means a contiguous log range is outstanding.
	InflightLogs
	// InflightSnapshot means a snapshot transfer is outstanding.
	InflightSnapshot
)

func (k InflightKind) String() string {
	switch k {
	case InflightLogs:
		return "Logs"
	case InflightSnapshot:
		return "Snapshot"
	default:
		return "None"
	}
}

// Inflight is a tagged, immutable-once-constructed description of one
// outstanding replication request to a single target. The RequestID
// field is only meaningful when Kind is not
// InflightNone, with one exception: a heartbeat "send" built by
// InitiateReplication carries Kind == InflightNone together with the
// HeartBeat sentinel purely so the driver can tag the outbound RPC; it is
// never stored back into a ProgressEntry.
type Inflight struct {
	Kind InflightKind
	ID   RequestID

	// Logs range, valid when Kind == InflightLogs.
	Prev *LogId
	Last *LogId

	// Snapshot descriptor, valid when Kind == InflightSnapshot.
	LastIncluded *LogId
}

// NoneInflight is the idle state: no outstanding request.
func NoneInflight() Inflight { return Inflight{Kind: InflightNone} }

// LogsInflight builds an outstanding logs-range request.
func LogsInflight(id uint64, prev, last *LogId) Inflight {
	return Inflight{Kind: InflightLogs, ID: DataRequestID(id), Prev: prev, Last: last}
}

// SnapshotInflight builds an outstanding snapshot-transfer request.
func SnapshotInflight(id uint64, lastIncluded *LogId) Inflight {
	return Inflight{Kind: InflightSnapshot, ID: DataRequestID(id), LastIncluded: lastIncluded}
}

// WithID returns a copy of this inflight tagged with the given data
// request id. It is a no-op for the idle (None) state.
func (i Inflight) WithID(id uint64) Inflight {
	if i.Kind == InflightNone {
		return i
	}
	i.ID = DataRequestID(id)
	return i
}

// IsNone reports whether there is no outstanding request.
func (i Inflight) IsNone() bool { return i.Kind == InflightNone }

// GetID returns the data request id backing this inflight, or false if
// idle.
func (i Inflight) GetID() (uint64, bool) {
	if i.Kind == InflightNone {
		return 0, false
	}
	return i.ID.DataID()
}

func (i Inflight) String() string {
	switch i.Kind {
	case InflightLogs:
		return "Logs{" + i.ID.String() + ", prev=" + displayLogID(i.Prev) + ", last=" + displayLogID(i.Last) + "}"
	case InflightSnapshot:
		return "Snapshot{" + i.ID.String() + ", last_included=" + displayLogID(i.LastIncluded) + "}"
	default:
		return "None"
	}
}
