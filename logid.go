package raft

import "fmt"

// NodeID identifies a member of the cluster. It is opaque to the engine
// beyond being totally ordered and comparable.
type NodeID uint64

// LeaderID totally orders leader terms. Two entries proposed by the same
// leader term compare by Index alone; across terms, Term is the primary
// key.
type LeaderID struct {
	Term   uint64
	NodeID NodeID
}

// Compare returns -1, 0 or 1 comparing a to b lexicographically on
// (Term, NodeID).
func (a LeaderID) Compare(b LeaderID) int {
	if a.Term != b.Term {
		if a.Term < b.Term {
			return -1
		}
		return 1
	}
	if a.NodeID != b.NodeID {
		if a.NodeID < b.NodeID {
			return -1
		}
		return 1
	}
	return 0
}

func (a LeaderID) String() string {
	return fmt.Sprintf("T%d-N%d", a.Term, a.NodeID)
}

// LogId identifies a single log entry: which leader term proposed it, and
// at what index. LogIds are compared lexicographically on (leader_id,
// index).
type LogId struct {
	LeaderID LeaderID
	Index    uint64
}

// Compare returns -1, 0 or 1 comparing a to b lexicographically.
func (a LogId) Compare(b LogId) int {
	if c := a.LeaderID.Compare(b.LeaderID); c != 0 {
		return c
	}
	if a.Index != b.Index {
		if a.Index < b.Index {
			return -1
		}
		return 1
	}
	return 0
}

// NextIndex returns the index immediately following this log id.
func (a LogId) NextIndex() uint64 { return a.Index + 1 }

func (a LogId) String() string {
	return fmt.Sprintf("%s-%d", a.LeaderID, a.Index)
}

// CompareLogID compares two optional log ids (nil meaning "no entry / log
// index 0"), matching the Option<LogId> semantics used pervasively by the
// original engine. nil is less than any concrete LogId.
func CompareLogID(a, b *LogId) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return a.Compare(*b)
	}
}

// MaxLogID returns the greater of two optional log ids.
func MaxLogID(a, b *LogId) *LogId {
	if CompareLogID(a, b) >= 0 {
		return a
	}
	return b
}

// NextIndexOf returns the next usable log index following an optional log
// id: 1 if the log is empty (a is nil), else a.NextIndex().
func NextIndexOf(a *LogId) uint64 {
	if a == nil {
		return 1
	}
	return a.NextIndex()
}

// LogIDEqual reports whether two optional log ids denote the same entry.
func LogIDEqual(a, b *LogId) bool { return CompareLogID(a, b) == 0 }

func displayLogID(a *LogId) string {
	if a == nil {
		return "None"
	}
	return a.String()
}
