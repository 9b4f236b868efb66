package raft

import "sort"

// QuorumSet is the sole polymorphism point the engine requires of a
// membership configuration: it decides whether a set of targets forms a
// quorum. A uniform config is a simple majority set; a joint config
// requires a majority in both halves of a reconfiguration.
type QuorumSet interface {
	// IsQuorum reports whether granted, interpreted as the set of voter
	// ids present (and true) in the map, forms a quorum.
	IsQuorum(granted map[NodeID]bool) bool

	// Ids returns every voter id this quorum set cares about, in no
	// particular order. Used to seed default progress entries.
	Ids() []NodeID
}

// UniformQuorumSet is a plain majority of a single voter set.
type UniformQuorumSet struct {
	voters map[NodeID]struct{}
}

// NewUniformQuorumSet builds a UniformQuorumSet from a voter id list.
func NewUniformQuorumSet(voters []NodeID) UniformQuorumSet {
	m := make(map[NodeID]struct{}, len(voters))
	for _, v := range voters {
		m[v] = struct{}{}
	}
	return UniformQuorumSet{voters: m}
}

// IsQuorum implements QuorumSet.
func (u UniformQuorumSet) IsQuorum(granted map[NodeID]bool) bool {
	if len(u.voters) == 0 {
		return false
	}
	count := 0
	for id := range u.voters {
		if granted[id] {
			count++
		}
	}
	return count*2 > len(u.voters)
}

// Ids implements QuorumSet.
func (u UniformQuorumSet) Ids() []NodeID {
	ids := make([]NodeID, 0, len(u.voters))
	for id := range u.voters {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// JointQuorumSet requires a majority in both halves of a two-set
// reconfiguration, as used during Raft joint consensus. The two halves
// may overlap.
type JointQuorumSet struct {
	First, Second UniformQuorumSet
}

// NewJointQuorumSet builds a JointQuorumSet from two voter id lists.
func NewJointQuorumSet(first, second []NodeID) JointQuorumSet {
	return JointQuorumSet{First: NewUniformQuorumSet(first), Second: NewUniformQuorumSet(second)}
}

// IsQuorum implements QuorumSet: quorum in both configs is required.
func (j JointQuorumSet) IsQuorum(granted map[NodeID]bool) bool {
	return j.First.IsQuorum(granted) && j.Second.IsQuorum(granted)
}

// Ids implements QuorumSet: the union of both halves.
func (j JointQuorumSet) Ids() []NodeID {
	seen := make(map[NodeID]struct{})
	for _, id := range j.First.Ids() {
		seen[id] = struct{}{}
	}
	for _, id := range j.Second.Ids() {
		seen[id] = struct{}{}
	}
	ids := make([]NodeID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
