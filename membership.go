package raft

// Membership describes the voter configuration in effect at some point in
// the log. A non-empty JointVoters marks a joint-consensus configuration:
// quorum requires a majority in both Voters and JointVoters. Learners
// receive log replication but never count toward quorum.
type Membership struct {
	Voters      []NodeID
	JointVoters []NodeID // nil/empty outside of a joint reconfiguration
	Learners    []NodeID
}

// IsJoint reports whether this membership is a two-set reconfiguration.
func (m Membership) IsJoint() bool { return len(m.JointVoters) > 0 }

// ToQuorumSet builds the QuorumSet this membership implies.
func (m Membership) ToQuorumSet() QuorumSet {
	if m.IsJoint() {
		return NewJointQuorumSet(m.Voters, m.JointVoters)
	}
	return NewUniformQuorumSet(m.Voters)
}

// LearnerIds returns the learner ids of this membership.
func (m Membership) LearnerIds() []NodeID {
	out := make([]NodeID, len(m.Learners))
	copy(out, m.Learners)
	return out
}

// EffectiveMembership pairs a membership with the log id of the entry that
// introduced it -- "effective" the instant it is appended, independent of
// whether it has committed yet.
type EffectiveMembership struct {
	LogID      *LogId
	Membership Membership
}

// NewEffectiveMembership constructs an EffectiveMembership.
func NewEffectiveMembership(logID *LogId, m Membership) *EffectiveMembership {
	return &EffectiveMembership{LogID: logID, Membership: m}
}

// MembershipState tracks the effective (immediately governing) and
// committed (safe to fall back to) membership entries.
type MembershipState struct {
	effective *EffectiveMembership
	committed *EffectiveMembership
}

// NewMembershipState builds a MembershipState with both effective and
// committed set to the same starting membership (typically used at
// cluster bootstrap).
func NewMembershipState(initial *EffectiveMembership) MembershipState {
	return MembershipState{effective: initial, committed: initial}
}

// Effective returns the currently governing membership.
func (s MembershipState) Effective() *EffectiveMembership { return s.effective }

// Committed returns the last committed membership.
func (s MembershipState) Committed() *EffectiveMembership { return s.committed }

// Append makes m the new effective membership. It is called the moment a
// membership log entry is appended, before it commits.
func (s *MembershipState) Append(m *EffectiveMembership) {
	s.effective = m
}

// CommitTo advances the committed membership to m once its log id has been
// committed by the replication handler.
func (s *MembershipState) CommitTo(m *EffectiveMembership) {
	s.committed = m
}
