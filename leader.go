package raft

// Leader holds the replication-tracking state that exists exactly while a
// node is in ServerStateLeader: the per-target progress trackers and the
// monotonic counter that allocates every outstanding request's id. A
// Leader is discarded the instant the node stops being leader; it owns
// Progress and ClockProgress outright.
type Leader struct {
	Progress      *Progress
	ClockProgress *ClockProgress

	nextRequestID uint64
}

// NewLeader builds the initial progress trackers for a freshly elected
// leader: every voter/learner starts with Matching = None and End =
// lastLogID.next_index().
func NewLeader(em *EffectiveMembership, lastLogID *LogId) *Leader {
	end := NextIndexOf(lastLogID)
	qs := em.Membership.ToQuorumSet()
	learners := em.Membership.LearnerIds()

	return &Leader{
		Progress:      NewProgress(qs, learners, func() ProgressEntry { return Empty(end) }),
		ClockProgress: NewClockProgress(qs, learners),
		nextRequestID: 1,
	}
}

// AllocateRequestID returns the next request id in this leader term's
// monotonic sequence: request ids are unique and strictly increasing for
// the lifetime of one Leader.
func (l *Leader) AllocateRequestID() uint64 {
	id := l.nextRequestID
	l.nextRequestID++
	return id
}
