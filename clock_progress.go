package raft

import (
	"time"

	"github.com/google/btree"
)

// instantRankItem orders (target, instant) pairs analogously to
// logIdRankItem, for ClockProgress's quorum-accepted search.
type instantRankItem struct {
	target NodeID
	value  time.Time
}

func (a instantRankItem) Less(than btree.Item) bool {
	b := than.(instantRankItem)
	if !a.value.Equal(b.value) {
		return a.value.Before(b.value)
	}
	return a.target < b.target
}

// ClockProgress has the same shape as Progress but tracks the last ack
// instant per target instead of a LogId. Its quorum-accepted value is the
// most recent instant acknowledged by a quorum -- usable as a lower bound
// on how recently the leader was still legitimate (the "leader lease").
type ClockProgress struct {
	quorumSet QuorumSet
	learners  map[NodeID]struct{}
	entries   map[NodeID]*time.Time
	tree      *btree.BTree
}

// NewClockProgress builds a ClockProgress for the given quorum set and
// learner ids, all starting with no acknowledged instant.
func NewClockProgress(qs QuorumSet, learners []NodeID) *ClockProgress {
	p := &ClockProgress{
		quorumSet: qs,
		learners:  make(map[NodeID]struct{}, len(learners)),
		entries:   make(map[NodeID]*time.Time),
		tree:      btree.New(16),
	}
	for _, id := range learners {
		p.learners[id] = struct{}{}
	}
	for _, id := range qs.Ids() {
		p.entries[id] = nil
	}
	for _, id := range learners {
		if _, ok := p.entries[id]; !ok {
			p.entries[id] = nil
		}
	}
	return p
}

func (p *ClockProgress) reindex(target NodeID, old, updated *time.Time) {
	if instantEqual(old, updated) {
		return
	}
	if old != nil {
		p.tree.Delete(instantRankItem{target: target, value: *old})
	}
	if updated != nil {
		p.tree.ReplaceOrInsert(instantRankItem{target: target, value: *updated})
	}
}

func instantEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// IncreaseTo monotonically advances target's acknowledged instant to t if
// t is later than what is currently recorded, then returns the recomputed
// quorum-accepted instant. Fails with ErrUnknownTarget if target is not
// tracked (e.g. removed by a membership change).
func (p *ClockProgress) IncreaseTo(target NodeID, t time.Time) (*time.Time, error) {
	old, ok := p.entries[target]
	if !ok {
		return nil, ErrUnknownTarget
	}
	if old == nil || t.After(*old) {
		tt := t
		p.entries[target] = &tt
		p.reindex(target, old, &tt)
	}
	return p.QuorumAccepted(), nil
}

// QuorumAccepted returns the greatest instant v such that the set of
// targets acknowledged at or after v forms a quorum.
func (p *ClockProgress) QuorumAccepted() *time.Time {
	items := make([]instantRankItem, 0, p.tree.Len())
	p.tree.Descend(func(i btree.Item) bool {
		items = append(items, i.(instantRankItem))
		return true
	})

	granted := make(map[NodeID]bool, len(items))
	for i := 0; i < len(items); {
		v := items[i].value
		j := i
		for j < len(items) && items[j].value.Equal(v) {
			granted[items[j].target] = true
			j++
		}
		if p.quorumSet.IsQuorum(granted) {
			return &v
		}
		i = j
	}
	return nil
}

// UpgradeQuorumSet rebuilds a ClockProgress for a new membership, exactly
// as Progress.UpgradeQuorumSet does, carrying forward surviving targets'
// acknowledged instants.
func (p *ClockProgress) UpgradeQuorumSet(newQS QuorumSet, newLearners []NodeID) *ClockProgress {
	next := NewClockProgress(newQS, newLearners)
	for id := range next.entries {
		if old, ok := p.entries[id]; ok && old != nil {
			t := *old
			next.entries[id] = &t
			next.reindex(id, nil, &t)
		}
	}
	return next
}
