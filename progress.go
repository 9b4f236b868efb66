package raft

import "github.com/google/btree"

// logIdRankItem orders (target, matching) pairs for the quorum-accepted
// search in Progress. Ties on value are broken by target id so every
// target with a non-nil Matching occupies a distinct slot in the tree.
type logIdRankItem struct {
	target NodeID
	value  LogId
}

func (a logIdRankItem) Less(than btree.Item) bool {
	b := than.(logIdRankItem)
	if c := a.value.Compare(b.value); c != 0 {
		return c < 0
	}
	return a.target < b.target
}

// Progress maps each replication target to its ProgressEntry and computes
// the quorum-accepted LogId under the current QuorumSet. The accepted
// value is recomputed from a btree.BTree keyed on (Matching, target)
// rather than a freshly sorted slice on every update, which keeps a
// single update's cost at O(log n) to reseat the tree, though the
// accepted-value walk itself remains O(n).
type Progress struct {
	quorumSet QuorumSet
	learners  map[NodeID]struct{}
	entries   map[NodeID]*ProgressEntry
	tree      *btree.BTree
}

// NewProgress builds a Progress for the given quorum set and learner ids,
// seeding every voter and learner with defaultEntry().
func NewProgress(qs QuorumSet, learners []NodeID, defaultEntry func() ProgressEntry) *Progress {
	p := &Progress{
		quorumSet: qs,
		learners:  make(map[NodeID]struct{}, len(learners)),
		entries:   make(map[NodeID]*ProgressEntry),
		tree:      btree.New(16),
	}
	for _, id := range learners {
		p.learners[id] = struct{}{}
	}
	for _, id := range qs.Ids() {
		e := defaultEntry()
		p.entries[id] = &e
		p.reindex(id, nil, e.Matching)
	}
	for _, id := range learners {
		if _, ok := p.entries[id]; ok {
			continue
		}
		e := defaultEntry()
		p.entries[id] = &e
		p.reindex(id, nil, e.Matching)
	}
	return p
}

func (p *Progress) reindex(target NodeID, oldValue, newValue *LogId) {
	if LogIDEqual(oldValue, newValue) {
		return
	}
	if oldValue != nil {
		p.tree.Delete(logIdRankItem{target: target, value: *oldValue})
	}
	if newValue != nil {
		p.tree.ReplaceOrInsert(logIdRankItem{target: target, value: *newValue})
	}
}

// Get returns the ProgressEntry for target, if tracked.
func (p *Progress) Get(target NodeID) (*ProgressEntry, bool) {
	e, ok := p.entries[target]
	return e, ok
}

// UpdateWith applies fn to target's ProgressEntry and returns the
// recomputed quorum-accepted LogId. fn may freely mutate End and Inflight;
// any change to Matching is reindexed automatically.
func (p *Progress) UpdateWith(target NodeID, fn func(*ProgressEntry)) (*LogId, error) {
	e, ok := p.entries[target]
	if !ok {
		return nil, ErrUnknownTarget
	}
	old := e.Matching
	fn(e)
	p.reindex(target, old, e.Matching)
	return p.QuorumAccepted(), nil
}

// QuorumAccepted returns the greatest LogId v such that the set of
// targets with Matching >= v forms a quorum under the current QuorumSet.
// Returns nil if no quorum is reachable, including when the quorum set is
// empty.
func (p *Progress) QuorumAccepted() *LogId {
	items := make([]logIdRankItem, 0, p.tree.Len())
	p.tree.Descend(func(i btree.Item) bool {
		items = append(items, i.(logIdRankItem))
		return true
	})

	granted := make(map[NodeID]bool, len(items))
	for i := 0; i < len(items); {
		v := items[i].value
		j := i
		for j < len(items) && LogIDEqual(&items[j].value, &v) {
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

// Iter calls fn for every tracked target, in unspecified order.
func (p *Progress) Iter(fn func(target NodeID, entry *ProgressEntry)) {
	for id, e := range p.entries {
		fn(id, e)
	}
}

// IsLearner reports whether target is tracked as a learner (never counted
// toward quorum).
func (p *Progress) IsLearner(target NodeID) bool {
	_, ok := p.learners[target]
	return ok
}

// UpgradeQuorumSet rebuilds a Progress for a new membership: targets
// present before keep their exact ProgressEntry; new targets get
// defaultEntry(); removed targets are dropped. The resulting
// quorum-accepted value may be lower than before -- expected when
// membership shrinks the set required for quorum.
func (p *Progress) UpgradeQuorumSet(newQS QuorumSet, newLearners []NodeID, defaultEntry func() ProgressEntry) *Progress {
	next := &Progress{
		quorumSet: newQS,
		learners:  make(map[NodeID]struct{}, len(newLearners)),
		entries:   make(map[NodeID]*ProgressEntry),
		tree:      btree.New(16),
	}
	for _, id := range newLearners {
		next.learners[id] = struct{}{}
	}

	wanted := make(map[NodeID]struct{})
	for _, id := range newQS.Ids() {
		wanted[id] = struct{}{}
	}
	for _, id := range newLearners {
		wanted[id] = struct{}{}
	}

	for id := range wanted {
		var e ProgressEntry
		if old, ok := p.entries[id]; ok {
			e = *old
		} else {
			e = defaultEntry()
		}
		entryCopy := e
		next.entries[id] = &entryCopy
		next.reindex(id, nil, entryCopy.Matching)
	}

	return next
}
