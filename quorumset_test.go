package raft

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUniformQuorumSetIsQuorum(t *testing.T) {
	qs := NewUniformQuorumSet([]NodeID{1, 2, 3})

	require.False(t, qs.IsQuorum(map[NodeID]bool{1: true}))
	require.True(t, qs.IsQuorum(map[NodeID]bool{1: true, 2: true}))
	require.True(t, qs.IsQuorum(map[NodeID]bool{1: true, 2: true, 3: true}))
}

func TestUniformQuorumSetEmpty(t *testing.T) {
	qs := NewUniformQuorumSet(nil)
	require.False(t, qs.IsQuorum(map[NodeID]bool{1: true}))
}

func TestJointQuorumSetRequiresBothHalves(t *testing.T) {
	qs := NewJointQuorumSet([]NodeID{1, 2, 3}, []NodeID{3, 4, 5})

	require.False(t, qs.IsQuorum(map[NodeID]bool{1: true, 2: true}))
	require.False(t, qs.IsQuorum(map[NodeID]bool{3: true, 4: true}))
	require.True(t, qs.IsQuorum(map[NodeID]bool{1: true, 2: true, 3: true, 4: true}))
}

func TestJointQuorumSetIds(t *testing.T) {
	qs := NewJointQuorumSet([]NodeID{1, 2}, []NodeID{2, 3})
	require.ElementsMatch(t, []NodeID{1, 2, 3}, qs.Ids())
}
