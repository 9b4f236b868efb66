package raft

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogIdCompare(t *testing.T) {
	a := LogId{LeaderID: LeaderID{Term: 1, NodeID: 1}, Index: 5}
	b := LogId{LeaderID: LeaderID{Term: 1, NodeID: 1}, Index: 6}
	c := LogId{LeaderID: LeaderID{Term: 2, NodeID: 1}, Index: 1}

	require.Equal(t, -1, a.Compare(b))
	require.Equal(t, 1, b.Compare(a))
	require.Equal(t, 0, a.Compare(a))
	require.Equal(t, -1, b.Compare(c), "higher term outranks higher index in a lower term")
}

func TestCompareLogIDWithNil(t *testing.T) {
	a := LogId{LeaderID: LeaderID{Term: 1, NodeID: 1}, Index: 1}

	require.Equal(t, 0, CompareLogID(nil, nil))
	require.Equal(t, -1, CompareLogID(nil, &a))
	require.Equal(t, 1, CompareLogID(&a, nil))
}

func TestNextIndexOf(t *testing.T) {
	require.Equal(t, uint64(1), NextIndexOf(nil))

	a := LogId{LeaderID: LeaderID{Term: 1, NodeID: 1}, Index: 9}
	require.Equal(t, uint64(10), NextIndexOf(&a))
}

func TestMaxLogID(t *testing.T) {
	a := LogId{LeaderID: LeaderID{Term: 1, NodeID: 1}, Index: 5}
	b := LogId{LeaderID: LeaderID{Term: 1, NodeID: 1}, Index: 7}

	require.Equal(t, &b, MaxLogID(&a, &b))
	require.Equal(t, &a, MaxLogID(nil, &a))
	require.Nil(t, MaxLogID(nil, nil))
}
