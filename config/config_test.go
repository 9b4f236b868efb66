package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetDefaultsLeavesExplicitValues(t *testing.T) {
	f := File{MaxPayloadEntries: 7}
	f.setDefaults()

	require.Equal(t, uint64(7), f.MaxPayloadEntries)
	require.Equal(t, uint64(1000), f.MaxInSnapshotLogToKeep)
	require.Equal(t, uint64(10000), f.SnapshotLogsThreshold)
}
