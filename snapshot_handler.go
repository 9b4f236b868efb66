package raft

// SnapshotHandler triggers snapshot construction once
// ReplicationHandler.TryCommitQuorumAccepted decides the configured
// SnapshotPolicy is satisfied.
type SnapshotHandler struct {
	state  *RaftState
	output *commandOutput
}

// TriggerSnapshot emits a TriggerSnapshot command.
func (h *SnapshotHandler) TriggerSnapshot() {
	h.output.push(Command{Kind: CmdTriggerSnapshot})
}
