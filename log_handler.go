package raft

// LogHandler performs the purge command under the precondition enforced
// by ReplicationHandler.TryPurgeLog: it never decides on its own whether
// purging is safe.
type LogHandler struct {
	config *EngineConfig
	state  *RaftState
	output *commandOutput
}

// PurgeLog emits a PurgeLog command for the current purge boundary.
// Callers must have already verified no in-flight replication overlaps
// it.
func (h *LogHandler) PurgeLog() {
	upto := h.state.PurgeUpto()
	h.output.push(Command{Kind: CmdPurgeLog, Upto: upto})
}
