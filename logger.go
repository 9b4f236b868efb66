package raft

// Logger is the narrow logging capability the engine requires
// (Debugf/Infof/Warningf/Errorf/Panicf). Drivers inject an implementation
// backed by whatever logging stack they use; raft/logutil provides a
// go.uber.org/zap-backed default.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Panicf(format string, args ...interface{})
}

// nopLogger discards everything. Used when Config.Logger is left unset.
type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{})   {}
func (nopLogger) Infof(string, ...interface{})    {}
func (nopLogger) Warningf(string, ...interface{}) {}
func (nopLogger) Errorf(string, ...interface{})   {}
func (nopLogger) Panicf(format string, args ...interface{}) {
	invariantViolation(format, args...)
}
