// Package logutil adapts go.uber.org/zap, via the github.com/pingcap/log
// wrapper, to the raft.Logger interface. It is ambient glue for drivers
// embedding the engine; the engine package itself never imports zap
// directly.
package logutil

import (
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

// ZapLogger implements raft.Logger on top of a zap.SugaredLogger.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// New wraps an existing *zap.Logger.
func New(l *zap.Logger) *ZapLogger {
	return &ZapLogger{sugar: l.Sugar()}
}

// NewDefault builds a ZapLogger from the process-wide logger configured
// via github.com/pingcap/log (log.InitLogger or its package default).
func NewDefault() *ZapLogger {
	return New(log.L())
}

func (z *ZapLogger) Debugf(format string, args ...interface{})   { z.sugar.Debugf(format, args...) }
func (z *ZapLogger) Infof(format string, args ...interface{})    { z.sugar.Infof(format, args...) }
func (z *ZapLogger) Warningf(format string, args ...interface{}) { z.sugar.Warnf(format, args...) }
func (z *ZapLogger) Errorf(format string, args ...interface{})   { z.sugar.Errorf(format, args...) }
func (z *ZapLogger) Panicf(format string, args ...interface{})   { z.sugar.Panicf(format, args...) }
