// Package logrus adapts github.com/sirupsen/logrus to timedcache.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/timedcache"
)

var _ timedcache.Logger = Logger{}

type Logger struct{ E *logrus.Entry }

// New tags every line from l with component=timedcache.
func New(l *logrus.Logger) Logger {
	return Logger{E: l.WithField("component", "timedcache")}
}

func (l Logger) Debug(msg string, f timedcache.Fields) { l.log(logrus.DebugLevel, msg, f) }
func (l Logger) Info(msg string, f timedcache.Fields)  { l.log(logrus.InfoLevel, msg, f) }
func (l Logger) Warn(msg string, f timedcache.Fields)  { l.log(logrus.WarnLevel, msg, f) }
func (l Logger) Error(msg string, f timedcache.Fields) { l.log(logrus.ErrorLevel, msg, f) }

func (l Logger) log(lvl logrus.Level, msg string, f timedcache.Fields) {
	if !l.E.Logger.IsLevelEnabled(lvl) {
		return
	}
	e := l.E
	if len(f) > 0 {
		e = e.WithFields(logrus.Fields(f))
	}
	e.Log(lvl, msg)
}
