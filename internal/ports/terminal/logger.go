package terminal

import (
	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/sirupsen/logrus"
)

// Logger adapts a logrus entry to runtime.Logger so the bot and engine hosts log
// the same way inside and outside Nakama.
type Logger struct {
	entry *logrus.Entry
}

func NewLogger(l *logrus.Logger) *Logger {
	return &Logger{entry: logrus.NewEntry(l)}
}

func (l *Logger) Debug(format string, v ...interface{}) { l.entry.Debugf(format, v...) }
func (l *Logger) Info(format string, v ...interface{})  { l.entry.Infof(format, v...) }
func (l *Logger) Warn(format string, v ...interface{})  { l.entry.Warnf(format, v...) }
func (l *Logger) Error(format string, v ...interface{}) { l.entry.Errorf(format, v...) }

func (l *Logger) WithField(key string, v interface{}) runtime.Logger {
	return &Logger{entry: l.entry.WithField(key, v)}
}

func (l *Logger) WithFields(fields map[string]interface{}) runtime.Logger {
	return &Logger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *Logger) Fields() map[string]interface{} {
	out := make(map[string]interface{}, len(l.entry.Data))
	for k, v := range l.entry.Data {
		out[k] = v
	}
	return out
}
