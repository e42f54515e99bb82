// Package logging adapts logrus to the Nakama runtime.Logger interface so the
// same code logs inside the server plugin and in the command line tool.
package logging

import (
	"fmt"
	"io"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/sirupsen/logrus"
)

// Logrus implements runtime.Logger on top of a logrus entry.
type Logrus struct {
	entry *logrus.Entry
}

var _ runtime.Logger = (*Logrus)(nil)

// Options configures New.
type Options struct {
	Level  string
	JSON   bool
	Colors bool
	Output io.Writer
}

// New builds a logger. An unknown level falls back to info.
func New(opts Options) *Logrus {
	base := logrus.New()
	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	base.SetLevel(level)
	if opts.JSON {
		base.SetFormatter(&logrus.JSONFormatter{})
	} else {
		base.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, ForceColors: opts.Colors})
	}
	if opts.Output != nil {
		base.SetOutput(opts.Output)
	}
	return FromLogrus(base)
}

// FromLogrus wraps an existing logrus logger.
func FromLogrus(l *logrus.Logger) *Logrus {
	return &Logrus{entry: logrus.NewEntry(l)}
}

// Discard returns a logger that drops everything.
func Discard() *Logrus {
	return New(Options{Level: "panic", Output: io.Discard})
}

func (l *Logrus) Debug(format string, v ...interface{}) { l.entry.Debug(fmt.Sprintf(format, v...)) }
func (l *Logrus) Info(format string, v ...interface{})  { l.entry.Info(fmt.Sprintf(format, v...)) }
func (l *Logrus) Warn(format string, v ...interface{})  { l.entry.Warn(fmt.Sprintf(format, v...)) }
func (l *Logrus) Error(format string, v ...interface{}) { l.entry.Error(fmt.Sprintf(format, v...)) }

func (l *Logrus) WithField(key string, v interface{}) runtime.Logger {
	return &Logrus{entry: l.entry.WithField(key, v)}
}

func (l *Logrus) WithFields(fields map[string]interface{}) runtime.Logger {
	return &Logrus{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *Logrus) Fields() map[string]interface{} {
	out := make(map[string]interface{}, len(l.entry.Data))
	for k, v := range l.entry.Data {
		out[k] = v
	}
	return out
}
