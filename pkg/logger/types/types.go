// Package types holds the logger types shared by pkg/logger and the components
// that receive a logger without initializing one.
package types

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the named, sugared logger handed to each component (app, history, ...).
// LogsPath is set only when logging to a file is enabled.
type Logger struct {
	*zap.SugaredLogger
	LogsPath string
	Name     string
}

// Nop returns a logger that discards everything, for components built without one
func Nop() *Logger {
	return &Logger{
		SugaredLogger: zap.NewNop().Sugar(),
		Name:          "nop",
	}
}

// Log is the part of an entry passed to a LogHook
type Log struct {
	Timestamp  time.Time
	Caller     string
	LoggerName string
	Level      zapcore.Level
	Message    string
}

// LogHook receives every entry that passes the level filter
type LogHook func(log Log)
