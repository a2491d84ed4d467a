package ld2410

import "log"

// stdLogger adapts the standard library log package to Logger.
type stdLogger struct{}

// NewStdLogger returns a Logger that writes to the standard library log
// package. Logging stays silent by default; callers opt in with
// SetLogger(ld2410.NewStdLogger()).
func NewStdLogger() Logger { return &stdLogger{} }

func (l *stdLogger) Debug(msg string) { log.Print("[DEBUG] " + msg) }
func (l *stdLogger) Info(msg string)  { log.Print("[INFO]  " + msg) }
func (l *stdLogger) Warn(msg string)  { log.Print("[WARN]  " + msg) }
func (l *stdLogger) Error(msg string) { log.Print("[ERROR] " + msg) }
