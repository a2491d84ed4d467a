package ld2410

import charmlog "github.com/charmbracelet/log"

// charmLogger adapts a charmbracelet/log.Logger to Logger, for callers
// who already use structured/leveled logging elsewhere in their
// application.
type charmLogger struct {
	l *charmlog.Logger
}

// NewCharmLogger wraps an existing *charmlog.Logger so it can be
// installed via SetLogger.
func NewCharmLogger(l *charmlog.Logger) Logger { return &charmLogger{l: l} }

func (c *charmLogger) Debug(msg string) { c.l.Debug(msg) }
func (c *charmLogger) Info(msg string)  { c.l.Info(msg) }
func (c *charmLogger) Warn(msg string)  { c.l.Warn(msg) }
func (c *charmLogger) Error(msg string) { c.l.Error(msg) }
