package ld2410

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Use errors.Is against these, or errors.As against
// the concrete types below to recover the failing command/status/state.
var (
	ErrConnection      = errors.New("ld2410: connection error")
	ErrCommandContext  = errors.New("ld2410: invalid command context")
	ErrCommandParam    = errors.New("ld2410: invalid command parameter")
	ErrCommandReply    = errors.New("ld2410: no reply received")
	ErrCommandStatus   = errors.New("ld2410: command failed")
	ErrModuleRestarted = errors.New("ld2410: module restarted")
)

// ConnectionError reports a transport open/read/write failure, or EOF on
// an active session. Once a session observes one, every pending and
// future operation fails fast with the same wrapped cause.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	if e.Err == nil {
		return ErrConnection.Error()
	}
	return fmt.Sprintf("%s: %v", ErrConnection, e.Err)
}

func (e *ConnectionError) Unwrap() error { return ErrConnection }

// CommandContextError reports that an operation was invoked in the wrong
// mode: a configuration-only command issued outside Configuring, or a
// second concurrent attempt to enter configuration mode.
type CommandContextError struct {
	Op    string
	State State
}

func (e *CommandContextError) Error() string {
	return fmt.Sprintf("%s: %s not allowed in state %s", ErrCommandContext, e.Op, e.State)
}

func (e *CommandContextError) Unwrap() error { return ErrCommandContext }

// CommandParamError reports that an argument failed local validation
// before any bytes were written to the transport.
type CommandParamError struct {
	Field  string
	Reason string
}

func (e *CommandParamError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrCommandParam, e.Field, e.Reason)
}

func (e *CommandParamError) Unwrap() error { return ErrCommandParam }

// CommandReplyError reports that no ack arrived for a command within the
// configured timeout, or that the ack could not be parsed.
type CommandReplyError struct {
	Code uint16
}

func (e *CommandReplyError) Error() string {
	return fmt.Sprintf("%s: command 0x%04X", ErrCommandReply, e.Code)
}

func (e *CommandReplyError) Unwrap() error { return ErrCommandReply }

// CommandStatusError reports that the device acked a command with a
// non-zero status. The exact meaning of status codes beyond zero/non-zero
// is undocumented by the vendor; it is surfaced verbatim.
type CommandStatusError struct {
	Code   uint16
	Status uint16
}

func (e *CommandStatusError) Error() string {
	return fmt.Sprintf("%s: command 0x%04X status 0x%04X", ErrCommandStatus, e.Code, e.Status)
}

func (e *CommandStatusError) Unwrap() error { return ErrCommandStatus }

// ModuleRestartedError is an internal sentinel signalling that a
// restart-induced transport loss is expected. It is surfaced only from
// RestartModule; all other operations observe the ensuing transport
// closure as a plain ConnectionError.
type ModuleRestartedError struct{}

func (e *ModuleRestartedError) Error() string { return ErrModuleRestarted.Error() }

func (e *ModuleRestartedError) Unwrap() error { return ErrModuleRestarted }
