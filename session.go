package ld2410

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// State is the session's connection/configuration-mode state machine.
type State int

const (
	StateDisconnected State = iota
	StateConnected
	StateConfiguring
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateConfiguring:
		return "configuring"
	default:
		return "unknown"
	}
}

// Options configures a Session. Zero-value fields take the defaults
// DefaultOptions returns.
type Options struct {
	// Baudrate is the transport's initial serial speed.
	Baudrate int
	// CommandTimeout bounds how long issue waits for an ack.
	CommandTimeout time.Duration
	// ReportQueueSize is the per-subscriber buffer size used by
	// Subscribe; full queues drop the oldest entry.
	ReportQueueSize int
	// Logger overrides the package-global logger for this session.
	Logger Logger
}

// DefaultOptions returns sensible defaults: baudrate 256000, a 2 second
// command timeout, and a 64-item report queue.
func DefaultOptions() Options {
	return Options{
		Baudrate:        256000,
		CommandTimeout:  2 * time.Second,
		ReportQueueSize: 64,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Baudrate == 0 {
		o.Baudrate = d.Baudrate
	}
	if o.CommandTimeout == 0 {
		o.CommandTimeout = d.CommandTimeout
	}
	if o.ReportQueueSize == 0 {
		o.ReportQueueSize = d.ReportQueueSize
	}
	if o.Logger == nil {
		o.Logger = globalLogger
	}
	return o
}

type pendingReply struct {
	code uint16 // ack code (request code | ackCodeBit) this slot awaits
	ch   chan replyResult
}

type replyResult struct {
	args []byte
	err  error
}

// Session owns a Transport for its open span: one reader goroutine
// consumes frames and routes acks to the pending-reply slot or reports
// to the distributor; a single commandMu serialises all command
// issuance so commands are totally ordered on the wire.
type Session struct {
	opts      Options
	transport Transport
	stream    *Stream
	dist      *distributor

	commandMu sync.Mutex // held for the full duration of one issue/mode-transition

	mu      sync.Mutex // guards state, pending, closed/closeErr
	state   State
	pending *pendingReply
	closed  chan struct{}
	closeErr error

	readerDone chan struct{}
}

// Connect opens the transport at opts.Baudrate, starts the reader
// goroutine, and transitions to Connected. On failure to open, it
// returns a *ConnectionError and never starts the reader. Callers
// should defer Close on the returned Session.
func Connect(ctx context.Context, open OpenFunc, opts Options) (*Session, error) {
	opts = opts.withDefaults()

	transport, err := open(opts.Baudrate)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}

	s := &Session{
		opts:       opts,
		transport:  transport,
		dist:       newDistributor(opts.ReportQueueSize),
		state:      StateConnected,
		closed:     make(chan struct{}),
		readerDone: make(chan struct{}),
	}
	s.stream = NewStream(transport, opts.Logger)

	go s.readLoop()
	return s, nil
}

// Close ends the session: it cancels the reader (by closing the
// transport) and transitions to Disconnected. Safe to call more than
// once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.state == StateDisconnected {
		s.mu.Unlock()
		return nil
	}
	s.state = StateDisconnected
	s.mu.Unlock()

	err := s.transport.Close()
	<-s.readerDone
	return err
}

func (s *Session) logger() Logger {
	if s.opts.Logger != nil {
		return s.opts.Logger
	}
	return globalLogger
}

// readLoop is the session's single reader task: it owns all reads from
// transport and is the only writer of inbound-driven state.
func (s *Session) readLoop() {
	defer close(s.readerDone)
	ctx := context.Background()
	for {
		frame, err := s.stream.Next(ctx)
		if err != nil {
			s.terminate(err)
			return
		}
		switch frame.Dialect {
		case DialectCommand:
			s.handleAck(frame.Payload)
		case DialectReport:
			s.handleReport(frame.Payload)
		}
	}
}

func (s *Session) handleAck(payload []byte) {
	ack, err := DecodeAck(payload)
	if err != nil {
		s.logger().Warn(fmt.Sprintf("dropping malformed ack: %v", err))
		return
	}

	s.mu.Lock()
	p := s.pending
	if p == nil || p.code != ack.Code {
		s.mu.Unlock()
		s.logger().Warn(fmt.Sprintf("dropping unmatched ack for code 0x%04X", ack.Code))
		return
	}
	s.pending = nil
	s.mu.Unlock()

	if ack.Status != 0 {
		p.ch <- replyResult{err: &CommandStatusError{Code: ack.Code &^ ackCodeBit, Status: ack.Status}}
		return
	}
	p.ch <- replyResult{args: ack.Args}
}

func (s *Session) handleReport(payload []byte) {
	r, err := decodeReport(payload)
	if err != nil {
		s.logger().Warn(fmt.Sprintf("dropping malformed report: %v", err))
		return
	}
	s.dist.dispatch(r)
}

// terminate marks the session as having observed a terminal connection
// failure (normally io.EOF from the reader). Every suspended and future
// operation fails fast with a *ConnectionError wrapping err.
func (s *Session) terminate(err error) {
	s.mu.Lock()
	if s.state == StateDisconnected && s.closeErr != nil {
		s.mu.Unlock()
		return
	}
	s.state = StateDisconnected
	s.closeErr = err
	p := s.pending
	s.pending = nil
	select {
	case <-s.closed:
	default:
		close(s.closed)
	}
	s.mu.Unlock()

	if p != nil {
		p.ch <- replyResult{err: &ConnectionError{Err: err}}
	}
	s.dist.close(err)
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastReport returns the most recently received report, if any has
// arrived yet.
func (s *Session) LastReport() (Report, bool) {
	return s.dist.lastReport()
}

// NextReport blocks until the next inbound report, ctx cancellation, or
// session termination.
func (s *Session) NextReport(ctx context.Context) (Report, error) {
	return s.dist.nextReport(ctx)
}

// Subscribe returns a lazy sequence of reports beginning with the first
// one to arrive after this call. Callers should Close the subscription
// when done.
func (s *Session) Subscribe() *Subscription {
	return s.dist.subscribe()
}

func (s *Session) checkMode(code uint16) error {
	switch code {
	case CmdEnterConfig:
		if s.state != StateConnected {
			return &CommandContextError{Op: "enter-config", State: s.state}
		}
	case CmdLeaveConfig:
		if s.state != StateConfiguring {
			return &CommandContextError{Op: "leave-config", State: s.state}
		}
	default:
		if s.state != StateConfiguring {
			return &CommandContextError{Op: fmt.Sprintf("command 0x%04X", code), State: s.state}
		}
	}
	return nil
}

// issue serialises the request, writes it, installs the pending-reply
// slot, and awaits the matching ack with a default timeout. It holds
// commandMu for the whole call, so concurrent issuers are totally
// ordered and never interleave writes on the wire.
func (s *Session) issue(ctx context.Context, code uint16, args []byte) ([]byte, error) {
	s.commandMu.Lock()
	defer s.commandMu.Unlock()

	s.mu.Lock()
	if s.state == StateDisconnected {
		err := s.closeErr
		s.mu.Unlock()
		if err == nil {
			err = ErrConnection
		}
		return nil, &ConnectionError{Err: err}
	}
	if err := s.checkMode(code); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	ch := make(chan replyResult, 1)
	s.pending = &pendingReply{code: code | ackCodeBit, ch: ch}
	s.mu.Unlock()

	frame := EncodeCommand(code, args)
	if _, err := s.transport.Write(frame); err != nil {
		s.mu.Lock()
		s.pending = nil
		s.mu.Unlock()
		return nil, &ConnectionError{Err: err}
	}

	timer := time.NewTimer(s.opts.CommandTimeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.err == nil && code == CmdEnterConfig {
			// Enter Configuring while commandMu is still held, so a
			// concurrent Configure cannot pass checkMode in between.
			s.mu.Lock()
			if s.state == StateConnected {
				s.state = StateConfiguring
			}
			s.mu.Unlock()
		}
		return res.args, res.err
	case <-timer.C:
		s.mu.Lock()
		s.pending = nil
		s.mu.Unlock()
		return nil, &CommandReplyError{Code: code}
	case <-ctx.Done():
		s.mu.Lock()
		s.pending = nil
		s.mu.Unlock()
		return nil, ctx.Err()
	case <-s.closed:
		s.mu.Lock()
		err := s.closeErr
		s.mu.Unlock()
		if err == nil {
			err = ErrConnection
		}
		return nil, &ConnectionError{Err: err}
	}
}

// ConfigSession represents the exclusive configuration-mode scope: while
// open, all non enter/leave-config commands may be issued; reports stop
// arriving from the device. Close sends leave-config and transitions
// back to Connected.
type ConfigSession struct {
	s *Session
}

// Configure enters configuration mode. A second concurrent attempt
// fails with *CommandContextError rather than nesting.
func (s *Session) Configure(ctx context.Context) (*ConfigSession, error) {
	s.mu.Lock()
	if s.state != StateConnected {
		state := s.state
		s.mu.Unlock()
		return nil, &CommandContextError{Op: "configure", State: state}
	}
	s.mu.Unlock()

	if _, err := s.issue(ctx, CmdEnterConfig, encodeEnterConfigArgs()); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.state = StateConfiguring
	s.mu.Unlock()

	return &ConfigSession{s: s}, nil
}

// Close sends leave-config with a short best-effort timeout and
// transitions back to Connected. Any error sending leave-config is
// logged, not returned: Close must always release the configuration
// scope.
func (c *ConfigSession) Close() {
	s := c.s
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if _, err := s.issue(ctx, CmdLeaveConfig, nil); err != nil {
		s.logger().Warn(fmt.Sprintf("leave-config failed: %v", err))
	}
	s.mu.Lock()
	if s.state == StateConfiguring {
		s.state = StateConnected
	}
	s.mu.Unlock()
}

// Session returns the underlying session, for issuing commands while
// configuring.
func (c *ConfigSession) Session() *Session { return c.s }

// restart issues restart-module, expects its ack, then treats the
// subsequent reader termination (the device re-enumerates) as the
// sentinel *ModuleRestartedError. Exported as Session.RestartModule.
func (s *Session) restart(ctx context.Context) error {
	if _, err := s.issue(ctx, CmdRestartModule, nil); err != nil {
		return err
	}

	select {
	case <-s.closed:
		return &ModuleRestartedError{}
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ io.Closer = (*Session)(nil)
