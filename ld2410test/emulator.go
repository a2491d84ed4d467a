// Package ld2410test is an in-process stand-in for an LD2410 module: it
// speaks both frame dialects over a net.Pipe, so a real ld2410.Session
// can be driven end to end without a physical device.
package ld2410test

import (
	"context"
	"encoding/binary"
	"net"
	"sync"

	"github.com/hi-link/ld2410"
)

// Handler answers one command with reply arguments and a status word
// (0 = success). A nil Handler for a code makes the Emulator reply with
// status 1 ("unsupported") and no arguments.
type Handler func(args []byte) (replyArgs []byte, status uint16)

// Emulator plays the device side of the protocol: it reads command
// frames from its end of the pipe, dispatches them to a registered
// Handler, writes back an ack frame, and can push report frames at any
// time via Report.
type Emulator struct {
	conn net.Conn // the device-side end; Transport() is the other end

	mu       sync.Mutex
	handlers map[uint16]Handler

	once sync.Once
}

// New returns an Emulator with no handlers registered. Transport is the
// ld2410.Transport a Session should Connect over; the Emulator owns the
// other end of the pipe.
func New() (*Emulator, ld2410.Transport) {
	client, device := net.Pipe()
	e := &Emulator{
		conn:     device,
		handlers: make(map[uint16]Handler),
	}
	go e.serve()
	return e, client
}

// Handle registers the reply for command code. Call before the
// commands it answers are issued; safe to call concurrently with serve.
func (e *Emulator) Handle(code uint16, h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[code] = h
}

// HandleOK is shorthand for Handle with a fixed successful reply.
func (e *Emulator) HandleOK(code uint16, replyArgs []byte) {
	e.Handle(code, func([]byte) ([]byte, uint16) { return replyArgs, 0 })
}

// Report pushes a report frame to the session immediately.
func (e *Emulator) Report(r ld2410.Report) error {
	_, err := e.conn.Write(ld2410.EncodeReport(r))
	return err
}

// Restart simulates the module re-enumerating after restart-module: it
// closes the pipe, which the Session observes as a transport failure.
func (e *Emulator) Restart() {
	e.once.Do(func() { e.conn.Close() })
}

// Close stops the emulator and releases the pipe. Safe to call more
// than once, and safe to call after Restart.
func (e *Emulator) Close() error {
	e.once.Do(func() { e.conn.Close() })
	return nil
}

// serve is the emulator's single reader loop: decode one command frame
// at a time and reply, using the same resync-scanning stream the real
// session uses to decode reports.
func (e *Emulator) serve() {
	stream := ld2410.NewStream(e.conn, nil)
	for {
		frame, err := stream.Next(context.Background())
		if err != nil {
			return
		}
		if frame.Dialect != ld2410.DialectCommand {
			continue
		}
		code, args, err := ld2410.DecodeCommand(frame.Payload)
		if err != nil {
			continue
		}

		e.mu.Lock()
		h := e.handlers[code]
		e.mu.Unlock()

		var replyArgs []byte
		var status uint16 = 1
		if h != nil {
			replyArgs, status = h(args)
		}
		if _, err := e.conn.Write(ld2410.EncodeAck(code, status, replyArgs)); err != nil {
			return
		}
		if code == ld2410.CmdRestartModule {
			// The device re-enumerates after acking restart-module; model
			// that as closing the pipe only once the ack has been written.
			e.Restart()
			return
		}
	}
}

// appendEnterConfigReply builds the stock successful enter-config reply
// (protocol version 1, a generous buffer size), for tests that don't
// care about its exact content.
func appendEnterConfigReply() []byte {
	buf := binary.LittleEndian.AppendUint16(nil, 1)
	buf = binary.LittleEndian.AppendUint16(buf, 256)
	return buf
}

// HandleEnterConfig registers the stock enter-config reply.
func (e *Emulator) HandleEnterConfig() {
	e.HandleOK(ld2410.CmdEnterConfig, appendEnterConfigReply())
}

// HandleLeaveConfig registers the stock (empty, successful) leave-config
// reply.
func (e *Emulator) HandleLeaveConfig() {
	e.HandleOK(ld2410.CmdLeaveConfig, nil)
}
