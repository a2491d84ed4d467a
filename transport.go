package ld2410

import (
	"fmt"
	"io"

	"github.com/tarm/serial"
)

// Transport is the async byte source/sink a Session runs the protocol
// over: a physical serial port, or any stand-in that implements the
// same minimal contract.
type Transport interface {
	io.Reader
	io.Writer
	io.Closer
}

// OpenFunc opens a Transport at the given baud rate. Connect calls one
// to acquire its transport.
type OpenFunc func(baud int) (Transport, error)

// OpenSerial returns an OpenFunc that opens a real UART device at path.
func OpenSerial(path string) OpenFunc {
	return func(baud int) (Transport, error) {
		cfg := &serial.Config{Name: path, Baud: baud}
		port, err := serial.OpenPort(cfg)
		if err != nil {
			return nil, fmt.Errorf("ld2410: open serial port %s: %w", path, err)
		}
		return port, nil
	}
}
