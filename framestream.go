package ld2410

import (
	"context"
	"fmt"
	"io"
)

// Stream is a byte-level resynchronising demultiplexer: it consumes
// bytes from an io.Reader and yields whole, validated Frame values in
// arrival order. It terminates exactly when the underlying reader
// returns an error (normally io.EOF); a new Stream is required to
// restart.
type Stream struct {
	r      io.Reader
	dec    decodeBuf
	logger Logger
	readCh chan readResult
	// reading is true while a Read started by fill has not yet been
	// collected (e.g. because the fill that started it was cancelled).
	reading bool
}

type readResult struct {
	data []byte
	err  error
}

// NewStream wraps r. If logger is nil, the package-global logger
// (see SetLogger) is used.
func NewStream(r io.Reader, logger Logger) *Stream {
	if logger == nil {
		logger = globalLogger
	}
	return &Stream{r: r, logger: logger}
}

// Next blocks until a complete frame can be decoded, ctx is cancelled, or
// the underlying reader is exhausted/fails.
func (s *Stream) Next(ctx context.Context) (Frame, error) {
	for {
		res := s.dec.tryParse()
		if res.skipped > 0 {
			s.logger.Warn(fmt.Sprintf("frame stream: resynchronised past %d byte(s)", res.skipped))
		}
		if res.ok {
			return res.frame, nil
		}
		if err := s.fill(ctx); err != nil {
			return Frame{}, err
		}
	}
}

// fill reads at least one more chunk of bytes into the decode buffer,
// respecting ctx cancellation even though io.Reader itself has no
// cancellation hook.
func (s *Stream) fill(ctx context.Context) error {
	if s.readCh == nil {
		s.readCh = make(chan readResult, 1)
	}
	if !s.reading {
		s.reading = true
		go func() {
			buf := make([]byte, 512)
			n, err := s.r.Read(buf)
			s.readCh <- readResult{data: buf[:n], err: err}
		}()
	}

	select {
	case res := <-s.readCh:
		s.reading = false
		s.dec.buf = append(s.dec.buf, res.data...)
		if res.err != nil {
			return res.err
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
