package ld2410

import (
	"context"
	"sync"
)

// distributor is a single-producer (the session's reader goroutine),
// multi-consumer fan-out of reports: a cached "latest" report, a
// "next report" signal resolved once per arrival, and a set of
// subscriber queues with a drop-oldest back-pressure policy. It never
// blocks the ingest path.
type distributor struct {
	mu        sync.Mutex
	queueSize int
	last      *Report
	haveLast  bool
	next      chan struct{}
	subs      map[int]chan Report
	nextID    int
	closed    bool
	closeErr  error
}

func newDistributor(queueSize int) *distributor {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &distributor{
		queueSize: queueSize,
		next:      make(chan struct{}),
		subs:      make(map[int]chan Report),
	}
}

// dispatch is called by the session's reader goroutine for every inbound
// report. It atomically overwrites "latest", resolves and re-arms the
// "next" signal, and try-pushes to each subscriber, dropping the oldest
// queued item when a subscriber's queue is full.
func (d *distributor) dispatch(r Report) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	r2 := r
	d.last = &r2
	d.haveLast = true
	close(d.next)
	d.next = make(chan struct{})

	for _, ch := range d.subs {
		select {
		case ch <- r:
		default:
			// Queue full: drop the oldest entry, then push.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- r:
			default:
			}
		}
	}
}

// close terminates the distributor: any caller blocked in nextReport or
// iterating a subscription observes termination, with err as the cause
// (nil means a clean session end).
func (d *distributor) close(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	d.closeErr = err
	close(d.next)
	for id, ch := range d.subs {
		close(ch)
		delete(d.subs, id)
	}
}

// lastReport returns the cached latest report, if any has arrived yet.
func (d *distributor) lastReport() (Report, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.haveLast {
		return Report{}, false
	}
	return *d.last, true
}

// nextReport blocks until the next inbound report, ctx cancellation, or
// session termination.
func (d *distributor) nextReport(ctx context.Context) (Report, error) {
	d.mu.Lock()
	if d.closed {
		err := d.closeErr
		d.mu.Unlock()
		if err == nil {
			err = ErrConnection
		}
		return Report{}, &ConnectionError{Err: err}
	}
	ch := d.next
	d.mu.Unlock()

	select {
	case <-ch:
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.closed && d.next == ch {
			// Woken by close rather than by a report.
			err := d.closeErr
			if err == nil {
				err = ErrConnection
			}
			return Report{}, &ConnectionError{Err: err}
		}
		return *d.last, nil
	case <-ctx.Done():
		return Report{}, ctx.Err()
	}
}

// Subscription is a lazy sequence of reports: delivery begins with the
// first report arriving after subscribe, and the sequence terminates
// when the session ends or Close is called.
type Subscription struct {
	d  *distributor
	id int
	ch chan Report
}

// ErrSubscriptionClosed is returned by Subscription.Next once the
// session that produced the subscription has ended.
var ErrSubscriptionClosed = &ConnectionError{Err: ErrConnection}

func (d *distributor) subscribe() *Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextID
	d.nextID++
	ch := make(chan Report, d.queueSize)
	if !d.closed {
		d.subs[id] = ch
	} else {
		close(ch)
	}
	return &Subscription{d: d, id: id, ch: ch}
}

// Next blocks until the next report arrives, ctx is cancelled, or the
// subscription terminates.
func (s *Subscription) Next(ctx context.Context) (Report, error) {
	select {
	case r, ok := <-s.ch:
		if !ok {
			return Report{}, ErrSubscriptionClosed
		}
		return r, nil
	case <-ctx.Done():
		return Report{}, ctx.Err()
	}
}

// Close unsubscribes, dropping this subscriber from the fan-out
// promptly. Safe to call more than once.
func (s *Subscription) Close() {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if ch, ok := s.d.subs[s.id]; ok {
		delete(s.d.subs, s.id)
		close(ch)
	}
}
