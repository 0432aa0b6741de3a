package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

type readResult struct {
	data []byte
	err  error
}

var errUseOfClosed = errors.New("use of closed connection")

type fakeConn struct {
	reads chan readResult

	mu       sync.Mutex
	written  []string
	writeErr error

	closeOnce sync.Once
	closed    chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		reads:  make(chan readResult, 16),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) WriteText(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	if c.isClosed() {
		return errUseOfClosed
	}
	c.written = append(c.written, string(frame))
	return nil
}

func (c *fakeConn) ReadText() ([]byte, error) {
	select {
	case r := <-c.reads:
		return r.data, r.err
	case <-c.closed:
		return nil, errUseOfClosed
	}
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *fakeConn) frames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.written...)
}

func (c *fakeConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = nil
}

func (c *fakeConn) receive(frame string) {
	c.reads <- readResult{data: []byte(frame)}
}

type dialResult struct {
	conn Conn
	err  error
}

type dialRequest struct {
	url   string
	reply chan dialResult
}

// fakeDialer hands every attempt to the test, which decides the outcome. It
// ignores cancellation so tests can complete a dial after Stop.
type fakeDialer struct {
	requests chan dialRequest
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{requests: make(chan dialRequest, 16)}
}

func (d *fakeDialer) Dial(_ context.Context, url string) (Conn, error) {
	req := dialRequest{url: url, reply: make(chan dialResult, 1)}
	d.requests <- req
	r := <-req.reply
	return r.conn, r.err
}

func (d *fakeDialer) next(t *testing.T) dialRequest {
	t.Helper()
	select {
	case r := <-d.requests:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("no dial attempt")
		return dialRequest{}
	}
}

func (d *fakeDialer) expectNone(t *testing.T) {
	t.Helper()
	select {
	case r := <-d.requests:
		t.Fatalf("unexpected dial attempt to %s", r.url)
	case <-time.After(50 * time.Millisecond):
	}
}

// fakeClock is a virtual clock; timers fire only from Advance.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	c       *fakeClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{c: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []func()
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t.f)
		}
	}
	c.mu.Unlock()

	for _, f := range due {
		f()
	}
}

// Pending counts timers that are neither stopped nor fired.
func (c *fakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (c *fakeClock) timer(i int) *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timers[i]
}

type fakeNotifier struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (n *fakeNotifier) NotifyInfo(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.infos = append(n.infos, msg)
}

func (n *fakeNotifier) NotifyError(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
}

func (n *fakeNotifier) counts() (infos, errs int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.infos), len(n.errors)
}
