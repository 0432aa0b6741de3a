// Package session owns the connection to the collaboration server: it joins
// the room, mirrors editor events as protocol frames, answers peer joins with
// a full snapshot and retries failed connections until stopped.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/oklog/ulid/v2"

	"github.com/mm-code/mirror/internal/editor"
	"github.com/mm-code/mirror/internal/protocol"
)

const defaultRetryDelay = 10 * time.Second

// ErrClosed is wrapped by Conn.ReadText when the server closed the connection
// in an orderly way. Closes do not schedule a retry.
var ErrClosed = errors.New("session: connection closed")

// Conn is an open connection carrying text frames.
type Conn interface {
	WriteText(frame []byte) error
	ReadText() ([]byte, error)
	Close() error
}

// Dialer opens connections. Dial must return when ctx is cancelled.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// Notifier shows short messages to the user. Calls must not block and must not
// call back into the Manager.
type Notifier interface {
	NotifyInfo(msg string)
	NotifyError(msg string)
}

type nopNotifier struct{}

func (nopNotifier) NotifyInfo(string)  {}
func (nopNotifier) NotifyError(string) {}

// State is the lifecycle state of the manager.
type State int

const (
	Idle State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Config holds the parameters of a Manager.
type Config struct {
	URL        string
	Room       string
	RetryDelay time.Duration
}

// Option customizes a Manager.
type Option func(*Manager)

// WithClock replaces the clock used for retry timers.
func WithClock(c Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithNotifier sets the sink for user-visible messages.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

// WithMetrics sets the metrics the manager reports to.
func WithMetrics(mt *Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

// session is one connect-to-disconnect lifecycle. A session is current while
// Manager.session points at it; every callback checks that before acting.
type session struct {
	id          ulid.ULID
	epoch       uint64
	state       State
	conn        Conn
	cancel      context.CancelFunc
	retry       Timer
	unsubscribe func()
	connectedAt time.Time
}

// Manager maintains at most one session. All of its callbacks, whether from
// the transport, the retry timer or the editor, run one at a time under mu.
type Manager struct {
	cfg      Config
	dialer   Dialer
	provider editor.Provider
	source   editor.Source
	clock    Clock
	notifier Notifier
	metrics  *Metrics

	mu      sync.Mutex
	session *session
	epoch   uint64
}

// New creates an idle manager.
func New(cfg Config, dialer Dialer, provider editor.Provider, source editor.Source, opts ...Option) *Manager {
	if cfg.Room == "" {
		cfg.Room = protocol.Room
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	m := &Manager{
		cfg:      cfg,
		dialer:   dialer,
		provider: provider,
		source:   source,
		clock:    RealClock{},
		notifier: nopNotifier{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.metrics == nil {
		m.metrics = NewMetrics(nil)
	}
	return m
}

// Start replaces any current session with a new one and begins connecting.
// It returns before the connection attempt completes.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startLocked()
}

// Stop closes the connection, detaches editor handlers and cancels any pending
// retry. Calling Stop when idle does nothing.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

// State returns the state of the current session, or Idle when there is none.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return Idle
	}
	return m.session.state
}

// Status describes the manager for diagnostics.
type Status struct {
	State          State      `json:"state"`
	Active         bool       `json:"active"`
	SessionID      string     `json:"sessionId,omitempty"`
	Epoch          uint64     `json:"epoch"`
	URL            string     `json:"url"`
	Room           string     `json:"room"`
	RetryPending   bool       `json:"retryPending"`
	ConnectedSince *time.Time `json:"connectedSince,omitempty"`
}

// Status returns a snapshot of the current session.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := Status{State: Idle, Epoch: m.epoch, URL: m.cfg.URL, Room: m.cfg.Room}
	s := m.session
	if s == nil {
		return st
	}
	st.Active = true
	st.State = s.state
	st.SessionID = s.id.String()
	st.RetryPending = s.retry != nil
	if s.state == Connected {
		t := s.connectedAt
		st.ConnectedSince = &t
	}
	return st
}

func (m *Manager) startLocked() {
	m.stopLocked()

	m.epoch++
	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		id:     ulid.Make(),
		epoch:  m.epoch,
		state:  Connecting,
		cancel: cancel,
	}
	m.session = s
	s.unsubscribe = m.source.Subscribe(&editorHandler{m: m, s: s})

	m.metrics.ConnectAttempts.Inc()
	glog.Infof("[session] %s epoch=%d connecting to %s", s.id, s.epoch, m.cfg.URL)
	go m.dial(ctx, s)
}

func (m *Manager) stopLocked() {
	s := m.session
	if s == nil {
		return
	}
	m.session = nil

	s.cancel()
	if s.retry != nil {
		s.retry.Stop()
		s.retry = nil
	}
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	if s.state == Connected {
		m.metrics.Connected.Set(0)
	}
	s.state = Idle
	glog.Infof("[session] %s epoch=%d stopped", s.id, s.epoch)
}

func (m *Manager) dial(ctx context.Context, s *session) {
	conn, err := m.dialer.Dial(ctx, m.cfg.URL)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != s || s.state != Connecting {
		// Stopped or replaced while dialing.
		if conn != nil {
			conn.Close()
		}
		return
	}
	if err != nil {
		m.failLocked(s, err)
		return
	}

	s.conn = conn
	s.state = Connected
	s.connectedAt = time.Now()
	m.metrics.Connected.Set(1)
	glog.Infof("[session] %s epoch=%d connected", s.id, s.epoch)
	m.notifier.NotifyInfo(fmt.Sprintf("Connected to %s.", m.cfg.URL))

	go m.readLoop(s, conn)

	m.sendLocked(s, protocol.Join(m.cfg.Room))
	m.catchUpLocked(s)
}

// failLocked handles a transport error on the current session: the
// connection is dropped and exactly one retry is scheduled.
func (m *Manager) failLocked(s *session, err error) {
	glog.Warningf("[session] %s epoch=%d connection error: %v", s.id, s.epoch, err)
	m.metrics.ConnectFailures.Inc()

	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	if s.state == Connected {
		m.metrics.Connected.Set(0)
	}
	s.state = Idle

	m.notifier.NotifyError(fmt.Sprintf("Failed to connect to %s. Retrying in %s.", m.cfg.URL, m.cfg.RetryDelay))

	if s.retry != nil {
		s.retry.Stop()
	}
	s.retry = m.clock.AfterFunc(m.cfg.RetryDelay, func() { m.retry(s) })
}

func (m *Manager) retry(s *session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != s {
		return
	}
	m.metrics.Retries.Inc()
	m.startLocked()
}

func (m *Manager) readLoop(s *session, conn Conn) {
	for {
		data, err := conn.ReadText()
		if err != nil {
			m.readFailed(s, conn, err)
			return
		}
		m.receive(s, conn, data)
	}
}

func (m *Manager) readFailed(s *session, conn Conn, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != s || s.conn != conn {
		return
	}
	if errors.Is(err, ErrClosed) {
		glog.Infof("[session] %s epoch=%d closed by server: %v", s.id, s.epoch, err)
		conn.Close()
		s.conn = nil
		s.state = Idle
		m.metrics.Connected.Set(0)
		return
	}
	m.failLocked(s, err)
}

func (m *Manager) receive(s *session, conn Conn, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != s || s.conn != conn {
		return
	}

	msg, err := protocol.Decode(data)
	if err != nil {
		m.metrics.MalformedFrames.Inc()
		glog.Warningf("[session] %s ignoring frame: %v", s.id, err)
		return
	}
	label := string(msg.Type)
	if !msg.Known() {
		label = "unknown"
	}
	m.metrics.FramesReceived.WithLabelValues(label).Inc()

	switch msg.Type {
	case protocol.TypeJoin:
		glog.V(1).Infof("[session] %s peer joined, sending snapshot", s.id)
		m.catchUpLocked(s)
	default:
		glog.V(2).Infof("[session] %s ignoring %q frame", s.id, msg.Type)
	}
}

// catchUpLocked sends the active document followed by the cursor. Without an
// active document an empty snapshot is sent; without a selection the cursor
// is omitted.
func (m *Manager) catchUpLocked(s *session) {
	doc, _ := m.provider.ActiveDocument()
	m.sendLocked(s, protocol.Follow("", doc))
	m.sendLineLocked(s)
}

func (m *Manager) sendLineLocked(s *session) {
	cur, ok := m.provider.ActiveSelection()
	if !ok {
		return
	}
	m.sendLocked(s, protocol.Line(cur))
}

func (m *Manager) sendLocked(s *session, msg protocol.Message) {
	label := string(msg.Type)
	if s.state != Connected || s.conn == nil {
		m.metrics.FramesDropped.WithLabelValues(label).Inc()
		glog.V(2).Infof("[session] %s dropped %s frame while %s", s.id, msg.Type, s.state)
		return
	}
	if err := s.conn.WriteText(msg.Frame()); err != nil {
		m.metrics.FramesDropped.WithLabelValues(label).Inc()
		m.failLocked(s, fmt.Errorf("write %s: %w", msg.Type, err))
		return
	}
	m.metrics.FramesSent.WithLabelValues(label).Inc()
	glog.V(2).Infof("[session] %s sent %s", s.id, msg)
}

// editorHandler forwards editor notifications for one session.
type editorHandler struct {
	m *Manager
	s *session
}

func (h *editorHandler) SelectionChanged() {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	if h.m.session != h.s {
		return
	}
	h.m.sendLineLocked(h.s)
}

func (h *editorHandler) ActiveDocumentChanged() {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	if h.m.session != h.s {
		return
	}
	h.m.catchUpLocked(h.s)
}

func (h *editorHandler) ContentChanged(changes []editor.EditRange) {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	if h.m.session != h.s {
		return
	}
	h.m.sendLocked(h.s, protocol.Updates(changes))
}
