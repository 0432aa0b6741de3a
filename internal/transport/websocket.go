// Package transport connects the mirror session to the collaboration server
// over a WebSocket.
package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"

	"github.com/mm-code/mirror/internal/config"
	"github.com/mm-code/mirror/internal/session"
)

// closeTimeout bounds the close frame write on Close.
const closeTimeout = time.Second

// Dialer opens WebSocket connections. It implements session.Dialer.
type Dialer struct {
	dialer       *websocket.Dialer
	writeTimeout time.Duration
	pingInterval time.Duration
	pongTimeout  time.Duration
}

// NewDialer creates a dialer with the given timeouts. Zero values fall back to
// the defaults in config.Default.
func NewDialer(cfg config.TransportConfig) *Dialer {
	def := config.Default().Transport
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = def.HandshakeTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = def.PingInterval
	}
	if cfg.PongTimeout <= 0 {
		cfg.PongTimeout = def.PongTimeout
	}
	return &Dialer{
		dialer: &websocket.Dialer{
			Proxy:            websocket.DefaultDialer.Proxy,
			HandshakeTimeout: cfg.HandshakeTimeout,
		},
		writeTimeout: cfg.WriteTimeout,
		pingInterval: cfg.PingInterval,
		pongTimeout:  cfg.PongTimeout,
	}
}

// Dial connects to url and starts the keepalive loop.
func (d *Dialer) Dial(ctx context.Context, url string) (session.Conn, error) {
	ws, _, err := d.dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return newConn(ws, d.writeTimeout, d.pingInterval, d.pongTimeout), nil
}

// Conn is one WebSocket connection carrying text frames.
type Conn struct {
	ws           *websocket.Conn
	writeTimeout time.Duration

	writeMu sync.Mutex // serialises data frames; control frames need no lock
	done    chan struct{}
	once    sync.Once
}

func newConn(ws *websocket.Conn, writeTimeout, pingInterval, pongTimeout time.Duration) *Conn {
	c := &Conn{
		ws:           ws,
		writeTimeout: writeTimeout,
		done:         make(chan struct{}),
	}
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongTimeout))
	})
	ws.SetReadDeadline(time.Now().Add(pongTimeout))
	go c.pingLoop(pingInterval)
	return c
}

// WriteText sends frame as one text message.
func (c *Conn) WriteText(frame []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.ws.WriteMessage(websocket.TextMessage, frame)
}

// ReadText blocks for the next text message. Binary messages are skipped. An
// orderly close by the server is reported as session.ErrClosed.
func (c *Conn) ReadText() ([]byte, error) {
	for {
		typ, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil, fmt.Errorf("%w: %v", session.ErrClosed, err)
			}
			return nil, err
		}
		if typ != websocket.TextMessage {
			glog.V(2).Infof("[transport] skipping message of type %d", typ)
			continue
		}
		return data, nil
	}
}

// Close stops the keepalive loop, sends a close frame and closes the socket.
// It does not wait for a pending WriteText, and the close frame gets at most
// closeTimeout, so a stalled peer cannot hold up the caller. Only the first
// call has an effect.
func (c *Conn) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		werr := c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.closeDeadline()))
		if werr != nil && !errors.Is(werr, websocket.ErrCloseSent) {
			glog.V(1).Infof("[transport] close frame: %v", werr)
		}
		err = c.ws.Close()
	})
	return err
}

func (c *Conn) closeDeadline() time.Duration {
	return min(c.writeTimeout, closeTimeout)
}

// pingLoop sends periodic pings until the connection is closed.
func (c *Conn) pingLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeTimeout))
			if err != nil {
				glog.V(1).Infof("[transport] ping: %v", err)
				return
			}
		}
	}
}
