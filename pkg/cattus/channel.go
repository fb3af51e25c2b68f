package cattus

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cattus-org/cattus-api/pkg/events"
)

// ChannelState is the lifecycle of a realtime channel.
type ChannelState int32

const (
	StateDisconnected ChannelState = iota
	StateConnecting
	StateConnected
)

func (s ChannelState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Channel is the realtime update channel for one scope (a camera or a
// company). It surfaces "data changed" pushes as ticks on Signals; every
// other inbound payload is ignored for forward compatibility.
//
// There is no automatic reconnection: a channel lives as long as the view
// that opened it, and navigating to another scope means closing this one and
// dialing a new one. On a transport error the channel just goes quiet and
// the feature degrades to manual reloads.
type Channel struct {
	url      string
	sentinel string
	dialer   *websocket.Dialer
	logger   *slog.Logger

	conn      *websocket.Conn
	state     atomic.Int32
	signals   chan struct{}
	closeOnce sync.Once
	done      chan struct{}
}

// ChannelOption configures a Channel before it connects.
type ChannelOption func(*Channel)

// WithSentinel overrides the message recognized as the changed signal.
func WithSentinel(s string) ChannelOption {
	return func(c *Channel) { c.sentinel = s }
}

// WithChannelLogger overrides the default logger.
func WithChannelLogger(l *slog.Logger) ChannelOption {
	return func(c *Channel) { c.logger = l }
}

// DialChannel connects to a realtime endpoint (ws:// or wss:// URL, already
// scoped to a camera or company) and starts the read loop.
func DialChannel(ctx context.Context, rawURL string, opts ...ChannelOption) (*Channel, error) {
	c := &Channel{
		url:      rawURL,
		sentinel: events.ActivityChanged,
		dialer:   &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		logger:   slog.Default(),
		signals:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.state.Store(int32(StateConnecting))
	conn, resp, err := c.dialer.DialContext(ctx, rawURL, nil)
	if resp != nil {
		resp.Body.Close()
	}
	if err != nil {
		c.state.Store(int32(StateDisconnected))
		return nil, err
	}
	c.conn = conn
	c.state.Store(int32(StateConnected))

	go c.readLoop()
	return c, nil
}

// Signals delivers one tick per recognized change push. Ticks are coalesced:
// a burst of pushes while the consumer is busy collapses into a single tick,
// which is enough because the reaction is always "re-fetch page zero".
// The channel is closed when the connection ends.
func (c *Channel) Signals() <-chan struct{} {
	return c.signals
}

// State returns the current lifecycle state.
func (c *Channel) State() ChannelState {
	return ChannelState(c.state.Load())
}

// Close is the explicit unsubscribe; it tears down the connection and closes
// Signals. Safe to call more than once.
func (c *Channel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		c.state.Store(int32(StateDisconnected))
		err = c.conn.Close()
	})
	return err
}

func (c *Channel) readLoop() {
	defer func() {
		c.state.Store(int32(StateDisconnected))
		close(c.signals)
	}()
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				// Closed by the owner, nothing to report.
			default:
				c.logger.Error("realtime channel closed", "url", c.url, "err", err)
			}
			return
		}
		if string(msg) != c.sentinel {
			// Unknown payload shapes must not break the channel.
			continue
		}
		select {
		case c.signals <- struct{}{}:
		default:
		}
	}
}
