package feed

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/trogers1052/ai-feed-monitor/internal/logging"
	"github.com/trogers1052/ai-feed-monitor/internal/metrics"
	"github.com/trogers1052/ai-feed-monitor/internal/models"
)

const (
	maxFrameBytes      = 1 << 20
	closeFrameDeadline = time.Second
	defaultSinkTimeout = 2 * time.Second
)

// ErrClientStopped is returned by Start once Stop has been called
var ErrClientStopped = errors.New("feed client stopped")

// Sink receives every event accepted into history
type Sink interface {
	Name() string
	PublishEvent(ctx context.Context, event models.FeedEvent) error
}

// Option configures a Client
type Option func(*Client)

// WithBackoff overrides the reconnect schedule
func WithBackoff(b Backoff) Option {
	return func(c *Client) { c.backoff = b.withDefaults() }
}

// WithHistoryCapacity sets how many events the client keeps
func WithHistoryCapacity(capacity int) Option {
	return func(c *Client) { c.history = NewHistory(capacity) }
}

// WithDialer replaces the websocket dialer
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) { c.dialer = d }
}

// WithMetrics records client activity on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithSinks republishes accepted events to each sink
func WithSinks(sinks ...Sink) Option {
	return func(c *Client) { c.sinks = append(c.sinks, sinks...) }
}

// Client keeps one live connection to the AI feed and a bounded history of
// the events received on it. It reconnects with exponential backoff until
// Stop is called.
type Client struct {
	history *History
	backoff Backoff
	dialer  *websocket.Dialer
	metrics *metrics.Metrics
	sinks   []Sink
	logger  zerolog.Logger

	// lifecycle serializes Start and Stop
	lifecycle sync.Mutex

	mu      sync.Mutex
	state   State
	attempt int
	stopped bool
	conn    *websocket.Conn
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewClient creates an idle client; call Start to connect
func NewClient(logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		history: NewHistory(DefaultHistoryCapacity),
		backoff: DefaultBackoff,
		dialer:  websocket.DefaultDialer,
		logger:  logging.Component(logger, "feed"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start connects to endpoint in the background. A loop that is already
// running is stopped and its socket closed before the new one begins.
func (c *Client) Start(ctx context.Context, endpoint string) error {
	if err := validateEndpoint(endpoint); err != nil {
		return err
	}

	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.mu.Lock()
	stopped := c.stopped
	c.mu.Unlock()
	if stopped {
		return ErrClientStopped
	}

	c.halt()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	c.mu.Lock()
	c.cancel = cancel
	c.done = done
	c.attempt = 0
	c.setStateLocked(StateConnecting)
	c.mu.Unlock()

	go c.run(runCtx, endpoint, done)
	return nil
}

// Stop cancels any pending reconnect, closes the socket and waits for the
// connection loop to exit. No history change happens after Stop returns.
func (c *Client) Stop() {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.halt()

	c.mu.Lock()
	c.stopped = true
	c.setStateLocked(StateTerminated)
	c.mu.Unlock()
}

// halt tears down the running loop, if any, and blocks until it has exited
func (c *Client) halt() {
	c.mu.Lock()
	cancel, done, conn := c.cancel, c.done, c.conn
	if cancel != nil {
		cancel()
	}
	c.cancel, c.done, c.conn = nil, nil, nil
	c.mu.Unlock()

	if conn != nil {
		closeGracefully(conn)
	}
	if done != nil {
		<-done
	}
}

// closeGracefully sends a normal-closure frame before dropping the socket
func closeGracefully(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeFrameDeadline))
	_ = conn.Close()
}

func (c *Client) run(ctx context.Context, endpoint string, done chan struct{}) {
	defer close(done)
	defer c.setState(StateTerminated)

	for {
		c.setState(StateConnecting)

		conn, _, err := c.dialer.DialContext(ctx, endpoint, nil)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.metrics.DialFailed()
			c.logger.Warn().Err(err).Str("url", endpoint).Msg("Feed connection failed")
		} else {
			if !c.opened(ctx, conn) {
				_ = conn.Close()
				return
			}
			c.logger.Info().Str("url", endpoint).Msg("Feed connected")

			// Unblocks the read when the parent context ends without Stop
			stopWatch := context.AfterFunc(ctx, func() { closeGracefully(conn) })
			c.readLoop(ctx, conn)
			stopWatch()
			c.closed(conn)
			if ctx.Err() != nil {
				return
			}
		}

		delay := c.scheduleReconnect()
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// opened records a new connection unless the loop was cancelled meanwhile
func (c *Client) opened(ctx context.Context, conn *websocket.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ctx.Err() != nil {
		return false
	}
	conn.SetReadLimit(maxFrameBytes)
	c.conn = conn
	c.attempt = 0
	c.setStateLocked(StateOpen)
	c.metrics.ConnectionOpened()
	return true
}

func (c *Client) closed(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	_ = conn.Close()
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				c.logger.Warn().Err(err).Msg("Feed connection closed")
			}
			return
		}
		if ctx.Err() != nil {
			return
		}

		c.metrics.FrameReceived()
		event, err := c.HandleFrame(data)
		if err != nil {
			continue
		}
		c.accept(ctx, event)
	}
}

// HandleFrame parses one inbound frame. Malformed frames are logged and
// counted; the caller drops them and keeps the connection.
func (c *Client) HandleFrame(raw []byte) (models.FeedEvent, error) {
	event, err := ParseFrame(raw)
	if err != nil {
		c.metrics.FrameMalformed()
		c.logger.Warn().Err(err).Int("bytes", len(raw)).Msg("Discarding feed frame")
		return models.FeedEvent{}, err
	}
	return event, nil
}

func (c *Client) accept(ctx context.Context, event models.FeedEvent) {
	n := c.history.Push(event)
	c.metrics.SetHistoryLength(n)

	c.logger.Debug().
		Str("symbol", event.Symbol).
		Str("action", string(event.Action)).
		Str("status", string(event.Status)).
		Msg("Feed event received")

	for _, sink := range c.sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, defaultSinkTimeout)
		if err := sink.PublishEvent(sinkCtx, event); err != nil {
			c.metrics.SinkFailed(sink.Name())
			c.logger.Error().Err(err).Str("sink", sink.Name()).Msg("Failed to republish feed event")
		}
		cancel()
	}
}

// scheduleReconnect moves to backoff and returns the wait before the next dial
func (c *Client) scheduleReconnect() time.Duration {
	c.mu.Lock()
	delay := c.backoff.Delay(c.attempt)
	c.attempt++
	attempt := c.attempt
	c.setStateLocked(StateBackoff)
	c.mu.Unlock()

	c.metrics.ReconnectScheduled()
	c.logger.Info().Dur("delay", delay).Int("attempt", attempt).Msg("Feed reconnect scheduled")
	return delay
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.setStateLocked(s)
	c.mu.Unlock()
}

func (c *Client) setStateLocked(s State) {
	c.state = s
	c.metrics.SetConnectionState(int(s))
}

// State returns the current connection state
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Attempt returns the number of closes since the last successful open
func (c *Client) Attempt() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempt
}

// Events returns a copy of the history, newest first
func (c *Client) Events() []models.FeedEvent {
	return c.history.Snapshot()
}

// History exposes the client's history buffer for read access
func (c *Client) History() *History {
	return c.history
}

func validateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid feed endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("invalid feed endpoint %q: scheme must be ws or wss", endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid feed endpoint %q: missing host", endpoint)
	}
	return nil
}
