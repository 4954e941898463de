package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/angelmondragon/pressing-admin/pkg/config"
	"github.com/angelmondragon/pressing-admin/pkg/enums"
	"github.com/angelmondragon/pressing-admin/pkg/logger"
	"github.com/angelmondragon/pressing-admin/pkg/metrics"
)

const (
	DefaultHeartbeat            = 30 * time.Second
	DefaultReconnectBase        = 3 * time.Second
	DefaultMaxReconnectAttempts = 5
	dialTimeout                 = 10 * time.Second
	writeWait                   = 10 * time.Second
	closeWait                   = time.Second
)

// ErrNotConnected is returned by sends attempted without an open socket.
var ErrNotConnected = errors.New("notification socket not connected")

// State is the lifecycle of the socket.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
)

// Conn is the part of a websocket connection the channel uses.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Dialer opens socket connections.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// WebsocketDialer dials with gorilla/websocket.
type WebsocketDialer struct {
	Dialer *websocket.Dialer
	Header http.Header
}

func (d WebsocketDialer) Dial(ctx context.Context, url string) (Conn, error) {
	dialer := d.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, resp, err := dialer.DialContext(ctx, url, d.Header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Event is delivered to listeners. Data is the frame's data member; Connected is set on
// connection events.
type Event struct {
	Name      enums.NotificationEvent `json:"name"`
	Data      json.RawMessage         `json:"data,omitempty"`
	Connected bool                    `json:"connected"`
}

// Subscription is the handle returned by On.
type Subscription struct {
	id      uint64
	event   enums.NotificationEvent
	handler func(Event)
	channel *Channel
	once    sync.Once
}

// Unsubscribe removes the listener. Calling it more than once is harmless.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() { s.channel.remove(s) })
}

type inboundFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type outboundFrame struct {
	Type   string `json:"type"`
	Token  string `json:"token,omitempty"`
	UserID any    `json:"userId,omitempty"`
}

// Channel is the reconnecting notification socket client. One connection per channel.
type Channel struct {
	url           string
	dialer        Dialer
	logg          *logger.Logger
	metrics       *metrics.SocketMetrics
	heartbeat     time.Duration
	reconnectBase time.Duration
	maxAttempts   int

	mu            sync.Mutex
	state         State
	conn          Conn
	gen           uint64
	epoch         uint64
	token         string
	attempts      int
	stopped       bool
	timer         *time.Timer
	heartbeatStop chan struct{}

	writeMu sync.Mutex

	listenersMu sync.Mutex
	listeners   map[enums.NotificationEvent][]*Subscription
	nextID      uint64
}

// Option configures a Channel.
type Option func(*Channel)

// WithDialer replaces the gorilla/websocket dialer. A nil dialer is ignored.
func WithDialer(d Dialer) Option {
	return func(c *Channel) {
		if d != nil {
			c.dialer = d
		}
	}
}

// WithHeartbeat sets the ping interval. Non-positive intervals keep the default.
func WithHeartbeat(interval time.Duration) Option {
	return func(c *Channel) {
		if interval > 0 {
			c.heartbeat = interval
		}
	}
}

// WithReconnect sets the first reconnect delay and the attempt cap.
func WithReconnect(base time.Duration, maxAttempts int) Option {
	return func(c *Channel) {
		if base > 0 {
			c.reconnectBase = base
		}
		if maxAttempts >= 0 {
			c.maxAttempts = maxAttempts
		}
	}
}

// WithLogger sets the logger for socket lifecycle entries. A nil logger is ignored.
func WithLogger(logg *logger.Logger) Option {
	return func(c *Channel) {
		if logg != nil {
			c.logg = logg
		}
	}
}

// WithMetrics records socket state and reconnects. A nil value disables them.
func WithMetrics(m *metrics.SocketMetrics) Option {
	return func(c *Channel) {
		c.metrics = m
	}
}

// NewChannel builds a disconnected channel for url.
func NewChannel(url string, opts ...Option) *Channel {
	c := &Channel{
		url:           url,
		dialer:        WebsocketDialer{},
		logg:          logger.Nop(),
		heartbeat:     DefaultHeartbeat,
		reconnectBase: DefaultReconnectBase,
		maxAttempts:   DefaultMaxReconnectAttempts,
		state:         StateDisconnected,
		listeners:     map[enums.NotificationEvent][]*Subscription{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewChannelFromConfig applies the socket configuration.
func NewChannelFromConfig(cfg config.SocketConfig, opts ...Option) *Channel {
	base := []Option{
		WithHeartbeat(cfg.HeartbeatInterval),
		WithReconnect(cfg.ReconnectBase, cfg.MaxReconnectAttempts),
	}
	return NewChannel(cfg.URL, append(base, opts...)...)
}

// State returns the current lifecycle state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Channel) Connected() bool {
	return c.State() == StateConnected
}

// Connect opens the socket and authenticates with token. It is a no-op while connected or
// connecting. A failed dial schedules a reconnect like a dropped connection.
func (c *Channel) Connect(ctx context.Context, token string) error {
	c.mu.Lock()
	if c.state == StateConnected || c.state == StateConnecting {
		c.mu.Unlock()
		return nil
	}
	c.token = token
	c.stopped = false
	c.attempts = 0
	c.stopTimerLocked()
	c.state = StateConnecting
	c.epoch++
	epoch := c.epoch
	c.mu.Unlock()
	return c.dial(ctx, epoch)
}

// currentLocked reports whether epoch still belongs to a live Connect. Callers hold mu.
func (c *Channel) currentLocked(epoch uint64) bool {
	return !c.stopped && c.epoch == epoch
}

// dial runs one attempt on behalf of the Connect identified by epoch. A socket
// that lands after Disconnect or a newer Connect is closed without touching state.
func (c *Channel) dial(ctx context.Context, epoch uint64) error {
	ctx = c.logg.WithField(ctx, "socket_url", c.url)
	conn, err := c.dialer.Dial(ctx, c.url)
	if err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "notification socket dial failed")
		c.dialFailed(epoch)
		return fmt.Errorf("dialing notification socket: %w", err)
	}

	c.mu.Lock()
	if !c.currentLocked(epoch) {
		c.mu.Unlock()
		_ = conn.Close()
		return ErrNotConnected
	}
	token := c.token
	c.mu.Unlock()

	if err := c.write(conn, outboundFrame{Type: "auth", Token: token}); err != nil {
		_ = conn.Close()
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "notification socket auth failed")
		c.dialFailed(epoch)
		return fmt.Errorf("authenticating notification socket: %w", err)
	}

	c.mu.Lock()
	if !c.currentLocked(epoch) {
		c.mu.Unlock()
		_ = conn.Close()
		return ErrNotConnected
	}
	c.gen++
	gen := c.gen
	c.conn = conn
	c.state = StateConnected
	c.attempts = 0
	stop := make(chan struct{})
	c.heartbeatStop = stop
	c.mu.Unlock()

	go c.readLoop(conn, gen)
	go c.heartbeatLoop(conn, gen, stop)

	c.metrics.SetConnected(true)
	c.logg.Info(ctx, "notification socket connected")
	c.emit(Event{Name: enums.EventConnected, Connected: true})
	return nil
}

func (c *Channel) dialFailed(epoch uint64) {
	c.mu.Lock()
	if !c.currentLocked(epoch) {
		c.mu.Unlock()
		return
	}
	if c.state == StateConnecting {
		c.state = StateDisconnected
	}
	c.mu.Unlock()
	c.scheduleReconnect()
}

// closed handles the end of connection gen. Stale generations are ignored.
func (c *Channel) closed(gen uint64, cause error) {
	c.mu.Lock()
	if gen != c.gen || c.conn == nil {
		c.mu.Unlock()
		return
	}
	conn := c.conn
	c.conn = nil
	c.state = StateDisconnected
	if c.heartbeatStop != nil {
		close(c.heartbeatStop)
		c.heartbeatStop = nil
	}
	c.mu.Unlock()

	_ = conn.Close()
	ctx := context.Background()
	if cause != nil {
		ctx = c.logg.WithField(ctx, "error", cause.Error())
	}
	c.logg.Warn(ctx, "notification socket closed")
	c.metrics.SetConnected(false)
	c.emit(Event{Name: enums.EventConnected, Connected: false})
	c.scheduleReconnect()
}

// scheduleReconnect arms the next attempt after base·2^(n-1), up to maxAttempts.
func (c *Channel) scheduleReconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped || c.timer != nil || c.state == StateConnected || c.state == StateConnecting {
		return
	}
	if c.attempts >= c.maxAttempts {
		c.state = StateDisconnected
		c.logg.Warn(c.logg.WithField(context.Background(), "attempts", c.attempts), "notification socket gave up reconnecting")
		return
	}
	c.attempts++
	delay := c.reconnectBase << (c.attempts - 1)
	c.state = StateReconnecting
	c.metrics.IncReconnect()
	c.logg.Info(c.logg.WithFields(context.Background(), map[string]any{
		"attempt":  c.attempts,
		"delay_ms": delay.Milliseconds(),
	}), "notification socket reconnect scheduled")
	c.timer = time.AfterFunc(delay, c.reconnect)
}

func (c *Channel) reconnect() {
	c.mu.Lock()
	c.timer = nil
	if c.stopped || c.state != StateReconnecting {
		c.mu.Unlock()
		return
	}
	c.state = StateConnecting
	epoch := c.epoch
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	_ = c.dial(ctx, epoch)
}

// Attempts returns how many reconnects were scheduled since the last successful connection.
func (c *Channel) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

func (c *Channel) readLoop(conn Conn, gen uint64) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.closed(gen, err)
			return
		}
		c.dispatch(data)
	}
}

func (c *Channel) heartbeatLoop(conn Conn, gen uint64, stop <-chan struct{}) {
	ticker := time.NewTicker(c.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := c.write(conn, outboundFrame{Type: "ping"}); err != nil {
				c.logg.Debug(c.logg.WithField(context.Background(), "error", err.Error()), "heartbeat failed")
				c.closed(gen, err)
				return
			}
		}
	}
}

func (c *Channel) dispatch(data []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		c.logg.Warn(c.logg.WithField(context.Background(), "error", err.Error()), "undecodable notification frame")
		return
	}
	event, ok := enums.EventForFrame(frame.Type)
	if !ok {
		c.logg.Debug(c.logg.WithField(context.Background(), "frame_type", frame.Type), "unknown notification frame dropped")
		return
	}
	c.metrics.IncEvent(event.String())
	c.emit(Event{Name: event, Data: frame.Data})
}

// Disconnect cancels any pending reconnect, stops the heartbeat, closes the socket and drops
// every listener. Listeners see connected(false) first when a live socket was closed. It is
// idempotent.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	c.stopped = true
	c.stopTimerLocked()
	conn := c.conn
	c.conn = nil
	c.gen++
	c.epoch++
	if c.heartbeatStop != nil {
		close(c.heartbeatStop)
		c.heartbeatStop = nil
	}
	c.state = StateDisconnected
	c.mu.Unlock()

	if conn != nil {
		// A writer stuck on a dead peer holds writeMu; skip the close frame then.
		if c.writeMu.TryLock() {
			_ = conn.SetWriteDeadline(time.Now().Add(closeWait))
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			c.writeMu.Unlock()
		}
		_ = conn.Close()
		c.metrics.SetConnected(false)
		c.emit(Event{Name: enums.EventConnected, Connected: false})
	}

	c.listenersMu.Lock()
	c.listeners = map[enums.NotificationEvent][]*Subscription{}
	c.listenersMu.Unlock()
}

func (c *Channel) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// JoinUserNotificationChannel subscribes the socket to a user's notifications. No-op when not
// connected.
func (c *Channel) JoinUserNotificationChannel(userID any) error {
	return c.sendAuthenticated(outboundFrame{Type: "join-notifications", UserID: userID})
}

// JoinAdminChannel subscribes the socket to admin broadcasts. No-op when not connected.
func (c *Channel) JoinAdminChannel() error {
	return c.sendAuthenticated(outboundFrame{Type: "join-admin"})
}

func (c *Channel) sendAuthenticated(frame outboundFrame) error {
	c.mu.Lock()
	conn := c.conn
	connected := c.state == StateConnected
	frame.Token = c.token
	c.mu.Unlock()
	if !connected || conn == nil {
		return nil
	}
	return c.write(conn, frame)
}

func (c *Channel) write(conn Conn, frame outboundFrame) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, payload)
}

// On registers handler for event. Handlers run sequentially in arrival order.
func (c *Channel) On(event enums.NotificationEvent, handler func(Event)) *Subscription {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	c.nextID++
	sub := &Subscription{id: c.nextID, event: event, handler: handler, channel: c}
	c.listeners[event] = append(c.listeners[event], sub)
	return sub
}

func (c *Channel) remove(sub *Subscription) {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	subs := c.listeners[sub.event]
	for i, candidate := range subs {
		if candidate.id == sub.id {
			c.listeners[sub.event] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

func (c *Channel) emit(event Event) {
	c.listenersMu.Lock()
	subs := append([]*Subscription(nil), c.listeners[event.Name]...)
	c.listenersMu.Unlock()
	for _, sub := range subs {
		sub.handler(event)
	}
}
