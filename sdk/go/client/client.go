// Package client is a websocket client for the object room server. Bots and
// integration tests use it to drive input sources and watch room state.
package client

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"

	"github.com/zeusync/objectroom/internal/core/models"
	"github.com/zeusync/objectroom/internal/core/observability/log"
	"github.com/zeusync/objectroom/internal/core/protocol"
)

// Client represents one connection to the room server
type Client struct {
	conn    *websocket.Conn
	codec   protocol.JSONCodec
	writeMu sync.Mutex

	id string

	handlers     map[protocol.MessageType][]MessageHandler
	handlerMutex sync.RWMutex
	inbox        chan protocol.Message

	// Lifecycle
	connected int32 // atomic bool
	closed    int32 // atomic bool
	done      chan struct{}
	readErr   atomic.Value // error

	config Config
	logger log.Log

	workerGroup sync.WaitGroup
}

// Config holds configuration for the client
type Config struct {
	// URL of the websocket endpoint, e.g. ws://localhost:8080/ws
	URL            string
	Token          string
	ConnectTimeout time.Duration
	WriteTimeout   time.Duration

	// InboxSize bounds the messages buffered for Next.
	InboxSize int

	LogLevel log.Level
}

// DefaultClientConfig returns default client configuration
func DefaultClientConfig() Config {
	return Config{
		URL:            "ws://127.0.0.1:8080/ws",
		ConnectTimeout: 10 * time.Second,
		WriteTimeout:   5 * time.Second,
		InboxSize:      256,
		LogLevel:       log.LevelInfo,
	}
}

// MessageHandler is called from the receiver goroutine for every message of
// the type it was registered for.
type MessageHandler func(msg protocol.Message)

// NewClient creates a client; Connect dials the server.
func NewClient(config Config) *Client {
	return NewClientWithLogger(config, log.New(config.LogLevel))
}

func NewClientWithLogger(config Config, logger log.Log) *Client {
	if config.InboxSize <= 0 {
		config.InboxSize = DefaultClientConfig().InboxSize
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = DefaultClientConfig().WriteTimeout
	}
	return &Client{
		handlers: make(map[protocol.MessageType][]MessageHandler),
		inbox:    make(chan protocol.Message, config.InboxSize),
		done:     make(chan struct{}),
		config:   config,
		logger:   logger.With(log.String("component", "client")),
	}
}

// Connect dials the server and waits for its welcome message.
func (c *Client) Connect(ctx context.Context) error {
	if atomic.LoadInt32(&c.closed) == 1 {
		return ErrClientClosed
	}
	if !atomic.CompareAndSwapInt32(&c.connected, 0, 1) {
		return ErrAlreadyConnected
	}

	target, err := c.dialURL()
	if err != nil {
		atomic.StoreInt32(&c.connected, 0)
		return err
	}

	c.logger.Info("Connecting to server", log.String("url", c.config.URL))

	if c.config.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.ConnectTimeout)
		defer cancel()
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		atomic.StoreInt32(&c.connected, 0)
		c.logger.Error("Failed to connect to server", log.String("url", c.config.URL), log.Error(err))
		return err
	}
	c.conn = conn

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		_ = conn.Close()
		atomic.StoreInt32(&c.connected, 0)
		return fmt.Errorf("%w: %v", ErrNoWelcome, err)
	}
	welcome, err := c.codec.DecodeMessage(data)
	if err != nil || welcome.Type != protocol.MessageWelcome {
		_ = conn.Close()
		atomic.StoreInt32(&c.connected, 0)
		return ErrNoWelcome
	}
	_ = conn.SetReadDeadline(time.Time{})
	c.id = welcome.ClientID

	c.logger.Info("Connected to server", log.String("client_id", c.id))

	c.workerGroup.Add(1)
	go c.messageReceiver()
	return nil
}

func (c *Client) dialURL() (string, error) {
	u, err := url.Parse(c.config.URL)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		return "", fmt.Errorf("%w: url %q", ErrInvalidConfig, c.config.URL)
	}
	if c.config.Token != "" {
		q := u.Query()
		q.Set("token", c.config.Token)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Close shuts the connection down and waits for the receiver to exit.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return ErrClientClosed
	}
	close(c.done)

	var err error
	if atomic.CompareAndSwapInt32(&c.connected, 1, 0) && c.conn != nil {
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(c.config.WriteTimeout))
		c.writeMu.Unlock()
		err = c.conn.Close()
	}
	c.workerGroup.Wait()

	c.logger.Info("Client closed")
	return err
}

// Send validates and writes one command.
func (c *Client) Send(cmd protocol.Command) error {
	if atomic.LoadInt32(&c.closed) == 1 {
		return ErrClientClosed
	}
	if atomic.LoadInt32(&c.connected) == 0 {
		return ErrNotConnected
	}

	data, err := c.codec.EncodeCommand(cmd)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *Client) Spawn(shape models.ShapeKind, approx mgl64.Vec3) error {
	pos := [3]float64(approx)
	return c.Send(protocol.Command{Type: protocol.CommandSpawn, Shape: shape.String(), Position: &pos})
}

func (c *Client) Delete(id models.ObjectID) error {
	return c.Send(protocol.Command{Type: protocol.CommandDelete, Object: id})
}

func (c *Client) ToggleDeleteMode() error {
	return c.Send(protocol.Command{Type: protocol.CommandToggleDeleteMode})
}

func (c *Client) ClearAll() error {
	return c.Send(protocol.Command{Type: protocol.CommandClearAll})
}

// SetPose reports where a source is this frame.
func (c *Client) SetPose(source models.SourceID, pose models.Pose) error {
	pos := [3]float64(pose.Position)
	q := pose.Orientation
	rot := [4]float64{q.X(), q.Y(), q.Z(), q.W}
	return c.Send(protocol.Command{Type: protocol.CommandPose, Source: source, Position: &pos, Orientation: &rot})
}

func (c *Client) Press(source models.SourceID, target protocol.Target) error {
	return c.Send(protocol.Command{Type: protocol.CommandPress, Source: source, Target: &target})
}

// Grab presses source on an interactable object.
func (c *Client) Grab(source models.SourceID, id models.ObjectID) error {
	return c.Press(source, protocol.Target{Role: protocol.RoleInteractable, Object: id})
}

func (c *Client) Release(source models.SourceID) error {
	return c.Send(protocol.Command{Type: protocol.CommandRelease, Source: source})
}

// Hover points source at target; nil clears the hover.
func (c *Client) Hover(source models.SourceID, target *protocol.Target) error {
	return c.Send(protocol.Command{Type: protocol.CommandHover, Source: source, Target: target})
}

// OnMessage registers a handler for one message type.
func (c *Client) OnMessage(msgType protocol.MessageType, handler MessageHandler) {
	c.handlerMutex.Lock()
	defer c.handlerMutex.Unlock()
	c.handlers[msgType] = append(c.handlers[msgType], handler)
}

// Next returns the next message received from the server.
func (c *Client) Next(ctx context.Context) (protocol.Message, error) {
	select {
	case msg, ok := <-c.inbox:
		if !ok {
			return protocol.Message{}, c.closeReason()
		}
		return msg, nil
	case <-ctx.Done():
		return protocol.Message{}, ctx.Err()
	}
}

// WaitFor discards messages until match accepts one.
func (c *Client) WaitFor(ctx context.Context, match func(protocol.Message) bool) (protocol.Message, error) {
	for {
		msg, err := c.Next(ctx)
		if err != nil {
			return protocol.Message{}, err
		}
		if match(msg) {
			return msg, nil
		}
	}
}

// WaitForState waits for a state message accepted by match.
func (c *Client) WaitForState(ctx context.Context, match func(protocol.Message) bool) (protocol.Message, error) {
	return c.WaitFor(ctx, func(m protocol.Message) bool {
		return m.Type == protocol.MessageState && m.State != nil && match(m)
	})
}

func (c *Client) ID() string { return c.id }

func (c *Client) IsConnected() bool { return atomic.LoadInt32(&c.connected) == 1 }

func (c *Client) IsClosed() bool { return atomic.LoadInt32(&c.closed) == 1 }

func (c *Client) closeReason() error {
	if err, ok := c.readErr.Load().(error); ok {
		return err
	}
	return ErrClientClosed
}

func (c *Client) messageReceiver() {
	defer c.workerGroup.Done()
	defer close(c.inbox)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				c.readErr.Store(err)
				atomic.StoreInt32(&c.connected, 0)
				c.logger.Warn("Connection lost", log.Error(err))
			}
			return
		}

		msg, err := c.codec.DecodeMessage(data)
		if err != nil {
			c.logger.Warn("Invalid message from server", log.Error(err))
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *Client) handleMessage(msg protocol.Message) {
	c.handlerMutex.RLock()
	handlers := c.handlers[msg.Type]
	c.handlerMutex.RUnlock()
	for _, h := range handlers {
		h(msg)
	}

	select {
	case c.inbox <- msg:
	default:
		c.logger.Debug("Inbox full, dropping message", log.String("type", string(msg.Type)))
	}
}
