package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/objectroom/internal/config"
	"github.com/zeusync/objectroom/internal/core/events"
	"github.com/zeusync/objectroom/internal/core/events/bus"
	"github.com/zeusync/objectroom/internal/core/models"
	"github.com/zeusync/objectroom/internal/core/observability/log"
	"github.com/zeusync/objectroom/internal/core/protocol"
	"github.com/zeusync/objectroom/internal/core/room"
)

const (
	commandBufferSize = 256
	shutdownTimeout   = 5 * time.Second
)

// Server exposes a Room to browsers over websocket. A single frame loop
// goroutine owns the room: client commands are queued and applied between
// ticks, so room mutations never interleave.
type Server struct {
	config config.ServerConfig
	room   *room.Room
	bus    bus.EventBus
	logger log.Log
	codec  protocol.JSONCodec
	auth   TokenAuth

	commands chan inbound
	stopChan chan struct{}
	stopOnce sync.Once
	subs     []bus.Subscription

	clientsMu   sync.RWMutex
	clients     map[string]*clientSession
	clientCount int64 // atomic

	running int32 // atomic bool
	health  atomic.Pointer[health]

	// owned by the frame loop
	lastDigest uint64

	httpServer *http.Server
}

type inbound struct {
	client *clientSession
	cmd    protocol.Command
	// sync asks for the current state to be sent to client only.
	sync bool
}

func NewServer(cfg config.ServerConfig, rm *room.Room, eventBus bus.EventBus, logger log.Log) *Server {
	s := &Server{
		config:   cfg,
		room:     rm,
		bus:      eventBus,
		logger:   logger.With(log.String("component", "server")),
		auth:     TokenAuth{Token: cfg.AuthToken},
		commands: make(chan inbound, commandBufferSize),
		stopChan: make(chan struct{}),
		clients:  make(map[string]*clientSession),
	}

	s.subscribe(events.SpawnRejected, func(e bus.Event) error {
		if p, ok := e.Data().(events.Rejected); ok {
			s.broadcastMessage(protocol.Message{Type: protocol.MessageNotice, Text: capitalize(p.Reason)})
		}
		return nil
	})
	s.subscribe(events.HapticPulse, func(e bus.Event) error {
		if p, ok := e.Data().(events.Haptic); ok {
			s.broadcastMessage(protocol.Message{
				Type:       protocol.MessageHaptic,
				Source:     p.Source,
				Intensity:  p.Intensity,
				DurationMS: p.Duration.Milliseconds(),
			})
		}
		return nil
	})

	s.logger.Info("Server created",
		log.String("listen_addr", cfg.ListenAddr),
		log.Duration("tick", cfg.TickInterval()))
	return s
}

func (s *Server) subscribe(eventType string, handler bus.EventHandler) {
	sub, err := s.bus.Subscribe(eventType, handler)
	if err != nil {
		s.logger.Error("Failed to subscribe", log.String("event", eventType), log.Error(err))
		return
	}
	s.subs = append(s.subs, sub)
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve runs the HTTP server and the frame loop on ln until ctx is cancelled
// or one of them fails.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return ErrServerAlreadyRunning
	}
	defer atomic.StoreInt32(&s.running, 0)

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Server listening", log.String("addr", ln.Addr().String()))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return s.RunFrames(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.Close()
		return s.httpServer.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	if errors.Is(err, ErrServerClosed) {
		err = nil
	}
	s.logger.Info("Server stopped")
	return err
}

// RunFrames is the frame loop. It applies queued commands as they arrive and
// ticks the room at the configured rate until ctx is done (nil) or Close is
// called (ErrServerClosed).
func (s *Server) RunFrames(ctx context.Context) error {
	ticker := time.NewTicker(s.config.TickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stopChan:
			return ErrServerClosed
		case in := <-s.commands:
			s.apply(in)
		case now := <-ticker.C:
			if err := s.room.Tick(now); err != nil {
				s.logger.Warn("Frame failed", log.Int64("frame", s.room.Frame()), log.Error(err))
			}
			s.publishState()
		}
	}
}

// Close disconnects every client and stops the frame loop. It is idempotent.
func (s *Server) Close() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		for _, sub := range s.subs {
			_ = s.bus.Unsubscribe(sub)
		}

		s.clientsMu.Lock()
		for _, c := range s.clients {
			c.close()
		}
		s.clientsMu.Unlock()
	})
}

func (s *Server) apply(in inbound) {
	if in.sync {
		st := s.room.Snapshot()
		s.sendMessage(in.client, protocol.Message{Type: protocol.MessageState, State: &st})
		return
	}

	cmd := in.cmd
	var err error
	switch cmd.Type {
	case protocol.CommandPose:
		err = s.room.SetPose(cmd.Source, cmd.Pose())
	case protocol.CommandPress, protocol.CommandRelease, protocol.CommandHover:
		var ev models.InputEvent
		if ev, err = cmd.InputEvent(); err == nil {
			err = s.room.Dispatch(cmd.Source, ev)
		}
	case protocol.CommandSpawn:
		var shape models.ShapeKind
		if shape, err = models.ParseShapeKind(cmd.Shape); err == nil {
			_, err = s.room.Spawn(shape, cmd.Vec3())
		}
	case protocol.CommandDelete:
		err = s.room.Delete(cmd.Object)
	case protocol.CommandToggleDeleteMode:
		s.room.ToggleDeleteMode()
	case protocol.CommandClearAll:
		n := s.room.ClearAll()
		s.logger.Info("Room cleared", log.Int("objects", n))
	}
	if err != nil {
		s.reportError(in.client, cmd, err)
	}
}

// reportError logs a rejected command. Stale ids, unknown sources and a third
// hand are silent no-ops; capacity is already announced as a notice.
func (s *Server) reportError(c *clientSession, cmd protocol.Command, err error) {
	switch {
	case errors.Is(err, room.ErrUnknownObject),
		errors.Is(err, room.ErrInvalidGrabSource),
		errors.Is(err, room.ErrObjectFullyHeld):
		s.logger.Debug("Command ignored", log.String("type", string(cmd.Type)), log.Error(err))
	case errors.Is(err, room.ErrCapacityExceeded):
	default:
		s.logger.Warn("Command rejected", log.String("type", string(cmd.Type)), log.Error(err))
		s.sendMessage(c, protocol.Message{Type: protocol.MessageError, Text: err.Error()})
	}
}

// publishState broadcasts the room state when it changed since the last frame.
func (s *Server) publishState() {
	st := s.room.Snapshot()
	s.health.Store(&health{
		Status:     "ok",
		Objects:    st.Count,
		MaxObjects: st.MaxObjects,
		DeleteMode: st.DeleteMode,
		Frame:      s.room.Frame(),
	})

	data, err := s.codec.EncodeMessage(protocol.Message{Type: protocol.MessageState, State: &st})
	if err != nil {
		s.logger.Error("Failed to encode state", log.Error(err))
		return
	}
	digest := xxhash.Sum64(data)
	if digest == s.lastDigest {
		return
	}
	s.lastDigest = digest
	s.broadcast(data)
}

func (s *Server) broadcastMessage(msg protocol.Message) {
	data, err := s.codec.EncodeMessage(msg)
	if err != nil {
		s.logger.Error("Failed to encode message", log.String("type", string(msg.Type)), log.Error(err))
		return
	}
	s.broadcast(data)
}

func (s *Server) broadcast(data []byte) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for _, c := range s.clients {
		c.enqueue(data, s.logger)
	}
}

func (s *Server) sendMessage(c *clientSession, msg protocol.Message) {
	if c == nil {
		return
	}
	data, err := s.codec.EncodeMessage(msg)
	if err != nil {
		s.logger.Error("Failed to encode message", log.String("type", string(msg.Type)), log.Error(err))
		return
	}
	c.enqueue(data, s.logger)
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
