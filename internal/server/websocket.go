package server

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zeusync/objectroom/internal/core/observability/log"
	"github.com/zeusync/objectroom/internal/core/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The UI is usually served from another origin; the token gates access.
	CheckOrigin: func(*http.Request) bool { return true },
}

// clientSession is one connected browser.
type clientSession struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *clientSession) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// enqueue never blocks the frame loop; a client that cannot keep up loses
// messages until the next state frame.
func (c *clientSession) enqueue(data []byte, logger log.Log) {
	select {
	case <-c.done:
	case c.send <- data:
	default:
		logger.Warn("Client send buffer full, dropping message", log.String("client_id", c.id))
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Authorize(r); err != nil {
		s.logger.Warn("Rejected connection", log.String("remote", r.RemoteAddr), log.Error(err))
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", log.String("remote", r.RemoteAddr), log.Error(err))
		return
	}

	c := &clientSession{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
	if !s.register(c) {
		_ = conn.Close()
		return
	}
	defer s.unregister(c)

	s.sendMessage(c, protocol.Message{Type: protocol.MessageWelcome, ClientID: c.id})
	s.queue(inbound{client: c, sync: true})

	go s.writePump(c)
	s.readPump(c)
}

func (s *Server) register(c *clientSession) bool {
	select {
	case <-s.stopChan:
		return false
	default:
	}

	s.clientsMu.Lock()
	s.clients[c.id] = c
	s.clientsMu.Unlock()
	n := atomic.AddInt64(&s.clientCount, 1)

	s.logger.Info("Client connected",
		log.String("client_id", c.id),
		log.Int64("clients", n))
	return true
}

func (s *Server) unregister(c *clientSession) {
	s.clientsMu.Lock()
	delete(s.clients, c.id)
	s.clientsMu.Unlock()
	n := atomic.AddInt64(&s.clientCount, -1)
	c.close()

	s.logger.Info("Client disconnected",
		log.String("client_id", c.id),
		log.Int64("clients", n))
}

// queue hands a command to the frame loop. It gives up once the server stops.
func (s *Server) queue(in inbound) bool {
	select {
	case s.commands <- in:
		return true
	case <-s.stopChan:
		return false
	case <-in.client.done:
		return false
	}
}

func (s *Server) readPump(c *clientSession) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("Read failed", log.String("client_id", c.id), log.Error(err))
			}
			return
		}

		cmd, err := s.codec.DecodeCommand(data)
		if err != nil {
			s.logger.Debug("Invalid command", log.String("client_id", c.id), log.Error(err))
			s.sendMessage(c, protocol.Message{Type: protocol.MessageError, Text: err.Error()})
			continue
		}
		if !s.queue(inbound{client: c, cmd: cmd}) {
			return
		}
	}
}

func (s *Server) writePump(c *clientSession) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
			return
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.logger.Debug("Write failed", log.String("client_id", c.id), log.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
