// Package rpc is a websocket RPC session speaking [kind, payload] JSON frames.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 64 * 1024

	sendBuffer = 64
)

// Handler serves a call made by the peer. The returned value is sent back
// when the peer asked for a reply.
type Handler func(args []json.RawMessage, kwargs map[string]json.RawMessage) (any, error)

// Options configure a Session
type Options struct {
	Dispatcher Dispatcher
	Handlers   map[string]Handler
	OnClosed   func()
	Logger     *slog.Logger
	Header     http.Header
}

// Session is one websocket connection. Calls may be issued from any
// goroutine; callbacks run through the dispatcher.
type Session struct {
	conn       *websocket.Conn
	dispatcher Dispatcher
	handlers   map[string]Handler
	onClosed   func()
	logger     *slog.Logger

	mu      sync.Mutex
	nextID  int64
	pending map[int64]ReplyFunc
	closed  bool

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// Dial connects to rawURL and starts the session.
func Dial(ctx context.Context, rawURL string, opts Options) (*Session, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, rawURL, opts.Header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", rawURL, err)
	}
	return NewSession(conn, opts), nil
}

// NewSession wraps an established connection and starts its pumps.
func NewSession(conn *websocket.Conn, opts Options) *Session {
	if opts.Dispatcher == nil {
		opts.Dispatcher = Immediate
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{
		conn:       conn,
		dispatcher: opts.Dispatcher,
		handlers:   opts.Handlers,
		onClosed:   opts.OnClosed,
		logger:     logger.With(slog.String("component", "rpc"), slog.String("remote", conn.RemoteAddr().String())),
		pending:    make(map[int64]ReplyFunc),
		send:       make(chan []byte, sendBuffer),
		done:       make(chan struct{}),
	}

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go s.writePump()
	go s.readPump()
	return s
}

// Call invokes method on the peer. A nil reply sends the call without an id
// and no reply is expected. Calls on a closed session are dropped.
func (s *Session) Call(method string, args []any, kwargs map[string]any, reply ReplyFunc) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Debug("call on closed session dropped", slog.String("method", method))
		return
	}
	var id *int64
	if reply != nil {
		s.nextID++
		n := s.nextID
		id = &n
		s.pending[n] = reply
	}
	s.mu.Unlock()

	data, err := encodeCall(id, method, args, kwargs)
	if err != nil {
		s.logger.Error("failed to encode call", slog.String("method", method), slog.Any("error", err))
		if id != nil {
			s.resolve(*id, Reply{Err: err})
		}
		return
	}
	s.logger.Debug("call", slog.String("method", method))
	s.enqueue(data)
}

// Close shuts the session down. Frames already queued are still written;
// pending replies are discarded.
func (s *Session) Close() error {
	s.shutdown()
	return nil
}

// Done is closed once the session has shut down
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) enqueue(data []byte) {
	select {
	case s.send <- data:
	case <-s.done:
	}
}

func (s *Session) resolve(id int64, reply Reply) {
	s.mu.Lock()
	fn, ok := s.pending[id]
	delete(s.pending, id)
	s.mu.Unlock()

	if !ok {
		s.logger.Warn("reply for unknown call", slog.Int64("id", id))
		return
	}
	s.dispatcher.Post(func() { fn(reply) })
}

func (s *Session) shutdown() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		dropped := len(s.pending)
		s.pending = make(map[int64]ReplyFunc)
		s.mu.Unlock()

		close(s.done)
		if dropped > 0 {
			s.logger.Debug("discarded pending calls", slog.Int("count", dropped))
		}
		if s.onClosed != nil {
			s.dispatcher.Post(s.onClosed)
		}
	})
}

// readPump pumps frames from the connection until it fails.
func (s *Session) readPump() {
	defer s.shutdown()

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read error", slog.Any("error", err))
			}
			return
		}

		frame, err := DecodeFrame(message)
		if err != nil {
			s.logger.Warn("dropping malformed frame", slog.Any("error", err))
			continue
		}
		s.handleFrame(frame)
	}
}

func (s *Session) handleFrame(f *Frame) {
	switch f.Kind {
	case KindReturn:
		s.resolve(*f.ID, Reply{Result: f.Value})
	case KindError:
		s.resolve(*f.ID, Reply{Err: &RemoteError{Message: f.Error}})
	case KindCall:
		s.handleCall(f)
	}
}

func (s *Session) handleCall(f *Frame) {
	handler, ok := s.handlers[f.Method]
	if !ok {
		s.logger.Warn("call to unknown method", slog.String("method", f.Method))
		if f.ID != nil {
			s.respond(*f.ID, nil, fmt.Errorf("unknown method %q", f.Method))
		}
		return
	}

	s.dispatcher.Post(func() {
		result, err := handler(f.Args, f.Kwargs)
		if f.ID != nil {
			s.respond(*f.ID, result, err)
		}
	})
}

func (s *Session) respond(id int64, result any, callErr error) {
	var data []byte
	var err error
	if callErr != nil {
		data, err = encodeError(id, callErr.Error())
	} else {
		data, err = encodeReturn(id, result)
	}
	if err != nil {
		s.logger.Error("failed to encode reply", slog.Int64("id", id), slog.Any("error", err))
		return
	}
	s.enqueue(data)
}

// writePump pumps queued frames to the connection and keeps it alive.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case message := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				s.logger.Warn("websocket write error", slog.Any("error", err))
				s.shutdown()
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.shutdown()
				return
			}

		case <-s.done:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			s.flush()
			s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// flush writes the frames queued before shutdown.
func (s *Session) flush() {
	for {
		select {
		case message := <-s.send:
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		default:
			return
		}
	}
}
