// Package session implements the TCP session server: one reader goroutine
// per connection framing and decoding inbound messages, and a single event
// loop that owns the matching engine and drains its outbound messages.
// Grounded in the teacher's WebSocket Hub/Client pair
// (internal/ws/hub.go, internal/ws/client.go) — register/unregister
// channels, a buffered per-client send channel drained by a writePump —
// adapted from JSON-over-WebSocket framing to this protocol's
// header-then-fixed-payload TCP framing, and from the hub's mutex-guarded
// client map to a single owning goroutine per §5's no-locks model.
package session

import (
	"bufio"
	"context"
	"io"
	"net"
	"time"

	"github.com/abdoElHodaky/cda-exchange/internal/matching"
	"github.com/abdoElHodaky/cda-exchange/internal/protocol"
	"github.com/abdoElHodaky/cda-exchange/internal/timer"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

const sendBuffer = 256

// ioPoolCapacity bounds the number of concurrently running per-session
// read/write pumps. Each pump blocks for the lifetime of its connection,
// so this is sized generously rather than tuned for short-task throughput.
const ioPoolCapacity = 4096

// taggedMessage is an inbound message annotated with the session that sent
// it, the unit the event loop actually consumes.
type taggedMessage struct {
	sender  matching.SessionID
	message protocol.Message
}

// Session is one connected client: a TCP connection plus the buffered
// outbound channel its writePump drains. Only the event loop goroutine
// mutates Server.sessions; a Session's own fields besides send/conn are
// immutable after construction.
type Session struct {
	id   matching.SessionID
	conn net.Conn
	send chan []byte
}

func (s *Session) writePump(logger *zap.Logger) {
	defer s.conn.Close()
	for payload := range s.send {
		if _, err := s.conn.Write(payload); err != nil {
			logger.Debug("session: write failed, closing", zap.Uint64("session_id", uint64(s.id)), zap.Error(err))
			return
		}
	}
}

// Server accepts TCP connections and runs the single event loop that owns
// the engine, the session table, and the expiry scheduler. Next even id is
// handed to real TCP sessions; odd ids are reserved for internal listener
// registrations that want broadcast traffic without a socket.
type Server struct {
	listener net.Listener
	engine   *matching.Engine
	timers   *timer.Scheduler
	logger   *zap.Logger
	ioPool   *ants.Pool

	inbound    chan taggedMessage
	register   chan *Session
	unregister chan matching.SessionID
	listeners  chan listenerRegistration

	nextSessionID  matching.SessionID
	nextListenerID matching.SessionID
}

type listenerRegistration struct {
	id         matching.SessionID
	sink       chan<- []byte
	registered chan<- matching.SessionID
}

// New constructs a Server bound to addr, driving engine and timers from
// its event loop once Run is called.
func New(addr string, engine *matching.Engine, timers *timer.Scheduler, logger *zap.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	pool, err := ants.NewPool(ioPoolCapacity, ants.WithNonblocking(false))
	if err != nil {
		ln.Close()
		return nil, err
	}
	return &Server{
		listener:       ln,
		engine:         engine,
		timers:         timers,
		logger:         logger,
		ioPool:         pool,
		inbound:        make(chan taggedMessage, 1024),
		register:       make(chan *Session),
		unregister:     make(chan matching.SessionID),
		listeners:      make(chan listenerRegistration),
		nextSessionID:  2,
		nextListenerID: 1,
	}, nil
}

// Addr returns the bound listener address, useful when addr was "host:0".
func (srv *Server) Addr() net.Addr {
	return srv.listener.Addr()
}

// RegisterListener adds an internal, non-socket recipient of broadcast
// traffic and returns its session id and a channel it
// must drain. The returned id is odd, distinguishing it from real sessions.
func (srv *Server) RegisterListener(ctx context.Context) (matching.SessionID, <-chan []byte) {
	sink := make(chan []byte, sendBuffer)
	registered := make(chan matching.SessionID, 1)
	select {
	case srv.listeners <- listenerRegistration{sink: sink, registered: registered}:
	case <-ctx.Done():
		close(sink)
		return 0, sink
	}
	return <-registered, sink
}

// Run accepts connections until ctx is cancelled, driving the single event
// loop in the current goroutine. It blocks until ctx is cancelled, then
// closes the listener and returns.
func (srv *Server) Run(ctx context.Context) error {
	go srv.acceptLoop(ctx)
	srv.eventLoop(ctx)
	return nil
}

func (srv *Server) acceptLoop(ctx context.Context) {
	for {
		conn, err := srv.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				srv.logger.Warn("session: accept failed", zap.Error(err))
				return
			}
		}
		conn := conn
		if err := srv.ioPool.Submit(func() { srv.onAccept(ctx, conn) }); err != nil {
			srv.logger.Warn("session: io pool saturated, rejecting connection", zap.Error(err))
			conn.Close()
		}
	}
}

func (srv *Server) onAccept(ctx context.Context, conn net.Conn) {
	s := &Session{conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case srv.register <- s:
	case <-ctx.Done():
		conn.Close()
		return
	}
	if err := srv.ioPool.Submit(func() { s.writePump(srv.logger) }); err != nil {
		srv.logger.Warn("session: io pool saturated, running writePump inline", zap.Error(err))
		go s.writePump(srv.logger)
	}
	srv.readPump(ctx, s)
}

// readPump consumes 1+payload_size(type) bytes per message and delivers
// the decoded message to the event loop. A short read or decode error
// terminates only this session.
func (srv *Server) readPump(ctx context.Context, s *Session) {
	defer func() {
		select {
		case srv.unregister <- s.id:
		case <-ctx.Done():
		}
	}()

	r := bufio.NewReader(s.conn)
	for {
		header, err := r.ReadByte()
		if err != nil {
			if err != io.EOF {
				srv.logger.Debug("session: header read failed", zap.Error(err))
			}
			return
		}

		msgType, err := protocol.LookupByHeader(header)
		if err != nil {
			srv.logger.Warn("session: unknown message header, terminating session", zap.Error(err))
			return
		}
		size, _ := msgType.PayloadSize()

		payload := make([]byte, size)
		if _, err := io.ReadFull(r, payload); err != nil {
			srv.logger.Debug("session: short read, terminating session", zap.Error(err))
			return
		}

		msg, err := protocol.Decode(msgType, payload)
		if err != nil {
			srv.logger.Warn("session: malformed payload, terminating session", zap.Error(err))
			return
		}

		select {
		case srv.inbound <- taggedMessage{sender: s.id, message: msg}:
		case <-ctx.Done():
			return
		}
	}
}

// eventLoop is the single owner of the session table, the engine, and the
// scheduler. It never touches engine/book/store state from any other
// goroutine.
func (srv *Server) eventLoop(ctx context.Context) {
	sessions := make(map[matching.SessionID]*Session)
	listeners := make(map[matching.SessionID]chan<- []byte)

	for {
		select {
		case <-ctx.Done():
			srv.listener.Close()
			for _, s := range sessions {
				close(s.send)
			}
			srv.ioPool.Release()
			return

		case s := <-srv.register:
			s.id = srv.nextSessionID
			srv.nextSessionID += 2
			sessions[s.id] = s

		case id := <-srv.unregister:
			if s, ok := sessions[id]; ok {
				close(s.send)
				delete(sessions, id)
			}

		case reg := <-srv.listeners:
			id := srv.nextListenerID
			srv.nextListenerID += 2
			listeners[id] = reg.sink
			reg.registered <- id

		case tm := <-srv.inbound:
			out := srv.engine.Handle(tm.sender, tm.message, time.Now())
			srv.drain(sessions, listeners, out)

		case expiry := <-srv.timers.Deliveries():
			out := srv.engine.DeliverExpiry(expiry, time.Now())
			srv.drain(sessions, listeners, out)
		}
	}
}

func (srv *Server) drain(sessions map[matching.SessionID]*Session, listeners map[matching.SessionID]chan<- []byte, out []matching.Outbound) {
	for _, o := range out {
		payload := protocol.Encode(o.Message)
		if o.Broadcast {
			for _, s := range sessions {
				deliver(s.send, payload)
			}
			for _, sink := range listeners {
				deliver(sink, payload)
			}
			continue
		}
		if s, ok := sessions[o.Target]; ok {
			deliver(s.send, payload)
		} else if sink, ok := listeners[o.Target]; ok {
			deliver(sink, payload)
		}
	}
}

// deliver drops the message rather than blocking the event loop if a
// recipient's buffer is full, matching the hub's close-and-drop behavior
// for a backed-up client.
func deliver(ch chan<- []byte, payload []byte) {
	select {
	case ch <- payload:
	default:
	}
}
