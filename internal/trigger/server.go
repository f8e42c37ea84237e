package trigger

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"time"

	"github.com/frudas24/keytrigger/internal/metrics"
	"github.com/frudas24/keytrigger/internal/status"
)

// ErrPayloadTooLarge reports a message longer than Config.MaxPayload.
var ErrPayloadTooLarge = errors.New("payload too large")

// Publisher receives accepted triggers. Publish must return quickly.
type Publisher interface {
	Publish(ev TriggerEvent)
}

// Config controls the listener.
type Config struct {
	Addr        string
	MaxPayload  int
	ReadTimeout time.Duration
}

// ConnectionError wraps a failure while serving a single client.
type ConnectionError struct {
	Op     string
	Remote string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Remote, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Server accepts one message per connection and answers with a single line.
type Server struct {
	cfg     Config
	decoder *Decoder
	pub     Publisher
	sink    metrics.Sink
	events  status.Publisher

	mu     sync.Mutex
	ln     net.Listener
	closed bool
	conns  sync.WaitGroup
}

// NewServer creates a listener that hands decoded triggers to pub. pub is required.
func NewServer(cfg Config, decoder *Decoder, pub Publisher, sink metrics.Sink, events status.Publisher) (*Server, error) {
	if pub == nil {
		return nil, errors.New("trigger server requires a publisher")
	}
	if cfg.MaxPayload <= 0 {
		cfg.MaxPayload = 1024
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 2 * time.Second
	}
	if decoder == nil {
		decoder = NewDecoder()
	}
	if sink == nil {
		sink = metrics.NewNoopSink()
	}
	if events == nil {
		events = status.Discard
	}
	return &Server{cfg: cfg, decoder: decoder, pub: pub, sink: sink, events: events}, nil
}

// Listen binds the configured address. A bind failure is fatal to the caller.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	log.Printf("trigger: listening on %s", ln.Addr())
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Serve accepts connections until Close. It returns nil after Close.
func (s *Server) Serve() error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln == nil {
		return errors.New("trigger server not listening")
	}

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.isClosed() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else {
				backoff *= 2
			}
			if backoff > time.Second {
				backoff = time.Second
			}
			log.Printf("trigger: accept error: %v; retrying in %v", err, backoff)
			time.Sleep(backoff)
			continue
		}
		backoff = 0
		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handleConn(conn)
		}()
	}
}

// Close stops accepting and waits for in-flight connections.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	ln := s.ln
	s.mu.Unlock()

	var err error
	if ln != nil {
		err = ln.Close()
	}
	s.conns.Wait()
	return err
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Handle decodes payload, publishes accepted triggers and returns the response line.
// The trigger is published before the response is produced.
func (s *Server) Handle(payload []byte) string {
	if len(payload) > s.cfg.MaxPayload {
		return s.reject(&DecodeError{Payload: excerpt(payload), Err: ErrPayloadTooLarge})
	}
	ev, err := s.decoder.Decode(payload)
	if err != nil {
		return s.reject(err)
	}

	if ev.Legacy {
		log.Printf("trigger: legacy %s received", LegacyToken)
	} else {
		log.Printf("trigger: %s received symbolKey=%s scrip=%s futScrip=%s futScripBp=%s timestamp=%s",
			ev.Command, ev.SymbolKey, ev.Scrip, ev.FutScrip, ev.FutScripBp, ev.Timestamp)
	}
	s.pub.Publish(ev)
	s.sink.TriggerAccepted(string(ev.Command))
	s.events.Publish(status.Event{
		Type:    status.EventTrigger,
		ID:      ev.ID.String(),
		Command: string(ev.Command),
		Scrip:   ev.Scrip,
	})
	return ev.Command.Ack()
}

func (s *Server) reject(err error) string {
	reason := metrics.RejectDecodeError
	if errors.Is(err, ErrUnknownCommand) {
		reason = metrics.RejectUnknownCommand
	}
	log.Printf("trigger: rejected: %v", err)
	s.sink.TriggerRejected(reason)
	s.events.Publish(status.Event{Type: status.EventRejected, Detail: reason, Error: err.Error()})
	return ResponseUnknown
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	remote := conn.RemoteAddr().String()

	// One spare byte tells an exact-size message from an oversized one.
	buf := make([]byte, s.cfg.MaxPayload+1)
	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	n, err := conn.Read(buf)
	if err != nil && n == 0 && !errors.Is(err, io.EOF) {
		s.connError(&ConnectionError{Op: "read", Remote: remote, Err: err})
		return
	}

	resp := s.Handle(buf[:n])

	_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.ReadTimeout))
	if _, err := io.WriteString(conn, resp+"\n"); err != nil {
		s.connError(&ConnectionError{Op: "write", Remote: remote, Err: err})
		return
	}
	if n > s.cfg.MaxPayload {
		// Unread input at close resets the connection and can drop the response.
		_ = conn.SetReadDeadline(time.Now().Add(50 * time.Millisecond))
		_, _ = io.Copy(io.Discard, io.LimitReader(conn, 64<<10))
	}
}

func (s *Server) connError(err *ConnectionError) {
	log.Printf("trigger: connection error: %v", err)
	s.sink.ConnectionError()
}
