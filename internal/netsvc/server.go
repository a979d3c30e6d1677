package netsvc

import (
	"io"
	"log"
	"net"

	"github.com/google/uuid"

	"github.com/Zombieliu/coinpusher/internal/protocol"
)

// Server is the accept/IO task (spec §5.1): it owns the listening socket
// and, per connection, a read goroutine and a write goroutine that never
// touch room state directly — they only push to Inbound and read from a
// Broadcaster subscription.
type Server struct {
	addr           string
	outboundFormat protocol.Format

	Inbound     *InboundQueue
	Broadcaster *Broadcaster
}

// NewServer builds a server bound to addr, publishing outbound frames in
// outboundFormat (the server-wide default, spec §6).
func NewServer(addr string, outboundFormat protocol.Format) *Server {
	return &Server{
		addr:           addr,
		outboundFormat: outboundFormat,
		Inbound:        NewInboundQueue(),
		Broadcaster:    NewBroadcaster(),
	}
}

// ListenAndServe binds the listening socket and accepts connections for
// the life of the process; it returns only if the bind fails. An accept
// error is logged and the loop keeps accepting. Each accepted connection
// is handled in its own goroutine and never blocks the accept loop.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	log.Printf("netsvc: listening on %s", s.addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Printf("netsvc: accept error: %v", err)
			continue
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	id := uuid.New()
	log.Printf("netsvc: connection %s opened from %s", id, conn.RemoteAddr())

	sub := s.Broadcaster.Subscribe()
	done := make(chan struct{})

	go s.writePump(conn, sub, id, done)
	s.readPump(conn, id)

	close(done)
	sub.Close()
	conn.Close()
	log.Printf("netsvc: connection %s closed", id)
}

// readPump decodes inbound frames and pushes them onto Inbound until the
// connection errors or sends an undecodable frame (spec §7: frame/codec
// errors close only the offending connection).
func (s *Server) readPump(conn net.Conn, id uuid.UUID) {
	for {
		format, payload, err := ReadFrame(conn)
		if err != nil {
			if err != io.EOF {
				log.Printf("netsvc: connection %s frame read error: %v", id, err)
			}
			return
		}

		msg, err := protocol.DecodeFromNode(format, payload)
		if err != nil {
			log.Printf("netsvc: connection %s decode error: %v", id, err)
			return
		}
		s.Inbound.Push(msg)
	}
}

// writePump drains the connection's broadcast subscription and encodes
// each outbound message onto the wire until done is closed or a write
// fails.
func (s *Server) writePump(conn net.Conn, sub *Subscription, id uuid.UUID, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case msg, ok := <-sub.Recv():
			if !ok {
				return
			}
			payload, err := protocol.EncodeToNode(s.outboundFormat, msg)
			if err != nil {
				log.Printf("netsvc: connection %s encode error: %v", id, err)
				continue
			}
			if err := WriteFrame(conn, s.outboundFormat, payload); err != nil {
				log.Printf("netsvc: connection %s frame write error: %v", id, err)
				return
			}
		}
	}
}
