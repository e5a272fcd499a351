// Package wsserver serves the single /ws route described in spec.md
// §4.6: each connection subscribes to the event bus and receives every
// published exporter.Event as a JSON text frame until either side
// closes. Grounded on the upgrade-then-forward shape of
// nmxmxh-master-ovasabi's internal/server/ws/websocket.go, stripped of
// its campaign/user routing and Redis fan-in (nothing here needs
// per-client addressing: every connection gets the same bus) and built
// on the same github.com/gorilla/websocket dependency that pack repo
// already pins.
package wsserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/IceDynamix/reliquary-archiver-go/internal/bus"
	"github.com/IceDynamix/reliquary-archiver-go/internal/exporter"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Server serves /ws on a single reconfigurable TCP port (spec.md §4.6
// "Reconfiguring the port tears down and rebuilds the listener; in-
// flight sessions close cleanly").
type Server struct {
	b *bus.Bus

	mu    sync.Mutex
	ln    net.Listener
	conns map[*websocket.Conn]struct{}
}

// New constructs a Server that subscribes each connection to b.
func New(b *bus.Bus) *Server {
	return &Server{b: b, conns: make(map[*websocket.Conn]struct{})}
}

// Reconfigure binds a new listener on port, then closes the previous
// listener and every currently open session. Each session's
// forward loop observes the close as a read error and tears itself
// down cleanly.
func (s *Server) Reconfigure(port int) error {
	ln, err := net.Listen("tcp", fmt.Sprintf("0.0.0.0:%d", port))
	if err != nil {
		return fmt.Errorf("wsserver: listen on port %d: %w", port, err)
	}

	s.mu.Lock()
	old := s.ln
	s.ln = ln
	conns := make([]*websocket.Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}
	for _, c := range conns {
		c.Close()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	go func() {
		err := http.Serve(ln, mux)
		if err != nil && !errors.Is(err, net.ErrClosed) {
			slog.Error("wsserver: listener stopped", "port", port, "err", err)
		}
	}()

	slog.Info("wsserver: listening", "port", port)
	return nil
}

// Addr returns the current listener's address, or nil if not listening.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Close tears down the listener and every open session.
func (s *Server) Close() error {
	s.mu.Lock()
	ln := s.ln
	s.ln = nil
	conns := make([]*websocket.Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
	if ln != nil {
		return ln.Close()
	}
	return nil
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("wsserver: upgrade failed", "err", err, "remote", r.RemoteAddr)
		return
	}

	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	id, events, unsubscribe := s.b.Subscribe()
	defer unsubscribe()
	slog.Info("wsserver: client connected", "subscriber_id", id, "remote", r.RemoteAddr)

	closed := make(chan struct{})
	go s.discardInbound(conn, closed)

	for {
		select {
		case <-closed:
			slog.Info("wsserver: client disconnected", "subscriber_id", id)
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(conn, ev); err != nil {
				slog.Warn("wsserver: write failed, closing session", "err", err, "subscriber_id", id)
				return
			}
		}
	}
}

// discardInbound reads and drops every frame the client sends (spec.md
// §4.6: "inbound client frames are discarded"); it closes done once
// ReadMessage reports the connection is gone, which is also how the
// forward loop notices a client-initiated close.
func (s *Server) discardInbound(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

type wireEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

func writeEvent(conn *websocket.Conn, ev exporter.Event) error {
	payload, err := eventPayload(ev)
	if err != nil {
		return err
	}
	return conn.WriteJSON(wireEvent{Event: ev.EventName(), Data: payload})
}

// eventPayload renders an exporter.Event's data in the same document
// shape the full export uses (spec.md §6 "<payload> is the event's
// data as above").
func eventPayload(ev exporter.Event) (interface{}, error) {
	switch e := ev.(type) {
	case exporter.InitialScan:
		return e.Export.Document(), nil
	case exporter.GachaResultEvent:
		return e.Result, nil
	case exporter.UpdateGachaFunds:
		return exporter.ExportGachaFunds(e.Funds), nil
	case exporter.UpdateMaterials:
		return exporter.ExportMaterials(e.Materials), nil
	case exporter.UpdateLightCones:
		return exporter.ExportLightCones(e.LightCones), nil
	case exporter.UpdateRelics:
		return exporter.ExportRelics(e.Relics), nil
	case exporter.UpdateCharacters:
		return exporter.ExportCharacters(e.Characters), nil
	case exporter.DeleteRelics:
		return e.UIDs, nil
	case exporter.DeleteLightCones:
		return e.UIDs, nil
	case exporter.GapMarker:
		return e, nil
	default:
		return nil, fmt.Errorf("wsserver: unknown event type %T", ev)
	}
}
