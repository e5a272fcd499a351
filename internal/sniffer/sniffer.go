package sniffer

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/IceDynamix/reliquary-archiver-go/internal/reference"
)

// idleTimeout is the silence duration after which an Established
// session is considered Disconnected (spec.md §4.2 "Failure semantics").
const idleTimeout = 30 * time.Second

// Sniffer holds one session per source_id and turns raw datagrams into
// Events. It is not safe for concurrent use from multiple goroutines;
// the merge task that owns the capture stream is expected to call Feed
// serially, matching spec.md §5's single-task ordering guarantee within
// one source_id.
type Sniffer struct {
	db       *reference.Database
	sessions map[uint64]*session
	now      func() time.Time
}

// NewSniffer constructs a Sniffer backed by db's session-key table.
func NewSniffer(db *reference.Database) *Sniffer {
	return &Sniffer{
		db:       db,
		sessions: make(map[uint64]*session),
		now:      time.Now,
	}
}

// Feed classifies and processes one datagram for sourceID, returning
// every Event it produces.
func (s *Sniffer) Feed(sourceID uint64, data []byte) []Event {
	sess, ok := s.sessions[sourceID]
	if !ok {
		sess = newSession()
		s.sessions[sourceID] = sess
	}
	sess.lastSeen = s.now()

	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case markerDisconnect:
		return s.handleDisconnect(sourceID, sess)
	case markerHandshakeReq:
		return s.handleHandshakeReq(sourceID, sess, data)
	case markerHandshakeAck:
		return s.handleHandshakeAck(sourceID, sess)
	}

	if sess.phase != phaseEstablished {
		return nil
	}
	return s.feedData(sourceID, sess, data)
}

// Tick transitions any session that has been silent past idleTimeout to
// Disconnected. The caller is expected to invoke this periodically;
// spec.md §5 notes there is no packet-level timeout, only a session
// idle timeout.
func (s *Sniffer) Tick() []Event {
	var events []Event
	now := s.now()
	for sourceID, sess := range s.sessions {
		if sess.phase == phaseEstablished && now.Sub(sess.lastSeen) >= idleTimeout {
			sess.resetToAwaitingHandshake()
			sess.phase = phaseDisconnected
			events = append(events, Disconnected{SourceID: sourceID})
		}
	}
	return events
}

func (s *Sniffer) handleDisconnect(sourceID uint64, sess *session) []Event {
	sess.resetToAwaitingHandshake()
	sess.phase = phaseDisconnected
	return []Event{Disconnected{SourceID: sourceID}}
}

func (s *Sniffer) handleHandshakeReq(sourceID uint64, sess *session, data []byte) []Event {
	if len(data) < handshakeReqLen {
		return []Event{FramingError{SourceID: sourceID, Reason: fmt.Errorf("handshake request too short: %d bytes", len(data))}}
	}

	versionID := binary.LittleEndian.Uint32(data[1:5])
	nonce := binary.LittleEndian.Uint64(data[5:13])

	presharedKey, ok := s.db.SessionKey(versionID)
	if !ok {
		return []Event{DecryptionKeyMissing{SourceID: sourceID, VersionID: versionID}}
	}

	sess.presharedKey = presharedKey
	sess.nonce = nonce
	sess.reasm = newReassembler()
	return nil
}

func (s *Sniffer) handleHandshakeAck(sourceID uint64, sess *session) []Event {
	if !sess.handshakeComplete() {
		return []Event{FramingError{SourceID: sourceID, Reason: fmt.Errorf("handshake ack observed before a handshake request")}}
	}
	sess.phase = phaseEstablished
	return []Event{HandshakeEstablished{SourceID: sourceID}}
}

func (s *Sniffer) feedData(sourceID uint64, sess *session, data []byte) []Event {
	var events []Event

	buf := data
	for len(buf) > 0 {
		seg, rest, ok := parseKCPSegment(buf)
		if !ok {
			events = append(events, FramingError{SourceID: sourceID, Reason: fmt.Errorf("truncated KCP segment, %d bytes left", len(buf))})
			return events
		}
		buf = rest

		for _, msg := range sess.reasm.feed(seg) {
			plain := append([]byte(nil), msg...)

			cipher, err := newSessionCipher(sess.presharedKey, sess.nonce)
			if err != nil {
				events = append(events, FramingError{SourceID: sourceID, Reason: fmt.Errorf("deriving session cipher: %w", err)})
				continue
			}
			cipher.decrypt(plain)

			frames, err := parseFrames(plain)
			if err != nil {
				events = append(events, FramingError{SourceID: sourceID, Reason: err})
			}
			for _, f := range frames {
				events = append(events, Command{SourceID: sourceID, CommandID: f.commandID, Payload: f.payload})
			}
		}
	}

	return events
}
