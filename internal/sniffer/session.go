package sniffer

import "time"

// phase is a session's position in the state machine of spec.md §4.2:
//
//	AwaitingHandshake -- handshake frames observed --> Established
//	Established       -- disconnect marker / idle   --> Disconnected
//	Disconnected      -- new handshake              --> AwaitingHandshake
type phase int

const (
	phaseAwaitingHandshake phase = iota
	phaseEstablished
	phaseDisconnected
)

// Datagram leading-byte markers the sniffer classifies on (GLOSSARY:
// "Handshake marker"). A real deployment's markers are whatever the
// proprietary client/server pair actually emits; these stand in for
// that fixed, external wire detail the same way internal/schema stands
// in for the message schema.
const (
	markerHandshakeReq byte = 0xff
	markerHandshakeAck byte = 0xfe
	markerDisconnect   byte = 0xfd

	handshakeReqLen = 1 + 4 + 8 // marker + version_id(u32 LE) + nonce(u64 LE)
)

// session is per-source_id sniffer state: reassembly buffers, the
// derived session key, and the handshake phase (spec.md §3 "Session").
//
// presharedKey and nonce (rather than a single long-lived keystream
// cursor) are what's retained between datagrams: each fully
// reassembled message gets its own freshly derived chacha20 keystream
// from the same session key material, so one dropped or reordered
// datagram can never desynchronize the rest of the session's traffic.
type session struct {
	phase        phase
	presharedKey []byte
	nonce        uint64
	reasm        *reassembler
	lastSeen     time.Time
}

func newSession() *session {
	return &session{phase: phaseAwaitingHandshake}
}

func (s *session) handshakeComplete() bool {
	return s.presharedKey != nil
}

func (s *session) resetToAwaitingHandshake() {
	s.phase = phaseAwaitingHandshake
	s.presharedKey = nil
	s.nonce = 0
	s.reasm = nil
}
