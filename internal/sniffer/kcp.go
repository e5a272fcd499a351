package sniffer

import "encoding/binary"

// kcpHeaderLen is the size of a classic KCP segment header: conv(4),
// cmd(1), frg(1), wnd(2), ts(4), sn(4), una(4), len(4) — the field set
// spec.md §4.2 names explicitly.
const kcpHeaderLen = 24

type kcpSegment struct {
	conv uint32
	cmd  byte
	frg  byte
	wnd  uint16
	ts   uint32
	sn   uint32
	una  uint32
	data []byte
}

// parseKCPSegment parses one KCP segment from the front of buf and
// returns it along with the remainder of buf (a single datagram may
// carry several concatenated segments).
func parseKCPSegment(buf []byte) (kcpSegment, []byte, bool) {
	if len(buf) < kcpHeaderLen {
		return kcpSegment{}, nil, false
	}

	seg := kcpSegment{
		conv: binary.LittleEndian.Uint32(buf[0:4]),
		cmd:  buf[4],
		frg:  buf[5],
		wnd:  binary.LittleEndian.Uint16(buf[6:8]),
		ts:   binary.LittleEndian.Uint32(buf[8:12]),
		sn:   binary.LittleEndian.Uint32(buf[12:16]),
		una:  binary.LittleEndian.Uint32(buf[16:20]),
	}
	length := binary.LittleEndian.Uint32(buf[20:24])

	rest := buf[kcpHeaderLen:]
	if uint32(len(rest)) < length {
		return kcpSegment{}, nil, false
	}

	seg.data = rest[:length]
	return seg, rest[length:], true
}

type pendingSegment struct {
	data []byte
	frg  byte
}

// reassembler reconstructs complete KCP messages from segments that may
// arrive slightly out of order, by waiting for a contiguous run of
// sequence numbers ending in a segment whose frg is 0. A reassembler is
// created at each handshake, so it expects the conversation's sequence
// numbers to start at 0.
//
// This is a reassembler only: the sniffer is a passive observer with
// nothing to acknowledge back to either peer (spec.md §4.2 step 3), so
// there is no retransmission or send-window bookkeeping here, only the
// receive side.
type reassembler struct {
	nextSN  uint32
	pending map[uint32]pendingSegment
	partial []byte
}

func newReassembler() *reassembler {
	return &reassembler{pending: make(map[uint32]pendingSegment)}
}

// feed stores one segment and returns every complete message that the
// arrival of this segment unblocks, in sequence-number order.
func (r *reassembler) feed(seg kcpSegment) [][]byte {
	r.pending[seg.sn] = pendingSegment{data: seg.data, frg: seg.frg}

	var complete [][]byte
	for {
		next, ok := r.pending[r.nextSN]
		if !ok {
			break
		}
		delete(r.pending, r.nextSN)
		r.partial = append(r.partial, next.data...)
		r.nextSN++

		if next.frg == 0 {
			complete = append(complete, r.partial)
			r.partial = nil
		}
	}
	return complete
}
