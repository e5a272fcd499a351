// Package bus is the multi-producer, multi-subscriber broadcast of
// exporter events (spec.md §4.5), generalized from the registration
// pattern of internal/gameserver.ClientManager (a sync.RWMutex-guarded
// map of subscribers) to a channel-based fan-out rather than a
// direct-send-per-client model, since a bus subscriber here is a
// WebSocket connection reading at its own pace rather than a socket
// the publisher writes to directly.
package bus

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/IceDynamix/reliquary-archiver-go/internal/exporter"
)

// capacity is the bounded size of every subscriber's channel (spec.md
// §4.5's "bounded capacity (16 slots)").
const capacity = 16

// SnapshotFunc produces a synthetic InitialScan for a newly subscribed
// client, or ok=false if the exporter has not yet initialized.
type SnapshotFunc func() (exporter.Event, bool)

type subscriber struct {
	ch      chan exporter.Event
	dropped int64 // atomic; events this subscriber missed since its last GapMarker
}

// Bus fans decoded exporter events out to every subscriber.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]*subscriber
	snapshot    SnapshotFunc
}

// New constructs a Bus. snapshot is consulted every time a new
// subscriber joins (spec.md §4.5); pass nil if no snapshot source is
// available yet.
func New(snapshot SnapshotFunc) *Bus {
	return &Bus{
		subscribers: make(map[uuid.UUID]*subscriber),
		snapshot:    snapshot,
	}
}

// Subscribe registers a new subscriber and returns its id, receive
// channel, and an unsubscribe function. If the bus has a snapshot
// source and it reports the exporter is initialized, the new
// subscriber's first event is a synthetic InitialScan.
func (b *Bus) Subscribe() (uuid.UUID, <-chan exporter.Event, func()) {
	id := uuid.New()
	sub := &subscriber{ch: make(chan exporter.Event, capacity)}

	b.mu.Lock()
	b.subscribers[id] = sub
	b.mu.Unlock()

	if b.snapshot != nil {
		if ev, ok := b.snapshot(); ok {
			sub.ch <- ev
		}
	}

	return id, sub.ch, func() { b.unsubscribe(id) }
}

func (b *Bus) unsubscribe(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sub, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(sub.ch)
	}
}

// Publish delivers ev to every current subscriber without blocking. A
// subscriber that can't keep up accumulates a drop count instead of
// blocking the publisher; the next Publish call that finds room in its
// channel flushes a GapMarker carrying that count before anything
// else, so a resynchronizing subscriber always sees the gap before
// whatever event follows it.
func (b *Bus) Publish(ev exporter.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subscribers {
		if dropped := atomic.SwapInt64(&sub.dropped, 0); dropped > 0 {
			select {
			case sub.ch <- exporter.GapMarker{Dropped: int(dropped)}:
			default:
				atomic.AddInt64(&sub.dropped, dropped)
			}
		}

		select {
		case sub.ch <- ev:
		default:
			atomic.AddInt64(&sub.dropped, 1)
		}
	}
}

// SubscriberCount reports the current number of active subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
