package netsvc

import (
	"log"
	"sync"

	"github.com/Zombieliu/coinpusher/config"
	"github.com/Zombieliu/coinpusher/internal/protocol"
)

// Broadcaster is the outbound fan-out: every tick-produced message is
// published once and delivered to every current subscriber. Each
// subscriber has a bounded buffer (default 1000, spec §5); a subscriber
// that falls behind has its oldest buffered frame dropped to make room
// for the new one, and the drop is logged — publishers never block.
//
// Adapted from the car racer's ClientConnection.Send, which used a
// single-subscriber non-blocking-send-or-drop channel; here the same
// shape serves many subscribers at once.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

// NewBroadcaster returns an empty fan-out.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[*Subscription]struct{})}
}

// Subscription is one subscriber's bounded inbox.
type Subscription struct {
	ch       chan protocol.ToNode
	lagCount uint64
	b        *Broadcaster
}

// Recv returns the channel outbound messages arrive on.
func (s *Subscription) Recv() <-chan protocol.ToNode {
	return s.ch
}

// Close unsubscribes; no further messages are delivered to it.
func (s *Subscription) Close() {
	s.b.mu.Lock()
	delete(s.b.subs, s)
	s.b.mu.Unlock()
}

// Subscribe registers a new subscriber and returns its inbox.
func (b *Broadcaster) Subscribe() *Subscription {
	s := &Subscription{ch: make(chan protocol.ToNode, config.OutboundBufferSize), b: b}
	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()
	return s
}

// Publish delivers msg to every current subscriber. A subscriber whose
// buffer is full has its oldest message dropped to make room; this never
// blocks the caller.
func (b *Broadcaster) Publish(msg protocol.ToNode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for s := range b.subs {
		select {
		case s.ch <- msg:
		default:
			select {
			case <-s.ch:
			default:
			}
			s.lagCount++
			log.Printf("netsvc: subscriber lagging, dropped oldest frame (total dropped=%d)", s.lagCount)
			select {
			case s.ch <- msg:
			default:
			}
		}
	}
}

// SubscriberCount reports how many subscribers are currently registered.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
