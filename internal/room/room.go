// Package room implements one room's authoritative state: its physics
// world, player roster, queued inbound events, and snapshot cache.
package room

import (
	"log"

	"github.com/Zombieliu/coinpusher/config"
	"github.com/Zombieliu/coinpusher/internal/physics"
	"github.com/Zombieliu/coinpusher/internal/protocol"
)

// PlayerInfo is the room's record of one joined player. It carries only
// the player's id today, but is its own type (rather than a bare
// struct{} set) so a future authorization extension has somewhere to
// attach per-player state without changing the map's value type.
type PlayerInfo struct {
	ID protocol.PlayerID
}

// Room owns one Physics World and is touched by exactly one goroutine:
// the process's tick loop. No method here takes a lock (spec §5 — the
// physics world, and everything that wraps it, is single-writer).
type Room struct {
	ID        protocol.RoomID
	Config    protocol.RoomConfig
	TickCount uint64
	Players   map[protocol.PlayerID]PlayerInfo

	Physics *physics.World

	eventQueue  []protocol.FromNode
	dropLimiter *dropLimiter

	snapshotCache map[protocol.CoinID]protocol.CoinState
	deltaCount    uint32
	accumulated   float32
	snapshotRate  float32
}

// NewRoom builds a fresh room: a new Physics World from cfg (normalized
// for any omitted fields) and empty player/event/cache state.
func NewRoom(id protocol.RoomID, cfg protocol.RoomConfig) *Room {
	cfg.Normalize()
	return &Room{
		ID:            id,
		Config:        cfg,
		Players:       make(map[protocol.PlayerID]PlayerInfo),
		Physics:       physics.NewWorld(cfg),
		dropLimiter:   newDropLimiter(config.MaxDropsPerPlayerPerTick),
		snapshotCache: make(map[protocol.CoinID]protocol.CoinState),
		snapshotRate:  cfg.SnapshotRate,
	}
}

// PushEvent enqueues an inbound message for this room. It is applied on
// the next Tick call, never out of band (spec §4.3).
func (r *Room) PushEvent(e protocol.FromNode) {
	r.eventQueue = append(r.eventQueue, e)
}

// Tick runs the tick sequence of spec §4.2: increments the tick counter,
// drains and applies the queued events, steps physics, and returns the
// room events produced by departures this step. New events pushed during
// application are left for the next Tick, not reprocessed now.
func (r *Room) Tick(dt float32) []protocol.RoomEvent {
	r.TickCount++
	r.dropLimiter.reset()

	queue := r.eventQueue
	r.eventQueue = nil
	for _, e := range queue {
		r.applyEvent(e)
	}

	result := r.Physics.Step(dt)

	var events []protocol.RoomEvent
	for _, c := range result.Collected {
		if c.Owner == nil {
			continue
		}
		events = append(events, protocol.NewCoinDroppedToReward(*c.Owner, c.CoinID, 1))
	}
	if len(result.Removed) > 0 {
		events = append(events, protocol.NewCoinCollected(result.Removed))
	}
	return events
}

func (r *Room) applyEvent(e protocol.FromNode) {
	switch m := e.(type) {
	case protocol.PlayerJoin:
		if _, exists := r.Players[m.PlayerID]; !exists {
			r.Players[m.PlayerID] = PlayerInfo{ID: m.PlayerID}
		}
	case protocol.PlayerLeave:
		delete(r.Players, m.PlayerID)
	case protocol.PlayerDropCoin:
		if !r.dropLimiter.allow(m.PlayerID) {
			log.Printf("room %s: dropping PlayerDropCoin from %s, rate cap exceeded", r.ID, m.PlayerID)
			return
		}
		owner := m.PlayerID
		r.Physics.SpawnCoin(m.X, &owner)
	case protocol.WalletResult:
		if m.OK {
			log.Printf("room %s: wallet debit %s confirmed for %s", r.ID, m.TxID, m.PlayerID)
		} else {
			log.Printf("room %s: wallet debit %s failed for %s", r.ID, m.TxID, m.PlayerID)
		}
	default:
		log.Printf("room %s: ignoring inapplicable event %T", r.ID, e)
	}
}
