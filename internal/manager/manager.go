// Package manager implements the Room Manager: the single mapping from
// RoomId to Room, and the one entry point ("tick_all") that drives every
// room's tick sequence once per process-wide tick.
//
// Adapted from the car racer's Matchmaker (internal/matchmaker in the
// teacher): same mutex-guarded-map-plus-Stats shape, but without
// FindRoom/auto-creation, since every room here is created explicitly by
// CreateRoom (the gateway always supplies a room_id).
package manager

import (
	"log"
	"sync"

	"github.com/Zombieliu/coinpusher/internal/protocol"
	"github.com/Zombieliu/coinpusher/internal/room"
)

// RoomManager owns every room in the process. Per spec §5 it is the sole
// mutator of room state and is driven by exactly one goroutine (the tick
// loop). The mutex guards only the rooms map; Stats also reads each
// room's player table and tick counter, which Tick writes without it.
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[protocol.RoomID]*room.Room
}

// NewRoomManager returns an empty manager.
func NewRoomManager() *RoomManager {
	return &RoomManager{rooms: make(map[protocol.RoomID]*room.Room)}
}

// HandleMsgFromNode applies one inbound gateway message (spec §4.5).
// CreateRoom replaces any existing room of the same id silently.
// DestroyRoom drops a room silently if absent. The four per-player
// message types are routed to the named room's event queue if it exists,
// otherwise logged and dropped.
func (m *RoomManager) HandleMsgFromNode(msg protocol.FromNode) {
	switch v := msg.(type) {
	case protocol.CreateRoom:
		m.mu.Lock()
		m.rooms[v.RoomID] = room.NewRoom(v.RoomID, v.Config)
		m.mu.Unlock()

	case protocol.DestroyRoom:
		m.mu.Lock()
		delete(m.rooms, v.RoomID)
		m.mu.Unlock()

	case protocol.PlayerJoin:
		m.routeEvent(v.RoomID, v)
	case protocol.PlayerLeave:
		m.routeEvent(v.RoomID, v)
	case protocol.PlayerDropCoin:
		m.routeEvent(v.RoomID, v)
	case protocol.WalletResult:
		m.routeEvent(v.RoomID, v)

	default:
		log.Printf("room manager: unhandled FromNode type %T", msg)
	}
}

func (m *RoomManager) routeEvent(roomID protocol.RoomID, e protocol.FromNode) {
	m.mu.RLock()
	r, ok := m.rooms[roomID]
	m.mu.RUnlock()

	if !ok {
		log.Printf("room manager: dropping %T for unknown room %q", e, roomID)
		return
	}
	r.PushEvent(e)
}

// TickAll runs the tick sequence for every room once, in arbitrary order,
// and returns every outbound message produced this step: at most one
// Snapshot or DeltaSnapshot per room (spec §4.5, P6), never more.
func (m *RoomManager) TickAll(dt float32) []protocol.ToNode {
	m.mu.RLock()
	rooms := make([]*room.Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.RUnlock()

	var outgoing []protocol.ToNode
	for _, r := range rooms {
		events := r.Tick(dt)

		if !r.AccumulateAndShouldSendSnapshot(dt) {
			continue
		}

		coins := r.Physics.CollectCoinStates()
		pushZ := r.Physics.PushZ()

		if r.ShouldSendFullSnapshot() {
			r.UpdateSnapshotCache(coins)
			r.ResetDeltaCount()
			outgoing = append(outgoing, protocol.Snapshot{
				Type:   protocol.TypeSnapshot,
				RoomID: r.ID,
				Tick:   r.TickCount,
				PushZ:  pushZ,
				Coins:  coins,
				Events: events,
			})
		} else {
			added, updated, removed := r.ComputeDelta(coins)
			r.UpdateSnapshotCache(coins)
			r.IncrementDeltaCount()
			outgoing = append(outgoing, protocol.DeltaSnapshot{
				Type:    protocol.TypeDeltaSnapshot,
				RoomID:  r.ID,
				Tick:    r.TickCount,
				PushZ:   pushZ,
				Added:   added,
				Updated: updated,
				Removed: removed,
				Events:  events,
			})
		}
	}
	return outgoing
}

// RoomCount returns the number of rooms currently managed.
func (m *RoomManager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// Stats is a point-in-time summary of the manager's rooms, in the shape
// of the teacher's MatchmakerStats.
type Stats struct {
	TotalRooms   int
	TotalPlayers int
	Rooms        []RoomStats
}

// RoomStats summarizes one room.
type RoomStats struct {
	ID          protocol.RoomID
	PlayerCount int
	Tick        uint64
}

// Stats returns a snapshot summary of every managed room.
func (m *RoomManager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := Stats{TotalRooms: len(m.rooms), Rooms: make([]RoomStats, 0, len(m.rooms))}
	for id, r := range m.rooms {
		stats.TotalPlayers += len(r.Players)
		stats.Rooms = append(stats.Rooms, RoomStats{ID: id, PlayerCount: len(r.Players), Tick: r.TickCount})
	}
	return stats
}
