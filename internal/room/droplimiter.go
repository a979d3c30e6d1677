package room

import "github.com/Zombieliu/coinpusher/internal/protocol"

// dropLimiter caps how many PlayerDropCoin events one player can apply
// per tick. It is additive hardening against input flooding, adapted
// from the car racer's AntiCheat.ValidateInputRate (a per-tick input-count
// cap), not something the core differ/physics contracts require.
type dropLimiter struct {
	cap    int
	counts map[protocol.PlayerID]int
}

func newDropLimiter(cap int) *dropLimiter {
	return &dropLimiter{cap: cap, counts: make(map[protocol.PlayerID]int)}
}

// allow increments the player's count for this tick and reports whether
// the drop should still be honored.
func (l *dropLimiter) allow(id protocol.PlayerID) bool {
	l.counts[id]++
	return l.counts[id] <= l.cap
}

// reset clears per-tick counts; called at the start of every Tick.
func (l *dropLimiter) reset() {
	for k := range l.counts {
		delete(l.counts, k)
	}
}
