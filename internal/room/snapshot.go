package room

import (
	"github.com/Zombieliu/coinpusher/config"
	"github.com/Zombieliu/coinpusher/internal/protocol"
)

// AccumulateAndShouldSendSnapshot adds dt to the room's accumulated time
// and reports whether a snapshot is due: when accumulated time reaches
// 1/snapshot_rate, one interval is subtracted (preserving the remainder)
// and true is returned. This lets the manager tick at a higher base rate
// than snapshot emission (spec §4.2).
func (r *Room) AccumulateAndShouldSendSnapshot(dt float32) bool {
	r.accumulated += dt
	interval := 1.0 / r.snapshotRate
	if r.accumulated >= interval {
		r.accumulated -= interval
		return true
	}
	return false
}

// ShouldSendFullSnapshot reports whether the next emission must be a full
// keyframe rather than a delta (spec §4.2 keyframe policy).
func (r *Room) ShouldSendFullSnapshot() bool {
	return r.deltaCount >= config.FullSnapshotAfterDeltas
}

// IncrementDeltaCount is called after a delta snapshot is emitted.
func (r *Room) IncrementDeltaCount() {
	r.deltaCount++
}

// ResetDeltaCount is called after a full snapshot is emitted.
func (r *Room) ResetDeltaCount() {
	r.deltaCount = 0
}

// SetSnapshotRate changes the room's snapshot emission rate, clamped to
// [5, 60] Hz (spec §3).
func (r *Room) SetSnapshotRate(rate float32) {
	if rate < config.MinSnapshotRateHz {
		rate = config.MinSnapshotRateHz
	} else if rate > config.MaxSnapshotRateHz {
		rate = config.MaxSnapshotRateHz
	}
	r.snapshotRate = rate
}

// ComputeDelta compares the current coin list against the room's cache
// and returns the three disjoint sets the differ contract defines
// (spec §4.4): added (ids new to the cache), updated (ids present in both
// with a significant change), and removed (cached ids absent from the
// current list).
func (r *Room) ComputeDelta(current []protocol.CoinState) (added, updated []protocol.CoinState, removed []protocol.CoinID) {
	seen := make(map[protocol.CoinID]bool, len(current))
	for _, c := range current {
		seen[c.ID] = true
		prev, ok := r.snapshotCache[c.ID]
		if !ok {
			added = append(added, c)
			continue
		}
		if c.HasSignificantChange(prev) {
			updated = append(updated, c)
		}
	}
	for id := range r.snapshotCache {
		if !seen[id] {
			removed = append(removed, id)
		}
	}
	return added, updated, removed
}

// UpdateSnapshotCache replaces the cache with the given coin list in full.
// Called after every emission, full or delta, so insignificant drift does
// not accumulate indefinitely (spec §4.4).
func (r *Room) UpdateSnapshotCache(current []protocol.CoinState) {
	cache := make(map[protocol.CoinID]protocol.CoinState, len(current))
	for _, c := range current {
		cache[c.ID] = c
	}
	r.snapshotCache = cache
}
