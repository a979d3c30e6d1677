package room

import (
	"testing"

	"github.com/Zombieliu/coinpusher/internal/protocol"
)

func defaultConfig() protocol.RoomConfig {
	var c protocol.RoomConfig
	c.Normalize()
	return c
}

func TestTickIsMonotonic(t *testing.T) {
	r := NewRoom("r1", defaultConfig())
	for i := 0; i < 10; i++ {
		r.Tick(1.0 / 30)
	}
	if r.TickCount != 10 {
		t.Fatalf("expected tick count 10, got %d", r.TickCount)
	}
}

func TestPlayerJoinAndLeave(t *testing.T) {
	r := NewRoom("r1", defaultConfig())
	r.PushEvent(protocol.NewPlayerJoin("r1", "p1"))
	r.Tick(1.0 / 30)

	if _, ok := r.Players["p1"]; !ok {
		t.Fatalf("expected player p1 to be present after join")
	}

	r.PushEvent(protocol.NewPlayerLeave("r1", "p1"))
	r.Tick(1.0 / 30)

	if _, ok := r.Players["p1"]; ok {
		t.Fatalf("expected player p1 to be removed after leave")
	}
}

func TestPlayerDropCoinSpawnsCoin(t *testing.T) {
	r := NewRoom("r1", defaultConfig())
	before := len(r.Physics.CollectCoinStates())

	r.PushEvent(protocol.NewPlayerJoin("r1", "p1"))
	r.PushEvent(protocol.NewPlayerDropCoin("r1", "p1", 2.5))
	r.Tick(1.0 / 30)

	after := r.Physics.CollectCoinStates()
	if len(after) != before+1 {
		t.Fatalf("expected one additional coin, had %d now have %d", before, len(after))
	}
}

func TestDropLimiterCapsPerTick(t *testing.T) {
	r := NewRoom("r1", defaultConfig())
	before := len(r.Physics.CollectCoinStates())

	r.PushEvent(protocol.NewPlayerJoin("r1", "p1"))
	for i := 0; i < 10; i++ {
		r.PushEvent(protocol.NewPlayerDropCoin("r1", "p1", float32(i)))
	}
	r.Tick(1.0 / 30)

	after := len(r.Physics.CollectCoinStates())
	if after-before > 5 {
		t.Fatalf("expected at most 5 coins spawned this tick, got %d", after-before)
	}
}

func TestComputeDeltaAddedUpdatedRemoved(t *testing.T) {
	r := NewRoom("r1", defaultConfig())

	initial := r.Physics.CollectCoinStates()
	added, updated, removed := r.ComputeDelta(initial)
	if len(removed) != 0 {
		t.Fatalf("expected no removed coins against empty cache, got %d", len(removed))
	}
	if len(added) != len(initial) {
		t.Fatalf("expected all %d initial coins to be 'added' against empty cache, got %d", len(initial), len(added))
	}
	if len(updated) != 0 {
		t.Fatalf("expected no updated coins against empty cache, got %d", len(updated))
	}

	r.UpdateSnapshotCache(initial)
	added, updated, removed = r.ComputeDelta(initial)
	if len(added) != 0 || len(removed) != 0 {
		t.Fatalf("expected no added/removed against an identical cache, got added=%d removed=%d", len(added), len(removed))
	}
	_ = updated
}

func TestKeyframeCadenceWithinThirtyOneDeltas(t *testing.T) {
	r := NewRoom("r1", defaultConfig())
	sawFull := false
	for i := 0; i < 31; i++ {
		r.Tick(1.0 / 30)
		if !r.AccumulateAndShouldSendSnapshot(1.0 / 30) {
			continue
		}
		coins := r.Physics.CollectCoinStates()
		if r.ShouldSendFullSnapshot() {
			sawFull = true
			r.UpdateSnapshotCache(coins)
			r.ResetDeltaCount()
		} else {
			r.UpdateSnapshotCache(coins)
			r.IncrementDeltaCount()
		}
	}
	if !sawFull {
		t.Fatalf("expected at least one full snapshot within 31 emissions")
	}
}

func TestSetSnapshotRateClampsToBounds(t *testing.T) {
	r := NewRoom("r1", defaultConfig())
	r.SetSnapshotRate(1)
	if r.snapshotRate != 5 {
		t.Fatalf("expected snapshot rate clamped to 5, got %v", r.snapshotRate)
	}
	r.SetSnapshotRate(1000)
	if r.snapshotRate != 60 {
		t.Fatalf("expected snapshot rate clamped to 60, got %v", r.snapshotRate)
	}
}
