package physics

import (
	"testing"

	"github.com/Zombieliu/coinpusher/internal/protocol"
)

func defaultConfig() protocol.RoomConfig {
	var c protocol.RoomConfig
	c.Normalize()
	return c
}

func TestNewWorldCreatesInitialCoins(t *testing.T) {
	w := NewWorld(defaultConfig())
	coins := w.CollectCoinStates()
	if len(coins) == 0 {
		t.Fatalf("expected NewWorld to tile the table with initial coins")
	}
}

func TestSpawnCoinAssignsIncreasingIDs(t *testing.T) {
	w := NewWorld(defaultConfig())
	initialCount := len(w.CollectCoinStates())

	id1 := w.SpawnCoin(1.0, nil)
	id2 := w.SpawnCoin(-1.0, nil)
	if id2 <= id1 {
		t.Fatalf("expected strictly increasing coin ids, got %d then %d", id1, id2)
	}
	if len(w.CollectCoinStates()) != initialCount+2 {
		t.Fatalf("expected two more coins after spawning")
	}
}

func TestCoinFallsUnderGravity(t *testing.T) {
	w := NewWorld(defaultConfig())
	id := w.SpawnCoin(0, nil)

	var before protocol.CoinState
	for _, c := range w.CollectCoinStates() {
		if c.ID == id {
			before = c
		}
	}

	w.Step(1.0 / 30)

	var after protocol.CoinState
	for _, c := range w.CollectCoinStates() {
		if c.ID == id {
			after = c
		}
	}
	if after.Pos.Y >= before.Pos.Y {
		t.Fatalf("expected coin to fall: before y=%v after y=%v", before.Pos.Y, after.Pos.Y)
	}
}

func TestPusherStaysWithinBounds(t *testing.T) {
	cfg := defaultConfig()
	w := NewWorld(cfg)

	sawNearMax, sawNearMin := false, false
	for i := 0; i < 300; i++ {
		w.Step(1.0 / 30)
		z := w.PushZ()
		if z < cfg.PushMinZ-1e-3 || z > cfg.PushMaxZ+1e-3 {
			t.Fatalf("pusher escaped bounds at step %d: z=%v min=%v max=%v", i, z, cfg.PushMinZ, cfg.PushMaxZ)
		}
		if cfg.PushMaxZ-z < 0.05 {
			sawNearMax = true
		}
		if z-cfg.PushMinZ < 0.05 {
			sawNearMin = true
		}
	}
	if !sawNearMax || !sawNearMin {
		t.Fatalf("expected pusher to reach near both bounds over 300 steps, nearMax=%v nearMin=%v", sawNearMax, sawNearMin)
	}
}

func TestCoinRemovedPastFloorEscape(t *testing.T) {
	cfg := defaultConfig()
	cfg.Gravity = -50.0
	w := NewWorld(cfg)
	before := len(w.CollectCoinStates())
	// The drop point (z = -6) is over the floor, which ends at z = 5; start
	// the coin past that edge so nothing stops its fall.
	w.spawnCoinAtPosition(0, cfg.DropHeight, 8, nil)

	var result StepResult
	for i := 0; i < 200; i++ {
		result = w.Step(1.0 / 30)
		if len(result.Removed) > 0 {
			break
		}
	}
	if len(result.Removed) == 0 {
		t.Fatalf("expected the heavy-gravity coin to eventually fall past the floor-escape threshold")
	}
	if len(w.CollectCoinStates()) != before {
		t.Fatalf("expected coin count to return to baseline after removal")
	}
}

func TestCoinCollectedCreditsOwner(t *testing.T) {
	cfg := defaultConfig()
	cfg.RewardLineZ = -100 // guarantee any falling coin is past the reward line
	cfg.Gravity = -50.0
	w := NewWorld(cfg)
	owner := protocol.PlayerID("p1")
	// Past the floor's front edge (z = 5), so the coin falls off the table.
	w.spawnCoinAtPosition(0, cfg.DropHeight, 8, &owner)

	var result StepResult
	for i := 0; i < 200; i++ {
		result = w.Step(1.0 / 30)
		if len(result.Collected) > 0 {
			break
		}
	}
	if len(result.Collected) == 0 {
		t.Fatalf("expected a collected coin credited to its owner")
	}
	if result.Collected[0].Owner == nil || *result.Collected[0].Owner != owner {
		t.Fatalf("expected collected coin to be credited to %q, got %+v", owner, result.Collected[0])
	}
}
