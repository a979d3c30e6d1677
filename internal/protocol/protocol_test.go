package protocol

import (
	"reflect"
	"testing"
)

func TestRoomConfigNormalizeFillsDefaults(t *testing.T) {
	var c RoomConfig
	c.Normalize()

	if c.SnapshotRate != 30.0 {
		t.Fatalf("expected default snapshot_rate 30.0, got %v", c.SnapshotRate)
	}
	if c.Gravity != -9.8 {
		t.Fatalf("expected default gravity -9.8, got %v", c.Gravity)
	}
}

func TestRoomConfigNormalizePreservesSetFields(t *testing.T) {
	c := RoomConfig{SnapshotRate: 45.0, Gravity: -20.0}
	c.Normalize()

	if c.SnapshotRate != 45.0 {
		t.Fatalf("expected snapshot_rate preserved at 45.0, got %v", c.SnapshotRate)
	}
	if c.Gravity != -20.0 {
		t.Fatalf("expected gravity preserved at -20.0, got %v", c.Gravity)
	}
	if c.PushSpeed != 0.4 {
		t.Fatalf("expected push_speed defaulted to 0.4, got %v", c.PushSpeed)
	}
}

func TestCoinStateHasSignificantChange(t *testing.T) {
	a := CoinState{ID: 1, Pos: Position{X: 0, Y: 0, Z: 0}, Rot: Rotation{W: 1}}
	b := CoinState{ID: 1, Pos: Position{X: 0.002, Y: 0, Z: 0}, Rot: Rotation{W: 1}}
	c := CoinState{ID: 1, Pos: Position{X: 0.2, Y: 0, Z: 0}, Rot: Rotation{W: 1}}

	if b.HasSignificantChange(a) {
		t.Fatalf("expected sub-threshold position delta to be insignificant")
	}
	if !c.HasSignificantChange(a) {
		t.Fatalf("expected above-threshold position delta to be significant")
	}
}

func TestFromNodeRoundTripBothFormats(t *testing.T) {
	msg := NewCreateRoom("r1", RoomConfig{Gravity: -9.8, DropHeight: 3, CoinRadius: 0.6, CoinHeight: 0.15,
		RewardLineZ: 0.5, PushMinZ: -6, PushMaxZ: -4, PushSpeed: 0.4, SnapshotRate: 30})

	for _, format := range []Format{FormatJSON, FormatMessagePack} {
		data, err := EncodeFromNode(format, msg)
		if err != nil {
			t.Fatalf("encode (%s) failed: %v", format, err)
		}
		decoded, err := DecodeFromNode(format, data)
		if err != nil {
			t.Fatalf("decode (%s) failed: %v", format, err)
		}
		got, ok := decoded.(CreateRoom)
		if !ok {
			t.Fatalf("decode (%s) returned wrong type %T", format, decoded)
		}
		if got != msg {
			t.Fatalf("decode (%s) round trip mismatch: got %+v want %+v", format, got, msg)
		}
	}
}

func TestToNodeRoundTripBothFormats(t *testing.T) {
	msg := Snapshot{
		Type:   TypeSnapshot,
		RoomID: "r",
		Tick:   7,
		PushZ:  -7.5,
		Coins: []CoinState{
			{ID: 1, Pos: Position{X: 0, Y: 0, Z: 0}, Rot: Rotation{X: 0, Y: 0, Z: 0, W: 1}},
		},
		Events: nil,
	}

	for _, format := range []Format{FormatJSON, FormatMessagePack} {
		data, err := EncodeToNode(format, msg)
		if err != nil {
			t.Fatalf("encode (%s) failed: %v", format, err)
		}
		decoded, err := DecodeToNode(format, data)
		if err != nil {
			t.Fatalf("decode (%s) failed: %v", format, err)
		}
		got, ok := decoded.(Snapshot)
		if !ok {
			t.Fatalf("decode (%s) returned wrong type %T", format, decoded)
		}
		if len(got.Coins) != 1 || got.Coins[0] != msg.Coins[0] || got.Tick != msg.Tick || got.PushZ != msg.PushZ {
			t.Fatalf("decode (%s) round trip mismatch: got %+v want %+v", format, got, msg)
		}
	}
}

func TestRoomEventRoundTrip(t *testing.T) {
	ev := NewCoinDroppedToReward("p1", 5, 1)
	data, err := marshal(FormatMessagePack, ev)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var got RoomEvent
	if err := unmarshal(FormatMessagePack, data, &got); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(got, ev) {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, ev)
	}
}
