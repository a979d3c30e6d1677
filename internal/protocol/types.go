// Package protocol defines the wire types exchanged between the gateway
// node and the room service, and the dual JSON/MessagePack codec used to
// (de)serialize them.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// RoomID, PlayerID and CoinID identify the three entities the protocol
// talks about. RoomID and PlayerID are opaque strings assigned upstream
// of the room service; CoinID is assigned by the physics world itself.
type (
	RoomID   string
	PlayerID string
	CoinID   uint64
)

// Format selects the wire encoding used for a frame's payload.
type Format uint8

const (
	FormatJSON        Format = 0
	FormatMessagePack Format = 1
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatMessagePack:
		return "msgpack"
	default:
		return fmt.Sprintf("format(%d)", uint8(f))
	}
}

// Position is a 3D coordinate, matching mgl32.Vec3's component order.
type Position struct {
	X float32 `json:"x" msgpack:"x"`
	Y float32 `json:"y" msgpack:"y"`
	Z float32 `json:"z" msgpack:"z"`
}

// Rotation is a unit quaternion in x/y/z/w order, matching mgl32.Quat's
// vector-then-scalar layout.
type Rotation struct {
	X float32 `json:"x" msgpack:"x"`
	Y float32 `json:"y" msgpack:"y"`
	Z float32 `json:"z" msgpack:"z"`
	W float32 `json:"w" msgpack:"w"`
}

// CoinState is the externally-visible state of one coin on the table.
type CoinState struct {
	ID  CoinID   `json:"id" msgpack:"id"`
	Pos Position `json:"p" msgpack:"p"`
	Rot Rotation `json:"r" msgpack:"r"`
}

// HasSignificantChange reports whether cs differs from prev by more than
// the L1 threshold on either position or rotation components (spec §4.4).
func (cs CoinState) HasSignificantChange(prev CoinState) bool {
	posDelta := absf(cs.Pos.X-prev.Pos.X) + absf(cs.Pos.Y-prev.Pos.Y) + absf(cs.Pos.Z-prev.Pos.Z)
	if posDelta > SignificantChangeThreshold {
		return true
	}
	rotDelta := absf(cs.Rot.X-prev.Rot.X) + absf(cs.Rot.Y-prev.Rot.Y) +
		absf(cs.Rot.Z-prev.Rot.Z) + absf(cs.Rot.W-prev.Rot.W)
	return rotDelta > SignificantChangeThreshold
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// SignificantChangeThreshold mirrors config.SignificantChangeL1; duplicated
// here (as a typed float32) so the protocol package has no dependency on
// config, keeping the wire-type package import-free of server wiring.
const SignificantChangeThreshold float32 = 0.01

// RoomConfig carries the per-room tunables the gateway supplies on
// CreateRoom. Fields left at their zero value are normalized to spec
// defaults by Normalize.
type RoomConfig struct {
	Gravity      float32 `json:"gravity" msgpack:"gravity"`
	DropHeight   float32 `json:"drop_height" msgpack:"drop_height"`
	CoinRadius   float32 `json:"coin_radius" msgpack:"coin_radius"`
	CoinHeight   float32 `json:"coin_height" msgpack:"coin_height"`
	RewardLineZ  float32 `json:"reward_line_z" msgpack:"reward_line_z"`
	PushMinZ     float32 `json:"push_min_z" msgpack:"push_min_z"`
	PushMaxZ     float32 `json:"push_max_z" msgpack:"push_max_z"`
	PushSpeed    float32 `json:"push_speed" msgpack:"push_speed"`
	SnapshotRate float32 `json:"snapshot_rate" msgpack:"snapshot_rate"`
}

// Normalize fills in zero-valued (omitted) fields with spec defaults. It is
// idempotent and safe to call on a config that was already normalized.
func (c *RoomConfig) Normalize() {
	if c.Gravity == 0 {
		c.Gravity = -9.8
	}
	if c.DropHeight == 0 {
		c.DropHeight = 3.0
	}
	if c.CoinRadius == 0 {
		c.CoinRadius = 0.6
	}
	if c.CoinHeight == 0 {
		c.CoinHeight = 0.15
	}
	if c.RewardLineZ == 0 {
		c.RewardLineZ = 0.5
	}
	if c.PushMinZ == 0 {
		c.PushMinZ = -6.0
	}
	if c.PushMaxZ == 0 {
		c.PushMaxZ = -4.0
	}
	if c.PushSpeed == 0 {
		c.PushSpeed = 0.4
	}
	if c.SnapshotRate == 0 {
		c.SnapshotRate = 30.0
	}
}

// marshal encodes v in the given wire format.
func marshal(format Format, v interface{}) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.Marshal(v)
	case FormatMessagePack:
		return msgpack.Marshal(v)
	default:
		return nil, fmt.Errorf("protocol: unknown format %d", format)
	}
}

// unmarshal decodes data (in the given wire format) into v.
func unmarshal(format Format, data []byte, v interface{}) error {
	switch format {
	case FormatJSON:
		return json.Unmarshal(data, v)
	case FormatMessagePack:
		return msgpack.Unmarshal(data, v)
	default:
		return fmt.Errorf("protocol: unknown format %d", format)
	}
}

// typePeek is decoded first to discover which concrete message type a
// frame's payload holds, before the full struct is unmarshaled.
type typePeek struct {
	Type string `json:"type" msgpack:"type"`
}

func peekType(format Format, data []byte) (string, error) {
	var p typePeek
	if err := unmarshal(format, data, &p); err != nil {
		return "", err
	}
	if p.Type == "" {
		return "", fmt.Errorf("protocol: message missing \"type\" field")
	}
	return p.Type, nil
}
