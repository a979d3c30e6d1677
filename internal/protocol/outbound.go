package protocol

import "fmt"

// Outbound message type discriminators (spec §6, room service -> gateway).
const (
	TypeSnapshot       = "Snapshot"
	TypeDeltaSnapshot  = "DeltaSnapshot"
	TypeNeedDeductGold = "NeedDeductGold"
	TypeRoomClosed     = "RoomClosed"
)

// ToNode is any message the room service may send to the gateway.
type ToNode interface {
	toNodeType() string
}

// Snapshot is a full room state emission: every live coin plus the
// pusher's current Z and any events surfaced this tick.
type Snapshot struct {
	Type   string      `json:"type" msgpack:"type"`
	RoomID RoomID      `json:"room_id" msgpack:"room_id"`
	Tick   uint64      `json:"tick" msgpack:"tick"`
	PushZ  float32     `json:"push_z" msgpack:"push_z"`
	Coins  []CoinState `json:"coins" msgpack:"coins"`
	Events []RoomEvent `json:"events,omitempty" msgpack:"events,omitempty"`
}

func (Snapshot) toNodeType() string { return TypeSnapshot }

// DeltaSnapshot is an incremental emission: only coins added, updated, or
// removed since the last snapshot cache, plus the pusher's current Z and
// any events surfaced this tick.
type DeltaSnapshot struct {
	Type    string      `json:"type" msgpack:"type"`
	RoomID  RoomID      `json:"room_id" msgpack:"room_id"`
	Tick    uint64      `json:"tick" msgpack:"tick"`
	PushZ   float32     `json:"push_z" msgpack:"push_z"`
	Added   []CoinState `json:"added,omitempty" msgpack:"added,omitempty"`
	Updated []CoinState `json:"updated,omitempty" msgpack:"updated,omitempty"`
	Removed []CoinID    `json:"removed,omitempty" msgpack:"removed,omitempty"`
	Events  []RoomEvent `json:"events,omitempty" msgpack:"events,omitempty"`
}

func (DeltaSnapshot) toNodeType() string { return TypeDeltaSnapshot }

// NeedDeductGold asks the gateway to debit a player's wallet for a coin
// that was already spawned optimistically (spec §9: the spawn is never
// rolled back; this message only requests the matching ledger entry). It
// is defined for protocol completeness; the core paths in this service
// never emit it (see the wallet-ordering open question in DESIGN.md).
type NeedDeductGold struct {
	Type     string   `json:"type" msgpack:"type"`
	RoomID   RoomID   `json:"room_id" msgpack:"room_id"`
	PlayerID PlayerID `json:"player_id" msgpack:"player_id"`
	TxID     string   `json:"tx_id" msgpack:"tx_id"`
	Amount   int64    `json:"amount" msgpack:"amount"`
}

func (NeedDeductGold) toNodeType() string { return TypeNeedDeductGold }

func NewNeedDeductGold(roomID RoomID, playerID PlayerID, txID string, amount int64) NeedDeductGold {
	return NeedDeductGold{Type: TypeNeedDeductGold, RoomID: roomID, PlayerID: playerID, TxID: txID, Amount: amount}
}

// RoomClosed reports that a room was permanently torn down along with the
// reason. It is defined for protocol completeness; no code path in this
// service synthesizes it (spec §9: implementers should not speculatively
// emit it).
type RoomClosed struct {
	Type   string `json:"type" msgpack:"type"`
	RoomID RoomID `json:"room_id" msgpack:"room_id"`
	Reason string `json:"reason" msgpack:"reason"`
}

func (RoomClosed) toNodeType() string { return TypeRoomClosed }

func NewRoomClosed(roomID RoomID, reason string) RoomClosed {
	return RoomClosed{Type: TypeRoomClosed, RoomID: roomID, Reason: reason}
}

// DecodeToNode parses a raw payload into the concrete ToNode variant named
// by its "type" field.
func DecodeToNode(format Format, data []byte) (ToNode, error) {
	t, err := peekType(format, data)
	if err != nil {
		return nil, err
	}
	switch t {
	case TypeSnapshot:
		var m Snapshot
		if err := unmarshal(format, data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case TypeDeltaSnapshot:
		var m DeltaSnapshot
		if err := unmarshal(format, data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case TypeNeedDeductGold:
		var m NeedDeductGold
		if err := unmarshal(format, data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case TypeRoomClosed:
		var m RoomClosed
		if err := unmarshal(format, data, &m); err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("protocol: unknown ToNode type %q", t)
	}
}

// EncodeToNode serializes any ToNode variant in the given wire format.
func EncodeToNode(format Format, msg ToNode) ([]byte, error) {
	return marshal(format, msg)
}
