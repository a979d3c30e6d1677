package protocol

import "fmt"

// Inbound message type discriminators (spec §6, gateway -> room service).
const (
	TypeCreateRoom     = "CreateRoom"
	TypeDestroyRoom    = "DestroyRoom"
	TypePlayerJoin      = "PlayerJoin"
	TypePlayerLeave     = "PlayerLeave"
	TypePlayerDropCoin  = "PlayerDropCoin"
	TypeWalletResult    = "WalletResult"
)

// FromNode is any message the gateway may send to the room service.
type FromNode interface {
	fromNodeType() string
}

// CreateRoom asks the manager to create (or replace) a room.
type CreateRoom struct {
	Type   string     `json:"type" msgpack:"type"`
	RoomID RoomID     `json:"room_id" msgpack:"room_id"`
	Config RoomConfig `json:"config" msgpack:"config"`
}

func (CreateRoom) fromNodeType() string { return TypeCreateRoom }

// NewCreateRoom builds a CreateRoom message with the Type field set.
func NewCreateRoom(roomID RoomID, config RoomConfig) CreateRoom {
	return CreateRoom{Type: TypeCreateRoom, RoomID: roomID, Config: config}
}

// DestroyRoom asks the manager to remove a room.
type DestroyRoom struct {
	Type   string `json:"type" msgpack:"type"`
	RoomID RoomID `json:"room_id" msgpack:"room_id"`
}

func (DestroyRoom) fromNodeType() string { return TypeDestroyRoom }

func NewDestroyRoom(roomID RoomID) DestroyRoom {
	return DestroyRoom{Type: TypeDestroyRoom, RoomID: roomID}
}

// PlayerJoin registers a player as present in a room.
type PlayerJoin struct {
	Type     string   `json:"type" msgpack:"type"`
	RoomID   RoomID   `json:"room_id" msgpack:"room_id"`
	PlayerID PlayerID `json:"player_id" msgpack:"player_id"`
}

func (PlayerJoin) fromNodeType() string { return TypePlayerJoin }

func NewPlayerJoin(roomID RoomID, playerID PlayerID) PlayerJoin {
	return PlayerJoin{Type: TypePlayerJoin, RoomID: roomID, PlayerID: playerID}
}

// PlayerLeave removes a player from a room's roster.
type PlayerLeave struct {
	Type     string   `json:"type" msgpack:"type"`
	RoomID   RoomID   `json:"room_id" msgpack:"room_id"`
	PlayerID PlayerID `json:"player_id" msgpack:"player_id"`
}

func (PlayerLeave) fromNodeType() string { return TypePlayerLeave }

func NewPlayerLeave(roomID RoomID, playerID PlayerID) PlayerLeave {
	return PlayerLeave{Type: TypePlayerLeave, RoomID: roomID, PlayerID: playerID}
}

// PlayerDropCoin requests an optimistic coin spawn at lateral offset X
// (spec §9: the room spawns the coin immediately, before wallet debit
// confirms).
type PlayerDropCoin struct {
	Type        string   `json:"type" msgpack:"type"`
	RoomID      RoomID   `json:"room_id" msgpack:"room_id"`
	PlayerID    PlayerID `json:"player_id" msgpack:"player_id"`
	X           float32  `json:"x" msgpack:"x"`
	ClientTick  *uint64  `json:"client_tick,omitempty" msgpack:"client_tick,omitempty"`
}

func (PlayerDropCoin) fromNodeType() string { return TypePlayerDropCoin }

func NewPlayerDropCoin(roomID RoomID, playerID PlayerID, x float32) PlayerDropCoin {
	return PlayerDropCoin{Type: TypePlayerDropCoin, RoomID: roomID, PlayerID: playerID, X: x}
}

// WalletResult is the asynchronous outcome of the debit that backed a
// PlayerDropCoin request. It is observational: the coin was already
// spawned optimistically, so this message never undoes it.
type WalletResult struct {
	Type     string   `json:"type" msgpack:"type"`
	RoomID   RoomID   `json:"room_id" msgpack:"room_id"`
	PlayerID PlayerID `json:"player_id" msgpack:"player_id"`
	TxID     string   `json:"tx_id" msgpack:"tx_id"`
	OK       bool     `json:"ok" msgpack:"ok"`
}

func (WalletResult) fromNodeType() string { return TypeWalletResult }

func NewWalletResult(roomID RoomID, playerID PlayerID, txID string, ok bool) WalletResult {
	return WalletResult{Type: TypeWalletResult, RoomID: roomID, PlayerID: playerID, TxID: txID, OK: ok}
}

// DecodeFromNode parses a raw payload (already stripped of its framing) into
// the concrete FromNode variant named by its "type" field.
func DecodeFromNode(format Format, data []byte) (FromNode, error) {
	t, err := peekType(format, data)
	if err != nil {
		return nil, err
	}
	switch t {
	case TypeCreateRoom:
		var m CreateRoom
		if err := unmarshal(format, data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case TypeDestroyRoom:
		var m DestroyRoom
		if err := unmarshal(format, data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case TypePlayerJoin:
		var m PlayerJoin
		if err := unmarshal(format, data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case TypePlayerLeave:
		var m PlayerLeave
		if err := unmarshal(format, data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case TypePlayerDropCoin:
		var m PlayerDropCoin
		if err := unmarshal(format, data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case TypeWalletResult:
		var m WalletResult
		if err := unmarshal(format, data, &m); err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("protocol: unknown FromNode type %q", t)
	}
}

// EncodeFromNode serializes any FromNode variant in the given wire format.
func EncodeFromNode(format Format, msg FromNode) ([]byte, error) {
	return marshal(format, msg)
}
