package protocol

// RoomEvent discriminators (spec §4.3, room-internal facts emitted from a tick).
const (
	EventCoinDroppedToReward = "CoinDroppedToReward"
	EventCoinCollected       = "CoinCollected"
)

// RoomEvent is a fact surfaced alongside a snapshot. It is internally
// tagged by Kind; only the fields relevant to that kind are populated.
// Flattening the variants into one struct (rather than an interface) lets
// RoomEvent nest directly inside Snapshot/DeltaSnapshot without a second
// decode pass.
type RoomEvent struct {
	Kind string `json:"kind" msgpack:"kind"`

	// CoinDroppedToReward fields
	PlayerID     PlayerID `json:"player_id,omitempty" msgpack:"player_id,omitempty"`
	CoinID       CoinID   `json:"coin_id,omitempty" msgpack:"coin_id,omitempty"`
	RewardAmount int64    `json:"reward_amount,omitempty" msgpack:"reward_amount,omitempty"`

	// CoinCollected fields
	CoinIDs []CoinID `json:"coin_ids,omitempty" msgpack:"coin_ids,omitempty"`
}

// NewCoinDroppedToReward builds the event emitted when a coin crosses the
// reward line and is credited to its owning player.
func NewCoinDroppedToReward(playerID PlayerID, coinID CoinID, reward int64) RoomEvent {
	return RoomEvent{Kind: EventCoinDroppedToReward, PlayerID: playerID, CoinID: coinID, RewardAmount: reward}
}

// NewCoinCollected builds the event emitted when coins are removed from the
// table after falling past the floor-escape threshold.
func NewCoinCollected(coinIDs []CoinID) RoomEvent {
	return RoomEvent{Kind: EventCoinCollected, CoinIDs: coinIDs}
}
