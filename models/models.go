// models/models.go
package models

import (
	"encoding/json"
	"time"
)

// GameRecord archives one finished game. Result holds the final,
// unredacted game state as produced by the game implementation.
type GameRecord struct {
	RoomID    int64           `json:"room_id"`
	GameType  string          `json:"game_type"`
	Settings  string          `json:"settings"`
	Players   []string        `json:"players"`
	Result    json.RawMessage `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
}
