package ipc

import "github.com/nstehr/vimy/vimy-tactics/model"

// These constants must stay in sync with the host's message type enum.
const (
	TypeHello     = "hello"
	TypeMapInfo   = "map_info"
	TypeGameState = "game_state"
	TypeAck       = "ack"
	TypeOrder     = "order"
)

type HelloMessage struct {
	Player  string `json:"player"`
	Faction string `json:"faction"`
}

// MapInfoMessage is sent once after hello, before the first game_state.
type MapInfoMessage = model.MapInfo

// GameStateMessage is sent every AI tick.
type GameStateMessage = model.GameState

type AckMessage struct {
	Status  string `json:"status"`
	Session string `json:"session,omitempty"`
	Orders  int    `json:"orders,omitempty"`
	Error   string `json:"error,omitempty"`
}
