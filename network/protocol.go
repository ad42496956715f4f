package network

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Client -> server action types. One JSON-encoded Action per frame.
const (
	ActionLogin     = "login"
	ActionLogout    = "logout"
	ActionNewRoom   = "new_room"
	ActionWatchRoom = "watch_room"
	ActionLeaveRoom = "leave_room"
	ActionJoinRoom  = "join_room"
	ActionStartGame = "start_game"
	ActionMakeMove  = "make_move"
)

// Server -> client response types.
const (
	ResponseNotLoggedIn = "not_logged_in"
	ResponseRoomList    = "room_list"
	ResponseRoom        = "room"
	ResponseError       = "error"
)

// Room phases as they appear on the wire.
const (
	PhaseWaiting = "waiting"
	PhaseStarted = "started"
	PhaseEnded   = "ended"
)

// ErrMalformedFrame marks frames that failed to decode. Such frames
// are logged and dropped; the client gets no response.
var ErrMalformedFrame = errors.New("malformed frame")

// Action is the decoded form of a client frame. Fields beyond Type are
// populated depending on the action.
type Action struct {
	Type       string          `json:"type"`
	Name       string          `json:"name,omitempty"`
	RoomID     int64           `json:"room_id,omitempty"`
	MinPlayers int             `json:"min_players,omitempty"`
	MaxPlayers int             `json:"max_players,omitempty"`
	Settings   string          `json:"settings,omitempty"`
	Move       json.RawMessage `json:"move,omitempty"`
}

// DecodeAction parses one inbound frame into an Action.
func DecodeAction(frame []byte) (*Action, error) {
	var a Action
	if err := json.Unmarshal(frame, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	switch a.Type {
	case ActionLogin, ActionLogout, ActionNewRoom, ActionWatchRoom,
		ActionLeaveRoom, ActionJoinRoom, ActionStartGame, ActionMakeMove:
		return &a, nil
	default:
		return nil, fmt.Errorf("%w: unknown action type %q", ErrMalformedFrame, a.Type)
	}
}

// RoomView is the wire form of a room. Summaries in a room list carry
// no game payload (phase tag only); a full view of a started or ended
// room carries the per-recipient game view as raw JSON.
type RoomView struct {
	RoomID     int64           `json:"room_id"`
	Phase      string          `json:"phase"`
	Settings   string          `json:"settings"`
	Players    []string        `json:"players"`
	MinPlayers int             `json:"min_players,omitempty"`
	MaxPlayers int             `json:"max_players,omitempty"`
	Game       json.RawMessage `json:"game,omitempty"`
}

// Response is one server frame.
type Response struct {
	Type    string      `json:"type"`
	Rooms   []*RoomView `json:"rooms,omitempty"`
	Room    *RoomView   `json:"room,omitempty"`
	Message string      `json:"message,omitempty"`
}

func NotLoggedIn() *Response {
	return &Response{Type: ResponseNotLoggedIn}
}

func RoomList(rooms []*RoomView) *Response {
	return &Response{Type: ResponseRoomList, Rooms: rooms}
}

func RoomResponse(view *RoomView) *Response {
	return &Response{Type: ResponseRoom, Room: view}
}

func Errorf(format string, args ...interface{}) *Response {
	return &Response{Type: ResponseError, Message: fmt.Sprintf(format, args...)}
}

func (r *Response) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// DecodeResponse parses one server frame. Used by clients.
func DecodeResponse(frame []byte) (*Response, error) {
	var r Response
	if err := json.Unmarshal(frame, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	return &r, nil
}
