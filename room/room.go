// room/room.go
package room

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/wfunc/roomserver/game"
	"github.com/wfunc/roomserver/logger"
	"github.com/wfunc/roomserver/network"
	"github.com/wfunc/roomserver/session"
)

// Phase is the lifecycle state of a room. Transitions are strictly
// monotonic: waiting -> started -> ended, never backwards.
type Phase int

const (
	PhaseWaiting Phase = iota
	PhaseStarted
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return network.PhaseWaiting
	case PhaseStarted:
		return network.PhaseStarted
	default:
		return network.PhaseEnded
	}
}

// Room-policy errors. The messages are sent to clients verbatim.
var (
	ErrInvalidBounds   = errors.New("Invalid player bounds")
	ErrNotWaiting      = errors.New("Room is not waiting for players")
	ErrAlreadyJoined   = errors.New("User is already in room")
	ErrRoomFull        = errors.New("Room is already full")
	ErrNotJoined       = errors.New("User did not join room")
	ErrNotStarted      = errors.New("Game did not start yet")
	ErrAlreadyFinished = errors.New("Game already finished")
	ErrTooFewPlayers   = errors.New("Not enough players to start")
)

// Room is one play session. Players is the join order, which defines
// the in-game turn order. The watcher set holds every socket currently
// subscribed to this room's updates; watching is independent of being
// a player.
//
// All fields are owned by the server state and mutated only under its
// lock, so the Room itself carries no synchronization.
type Room struct {
	ID         int64
	Settings   string
	Players    []string
	MinPlayers int
	MaxPlayers int
	Phase      Phase
	Game       game.Game
	CreatedAt  time.Time

	ctor     game.Constructor
	watchers map[string]*session.Session
}

func New(id int64, creator string, minPlayers, maxPlayers int, settings string, ctor game.Constructor) (*Room, error) {
	if minPlayers < 1 || minPlayers > maxPlayers {
		return nil, ErrInvalidBounds
	}
	return &Room{
		ID:         id,
		Settings:   settings,
		Players:    []string{creator},
		MinPlayers: minPlayers,
		MaxPlayers: maxPlayers,
		Phase:      PhaseWaiting,
		CreatedAt:  time.Now(),
		ctor:       ctor,
		watchers:   make(map[string]*session.Session),
	}, nil
}

// Joined reports whether the user is in the player list.
func (r *Room) Joined(user string) bool {
	for _, p := range r.Players {
		if p == user {
			return true
		}
	}
	return false
}

// Join appends the user to the player list. Reaching MaxPlayers starts
// the game immediately, before Join returns.
func (r *Room) Join(user string) error {
	if r.Phase != PhaseWaiting {
		return ErrNotWaiting
	}
	if r.Joined(user) {
		return ErrAlreadyJoined
	}
	if len(r.Players) == r.MaxPlayers {
		return ErrRoomFull
	}
	r.Players = append(r.Players, user)
	if len(r.Players) == r.MaxPlayers {
		if err := r.start(); err != nil {
			// A failed start must not keep the join half-applied.
			r.Players = r.Players[:len(r.Players)-1]
			return err
		}
	}
	return nil
}

// Start begins the game on behalf of a joined player. Allowed while
// waiting with at least MinPlayers joined.
func (r *Room) Start(user string) error {
	if !r.Joined(user) {
		return ErrNotJoined
	}
	if r.Phase != PhaseWaiting {
		return ErrNotWaiting
	}
	if len(r.Players) < r.MinPlayers {
		return ErrTooFewPlayers
	}
	return r.start()
}

func (r *Room) start() error {
	g, err := r.ctor(r.Players, r.Settings)
	if err != nil {
		return err
	}
	r.Game = g
	r.Phase = PhaseStarted
	return nil
}

// MakeMove forwards one move to the game. On success the room may
// transition to ended if the game reports a terminal state.
func (r *Room) MakeMove(user string, move json.RawMessage) error {
	if !r.Joined(user) {
		return ErrNotJoined
	}
	switch r.Phase {
	case PhaseWaiting:
		return ErrNotStarted
	case PhaseEnded:
		return ErrAlreadyFinished
	}
	if err := r.Game.MakeMove(user, move); err != nil {
		return err
	}
	if r.Game.Ended() {
		r.Phase = PhaseEnded
	}
	return nil
}

// --- watcher set ---

func (r *Room) AddWatcher(s *session.Session) {
	r.watchers[s.ID] = s
}

func (r *Room) RemoveWatcher(sessionID string) {
	delete(r.watchers, sessionID)
}

func (r *Room) Watchers() []*session.Session {
	watchers := make([]*session.Session, 0, len(r.watchers))
	for _, s := range r.watchers {
		watchers = append(watchers, s)
	}
	return watchers
}

// --- wire views ---

// Summary is the room as shown in room lists: phase tag only, no game
// payload. Player bounds are only meaningful while waiting.
func (r *Room) Summary() *network.RoomView {
	view := &network.RoomView{
		RoomID:   r.ID,
		Phase:    r.Phase.String(),
		Settings: r.Settings,
		Players:  append([]string(nil), r.Players...),
	}
	if r.Phase == PhaseWaiting {
		view.MinPlayers = r.MinPlayers
		view.MaxPlayers = r.MaxPlayers
	}
	return view
}

// View is the full room as seen by one user: the summary plus the
// game's per-recipient view when a game exists. Views are always
// recomputed from authoritative state, never patched.
func (r *Room) View(user string) *network.RoomView {
	view := r.Summary()
	if r.Game == nil {
		return view
	}
	payload, err := json.Marshal(r.Game.View(user))
	if err != nil {
		logger.Log.Errorf("Failed to marshal game view for room %d: %v", r.ID, err)
		return view
	}
	view.Game = payload
	return view
}

// --- room manager ---

// Manager owns all rooms. Ids are assigned sequentially starting at 1
// and never reused; 0 is the "no room" sentinel.
type Manager struct {
	rooms []*Room
	mutex sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) Create(creator string, minPlayers, maxPlayers int, settings string, ctor game.Constructor) (*Room, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	room, err := New(int64(len(m.rooms)+1), creator, minPlayers, maxPlayers, settings, ctor)
	if err != nil {
		return nil, err
	}
	m.rooms = append(m.rooms, room)
	return room, nil
}

func (m *Manager) Get(id int64) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if id < 1 || id > int64(len(m.rooms)) {
		return nil, false
	}
	return m.rooms[id-1], true
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}

// Summaries returns the list view of every room, for the room list
// response sent on login and leave.
func (m *Manager) Summaries() []*network.RoomView {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	summaries := make([]*network.RoomView, 0, len(m.rooms))
	for _, room := range m.rooms {
		summaries = append(summaries, room.Summary())
	}
	return summaries
}
