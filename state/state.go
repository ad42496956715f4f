// Package state owns the authoritative server state: registered
// users, all rooms, and all open sessions. A single mutex serializes
// every action, including the per-watcher fan-out, so two actions are
// never applied concurrently and a broadcast always reflects a settled
// state. Nothing inside the lock performs I/O: outbound responses are
// queue writes and game calls are in-memory.
package state

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/wfunc/roomserver/broadcast"
	"github.com/wfunc/roomserver/game"
	"github.com/wfunc/roomserver/logger"
	"github.com/wfunc/roomserver/models"
	"github.com/wfunc/roomserver/monitor"
	"github.com/wfunc/roomserver/network"
	"github.com/wfunc/roomserver/room"
	"github.com/wfunc/roomserver/services"
	"github.com/wfunc/roomserver/session"
)

// User is a logged-in identity. One user may hold several sockets at
// once (multiple tabs); the user owns the socket id list, never the
// reverse. Users are kept after their last socket leaves so the name
// stays reserved and a mid-game player can reconnect with it.
type User struct {
	Name    string
	Sockets []string
}

// Hub applies actions to the server state.
type Hub struct {
	mu       sync.Mutex
	users    map[string]*User
	rooms    *room.Manager
	sessions *session.Manager

	gameType string
	ctor     game.Constructor
	caster   broadcast.Broadcaster

	// Optional collaborators; nil disables them.
	monitor *monitor.Monitor
	records *services.RecordService
}

func NewHub(gameType string, ctor game.Constructor, sessions *session.Manager, caster broadcast.Broadcaster) *Hub {
	return &Hub{
		users:    make(map[string]*User),
		rooms:    room.NewManager(),
		sessions: sessions,
		gameType: gameType,
		ctor:     ctor,
		caster:   caster,
	}
}

func (h *Hub) SetMonitor(m *monitor.Monitor) {
	h.monitor = m
}

func (h *Hub) SetRecordService(r *services.RecordService) {
	h.records = r
}

// Connect registers a fresh session and greets it with NotLoggedIn.
func (h *Hub) Connect(s *session.Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sessions.Add(s)
	if h.monitor != nil {
		h.monitor.IncConnectedClients()
	}
	s.Send(network.NotLoggedIn())
}

// Disconnect removes the session, its room subscription and its entry
// in the user's socket list. Safe to call more than once; only the
// first call for a session does anything.
func (h *Hub) Disconnect(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, exists := h.sessions.Get(sessionID)
	if !exists {
		return
	}
	h.logout(s)
	h.sessions.Remove(sessionID)
	if h.monitor != nil {
		h.monitor.DecConnectedClients()
	}
}

// HandleAction applies one action for one session and sends the direct
// response, if any. Room mutations additionally push fresh views to
// every watcher before this method returns.
func (h *Hub) HandleAction(sessionID string, action *network.Action) {
	start := time.Now()
	h.mu.Lock()
	defer h.mu.Unlock()

	s, exists := h.sessions.Get(sessionID)
	if !exists {
		return
	}
	if h.monitor != nil {
		h.monitor.IncActionsReceived()
		defer func() { h.monitor.ObserveActionLatency(time.Since(start)) }()
	}
	if resp := h.handle(s, action); resp != nil {
		s.Send(resp)
	}
}

func (h *Hub) handle(s *session.Session, action *network.Action) *network.Response {
	// Actions that do not require a login.
	switch action.Type {
	case network.ActionLogin:
		// An empty name would collide with the logged-out sentinel.
		if action.Name == "" {
			return network.Errorf("Invalid user name")
		}
		h.logout(s)
		h.login(s, action.Name)
		return network.RoomList(h.rooms.Summaries())
	case network.ActionLogout:
		h.logout(s)
		return network.NotLoggedIn()
	case network.ActionLeaveRoom:
		h.leaveRoom(s)
		return network.RoomList(h.rooms.Summaries())
	}

	if !s.LoggedIn() {
		return network.NotLoggedIn()
	}

	switch action.Type {
	case network.ActionNewRoom:
		r, err := h.rooms.Create(s.User, action.MinPlayers, action.MaxPlayers, action.Settings, h.ctor)
		if err != nil {
			return network.Errorf("%s", err)
		}
		h.watchRoom(s, r)
		logger.Log.Infof("User %s created room %d (%d-%d players)", s.User, r.ID, r.MinPlayers, r.MaxPlayers)
		return network.RoomResponse(r.View(s.User))
	case network.ActionWatchRoom:
		r, exists := h.rooms.Get(action.RoomID)
		if !exists {
			return network.Errorf("Room %d does not exist", action.RoomID)
		}
		h.watchRoom(s, r)
		return network.RoomResponse(r.View(s.User))
	}

	// Remaining actions act on the watched room.
	r, exists := h.rooms.Get(s.RoomID)
	if !exists {
		return network.Errorf("Not watching any room")
	}

	var err error
	switch action.Type {
	case network.ActionJoinRoom:
		err = r.Join(s.User)
	case network.ActionStartGame:
		err = r.Start(s.User)
	case network.ActionMakeMove:
		phase := r.Phase
		err = r.MakeMove(s.User, action.Move)
		if err == nil && phase == room.PhaseStarted && r.Phase == room.PhaseEnded {
			h.archive(r)
		}
	}
	if err != nil {
		return network.Errorf("%s", err)
	}

	// The caller is a watcher of the room, so the fan-out answers it
	// along with everyone else.
	h.caster.BroadcastRoom(r)
	return nil
}

// login binds the session to a user, creating the user record on first
// login with that name.
func (h *Hub) login(s *session.Session, name string) {
	s.User = name
	u, exists := h.users[name]
	if !exists {
		u = &User{Name: name}
		h.users[name] = u
	}
	u.Sockets = append(u.Sockets, s.ID)
	logger.Log.Infof("Session %s logged in as %s", s.ID, name)
}

// logout leaves any watched room and unbinds the session from its
// user. No-op for sessions that never logged in.
func (h *Hub) logout(s *session.Session) {
	h.leaveRoom(s)
	if s.User == "" {
		return
	}
	if u, exists := h.users[s.User]; exists {
		u.Sockets = remove(u.Sockets, s.ID)
	}
	s.User = ""
}

func (h *Hub) leaveRoom(s *session.Session) {
	if s.RoomID == 0 {
		return
	}
	if r, exists := h.rooms.Get(s.RoomID); exists {
		r.RemoveWatcher(s.ID)
	}
	s.RoomID = 0
}

// watchRoom moves the session's subscription to the given room,
// leaving any previously watched one.
func (h *Hub) watchRoom(s *session.Session, r *room.Room) {
	h.leaveRoom(s)
	s.RoomID = r.ID
	r.AddWatcher(s)
}

// archive hands a finished game to the record service. The store write
// happens off the lock.
func (h *Hub) archive(r *room.Room) {
	if h.records == nil {
		return
	}
	result, err := json.Marshal(r.Game)
	if err != nil {
		logger.Log.Errorf("Failed to marshal final state of room %d: %v", r.ID, err)
		return
	}
	record := &models.GameRecord{
		RoomID:    r.ID,
		GameType:  h.gameType,
		Settings:  r.Settings,
		Players:   append([]string(nil), r.Players...),
		Result:    result,
		CreatedAt: time.Now(),
	}
	go h.records.Archive(record)
}

// Stats is the admin-facing snapshot used by the rpc service.
type Stats struct {
	Sessions int
	Users    int
	Rooms    int
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{
		Sessions: h.sessions.Count(),
		Users:    len(h.users),
		Rooms:    h.rooms.Count(),
	}
}

func (h *Hub) RoomSummaries() []*network.RoomView {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rooms.Summaries()
}

func (h *Hub) RoomCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rooms.Count()
}

// SessionsForUser returns the ids of every open socket bound to the
// given user name.
func (h *Hub) SessionsForUser(name string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	sessions := h.sessions.GetByUser(name)
	ids := make([]string, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.ID)
	}
	return ids
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}
