// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/wfunc/roomserver/network"
)

// Session is one live socket. User is empty until a login action binds
// the socket to a user name; RoomID is zero while the socket is not
// watching any room. Both fields are owned by the server state and
// only mutated under its lock.
type Session struct {
	ID        string
	Conn      network.Connection
	User      string
	RoomID    int64
	CreatedAt time.Time
}

func NewSession(id string, conn network.Connection) *Session {
	return &Session{
		ID:        id,
		Conn:      conn,
		CreatedAt: time.Now(),
	}
}

func (s *Session) Send(resp *network.Response) error {
	return s.Conn.Send(resp)
}

func (s *Session) GetID() string {
	return s.ID
}

func (s *Session) LoggedIn() bool {
	return s.User != ""
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Manager tracks all open sessions.
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}

// GetByUser returns every open socket bound to the given user name. A
// user may be logged in from several sockets at once.
func (m *Manager) GetByUser(user string) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var result []*Session
	for _, session := range m.sessions {
		if session.User == user {
			result = append(result, session)
		}
	}
	return result
}
