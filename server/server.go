package server

import (
	"errors"
	"net/http"
	"net/rpc"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/wfunc/roomserver/broadcast"
	"github.com/wfunc/roomserver/game"
	"github.com/wfunc/roomserver/logger"
	"github.com/wfunc/roomserver/monitor"
	"github.com/wfunc/roomserver/network"
	roomserver_rpc "github.com/wfunc/roomserver/rpc"
	"github.com/wfunc/roomserver/services"
	"github.com/wfunc/roomserver/session"
	"github.com/wfunc/roomserver/state"
	"github.com/wfunc/roomserver/timer"
)

// GameServer owns the websocket endpoint and one goroutine per client
// connection; everything stateful lives in the hub.
type GameServer struct {
	addr      string
	upgrader  websocket.Upgrader
	router    *mux.Router
	hub       *state.Hub
	sessions  *session.Manager
	monitor   *monitor.Monitor
	rpcServer *roomserver_rpc.Server
	timers    *timer.Manager
}

func NewGameServer(addr, gameType string, ctor game.Constructor) *GameServer {
	sessions := session.NewManager()
	s := &GameServer{
		addr:     addr,
		sessions: sessions,
		hub:      state.NewHub(gameType, ctor, sessions, broadcast.NewRoomBroadcaster()),
		router:   mux.NewRouter(),
		timers:   timer.NewManager(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}
	s.router.HandleFunc("/ws", s.handleWebSocket)
	return s
}

func (s *GameServer) Hub() *state.Hub {
	return s.hub
}

// Handler exposes the router, mainly for tests.
func (s *GameServer) Handler() http.Handler {
	return s.router
}

// EnableMonitor starts the metrics endpoint and keeps the gauges that
// are not event-driven fresh.
func (s *GameServer) EnableMonitor(namespace, addr string) {
	s.monitor = monitor.NewMonitor(namespace)
	s.hub.SetMonitor(s.monitor)
	s.timers.Schedule(0, 5*time.Second, func() {
		stats := s.hub.Stats()
		s.monitor.SetActiveRooms(stats.Rooms)
		s.monitor.SetLoggedInUsers(stats.Users)
	})
	s.monitor.StartServer(addr)
	logger.Log.Infof("Monitor listening on %s", addr)
}

// EnableRecords wires the finished-game archive.
func (s *GameServer) EnableRecords(records *services.RecordService) {
	s.hub.SetRecordService(records)
}

// EnableRPC starts the net/rpc admin surface.
func (s *GameServer) EnableRPC(addr string, records *services.RecordService) error {
	rpcServer, err := roomserver_rpc.NewServer(addr)
	if err != nil {
		return err
	}
	if err := rpc.Register(roomserver_rpc.NewAdminService(s.hub, records)); err != nil {
		return err
	}
	s.rpcServer = rpcServer
	go s.rpcServer.Start()
	return nil
}

func (s *GameServer) Start() error {
	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, s.router)
}

func (s *GameServer) Shutdown() {
	s.timers.Stop()
	if s.rpcServer != nil {
		s.rpcServer.Stop()
	}
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

// handleConnection runs the read loop for one socket. Opening the
// connection registers the session; returning for any reason fires
// exactly one disconnect.
func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.hub.Connect(sess)

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.ID)

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.ID)
		s.hub.Disconnect(sess.ID)
		wsConn.Close()
	}()

	for {
		action, err := wsConn.ReadAction()
		if err != nil {
			if errors.Is(err, network.ErrMalformedFrame) {
				// Garbage gets silence, not an error response.
				logger.Log.Warnf("Dropping frame from session %s: %v", sess.ID, err)
				if s.monitor != nil {
					s.monitor.IncDecodeErrors()
				}
				continue
			}
			return
		}
		s.hub.HandleAction(sess.ID, action)
	}
}
