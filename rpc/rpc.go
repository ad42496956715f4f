package rpc

import (
	"errors"
	"net"
	"net/rpc"

	"github.com/wfunc/roomserver/logger"
	"github.com/wfunc/roomserver/models"
	"github.com/wfunc/roomserver/network"
	"github.com/wfunc/roomserver/services"
	"github.com/wfunc/roomserver/state"
)

// Server manages the RPC listener for the admin surface.
type Server struct {
	listener net.Listener
	address  string
}

func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// AdminService exposes read-only server introspection over net/rpc.
// Methods follow the net/rpc signature rules: exported method, two
// exported args, the second a pointer, error result.
type AdminService struct {
	hub     *state.Hub
	records *services.RecordService
}

func NewAdminService(hub *state.Hub, records *services.RecordService) *AdminService {
	return &AdminService{hub: hub, records: records}
}

type StatusArgs struct{}

type StatusReply struct {
	Sessions int
	Users    int
	Rooms    int
}

func (a *AdminService) Status(args *StatusArgs, reply *StatusReply) error {
	stats := a.hub.Stats()
	reply.Sessions = stats.Sessions
	reply.Users = stats.Users
	reply.Rooms = stats.Rooms
	return nil
}

type ListRoomsArgs struct{}

type ListRoomsReply struct {
	Rooms []*network.RoomView
}

func (a *AdminService) ListRooms(args *ListRoomsArgs, reply *ListRoomsReply) error {
	reply.Rooms = a.hub.RoomSummaries()
	return nil
}

type UserSessionsArgs struct {
	Name string
}

type UserSessionsReply struct {
	Sessions []string
}

// UserSessions lists the open socket ids for one user, for chasing
// stuck or duplicated connections.
func (a *AdminService) UserSessions(args *UserSessionsArgs, reply *UserSessionsReply) error {
	reply.Sessions = a.hub.SessionsForUser(args.Name)
	return nil
}

type RecentRecordsArgs struct {
	Limit int
}

type RecentRecordsReply struct {
	Records []*models.GameRecord
}

func (a *AdminService) RecentRecords(args *RecentRecordsArgs, reply *RecentRecordsReply) error {
	if a.records == nil {
		return errors.New("no archive store configured")
	}
	limit := args.Limit
	if limit <= 0 {
		limit = 20
	}
	records, err := a.records.Recent(limit)
	if err != nil {
		return err
	}
	reply.Records = records
	return nil
}
