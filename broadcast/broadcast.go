// broadcast/broadcast.go
package broadcast

import (
	"github.com/wfunc/roomserver/logger"
	"github.com/wfunc/roomserver/network"
	"github.com/wfunc/roomserver/room"
)

// Broadcaster pushes fresh views of a mutated room to its watchers.
type Broadcaster interface {
	BroadcastRoom(r *room.Room)
}

// RoomBroadcaster recomputes the room view per recipient, so every
// watcher receives the state with exactly the information their user
// is allowed to see. Called under the server state lock; sends are
// queue writes only.
type RoomBroadcaster struct{}

func NewRoomBroadcaster() *RoomBroadcaster {
	return &RoomBroadcaster{}
}

func (b *RoomBroadcaster) BroadcastRoom(r *room.Room) {
	for _, s := range r.Watchers() {
		view := r.View(s.User)
		if err := s.Send(network.RoomResponse(view)); err != nil {
			// The connection teardown path cleans up the watcher set.
			logger.Log.Warnf("Failed to push room %d to session %s: %v", r.ID, s.ID, err)
			continue
		}
	}
}
