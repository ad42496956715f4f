// Package game defines the contract between the room server and a
// pluggable turn-based game. The server never inspects game rules; it
// only constructs a game, forwards moves, asks for per-player views,
// and polls for the end of the game.
package game

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Game is one live game instance, exclusively owned by its room. All
// methods are called under the server's state lock, so implementations
// need no synchronization of their own and must not block.
type Game interface {
	// MakeMove applies one move on behalf of the named player. On any
	// error the game state must be left unchanged. The move payload is
	// game-specific JSON.
	MakeMove(player string, move json.RawMessage) error

	// View returns a copy of the state as the named player is allowed
	// to see it, with hidden information replaced by placeholders. A
	// name that is not a participant gets the spectator view; hidden
	// values of actual participants must never leak to it. The result
	// is marshaled to JSON and pushed to the viewer.
	View(player string) Game

	// Ended reports whether the game reached a terminal state. Polled
	// after every successful move.
	Ended() bool
}

// Constructor builds a new game for the given players, in turn order.
// Called exactly once per room, when the room starts. The settings
// string is game-specific (e.g. a variant name) and may be rejected.
type Constructor func(players []string, settings string) (Game, error)

// Registry maps game type names to constructors so the deployed game
// can be chosen by configuration.
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

func (r *Registry) Register(gameType string, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctors[gameType] = ctor
}

func (r *Registry) Lookup(gameType string) (Constructor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ctor, ok := r.ctors[gameType]
	if !ok {
		return nil, fmt.Errorf("unknown game type %q", gameType)
	}
	return ctor, nil
}
