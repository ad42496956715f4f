// Package hanabi implements the Hanabi card game behind the game
// contract. Players cooperate to play cards in value order per color;
// everyone sees the other hands but never their own, so views are
// redacted per recipient.
package hanabi

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"

	"github.com/wfunc/roomserver/game"
)

const (
	MaxHints = 8
	MaxLives = 3
)

// Move is the wire form of one turn.
type Move struct {
	Type string `json:"type"`
	// Index is the 0-based card index for play and discard.
	Index int `json:"index"`
	// Player is the 0-based hinted player for hint.
	Player int   `json:"player"`
	Hint   *Hint `json:"hint,omitempty"`
}

const (
	MovePlay    = "play"
	MoveDiscard = "discard"
	MoveHint    = "hint"
)

// Hint names either a value or a color, never both.
type Hint struct {
	Value int   `json:"value,omitempty"`
	Color Color `json:"color,omitempty"`
}

// AppliedMove is one entry in the game's move log.
type AppliedMove struct {
	Player int  `json:"player"`
	Move   Move `json:"move"`
}

// Game is the full authoritative state. All exported fields marshal to
// the wire; View strips what a recipient must not see.
type Game struct {
	Players     []string `json:"players"`
	StartPlayer int      `json:"start_player"`
	// NextPlayer is nil once the game has ended.
	NextPlayer *int `json:"next_player"`
	// LastPlayer is set as soon as the deck runs out; that player's
	// next turn is the final one.
	LastPlayer *int `json:"last_player,omitempty"`

	CardsPerPlayer int     `json:"cards_per_player"`
	Hints          int     `json:"hints"`
	Lives          int     `json:"lives"`
	Variant        Variant `json:"variant"`

	Deck      Deck   `json:"deck"`
	Hands     []Hand `json:"hands"`
	Discarded []Card `json:"discarded"`
	Played    Played `json:"played"`

	Moves []AppliedMove `json:"moves"`
}

// New constructs a shuffled game for the given players in turn order.
// Registered in the game registry as "hanabi".
func New(players []string, settings string) (game.Game, error) {
	variant, err := ParseVariant(settings)
	if err != nil {
		return nil, err
	}

	numPlayers := len(players)
	var cardsPerPlayer int
	switch numPlayers {
	case 2, 3:
		cardsPerPlayer = 5
	case 4, 5:
		cardsPerPlayer = 4
	default:
		return nil, fmt.Errorf("hanabi needs 2-5 players, got %d", numPlayers)
	}

	deck := newDeck(variant)
	hands := make([]Hand, numPlayers)
	for i := range hands {
		hands[i] = newHand(variant, cardsPerPlayer, &deck)
	}
	start := rand.Intn(numPlayers)

	return &Game{
		Players:        append([]string(nil), players...),
		StartPlayer:    start,
		NextPlayer:     &start,
		CardsPerPlayer: cardsPerPlayer,
		Hints:          MaxHints,
		Lives:          MaxLives,
		Variant:        variant,
		Deck:           deck,
		Hands:          hands,
		Discarded:      []Card{},
		Played:         newPlayed(variant),
	}, nil
}

func (g *Game) playerIndex(name string) int {
	for i, p := range g.Players {
		if p == name {
			return i
		}
	}
	return -1
}

// MakeMove applies one move for the named player. All rule checks run
// before any mutation, so a rejected move leaves the state untouched.
func (g *Game) MakeMove(player string, raw json.RawMessage) error {
	p := g.playerIndex(player)
	if p < 0 {
		return errors.New("Player not found")
	}
	var mov Move
	if err := json.Unmarshal(raw, &mov); err != nil {
		return errors.New("Could not parse move")
	}

	if g.NextPlayer == nil {
		return errors.New("Game has ended.")
	}
	if p != *g.NextPlayer {
		return errors.New("Not this player's turn.")
	}

	switch mov.Type {
	case MovePlay:
		if mov.Index < 0 || mov.Index >= len(g.Hands[p].Cards) {
			return errors.New("Card index out of range.")
		}
		taken := g.Hands[p].take(mov.Index)
		if g.Played.play(*taken.Card) {
			if taken.Card.Value == maxValue {
				g.Hints++
			}
		} else {
			g.Discarded = append(g.Discarded, *taken.Card)
			g.Lives--
		}
		g.Hands[p].draw(g.Variant, &g.Deck)
	case MoveDiscard:
		if g.Hints == MaxHints {
			return errors.New("Already at max hints; discarding not allowed.")
		}
		if mov.Index < 0 || mov.Index >= len(g.Hands[p].Cards) {
			return errors.New("Card index out of range.")
		}
		taken := g.Hands[p].take(mov.Index)
		g.Discarded = append(g.Discarded, *taken.Card)
		g.Hints++
		g.Hands[p].draw(g.Variant, &g.Deck)
	case MoveHint:
		if g.Hints == 0 {
			return errors.New("No hints remaining; hinting not allowed.")
		}
		if mov.Player == p {
			return errors.New("Hinting yourself is not allowed.")
		}
		if mov.Player < 0 || mov.Player >= len(g.Players) {
			return errors.New("Player out of range")
		}
		if mov.Hint == nil {
			return errors.New("Missing hint")
		}
		switch {
		case mov.Hint.Value != 0:
			if mov.Hint.Value < 1 || mov.Hint.Value > maxValue {
				return errors.New("Hinted value is out of range.")
			}
			g.Hints--
			g.Hands[mov.Player].applyValueHint(mov.Hint.Value)
		case mov.Hint.Color != "":
			if mov.Hint.Color == ColorMulti {
				return errors.New("Hinting multi is not allowed.")
			}
			if colorIndex(mov.Hint.Color) < 0 {
				return errors.New("Unknown color")
			}
			g.Hints--
			g.Hands[mov.Player].applyColorHint(mov.Hint.Color)
		default:
			return errors.New("Missing hint")
		}
	default:
		return errors.New("Unknown move type")
	}

	g.Moves = append(g.Moves, AppliedMove{Player: p, Move: mov})

	// The player who empties the deck takes the last turn of the
	// final round.
	if g.Deck.empty() && g.LastPlayer == nil {
		last := p
		g.LastPlayer = &last
	}

	if g.Lives == 0 || (g.LastPlayer != nil && *g.LastPlayer == p) {
		g.NextPlayer = nil
	} else {
		next := (p + 1) % len(g.Players)
		g.NextPlayer = &next
	}
	return nil
}

// View redacts the state for one recipient: the deck order is hidden
// from everyone, and a participant loses sight of their own hand.
// Unknown names get the spectator view.
func (g *Game) View(player string) game.Game {
	view := g.clone()
	view.Deck = g.Deck.view()
	if p := g.playerIndex(player); p >= 0 {
		view.Hands[p] = g.Hands[p].view()
	}
	return view
}

// Ended reports the terminal state: all lives lost or the final round
// completed.
func (g *Game) Ended() bool {
	return g.NextPlayer == nil
}

// Score is the number of successfully played cards.
func (g *Game) Score() int {
	return g.Played.Score()
}

func (g *Game) clone() *Game {
	view := *g
	if g.NextPlayer != nil {
		next := *g.NextPlayer
		view.NextPlayer = &next
	}
	if g.LastPlayer != nil {
		last := *g.LastPlayer
		view.LastPlayer = &last
	}
	view.Players = append([]string(nil), g.Players...)
	view.Deck = Deck{Cards: append([]Card(nil), g.Deck.Cards...), Count: g.Deck.Count}
	view.Hands = make([]Hand, len(g.Hands))
	for i, h := range g.Hands {
		view.Hands[i] = h.clone()
	}
	view.Discarded = append([]Card(nil), g.Discarded...)
	view.Played = make(Played, len(g.Played))
	for c, n := range g.Played {
		view.Played[c] = n
	}
	view.Moves = append([]AppliedMove(nil), g.Moves...)
	return &view
}
