package hanabi

import (
	"encoding/json"
	"testing"
)

// fixedGame builds a deterministic two-player game. Deck cards are
// drawn from the end of the slice; hands are used as given.
func fixedGame(deck []Card, hands ...[]Card) *Game {
	players := []string{"alice", "bob", "carol", "dave", "eve"}[:len(hands)]
	gameHands := make([]Hand, len(hands))
	for i, cards := range hands {
		hand := Hand{Cards: make([]HandCard, len(cards))}
		for j := range cards {
			card := cards[j]
			hand.Cards[j] = HandCard{Card: &card, Knowledge: newCardKnowledge(VariantBase)}
		}
		gameHands[i] = hand
	}
	start := 0
	return &Game{
		Players:        append([]string(nil), players...),
		StartPlayer:    start,
		NextPlayer:     &start,
		CardsPerPlayer: len(hands[0]),
		Hints:          MaxHints,
		Lives:          MaxLives,
		Variant:        VariantBase,
		Deck:           Deck{Cards: append([]Card(nil), deck...), Count: len(deck)},
		Hands:          gameHands,
		Discarded:      []Card{},
		Played:         newPlayed(VariantBase),
	}
}

func move(t *testing.T, g *Game, player string, m Move) {
	t.Helper()
	if err := g.makeMove(player, m); err != nil {
		t.Fatalf("%s's move %+v failed: %v", player, m, err)
	}
}

func (g *Game) makeMove(player string, m Move) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return g.MakeMove(player, raw)
}

func TestDeckComposition(t *testing.T) {
	cases := []struct {
		variant Variant
		total   int
	}{
		{VariantBase, 50},
		{VariantMulti, 60},
		{VariantMultiHard, 55},
	}
	for _, tc := range cases {
		deck := newDeck(tc.variant)
		if deck.Count != tc.total || len(deck.Cards) != tc.total {
			t.Errorf("%s: expected %d cards, got %d", tc.variant, tc.total, deck.Count)
		}

		counts := make(map[Card]int)
		for _, c := range deck.Cards {
			counts[c]++
		}
		if got := counts[Card{Color: ColorBlue, Value: 1}]; got != 3 {
			t.Errorf("%s: expected 3 blue ones, got %d", tc.variant, got)
		}
		if got := counts[Card{Color: ColorBlue, Value: 5}]; got != 1 {
			t.Errorf("%s: expected 1 blue five, got %d", tc.variant, got)
		}
		multiOnes := counts[Card{Color: ColorMulti, Value: 1}]
		switch tc.variant {
		case VariantBase:
			if multiOnes != 0 {
				t.Errorf("base deck must not contain multi cards, got %d", multiOnes)
			}
		case VariantMulti:
			if multiOnes != 3 {
				t.Errorf("multi: expected 3 multi ones, got %d", multiOnes)
			}
		case VariantMultiHard:
			if multiOnes != 1 {
				t.Errorf("multihard: expected 1 multi one, got %d", multiOnes)
			}
		}
	}
}

func TestParseVariant(t *testing.T) {
	if v, err := ParseVariant(""); err != nil || v != VariantBase {
		t.Errorf("empty settings should mean the base game, got %v %v", v, err)
	}
	if v, err := ParseVariant("multihard"); err != nil || v != VariantMultiHard {
		t.Errorf("expected multihard, got %v %v", v, err)
	}
	if _, err := ParseVariant("pandemic"); err == nil {
		t.Error("expected an error for an unknown variant")
	}
}

func TestNew(t *testing.T) {
	for _, n := range []int{0, 1, 6} {
		players := []string{"a", "b", "c", "d", "e", "f"}[:n]
		if _, err := New(players, ""); err == nil {
			t.Errorf("%d players: expected an error", n)
		}
	}
	if _, err := New([]string{"alice", "bob"}, "pandemic"); err == nil {
		t.Error("expected unknown variant to be rejected")
	}

	raw, err := New([]string{"alice", "bob", "carol"}, "")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	g := raw.(*Game)
	if g.CardsPerPlayer != 5 {
		t.Errorf("3 players get 5 cards, got %d", g.CardsPerPlayer)
	}
	for i, h := range g.Hands {
		if len(h.Cards) != 5 {
			t.Errorf("hand %d: expected 5 cards, got %d", i, len(h.Cards))
		}
	}
	if g.Deck.Count != 50-15 {
		t.Errorf("expected 35 cards left in the deck, got %d", g.Deck.Count)
	}
	if g.Hints != MaxHints || g.Lives != MaxLives {
		t.Errorf("expected full hints and lives, got %d/%d", g.Hints, g.Lives)
	}
	if g.NextPlayer == nil || *g.NextPlayer < 0 || *g.NextPlayer >= 3 {
		t.Errorf("unexpected start player %v", g.NextPlayer)
	}
	if g.Ended() {
		t.Error("fresh game must not be ended")
	}

	raw, _ = New([]string{"a", "b", "c", "d"}, "")
	if g := raw.(*Game); g.CardsPerPlayer != 4 {
		t.Errorf("4 players get 4 cards, got %d", g.CardsPerPlayer)
	}
}

func TestTurnEnforcement(t *testing.T) {
	g := fixedGame(
		[]Card{{ColorGreen, 1}, {ColorGreen, 2}},
		[]Card{{ColorBlue, 1}},
		[]Card{{ColorRed, 1}},
	)

	if err := g.makeMove("bob", Move{Type: MovePlay, Index: 0}); err == nil || err.Error() != "Not this player's turn." {
		t.Errorf("expected turn error, got %v", err)
	}
	if err := g.makeMove("mallory", Move{Type: MovePlay, Index: 0}); err == nil || err.Error() != "Player not found" {
		t.Errorf("expected unknown player error, got %v", err)
	}
	if err := g.MakeMove("alice", json.RawMessage(`nonsense`)); err == nil || err.Error() != "Could not parse move" {
		t.Errorf("expected parse error, got %v", err)
	}

	move(t, g, "alice", Move{Type: MovePlay, Index: 0})
	if *g.NextPlayer != 1 {
		t.Errorf("turn should pass to bob, got %d", *g.NextPlayer)
	}
}

func TestPlaySuccess(t *testing.T) {
	g := fixedGame(
		[]Card{{ColorGreen, 4}},
		[]Card{{ColorBlue, 1}, {ColorRed, 3}},
		[]Card{{ColorRed, 1}},
	)

	move(t, g, "alice", Move{Type: MovePlay, Index: 0})

	if g.Played[ColorBlue] != 1 {
		t.Errorf("expected blue 1 on the table, got %d", g.Played[ColorBlue])
	}
	if g.Lives != MaxLives {
		t.Errorf("successful play must not cost a life, got %d", g.Lives)
	}
	if len(g.Discarded) != 0 {
		t.Errorf("successful play must not discard, got %v", g.Discarded)
	}
	// The replacement is drawn from the deck.
	if len(g.Hands[0].Cards) != 2 {
		t.Fatalf("expected a replacement card, got %d cards", len(g.Hands[0].Cards))
	}
	if drawn := g.Hands[0].Cards[1].Card; drawn.Color != ColorGreen || drawn.Value != 4 {
		t.Errorf("unexpected drawn card %+v", drawn)
	}
	if !g.Deck.empty() {
		t.Errorf("deck should be empty, got %d", g.Deck.Count)
	}
}

func TestPlayWrongCardCostsLife(t *testing.T) {
	g := fixedGame(
		[]Card{{ColorGreen, 4}},
		[]Card{{ColorRed, 3}},
		[]Card{{ColorRed, 1}},
	)

	move(t, g, "alice", Move{Type: MovePlay, Index: 0})

	if g.Lives != MaxLives-1 {
		t.Errorf("expected a lost life, got %d", g.Lives)
	}
	if len(g.Discarded) != 1 || g.Discarded[0] != (Card{ColorRed, 3}) {
		t.Errorf("misplayed card must be discarded, got %v", g.Discarded)
	}
	if g.Played.Score() != 0 {
		t.Errorf("nothing should be on the table, got %d", g.Played.Score())
	}
}

func TestPlayFiveRestoresHint(t *testing.T) {
	g := fixedGame(
		[]Card{{ColorGreen, 4}},
		[]Card{{ColorBlue, 5}},
		[]Card{{ColorRed, 1}},
	)
	g.Played[ColorBlue] = 4
	g.Hints = 3

	move(t, g, "alice", Move{Type: MovePlay, Index: 0})

	if g.Played[ColorBlue] != 5 {
		t.Errorf("expected the blue stack completed, got %d", g.Played[ColorBlue])
	}
	if g.Hints != 4 {
		t.Errorf("completing a stack grants a hint, got %d", g.Hints)
	}
}

func TestPlayIndexOutOfRange(t *testing.T) {
	g := fixedGame(
		[]Card{{ColorGreen, 4}},
		[]Card{{ColorBlue, 1}},
		[]Card{{ColorRed, 1}},
	)
	if err := g.makeMove("alice", Move{Type: MovePlay, Index: 5}); err == nil || err.Error() != "Card index out of range." {
		t.Errorf("expected index error, got %v", err)
	}
	if len(g.Hands[0].Cards) != 1 {
		t.Errorf("rejected move must not touch the hand, got %d cards", len(g.Hands[0].Cards))
	}
	if *g.NextPlayer != 0 {
		t.Errorf("rejected move must not advance the turn, got %d", *g.NextPlayer)
	}
}

func TestDiscard(t *testing.T) {
	g := fixedGame(
		[]Card{{ColorGreen, 4}, {ColorGreen, 2}},
		[]Card{{ColorBlue, 1}, {ColorRed, 3}},
		[]Card{{ColorRed, 1}},
	)

	if err := g.makeMove("alice", Move{Type: MoveDiscard, Index: 0}); err == nil ||
		err.Error() != "Already at max hints; discarding not allowed." {
		t.Errorf("expected max-hints error, got %v", err)
	}

	g.Hints = 5
	move(t, g, "alice", Move{Type: MoveDiscard, Index: 1})

	if g.Hints != 6 {
		t.Errorf("discard grants a hint, got %d", g.Hints)
	}
	if len(g.Discarded) != 1 || g.Discarded[0] != (Card{ColorRed, 3}) {
		t.Errorf("unexpected discard pile %v", g.Discarded)
	}
	if g.Lives != MaxLives {
		t.Errorf("discard must not cost a life, got %d", g.Lives)
	}
	if len(g.Hands[0].Cards) != 2 {
		t.Errorf("expected a replacement card, got %d cards", len(g.Hands[0].Cards))
	}
}

func TestHintValue(t *testing.T) {
	g := fixedGame(
		[]Card{{ColorGreen, 4}},
		[]Card{{ColorBlue, 1}},
		[]Card{{ColorBlue, 2}, {ColorRed, 3}},
	)

	move(t, g, "alice", Move{Type: MoveHint, Player: 1, Hint: &Hint{Value: 2}})

	if g.Hints != MaxHints-1 {
		t.Errorf("hinting costs a hint, got %d", g.Hints)
	}

	matched := g.Hands[1].Cards[0].Knowledge
	if matched.Values[1] != Known {
		t.Errorf("hinted card should know its value, got %v", matched.Values)
	}
	for i, s := range matched.Values {
		if i != 1 && s != Impossible {
			t.Errorf("hinted card value %d should be impossible, got %v", i+1, s)
		}
	}

	other := g.Hands[1].Cards[1].Knowledge
	if other.Values[1] != Impossible {
		t.Errorf("unhinted card should rule out the value, got %v", other.Values)
	}
	if other.Values[0] != Possible {
		t.Errorf("other values stay possible, got %v", other.Values)
	}
}

func TestHintColor(t *testing.T) {
	g := fixedGame(
		[]Card{{ColorGreen, 4}},
		[]Card{{ColorBlue, 1}},
		[]Card{{ColorBlue, 2}, {ColorRed, 3}},
	)

	move(t, g, "alice", Move{Type: MoveHint, Player: 1, Hint: &Hint{Color: ColorBlue}})

	matched := g.Hands[1].Cards[0].Knowledge
	if matched.Colors[colorIndex(ColorBlue)] != Known {
		t.Errorf("hinted card should know its color, got %v", matched.Colors)
	}
	if matched.Colors[colorIndex(ColorRed)] != Impossible {
		t.Errorf("other colors should be impossible, got %v", matched.Colors)
	}

	other := g.Hands[1].Cards[1].Knowledge
	if other.Colors[colorIndex(ColorBlue)] != Impossible {
		t.Errorf("unhinted card should rule out the color, got %v", other.Colors)
	}
	if other.Colors[colorIndex(ColorGreen)] != Possible {
		t.Errorf("other colors stay possible, got %v", other.Colors)
	}
}

func TestHintErrors(t *testing.T) {
	newGame := func() *Game {
		return fixedGame(
			[]Card{{ColorGreen, 4}},
			[]Card{{ColorBlue, 1}},
			[]Card{{ColorBlue, 2}},
		)
	}

	cases := []struct {
		name string
		prep func(*Game)
		mov  Move
		want string
	}{
		{"self hint", nil, Move{Type: MoveHint, Player: 0, Hint: &Hint{Value: 1}}, "Hinting yourself is not allowed."},
		{"player out of range", nil, Move{Type: MoveHint, Player: 5, Hint: &Hint{Value: 1}}, "Player out of range"},
		{"value too high", nil, Move{Type: MoveHint, Player: 1, Hint: &Hint{Value: 6}}, "Hinted value is out of range."},
		{"multi hint", nil, Move{Type: MoveHint, Player: 1, Hint: &Hint{Color: ColorMulti}}, "Hinting multi is not allowed."},
		{"unknown color", nil, Move{Type: MoveHint, Player: 1, Hint: &Hint{Color: "purple"}}, "Unknown color"},
		{"empty hint", nil, Move{Type: MoveHint, Player: 1, Hint: &Hint{}}, "Missing hint"},
		{"no hint at all", nil, Move{Type: MoveHint, Player: 1}, "Missing hint"},
		{"no hints left", func(g *Game) { g.Hints = 0 }, Move{Type: MoveHint, Player: 1, Hint: &Hint{Value: 1}}, "No hints remaining; hinting not allowed."},
	}
	for _, tc := range cases {
		g := newGame()
		if tc.prep != nil {
			tc.prep(g)
		}
		err := g.makeMove("alice", tc.mov)
		if err == nil || err.Error() != tc.want {
			t.Errorf("%s: expected %q, got %v", tc.name, tc.want, err)
		}
		if len(g.Moves) != 0 {
			t.Errorf("%s: rejected hint must not be logged", tc.name)
		}
	}
}

func TestLivesExhaustedEndsGame(t *testing.T) {
	g := fixedGame(
		[]Card{{ColorGreen, 4}},
		[]Card{{ColorRed, 3}},
		[]Card{{ColorRed, 1}},
	)
	g.Lives = 1

	move(t, g, "alice", Move{Type: MovePlay, Index: 0})

	if g.Lives != 0 {
		t.Errorf("expected the last life gone, got %d", g.Lives)
	}
	if !g.Ended() {
		t.Error("losing the last life ends the game")
	}
	if err := g.makeMove("bob", Move{Type: MovePlay, Index: 0}); err == nil || err.Error() != "Game has ended." {
		t.Errorf("expected end-of-game error, got %v", err)
	}
}

func TestDeckExhaustionEndsGame(t *testing.T) {
	g := fixedGame(
		[]Card{{ColorGreen, 4}},
		[]Card{{ColorBlue, 1}, {ColorBlue, 2}},
		[]Card{{ColorRed, 1}},
	)
	g.Hints = 5

	// Alice's discard draws the final card; the deck runs out on her
	// move, which makes it the last one.
	move(t, g, "alice", Move{Type: MoveDiscard, Index: 1})

	if !g.Deck.empty() {
		t.Fatalf("deck should be exhausted, got %d", g.Deck.Count)
	}
	if g.LastPlayer == nil || *g.LastPlayer != 0 {
		t.Errorf("expected alice marked as last player, got %v", g.LastPlayer)
	}
	if !g.Ended() {
		t.Error("expected the game to end with the deck")
	}
}

func TestEmptyDeckMakesNextMoveLast(t *testing.T) {
	g := fixedGame(
		nil,
		[]Card{{ColorBlue, 1}},
		[]Card{{ColorBlue, 2}},
	)
	// The deck is already empty, so whoever moves first takes the
	// final turn.
	move(t, g, "alice", Move{Type: MoveHint, Player: 1, Hint: &Hint{Value: 2}})

	if g.LastPlayer == nil || *g.LastPlayer != 0 {
		t.Errorf("expected alice marked as last player, got %v", g.LastPlayer)
	}
	if !g.Ended() {
		t.Error("expected the game to end")
	}
}

func TestViewRedaction(t *testing.T) {
	g := fixedGame(
		[]Card{{ColorGreen, 4}},
		[]Card{{ColorBlue, 1}, {ColorRed, 3}},
		[]Card{{ColorRed, 1}},
	)

	view := g.View("alice").(*Game)

	if view.Deck.Cards != nil {
		t.Error("deck order must be hidden from every viewer")
	}
	if view.Deck.Count != 1 {
		t.Errorf("deck count stays visible, got %d", view.Deck.Count)
	}
	for i, hc := range view.Hands[0].Cards {
		if hc.Card != nil {
			t.Errorf("alice must not see her own card %d", i)
		}
	}
	for i, hc := range view.Hands[1].Cards {
		if hc.Card == nil {
			t.Errorf("alice should see bob's card %d", i)
		}
	}

	// Redaction must not touch the authoritative state.
	if g.Hands[0].Cards[0].Card == nil || g.Deck.Cards == nil {
		t.Fatal("View must operate on a copy")
	}
}

func TestSpectatorView(t *testing.T) {
	g := fixedGame(
		[]Card{{ColorGreen, 4}},
		[]Card{{ColorBlue, 1}},
		[]Card{{ColorRed, 1}},
	)

	view := g.View("watcher").(*Game)

	if view.Deck.Cards != nil {
		t.Error("deck order must be hidden from spectators too")
	}
	for p := range view.Hands {
		for i, hc := range view.Hands[p].Cards {
			if hc.Card == nil {
				t.Errorf("spectator should see hand %d card %d", p, i)
			}
		}
	}
}

func TestScore(t *testing.T) {
	g := fixedGame(
		nil,
		[]Card{{ColorBlue, 1}},
		[]Card{{ColorRed, 1}},
	)
	g.Played[ColorBlue] = 3
	g.Played[ColorRed] = 5

	if g.Score() != 8 {
		t.Errorf("expected score 8, got %d", g.Score())
	}
}
